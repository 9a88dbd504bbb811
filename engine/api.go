package engine

// Lifecycle is the hook surface a host runtime drives. *Engine implements
// it. For any one PageID the host delivers added, then any number of
// accessed, then evicted; the engine does not defend against reorderings
// beyond dropping events for unknown ids.
type Lifecycle interface {
	OnAdded(Page)
	OnAccessed(Page)
	OnEvicted(Page)
	OnEvictRequest(EvictContext)
}

// EvictContext is the host's victim collector for one eviction request.
// Submit reports false once the eviction budget is met; the engine stops
// nominating at that point.
type EvictContext interface {
	Submit(Page) bool
}

// EvictBatch is a simple EvictContext collecting up to Budget victims.
type EvictBatch struct {
	Budget  int
	Victims []Page
}

// Submit records one victim and reports whether the budget still has room.
func (b *EvictBatch) Submit(p Page) bool {
	if len(b.Victims) >= b.Budget {
		return false
	}
	b.Victims = append(b.Victims, p)
	return len(b.Victims) < b.Budget
}

// Compile-time check: the engine satisfies the host hook surface.
var _ Lifecycle = (*Engine)(nil)
