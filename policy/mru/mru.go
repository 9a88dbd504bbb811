// Package mru implements the MRU eviction kernel.
package mru

import "github.com/lysgoup/adaptived/policy"

// ProtectedPrefix is how many still-valid nodes at the recent end of the
// queue are exempt from a single eviction sweep. Without it a sweep would
// treat the very newest pages as junk before they had a chance to be hit.
const ProtectedPrefix = 200

// mru evicts the most recently used pages first, keeping a protected
// prefix of the newest arrivals. Queue front is most recent.
type mru struct {
	q policy.Queue
}

type factory struct{}

// New returns the MRU kernel factory.
func New() policy.Factory { return factory{} }

func (factory) ID() policy.ID { return policy.MRU }

func (factory) New(h policy.Hooks) policy.Kernel {
	return &mru{q: h.NewQueue("mru")}
}

// OnAdd admits the page at the recent end.
func (p *mru) OnAdd(n policy.Node, _ uint64) { p.q.PushFront(n) }

// OnAccess promotes the page to the recent end.
func (p *mru) OnAccess(n policy.Node, _ uint64) { p.q.MoveToFront(n) }

// Evict walks from the recent end, skips the protected prefix of valid
// nodes, then nominates valid nodes until the budget is met. Invalid
// nodes are already being reclaimed elsewhere and are passed over.
func (p *mru) Evict(sink policy.EvictSink) {
	skipped := 0
	p.q.Ascend(func(n policy.Node) bool {
		if !policy.Valid(n.Page()) {
			return true
		}
		if skipped < ProtectedPrefix {
			skipped++
			return true
		}
		return sink.Submit(n)
	})
}
