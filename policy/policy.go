package policy

// ID identifies a replacement policy. The numeric values are part of the
// switch-event wire format and must not be reordered.
type ID uint32

const (
	MRU ID = iota
	FIFO
	LRU
	S3FIFO
	LHD
)

// NumPolicies is the number of defined policy IDs.
const NumPolicies = 5

// String returns the human-readable policy name as used by the observer.
func (id ID) String() string {
	switch id {
	case MRU:
		return "MRU"
	case FIFO:
		return "FIFO"
	case LRU:
		return "LRU"
	case S3FIFO:
		return "S3-FIFO"
	case LHD:
		return "LHD-Simple"
	default:
		return "UNKNOWN"
	}
}

// Page is the host's view of a cached page as seen by a kernel.
// Flags are read live from the host; they may change between calls.
type Page interface {
	Inode() uint64
	Offset() uint64
	Uptodate() bool
	RecentlyUsed() bool
	Dirty() bool
}

// Meta is the per-page metadata a kernel may read and mutate.
// The engine owns creation and destruction; kernels touch only the
// policy-private fields (Freq, InMain, LastHitAge).
type Meta struct {
	AddedAt      uint64 // logical clock at admission
	LastAccessAt uint64 // logical clock of most recent access
	AccessCount  uint64 // post-add accesses

	// S3-FIFO private state.
	Freq   uint8 // saturating 0..3 small-queue hit counter
	InMain bool  // promoted to the main queue

	// Hit-density private state.
	LastHitAge uint64 // gap between the two most recent accesses
}

// Node is one resident page inside a kernel's queue.
// All calls happen on the engine's hook path; no locking is required.
type Node interface {
	Page() Page
	Meta() *Meta
}

// Queue is an ordered sequence of nodes owned by one kernel.
// Front/Back semantics are the kernel's to define; all operations are O(1)
// except the walks, which visit nodes in order until fn returns false.
type Queue interface {
	PushFront(Node)
	PushBack(Node)
	MoveToFront(Node)
	MoveToBack(Node)
	Remove(Node)
	Len() int

	// Ascend walks front to back; Descend walks back to front.
	// fn returns false to stop the walk. The node passed to fn may be
	// moved to the opposite end or to another queue of the same kernel
	// without invalidating the walk.
	Ascend(fn func(n Node) bool)
	Descend(fn func(n Node) bool)
}

// Hooks is the engine-provided environment a kernel is bound to.
// NewQueue registers an ordered list with the engine's registry so the
// engine can account queue sizes and detach nodes on page eviction.
type Hooks interface {
	NewQueue(name string) Queue
	// CacheSizeEstimate is the host's page-count estimate for the
	// managed cgroup; kernels use it for relative sizing decisions.
	CacheSizeEstimate() uint64
}

// EvictSink accepts eviction victims nominated during a kernel walk.
// Submit reports false once the host's eviction budget is met; the kernel
// must stop walking. Submitted nodes stay resident until the host delivers
// the evicted hook for them.
type EvictSink interface {
	Submit(Node) bool
}

// Kernel is a bound, per-engine policy instance: the three rules that
// induce an eviction order.
//
// Semantics:
//   - OnAdd places a freshly admitted node into a queue.
//   - OnAccess may reorder the node or update policy-private metadata.
//     It runs before the engine stamps LastAccessAt, so kernels observe
//     the previous access time.
//   - Evict walks queue nodes and nominates victims via the sink.
type Kernel interface {
	OnAdd(n Node, now uint64)
	OnAccess(n Node, now uint64)
	Evict(sink EvictSink)
}

// Factory creates kernel instances bound to a particular engine's hooks.
type Factory interface {
	ID() ID
	New(h Hooks) Kernel
}

// Valid reports whether a page is a sane eviction candidate: the host has
// finished reading it in and still considers it recently used. Pages
// failing this are being reclaimed elsewhere and are skipped by kernels.
func Valid(p Page) bool {
	return p.Uptodate() && p.RecentlyUsed()
}
