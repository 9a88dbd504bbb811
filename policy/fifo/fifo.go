// Package fifo implements the FIFO eviction kernel.
package fifo

import "github.com/lysgoup/adaptived/policy"

// fifo evicts in arrival order. Queue front is oldest; admissions go to
// the back and accesses never reorder.
type fifo struct {
	q policy.Queue
}

type factory struct{}

// New returns the FIFO kernel factory.
func New() policy.Factory { return factory{} }

func (factory) ID() policy.ID { return policy.FIFO }

func (factory) New(h policy.Hooks) policy.Kernel {
	return &fifo{q: h.NewQueue("fifo")}
}

// OnAdd appends the page at the young end.
func (p *fifo) OnAdd(n policy.Node, _ uint64) { p.q.PushBack(n) }

// OnAccess is a no-op; FIFO ignores recency.
func (p *fifo) OnAccess(policy.Node, uint64) {}

// Evict nominates valid nodes oldest-first.
func (p *fifo) Evict(sink policy.EvictSink) {
	p.q.Ascend(func(n policy.Node) bool {
		if !policy.Valid(n.Page()) {
			return true
		}
		return sink.Submit(n)
	})
}
