// Package lhd implements a simplified hit-density eviction kernel.
//
// The full LHD policy ranks pages by predicted hits per unit of cache
// space. This simplified variant records the hit-age signal (the gap
// between a page's two most recent accesses) but keeps FIFO eviction
// order, trading ranking precision for O(1) bookkeeping.
package lhd

import "github.com/lysgoup/adaptived/policy"

type lhd struct {
	q policy.Queue
}

type factory struct{}

// New returns the simplified hit-density kernel factory.
func New() policy.Factory { return factory{} }

func (factory) ID() policy.ID { return policy.LHD }

func (factory) New(h policy.Hooks) policy.Kernel {
	return &lhd{q: h.NewQueue("lhd")}
}

// OnAdd admits the page at the young end with a zero hit age.
func (p *lhd) OnAdd(n policy.Node, _ uint64) {
	n.Meta().LastHitAge = 0
	p.q.PushBack(n)
}

// OnAccess records the gap since the previous access. The engine invokes
// kernels before stamping LastAccessAt, so the read here is the
// second-most-recent access time.
func (p *lhd) OnAccess(n policy.Node, now uint64) {
	m := n.Meta()
	m.LastHitAge = now - m.LastAccessAt
}

// Evict nominates valid nodes oldest-first.
func (p *lhd) Evict(sink policy.EvictSink) {
	p.q.Ascend(func(n policy.Node) bool {
		if !policy.Valid(n.Page()) {
			return true
		}
		return sink.Submit(n)
	})
}
