// Package lru implements the LRU eviction kernel.
package lru

import "github.com/lysgoup/adaptived/policy"

// lru is the classic move-to-recent-end policy. Queue front is least
// recently used; admissions and accesses both land at the back.
type lru struct {
	q policy.Queue
}

type factory struct{}

// New returns the LRU kernel factory.
func New() policy.Factory { return factory{} }

func (factory) ID() policy.ID { return policy.LRU }

func (factory) New(h policy.Hooks) policy.Kernel {
	return &lru{q: h.NewQueue("lru")}
}

// OnAdd admits the page at the recent end.
func (p *lru) OnAdd(n policy.Node, _ uint64) { p.q.PushBack(n) }

// OnAccess promotes the page to the recent end.
func (p *lru) OnAccess(n policy.Node, _ uint64) { p.q.MoveToBack(n) }

// Evict nominates valid nodes coldest-first.
func (p *lru) Evict(sink policy.EvictSink) {
	p.q.Ascend(func(n policy.Node) bool {
		if !policy.Valid(n.Page()) {
			return true
		}
		return sink.Submit(n)
	})
}
