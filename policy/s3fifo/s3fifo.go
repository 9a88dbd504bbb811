// Package s3fifo implements the S3-FIFO eviction kernel.
//
// Two resident queues:
//   - small — admits first-time entries with Freq=0
//   - main  — entries promoted out of small after repeated hits
//
// A saturating per-page hit counter (Freq, 0..3) drives promotion and a
// second chance in main. Small is swept first whenever it holds more than
// a tenth of the cache-size estimate; otherwise main is swept.
package s3fifo

import "github.com/lysgoup/adaptived/policy"

// FreqMax is the saturation point of the per-page hit counter.
const FreqMax = 3

// smallDivisor bounds the small queue relative to the cache size estimate.
const smallDivisor = 10

type s3fifo struct {
	small policy.Queue
	main  policy.Queue

	cacheSize uint64
}

type factory struct{}

// New returns the S3-FIFO kernel factory.
func New() policy.Factory { return factory{} }

func (factory) ID() policy.ID { return policy.S3FIFO }

func (factory) New(h policy.Hooks) policy.Kernel {
	return &s3fifo{
		small:     h.NewQueue("s3fifo-small"),
		main:      h.NewQueue("s3fifo-main"),
		cacheSize: h.CacheSizeEstimate(),
	}
}

// OnAdd admits first-time entries into small with a zeroed hit counter.
func (p *s3fifo) OnAdd(n policy.Node, _ uint64) {
	m := n.Meta()
	m.Freq = 0
	m.InMain = false
	p.small.PushBack(n)
}

// OnAccess bumps the saturating hit counter; no reordering happens here.
func (p *s3fifo) OnAccess(n policy.Node, _ uint64) {
	m := n.Meta()
	if m.Freq < FreqMax {
		m.Freq++
	}
}

// Evict sweeps small while it is over its share of the cache, otherwise
// main.
//
// Small sweep: Freq > 1 promotes the node to main's tail (second queue
// insertion, the only cross-queue move in the engine); otherwise the node
// is nominated. Main sweep: Freq > 0 spends one credit and the node
// survives; at zero it is nominated.
func (p *s3fifo) Evict(sink policy.EvictSink) {
	if uint64(p.small.Len()) > p.cacheSize/smallDivisor {
		p.evictSmall(sink)
		return
	}
	p.evictMain(sink)
}

func (p *s3fifo) evictSmall(sink policy.EvictSink) {
	p.small.Ascend(func(n policy.Node) bool {
		m := n.Meta()
		if m.Freq > 1 {
			m.InMain = true
			p.small.Remove(n)
			p.main.PushBack(n)
			return true
		}
		return sink.Submit(n)
	})
}

func (p *s3fifo) evictMain(sink policy.EvictSink) {
	p.main.Ascend(func(n policy.Node) bool {
		m := n.Meta()
		if m.Freq > 0 {
			m.Freq--
			return true
		}
		return sink.Submit(n)
	})
}
