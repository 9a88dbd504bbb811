package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/lysgoup/adaptived/internal/util"
	"github.com/lysgoup/adaptived/policy"
	"github.com/lysgoup/adaptived/policy/fifo"
	"github.com/lysgoup/adaptived/policy/lhd"
	"github.com/lysgoup/adaptived/policy/lru"
	"github.com/lysgoup/adaptived/policy/mru"
	"github.com/lysgoup/adaptived/policy/s3fifo"
)

// Engine is an adaptive page-cache eviction engine scoped to one cgroup.
// It runs one replacement policy at a time, measures the workload, and
// switches policy when the current one underperforms.
//
// Hook delivery for a given cgroup is serialized by the host, so the
// engine's list and map state needs no locking. Metric counters use
// atomics because the general host model allows hooks on different CPUs.
type Engine struct {
	opt Options
	log zerolog.Logger

	// clock is the logical time source: one tick per added or accessed
	// event. All ages are differences of this counter.
	clock util.PaddedAtomicUint64

	st    *store
	reg   registry
	ws    *workingSet
	stats stats
	debug debugStats

	// kernels is indexed by policy.ID; nil entries are disabled.
	kernels   [policy.NumPolicies]policy.Kernel
	supported []policy.ID

	current    atomic.Uint32 // policy.ID of the reigning policy
	lastSwitch atomic.Uint64 // clock at the most recent switch commit
	switches   atomic.Uint64

	closed atomic.Bool
}

// New builds an engine and allocates every enabled kernel's queues.
// This is the only suspension point; all later hooks are non-blocking.
// Failure leaves nothing attached: the returned engine is nil.
func New(opt Options) (*Engine, error) {
	opt = opt.withDefaults()
	e := &Engine{
		opt: opt,
		log: *opt.Logger,
		st:  newStore(opt.MetadataCapacity, opt.StoreShards),
	}

	ws, err := newWorkingSet(opt.WorkingSetCapacity)
	if err != nil {
		return nil, fmt.Errorf("engine: working set: %w", err)
	}
	e.ws = ws

	factories := []policy.Factory{mru.New(), fifo.New(), lru.New()}
	if !opt.DisableS3FIFO {
		factories = append(factories, s3fifo.New())
	}
	if !opt.DisableLHD {
		factories = append(factories, lhd.New())
	}
	h := engineHooks{e: e}
	for _, f := range factories {
		id := f.ID()
		e.kernels[id] = f.New(h)
		e.supported = append(e.supported, id)
	}

	e.current.Store(uint32(policy.MRU))
	e.log.Debug().
		Uint64("cache_size_estimate", opt.CacheSizeEstimate).
		Int("metadata_capacity", opt.MetadataCapacity).
		Int("queues", len(e.reg.queues)).
		Msg("engine initialized")
	return e, nil
}

// engineHooks binds kernels to this engine's queue registry.
type engineHooks struct{ e *Engine }

func (h engineHooks) NewQueue(name string) policy.Queue { return h.e.reg.newQueue(name) }
func (h engineHooks) CacheSizeEstimate() uint64         { return h.e.opt.CacheSizeEstimate }

// currentID is the reigning policy.
func (e *Engine) currentID() policy.ID {
	return policy.ID(e.current.Load())
}

// CurrentPolicy reports the reigning policy.
func (e *Engine) CurrentPolicy() policy.ID { return e.currentID() }

// Clock reports the logical clock.
func (e *Engine) Clock() uint64 { return e.clock.Load() }

// tick advances the logical clock by one event and returns the new value.
func (e *Engine) tick() uint64 { return e.clock.Add(1) }

func (e *Engine) inScope(inode uint64) bool {
	return e.opt.Watch == nil || e.opt.Watch.Contains(inode)
}

// OnAdded handles admission of a page into the cache. Out-of-scope pages
// are ignored entirely. A duplicate admission for a tracked id is a host
// bug; the entry is re-admitted in place, keeping its access count.
func (e *Engine) OnAdded(p Page) {
	if e.closed.Load() || !e.inScope(p.Inode()) {
		return
	}
	now := e.tick()
	cur := e.currentID()

	e.stats.recordPattern(p.Inode(), p.Offset())
	e.ws.observe(p.Inode())

	if n, ok := e.st.get(p.ID()); ok {
		e.debug.duplicateAdds.Add(1)
		e.readmit(n, p, now, cur)
	} else {
		n := &node{
			page:     p,
			meta:     policy.Meta{AddedAt: now, LastAccessAt: now},
			assigned: cur,
		}
		if e.st.put(p.ID(), n) {
			e.kernels[cur].OnAdd(n, now)
		} else {
			e.debug.untrackedAdds.Add(1)
		}
	}

	e.stats.cacheMisses.Add(1)
	e.stats.totalAccesses.Add(1)
	e.stats.perPolicy[cur].misses.Add(1)
	e.opt.Metrics.Miss()
	e.opt.Metrics.Size(e.st.len())
}

// readmit overwrites a duplicate admission in place: every metadata field
// resets except the access count, and the node re-enters the reigning
// kernel's queue.
func (e *Engine) readmit(n *node, p Page, now uint64, cur policy.ID) {
	if n.owner != nil {
		n.owner.unlink(n)
	}
	kept := n.meta.AccessCount
	n.page = p
	n.meta = policy.Meta{AddedAt: now, LastAccessAt: now, AccessCount: kept}
	n.assigned = cur
	e.kernels[cur].OnAdd(n, now)
}

// OnAccessed handles a hit on a tracked page. Accesses for unknown ids
// (reordered hooks, untracked pages) are dropped at the metadata lookup.
func (e *Engine) OnAccessed(p Page) {
	if e.closed.Load() || !e.inScope(p.Inode()) {
		return
	}
	n, ok := e.st.get(p.ID())
	if !ok {
		e.debug.missingMeta.Add(1)
		return
	}
	now := e.tick()
	cur := e.currentID()

	e.ws.observe(p.Inode())

	// Reuse distance must read the previous access time, so it runs
	// before the stamp below. Kernels get the same pre-stamp view.
	if n.meta.AccessCount > 0 {
		e.stats.reuseDistanceSum.Add(now - n.meta.LastAccessAt)
		e.stats.reuseDistanceCount.Add(1)
	}
	n.meta.AccessCount++
	e.kernels[cur].OnAccess(n, now)
	n.meta.LastAccessAt = now

	e.stats.cacheHits.Add(1)
	e.stats.totalAccesses.Add(1)
	e.stats.perPolicy[cur].hits.Add(1)
	e.opt.Metrics.Hit()
}

// OnEvicted handles removal of a page from the cache: per-page aggregates
// roll into the persistent tallies, the queue node is detached, and the
// metadata entry is destroyed. There is no revival path.
func (e *Engine) OnEvicted(p Page) {
	if e.closed.Load() || !e.inScope(p.Inode()) {
		return
	}
	n, ok := e.st.remove(p.ID())
	if !ok {
		e.debug.strayEvictions.Add(1)
		return
	}
	now := e.clock.Load()

	if n.meta.AccessCount <= 1 {
		e.stats.oneTimeAccesses.Add(1)
	} else {
		e.stats.multiAccesses.Add(1)
	}
	e.stats.totalHitsSum.Add(n.meta.AccessCount)
	e.stats.pagesEvicted.Add(1)
	e.stats.totalLifetimeSum.Add(now - n.meta.AddedAt)
	e.stats.totalIdleTimeSum.Add(now - n.meta.LastAccessAt)
	dirty := p.Dirty()
	if dirty {
		e.stats.dirtyEvictions.Add(1)
	}
	e.stats.totalEvictions.Add(1)
	e.stats.perPolicy[n.assigned].evictions.Add(1)

	if n.owner != nil {
		n.owner.unlink(n)
	}

	e.opt.Metrics.Evict(dirty)
	e.opt.Metrics.Size(e.st.len())
}

// OnEvictRequest services the host's demand for eviction victims: a
// controller tick at sampled moments, then the reigning kernel's walk.
// Victims are nominated into ctx; they stay resident until the host
// delivers OnEvicted for each.
func (e *Engine) OnEvictRequest(ctx EvictContext) {
	if e.closed.Load() {
		return
	}
	e.maybeSwitch()
	e.kernels[e.currentID()].Evict(evictSink{ctx: ctx})
}

// evictSink adapts the host eviction context to the kernel sink.
type evictSink struct{ ctx EvictContext }

func (s evictSink) Submit(n policy.Node) bool {
	return s.ctx.Submit(n.(*node).page)
}

// Snapshot assembles the derived metrics view on demand.
func (e *Engine) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Policy: e.currentID(),
		Clock:  e.clock.Load(),

		TotalAccesses: e.stats.totalAccesses.Load(),
		CacheHits:     e.stats.cacheHits.Load(),
		CacheMisses:   e.stats.cacheMisses.Load(),

		HitRate:          e.stats.windowHitRate(),
		OneTimeRatio:     e.stats.oneTimeRatio(),
		SequentialRatio:  e.stats.sequentialRatio(),
		AvgHitsPerPage:   e.stats.avgHitsPerPage(),
		AvgReuseDistance: e.stats.avgReuseDistance(),
		DirtyRatio:       e.stats.dirtyRatio(),

		WorkingSetSize:  uint64(e.ws.size()),
		WorkingSetRatio: e.workingSetRatio(),

		ResidentPages: uint64(e.st.len()),
		Switches:      e.switches.Load(),

		Debug: DebugSnapshot{
			DuplicateAdds:  e.debug.duplicateAdds.Load(),
			UntrackedAdds:  e.debug.untrackedAdds.Load(),
			MissingMeta:    e.debug.missingMeta.Load(),
			StrayEvictions: e.debug.strayEvictions.Load(),
			EmitterDrops:   e.debug.emitterDrops.Load(),
		},
	}
	for id := range snap.PolicyHitRate {
		snap.PolicyHitRate[id] = e.stats.policyHitRate(policy.ID(id))
	}
	return snap
}

// residents returns the total queue population; it must equal the store
// size at every observation point.
func (e *Engine) residents() int { return e.reg.residents() }

// Close marks the engine closed. Subsequent hooks are no-ops.
func (e *Engine) Close() error {
	e.closed.Store(true)
	return nil
}
