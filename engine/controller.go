package engine

import "github.com/lysgoup/adaptived/policy"

// Selection-cascade thresholds. The cascade is an ordered list of
// workload signatures; the first matching clause wins, which together
// with the gate is the engine's only oscillation protection.
const (
	wsRatioScanBound    = 300 // working set far exceeds the cache
	wsRatioResidentMax  = 60  // working set comfortably fits
	seqRatioBound       = 80
	oneTimeRatioBound   = 60
	scanAvgHitsBound    = 2
	hotAvgHitsBound     = 5
	hotOneTimeRatioMax  = 30
	reuseDistanceBound  = 50000
	wsRatioBalancedLow  = 100
	wsRatioBalancedHigh = 200
)

// maybeSwitch is the controller tick. It runs on the eviction hook at
// sampled moments only (total_accesses divisible by CheckInterval), then
// applies the gate, the selection cascade, and, if the winner differs
// from the reigning policy, the switch commit.
func (e *Engine) maybeSwitch() {
	total := e.stats.totalAccesses.Load()
	if total%e.opt.CheckInterval != 0 {
		return
	}

	// Gate: enough samples, enough time in the saddle, and the current
	// window actually underperforming.
	if total < e.opt.MinSamples {
		return
	}
	now := e.clock.Load()
	if now-e.lastSwitch.Load() < e.opt.MinTimeInPolicy {
		return
	}
	hitRate := e.stats.windowHitRate()
	if hitRate >= e.opt.HitRateThreshold {
		return
	}

	cur := e.currentID()
	target := e.decideBestPolicy()
	if target == cur {
		// Selecting the reigning policy is not a switch: no event,
		// and the window keeps accumulating.
		return
	}
	e.commitSwitch(cur, target, now, hitRate, total)
}

// decideBestPolicy evaluates the ordered cascade against current workload
// characteristics. Clauses for unsupported policies degrade to their
// closest supported neighbor.
func (e *Engine) decideBestPolicy() policy.ID {
	var (
		ws      = e.workingSetRatio()
		seq     = e.stats.sequentialRatio()
		oneTime = e.stats.oneTimeRatio()
		avgHits = e.stats.avgHitsPerPage()
		reuse   = e.stats.avgReuseDistance()
	)

	switch {
	case ws > wsRatioScanBound:
		// Working set dwarfs the cache: recency is noise.
		return policy.FIFO
	case ws < wsRatioResidentMax:
		return policy.MRU
	case seq > seqRatioBound:
		return policy.FIFO
	case oneTime > oneTimeRatioBound && avgHits < scanAvgHitsBound:
		if e.kernels[policy.S3FIFO] != nil {
			return policy.S3FIFO
		}
		return policy.FIFO
	case avgHits > hotAvgHitsBound && oneTime < hotOneTimeRatioMax:
		return policy.MRU
	case reuse > 0 && reuse < reuseDistanceBound:
		return policy.LRU
	case ws >= wsRatioBalancedLow && ws <= wsRatioBalancedHigh:
		if e.kernels[policy.LHD] != nil {
			return policy.LHD
		}
		return policy.LRU
	default:
		return e.stats.bestHistorical(e.supported)
	}
}

// commitSwitch emits the event with the closing window's metric snapshot,
// installs the new policy, and opens a fresh window.
func (e *Engine) commitSwitch(old, next policy.ID, now, hitRate, total uint64) {
	ev := SwitchEvent{
		OldPolicy:        old,
		NewPolicy:        next,
		Timestamp:        now,
		HitRate:          hitRate,
		TotalAccesses:    total,
		OneTimeRatio:     e.stats.oneTimeRatio(),
		SequentialRatio:  e.stats.sequentialRatio(),
		AvgHitsPerPage:   e.stats.avgHitsPerPage(),
		AvgReuseDistance: e.stats.avgReuseDistance(),
		DirtyRatio:       e.stats.dirtyRatio(),
		OldPolicyHitRate: e.stats.policyHitRate(old),
		WorkingSetSize:   uint64(e.ws.size()),
		WorkingSetRatio:  e.workingSetRatio(),
	}
	if !e.opt.Events.Emit(ev) {
		e.debug.emitterDrops.Add(1)
	}
	e.opt.Metrics.Switch(old, next)
	e.log.Info().
		Stringer("old", old).
		Stringer("new", next).
		Uint64("clock", now).
		Uint64("hit_rate", hitRate).
		Uint64("window_accesses", total).
		Msg("policy switch")

	e.current.Store(uint32(next))
	e.stats.perPolicy[next].timeStarted.Store(now)
	e.lastSwitch.Store(now)
	e.switches.Add(1)
	e.stats.resetWindow()
}

// workingSetRatio is the working-set estimate as a percentage of the
// cache size estimate.
func (e *Engine) workingSetRatio() uint64 {
	return pct(uint64(e.ws.size()), e.opt.CacheSizeEstimate)
}
