package engine

import (
	"sync/atomic"

	"github.com/lysgoup/adaptived/internal/util"
	"github.com/lysgoup/adaptived/policy"
)

// stats is the workload-metric accumulator. Counters are written with
// atomic read-modify-write: the host serializes hooks per cgroup, but the
// general host model allows delivery from different CPUs, so plain
// arithmetic would be a data race there.
//
// Window counters reset on every policy switch; per-page aggregates and
// per-policy tallies persist across windows.
type stats struct {
	// ---- window (hot path, padded against false sharing) ----
	totalAccesses util.PaddedAtomicUint64
	cacheHits     util.PaddedAtomicUint64
	cacheMisses   util.PaddedAtomicUint64

	// ---- persistent per-page aggregates ----
	oneTimeAccesses    atomic.Uint64
	multiAccesses      atomic.Uint64
	totalHitsSum       atomic.Uint64 // access counts of evicted pages
	pagesEvicted       atomic.Uint64
	reuseDistanceSum   atomic.Uint64
	reuseDistanceCount atomic.Uint64
	totalLifetimeSum   atomic.Uint64 // eviction clock - added clock
	totalIdleTimeSum   atomic.Uint64 // eviction clock - last access clock
	dirtyEvictions     atomic.Uint64
	totalEvictions     atomic.Uint64

	// ---- access-pattern detection ----
	seqAccesses  atomic.Uint64
	randAccesses atomic.Uint64
	lastInode    atomic.Uint64
	lastOffset   atomic.Uint64

	perPolicy [policy.NumPolicies]policyStats
}

// policyStats tracks one policy's lifetime performance for the selection
// fallback (historical best) and the observer's old-policy hit rate.
type policyStats struct {
	hits        atomic.Uint64
	misses      atomic.Uint64
	evictions   atomic.Uint64
	timeStarted atomic.Uint64 // clock at the start of its latest reign
}

// debugStats counts invariant breaches and capacity drops. Reference
// behavior is to ignore these silently; the counters exist so operators
// can tell a quiet engine from a misdriven one.
type debugStats struct {
	duplicateAdds  atomic.Uint64 // added for an id already tracked
	untrackedAdds  atomic.Uint64 // metadata store at capacity
	missingMeta    atomic.Uint64 // accessed for an unknown in-scope id
	strayEvictions atomic.Uint64 // evicted for an unknown id
	emitterDrops   atomic.Uint64 // switch events dropped by the sink
}

// recordPattern classifies one admission as sequential or random based on
// adjacency to the previously admitted (inode, offset).
func (s *stats) recordPattern(inode, offset uint64) {
	if inode == s.lastInode.Load() && offset == s.lastOffset.Load()+1 {
		s.seqAccesses.Add(1)
	} else {
		s.randAccesses.Add(1)
	}
	s.lastInode.Store(inode)
	s.lastOffset.Store(offset)
}

// resetWindow zeroes the window-local counters at a switch commit.
func (s *stats) resetWindow() {
	s.totalAccesses.Store(0)
	s.cacheHits.Store(0)
	s.cacheMisses.Store(0)
}

// pct computes 100*n/d as an integer percent, 0 when d is 0. The result
// is not capped at 100.
func pct(n, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	return 100 * n / d
}

// ratio computes n/d, 0 when d is 0.
func ratio(n, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	return n / d
}

// windowHitRate is the current window's hit percentage.
func (s *stats) windowHitRate() uint64 {
	return pct(s.cacheHits.Load(), s.totalAccesses.Load())
}

func (s *stats) oneTimeRatio() uint64 {
	one := s.oneTimeAccesses.Load()
	return pct(one, one+s.multiAccesses.Load())
}

func (s *stats) sequentialRatio() uint64 {
	seq := s.seqAccesses.Load()
	return pct(seq, seq+s.randAccesses.Load())
}

func (s *stats) avgHitsPerPage() uint64 {
	return ratio(s.totalHitsSum.Load(), s.pagesEvicted.Load())
}

func (s *stats) avgReuseDistance() uint64 {
	return ratio(s.reuseDistanceSum.Load(), s.reuseDistanceCount.Load())
}

func (s *stats) dirtyRatio() uint64 {
	return pct(s.dirtyEvictions.Load(), s.totalEvictions.Load())
}

func (s *stats) policyHitRate(id policy.ID) uint64 {
	ps := &s.perPolicy[id]
	h := ps.hits.Load()
	return pct(h, h+ps.misses.Load())
}

// bestHistorical returns the policy with the highest lifetime hit rate
// among the supported set; ties keep the lowest ID, untried policies
// score zero.
func (s *stats) bestHistorical(supported []policy.ID) policy.ID {
	best := supported[0]
	bestRate := uint64(0)
	for _, id := range supported {
		if r := s.policyHitRate(id); r > bestRate {
			best, bestRate = id, r
		}
	}
	return best
}

// StatsSnapshot is a point-in-time view of the derived metrics.
type StatsSnapshot struct {
	Policy policy.ID
	Clock  uint64

	TotalAccesses uint64
	CacheHits     uint64
	CacheMisses   uint64

	HitRate          uint64 // percent, current window
	OneTimeRatio     uint64 // percent
	SequentialRatio  uint64 // percent
	AvgHitsPerPage   uint64
	AvgReuseDistance uint64
	DirtyRatio       uint64 // percent

	PolicyHitRate [policy.NumPolicies]uint64 // percent, lifetime

	WorkingSetSize  uint64 // distinct inodes currently tracked
	WorkingSetRatio uint64 // percent of cache size estimate

	ResidentPages uint64
	Switches      uint64

	Debug DebugSnapshot
}

// DebugSnapshot mirrors debugStats for external consumption.
type DebugSnapshot struct {
	DuplicateAdds  uint64
	UntrackedAdds  uint64
	MissingMeta    uint64
	StrayEvictions uint64
	EmitterDrops   uint64
}
