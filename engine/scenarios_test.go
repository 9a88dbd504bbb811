package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lysgoup/adaptived/policy"
)

// Pure LRU-friendly reuse: repeated in-order accesses over a stable set.
// The hit rate stays far above the threshold, so the controller never
// moves, and nothing that gets evicted is a one-time page.
func TestScenario_ReuseFriendly(t *testing.T) {
	t.Parallel()

	sink := NewChannelSink(8)
	e := newTestEngine(t, Options{CacheSizeEstimate: 1000, Events: sink})

	pages := make([]PageInfo, 100)
	for off := uint64(0); off < 100; off++ {
		pages[off] = page(PageID(off+1), 1, off)
		e.OnAdded(pages[off])
	}
	for round := 0; round < 4; round++ {
		for _, p := range pages {
			e.OnAccessed(p)
		}
		e.OnEvictRequest(&EvictBatch{Budget: 1})
	}

	snap := e.Snapshot()
	require.EqualValues(t, 80, snap.HitRate)
	require.Zero(t, snap.Switches)
	require.Empty(t, sink.C)

	for _, p := range pages[:10] {
		e.OnEvicted(p)
	}
	require.Zero(t, e.Snapshot().OneTimeRatio,
		"multi-accessed pages must not count as one-time")
}

// A cold scan: every page touched exactly once, the oldest fifth
// reclaimed. The one-time ratio pins at 100% and the controller abandons
// MRU for FIFO through the sequential clause.
func TestScenario_Scan(t *testing.T) {
	t.Parallel()

	sink := NewChannelSink(8)
	e := newTestEngine(t, Options{
		CacheSizeEstimate: 1,
		MinTimeInPolicy:   1,
		Events:            sink,
	})

	pages := make([]PageInfo, 5000)
	for off := uint64(0); off < 5000; off++ {
		pages[off] = page(PageID(off+1), 1, off)
		e.OnAdded(pages[off])
	}
	for _, p := range pages[:1000] {
		e.OnEvicted(p)
	}
	require.Greater(t, e.Snapshot().OneTimeRatio, uint64(95))

	require.Equal(t, policy.MRU, e.CurrentPolicy())
	e.OnEvictRequest(&EvictBatch{Budget: 1})

	require.Equal(t, policy.FIFO, e.CurrentPolicy())
	require.EqualValues(t, 1, e.Snapshot().Switches)

	ev := <-sink.C
	require.Equal(t, policy.MRU, ev.OldPolicy)
	require.Equal(t, policy.FIFO, ev.NewPolicy)
	require.EqualValues(t, 5000, ev.TotalAccesses)
	require.Less(t, ev.HitRate, uint64(30), "gate: only low hit rates may switch")
	require.GreaterOrEqual(t, ev.TotalAccesses, uint64(DefaultMinSamples),
		"gate: only sampled windows may switch")
	require.EqualValues(t, 0, e.Snapshot().TotalAccesses,
		"window must restart at 0/0 after the switch")
	require.EqualValues(t, 0, e.Snapshot().HitRate)
}

// A hot set that fits: the hit rate saturates and the policy holds.
func TestScenario_HotSet(t *testing.T) {
	t.Parallel()

	sink := NewChannelSink(8)
	e := newTestEngine(t, Options{CacheSizeEstimate: 1000, Events: sink})

	pages := make([]PageInfo, 200)
	for off := uint64(0); off < 200; off++ {
		pages[off] = page(PageID(off+1), 1, off)
		e.OnAdded(pages[off])
	}
	events := uint64(200)
	for round := 0; round < 20; round++ {
		for _, p := range pages {
			e.OnAccessed(p)
			events++
			if events%1000 == 0 {
				e.OnEvictRequest(&EvictBatch{Budget: 1})
				require.Zero(t, e.Snapshot().Switches)
			}
		}
	}

	snap := e.Snapshot()
	require.GreaterOrEqual(t, snap.HitRate, uint64(95))
	require.Zero(t, snap.Switches)
	require.Empty(t, sink.C)
}

// Oscillation guard: after one switch at clock T, no second switch can
// land before T+MinTimeInPolicy no matter what the metrics say.
func TestScenario_OscillationGuard(t *testing.T) {
	t.Parallel()

	sink := NewChannelSink(8)
	e := newTestEngine(t, Options{
		CacheSizeEstimate: 10,
		MinTimeInPolicy:   10_000,
		Events:            sink,
	})

	// Phase 1: near-pure sequential runs across eight files. At clock
	// 10000 the gate opens and the sequential clause installs FIFO.
	var id PageID
	for ino := uint64(1); ino <= 8; ino++ {
		for off := uint64(0); off < 1250; off++ {
			id++
			e.OnAdded(page(id, ino, off))
		}
	}
	e.OnEvictRequest(&EvictBatch{Budget: 1})
	require.Equal(t, policy.FIFO, e.CurrentPolicy())
	first := <-sink.C
	require.EqualValues(t, 10_000, first.Timestamp)

	// Phase 2: the workload turns into random single-shot adds with a
	// little reuse, which the cascade maps to LRU. The guard must hold
	// FIFO until clock 20000.
	reused := make([]PageInfo, 100)
	for i := uint64(0); i < 100; i++ {
		reused[i] = page(PageID(1+i), 1, i) // phase-1 pages of inode 1
	}
	windowEvents := uint64(0)
	step := func() {
		windowEvents++
		if windowEvents%1000 == 0 {
			e.OnEvictRequest(&EvictBatch{Budget: 1})
			if e.Clock() < 20_000 {
				require.EqualValues(t, 1, e.Snapshot().Switches,
					"no switch may land before MinTimeInPolicy elapses")
			}
		}
	}
	for _, p := range reused {
		e.OnAccessed(p)
		step()
		e.OnAccessed(p)
		step()
	}
	off := uint64(100_000)
	for i := 0; i < 9800; i++ {
		id++
		e.OnAdded(page(id, (uint64(i)%8)+1, off))
		off += 3
		step()
	}

	require.EqualValues(t, 20_000, e.Clock())
	require.EqualValues(t, 2, e.Snapshot().Switches)
	second := <-sink.C
	require.Equal(t, policy.FIFO, second.OldPolicy)
	require.Equal(t, policy.LRU, second.NewPolicy)
	require.EqualValues(t, 20_000, second.Timestamp)
	require.GreaterOrEqual(t, second.Timestamp-first.Timestamp, uint64(10_000))
}

// Working-set blowup: far more distinct files than the cache can hold
// drives the WS clause straight to FIFO.
func TestScenario_WorkingSetRatio(t *testing.T) {
	t.Parallel()

	sink := NewChannelSink(8)
	e := newTestEngine(t, Options{
		CacheSizeEstimate: 1000,
		MinTimeInPolicy:   1,
		Events:            sink,
	})

	for ino := uint64(1); ino <= 4000; ino++ {
		e.OnAdded(page(PageID(ino), ino, 0))
	}
	e.OnEvictRequest(&EvictBatch{Budget: 1})

	ev := <-sink.C
	require.GreaterOrEqual(t, ev.WorkingSetRatio, uint64(300))
	require.Equal(t, policy.FIFO, ev.NewPolicy)
	require.Equal(t, policy.FIFO, e.CurrentPolicy())
}

// S3-FIFO end to end: once the one-time clause installs S3-FIFO, new
// arrivals flow through the small queue, hot pages promote, cold ones
// are nominated.
func TestScenario_S3FIFOPromotion(t *testing.T) {
	t.Parallel()

	sink := NewChannelSink(8)
	e := newTestEngine(t, Options{
		CacheSizeEstimate: 1,
		MinTimeInPolicy:   1,
		Events:            sink,
	})

	// Reach S3-FIFO via the one-time clause: a strided scan, fully
	// reclaimed, followed by another.
	var id PageID
	scanned := make([]PageInfo, 0, 500)
	for off := uint64(0); off < 500; off++ {
		id++
		p := page(id, 1, off*3)
		e.OnAdded(p)
		scanned = append(scanned, p)
	}
	for _, p := range scanned {
		e.OnEvicted(p)
	}
	for off := uint64(0); off < 500; off++ {
		id++
		e.OnAdded(page(id, 2, off*3))
	}
	e.OnEvictRequest(&EvictBatch{Budget: 1})
	require.Equal(t, policy.S3FIFO, e.CurrentPolicy())

	// Ten fresh pages: p1 hit three times, p2 once, the rest never.
	fresh := make([]PageInfo, 10)
	for i := uint64(0); i < 10; i++ {
		id++
		fresh[i] = page(id, 3, i*7)
		e.OnAdded(fresh[i])
	}
	e.OnAccessed(fresh[0])
	e.OnAccessed(fresh[0])
	e.OnAccessed(fresh[0])
	e.OnAccessed(fresh[1])

	batch := &EvictBatch{Budget: 20}
	e.OnEvictRequest(batch)

	require.Len(t, batch.Victims, 9, "p2..p10 must be nominated")
	require.Equal(t, fresh[1].PageID, batch.Victims[0].ID())
	for i, v := range batch.Victims[1:] {
		require.Equal(t, fresh[i+2].PageID, v.ID())
	}

	n, ok := e.st.get(fresh[0].PageID)
	require.True(t, ok)
	require.True(t, n.meta.InMain, "p1 must be promoted to the main queue")
	require.Equal(t, uint8(3), n.meta.Freq)
}
