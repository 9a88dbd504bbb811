// Package engine implements an adaptive page-cache eviction engine for a
// memory-cgroup-scoped set of file-backed pages.
//
// Given a stream of page lifecycle events (added, accessed, evicted) and a
// periodic demand for eviction victims, the engine decides which pages to
// discard to maximize the hit rate on the working set. It does not commit
// to a single replacement policy: it runs one of several (MRU, FIFO, LRU,
// S3-FIFO and a simplified hit-density policy), continuously measures
// workload characteristics, and switches policy when the current one
// underperforms.
//
// # Design
//
//   - Metadata: a bounded, sharded map from PageID to per-page metadata.
//     The metadata entry and the policy queue node are one allocation, so
//     "exactly one node per tracked page" holds by construction.
//
//   - Queues: intrusive doubly linked lists owned by policy kernels and
//     registered with the engine. Kernels manipulate them through the
//     policy.Queue interface; the engine detaches nodes on eviction.
//
//   - Kernels: each policy is a triple of rules (on-add placement,
//     on-access reordering, eviction walk) in its own package under
//     policy/. Kernels are bound once at engine construction.
//
//   - Metrics: a running accumulator of workload counters (hit rate,
//     one-time ratio, sequential ratio, reuse distance, dirty ratio,
//     per-policy tallies, working-set estimate). Counters are atomic;
//     derived percentages are computed on demand.
//
//   - Controller: on the eviction hook, at sampled moments, a gated
//     cascade picks the policy best matching the measured workload and
//     commits a switch, emitting a binary event record to the configured
//     sink and resetting the measurement window.
//
// Time is a logical clock: one tick per added or accessed event. The
// engine performs no I/O and never blocks after construction; hooks for
// one cgroup must be delivered serially.
//
// # Basic usage
//
//	sink := engine.NewChannelSink(64)
//	eng, err := engine.New(engine.Options{
//	    CacheSizeEstimate: 1 << 16,
//	    Events:            sink,
//	})
//	if err != nil {
//	    // init is the only fallible step
//	}
//	eng.OnAdded(p)          // host lifecycle hooks
//	eng.OnAccessed(p)
//	batch := &engine.EvictBatch{Budget: 32}
//	eng.OnEvictRequest(batch)
//	for _, v := range batch.Victims {
//	    eng.OnEvicted(v)    // after the host reclaims each victim
//	}
package engine
