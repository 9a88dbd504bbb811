// Command adaptivebench runs a synthetic page lifecycle workload against
// the eviction engine and exposes optional pprof/Prometheus endpoints.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lysgoup/adaptived/engine"
	pmet "github.com/lysgoup/adaptived/metrics/prom"
)

func main() {
	// ---- Flags ----
	var (
		cacheSize = flag.Uint64("cache_size", 100_000, "cache size estimate (pages)")
		pages     = flag.Uint64("pages", 1_000_000, "page space size")
		files     = flag.Uint64("files", 256, "file (inode) count")
		duration  = flag.Duration("duration", 10*time.Second, "benchmark duration")
		evictEach = flag.Int("evict_each", 64, "lifecycle events between eviction requests")
		budget    = flag.Int("budget", 32, "victim budget per eviction request")
		zipfS     = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV     = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		dirtyPct  = flag.Int("dirty", 10, "percentage of pages written to [0..100]")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "adaptived", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Build engine ----
	eng, err := engine.New(engine.Options{
		CacheSizeEstimate: *cacheSize,
		Metrics:           metrics,
	})
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	defer eng.Close()

	// ---- Workload ----
	// Zipf-distributed page popularity over a synthetic file layout:
	// page p lives at (inode p / pagesPerFile, offset p % pagesPerFile).
	r := rand.New(rand.NewSource(*seed))
	zipf := rand.NewZipf(r, *zipfS, *zipfV, *pages-1)
	pagesPerFile := *pages / *files
	if pagesPerFile == 0 {
		pagesPerFile = 1
	}

	live := make(map[uint64]engine.PageInfo, *cacheSize)
	var nextID engine.PageID
	var events uint64

	deadline := time.Now().Add(*duration)
	for time.Now().Before(deadline) {
		for i := 0; i < 4096; i++ {
			p := zipf.Uint64()
			if pg, ok := live[p]; ok {
				eng.OnAccessed(pg)
			} else {
				nextID++
				pg := engine.PageInfo{
					PageID:     nextID,
					Ino:        p / pagesPerFile,
					Off:        p % pagesPerFile,
					IsUptodate: true,
					IsRecent:   true,
					IsDirty:    r.Intn(100) < *dirtyPct,
				}
				live[p] = pg
				eng.OnAdded(pg)
			}
			events++
			if events%uint64(*evictEach) == 0 && uint64(len(live)) > *cacheSize {
				batch := &engine.EvictBatch{Budget: *budget}
				eng.OnEvictRequest(batch)
				for _, v := range batch.Victims {
					eng.OnEvicted(v)
					delete(live, v.Inode()*pagesPerFile+v.Offset())
				}
			}
		}
	}

	// ---- Report ----
	snap := eng.Snapshot()
	fmt.Printf("events:        %d\n", events)
	fmt.Printf("resident:      %d\n", snap.ResidentPages)
	fmt.Printf("hit rate:      %d%%\n", snap.HitRate)
	fmt.Printf("one-time:      %d%%\n", snap.OneTimeRatio)
	fmt.Printf("sequential:    %d%%\n", snap.SequentialRatio)
	fmt.Printf("avg hits/page: %d\n", snap.AvgHitsPerPage)
	fmt.Printf("switches:      %d (final policy %s)\n", snap.Switches, snap.Policy)
}
