// Package prom exports engine metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lysgoup/adaptived/engine"
	"github.com/lysgoup/adaptived/policy"
)

// Adapter implements engine.Metrics and exports Prometheus counters and
// gauges. Safe for concurrent use; all Prometheus metric types are
// goroutine-safe.
type Adapter struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	evicts   *prometheus.CounterVec
	switches *prometheus.CounterVec
	resident prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Page cache hits on tracked pages",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Page admissions (misses) on tracked pages",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Evicted tracked pages by writeback state",
				ConstLabels: constLabels,
			},
			[]string{"state"},
		),
		switches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "policy_switches_total",
				Help:        "Adaptive policy switches by transition",
				ConstLabels: constLabels,
			},
			[]string{"from", "to"},
		),
		resident: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "resident_pages",
			Help:        "Number of tracked resident pages",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.switches, a.resident)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter, labeled clean or dirty.
func (a *Adapter) Evict(dirty bool) {
	state := "clean"
	if dirty {
		state = "dirty"
	}
	a.evicts.WithLabelValues(state).Inc()
}

// Switch increments the transition counter for old -> new.
func (a *Adapter) Switch(old, new policy.ID) {
	a.switches.WithLabelValues(old.String(), new.String()).Inc()
}

// Size updates the resident-pages gauge.
func (a *Adapter) Size(pages int) {
	a.resident.Set(float64(pages))
}

// Compile-time check: ensure Adapter implements engine.Metrics.
var _ engine.Metrics = (*Adapter)(nil)
