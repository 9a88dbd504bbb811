package engine

import "github.com/lysgoup/adaptived/policy"

// Metrics exposes engine-level observability hooks. A NoopMetrics
// implementation is provided and used by default; a Prometheus adapter
// lives in metrics/prom.
type Metrics interface {
	Hit()
	Miss()
	Evict(dirty bool)
	Switch(old, new policy.ID)
	Size(pages int)
}

// NoopMetrics is a Metrics implementation that does nothing.
type NoopMetrics struct{}

// Hit records a cache hit. NoopMetrics ignores the call.
func (NoopMetrics) Hit() {}

// Miss records a cache miss. NoopMetrics ignores the call.
func (NoopMetrics) Miss() {}

// Evict records one evicted page. NoopMetrics ignores the call.
func (NoopMetrics) Evict(bool) {}

// Switch records a policy switch. NoopMetrics ignores the call.
func (NoopMetrics) Switch(policy.ID, policy.ID) {}

// Size reports the resident page count. NoopMetrics ignores the call.
func (NoopMetrics) Size(int) {}
