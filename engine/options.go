package engine

import (
	"github.com/rs/zerolog"
)

// Reference tuning constants, matching the values the controller was
// validated with.
const (
	DefaultCheckInterval    = 1000
	DefaultMinSamples       = 1000
	DefaultMinTimeInPolicy  = 10000
	DefaultHitRateThreshold = 30

	DefaultCacheSizeEstimate = 4096
	DefaultMetadataCapacity  = 4_000_000
)

// WatchFilter decides which pages are in scope. Pages whose owning inode
// is rejected are ignored by every hook.
type WatchFilter interface {
	Contains(inode uint64) bool
}

// Options configures an Engine. Zero values are safe; reference defaults
// are applied in New:
//   - nil Events  => events are discarded
//   - nil Metrics => NoopMetrics
//   - nil Watch   => every page is in scope
//   - nil Logger  => logging disabled
type Options struct {
	// CacheSizeEstimate is the host's page-count estimate for the
	// cgroup. It scales the S3-FIFO small-queue threshold and the
	// working-set ratio.
	CacheSizeEstimate uint64

	// MetadataCapacity bounds the per-page metadata store.
	MetadataCapacity int

	// WorkingSetCapacity bounds the recently-observed-inode set.
	// Defaults to 4x CacheSizeEstimate.
	WorkingSetCapacity int

	// StoreShards splits the metadata map; 0 picks a default.
	StoreShards int

	// Controller tuning. Zero selects the reference value.
	CheckInterval    uint64 // accesses between controller ticks
	MinSamples       uint64 // window accesses required before a switch
	MinTimeInPolicy  uint64 // ticks a policy must reign before a switch
	HitRateThreshold uint64 // percent; below this a switch is considered

	// DisableS3FIFO and DisableLHD shrink the supported policy set; the
	// selection cascade then degrades those clauses to FIFO and LRU.
	DisableS3FIFO bool
	DisableLHD    bool

	// Watch filters pages by owning inode; nil admits everything.
	Watch WatchFilter

	// Events receives policy-switch records; nil discards them.
	Events Sink

	// Metrics receives hit/miss/evict/switch/size signals.
	Metrics Metrics

	// Logger for init and switch commits; hooks never log. Nil disables.
	Logger *zerolog.Logger
}

// withDefaults returns a copy with reference defaults applied.
func (o Options) withDefaults() Options {
	if o.CacheSizeEstimate == 0 {
		o.CacheSizeEstimate = DefaultCacheSizeEstimate
	}
	if o.MetadataCapacity <= 0 {
		o.MetadataCapacity = DefaultMetadataCapacity
	}
	if o.WorkingSetCapacity <= 0 {
		o.WorkingSetCapacity = int(4 * o.CacheSizeEstimate)
	}
	if o.CheckInterval == 0 {
		o.CheckInterval = DefaultCheckInterval
	}
	if o.MinSamples == 0 {
		o.MinSamples = DefaultMinSamples
	}
	if o.MinTimeInPolicy == 0 {
		o.MinTimeInPolicy = DefaultMinTimeInPolicy
	}
	if o.HitRateThreshold == 0 {
		o.HitRateThreshold = DefaultHitRateThreshold
	}
	if o.Events == nil {
		o.Events = NopSink{}
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}
