package cache

import "sync/atomic"

// Metrics is the plain snapshot struct spec §3/§8 require for Cache
// State: relaxed atomic counters, cheap to read on every call without
// taking the Cache's locks. internal/vmmetrics wraps this same struct as
// Prometheus collectors rather than replacing it.
type Metrics struct {
	HitsPinned atomic.Uint64
	HitsMemory atomic.Uint64
	HitsFS     atomic.Uint64
	Misses     atomic.Uint64
}

// MetricsSnapshot is a point-in-time, non-atomic copy of Metrics safe to
// hand to a caller or encode as JSON.
type MetricsSnapshot struct {
	HitsPinned uint64
	HitsMemory uint64
	HitsFS     uint64
	Misses     uint64
}

// Snapshot reads all counters into a plain struct.
func (c *Cache) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		HitsPinned: c.metrics.HitsPinned.Load(),
		HitsMemory: c.metrics.HitsMemory.Load(),
		HitsFS:     c.metrics.HitsFS.Load(),
		Misses:     c.metrics.Misses.Load(),
	}
}
