// Package vmmetrics wraps internal/cache's plain MetricsSnapshot struct as
// Prometheus collectors (spec §4.8): MetricsSnapshot stays the plain
// snapshot surface and these collectors are an additional one. It is grounded on the teacher's pkg/monitoring, generalized
// from that package's hand-rolled "# HELP/# TYPE" text emitter to a real
// prometheus.Collector registered against github.com/prometheus/client_golang,
// the ecosystem way the rest of the pack reaches for when a component
// already exposes a metrics surface.
package vmmetrics

import (
	"github.com/empower1/wasmvm/internal/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// CacheCollector adapts a *cache.Cache's Snapshot() into four Prometheus
// counters, computed on each scrape rather than pushed on every hit/miss, so
// registering it never adds latency to the hot cache path.
type CacheCollector struct {
	cache *cache.Cache

	hitsPinned *prometheus.Desc
	hitsMemory *prometheus.Desc
	hitsFS     *prometheus.Desc
	misses     *prometheus.Desc
}

// NewCacheCollector returns a collector over c. Callers register it with a
// prometheus.Registerer at process startup; cmd/wasmvmd does not register
// one.
func NewCacheCollector(c *cache.Cache) *CacheCollector {
	return &CacheCollector{
		cache: c,
		hitsPinned: prometheus.NewDesc(
			"wasmvm_cache_hits_pinned_total",
			"Compiled module lookups served from the pinned tier.",
			nil, nil,
		),
		hitsMemory: prometheus.NewDesc(
			"wasmvm_cache_hits_memory_total",
			"Compiled module lookups served from the in-memory LRU tier.",
			nil, nil,
		),
		hitsFS: prometheus.NewDesc(
			"wasmvm_cache_hits_fs_total",
			"Compiled module lookups served from the on-disk tier.",
			nil, nil,
		),
		misses: prometheus.NewDesc(
			"wasmvm_cache_misses_total",
			"Compiled module lookups that fell through to NoSuchContract.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hitsPinned
	ch <- c.hitsMemory
	ch <- c.hitsFS
	ch <- c.misses
}

// Collect implements prometheus.Collector.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.cache.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.hitsPinned, prometheus.CounterValue, float64(snap.HitsPinned))
	ch <- prometheus.MustNewConstMetric(c.hitsMemory, prometheus.CounterValue, float64(snap.HitsMemory))
	ch <- prometheus.MustNewConstMetric(c.hitsFS, prometheus.CounterValue, float64(snap.HitsFS))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(snap.Misses))
}
