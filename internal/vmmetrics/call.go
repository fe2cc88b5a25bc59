package vmmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CallMetrics tracks the outcome and gas cost of every Call dispatch (spec
// §4.7). Unlike CacheCollector, these are counters/histograms updated
// inline by whoever calls Observe rather than computed lazily on scrape,
// since a call's outcome is only known once. Nothing in this module
// constructs a CallMetrics; cmd/wasmvmd does not record call metrics.
type CallMetrics struct {
	Calls    *prometheus.CounterVec
	GasUsed  prometheus.Histogram
	Duration prometheus.Histogram
}

// NewCallMetrics constructs and registers call-dispatch collectors against
// reg. Pass prometheus.DefaultRegisterer to wire into the default registry.
func NewCallMetrics(reg prometheus.Registerer) *CallMetrics {
	factory := promauto.With(reg)
	return &CallMetrics{
		Calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wasmvm_calls_total",
			Help: "Contract entry point dispatches by entry point and outcome.",
		}, []string{"entry_point", "outcome"}),
		GasUsed: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wasmvm_call_gas_used",
			Help:    "Gas consumed per dispatched call.",
			Buckets: prometheus.ExponentialBuckets(1_000, 4, 12),
		}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wasmvm_call_duration_seconds",
			Help:    "Wall-clock duration of a dispatched call, instantiation through disposal.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Observe records a single Call's outcome. outcome is expected to be one of
// "ok", "out_of_gas", "trap", "backend", "user", or "contract" (spec §7's
// ErrorKind taxonomy plus the success case).
func (m *CallMetrics) Observe(entryPoint, outcome string, gasUsed uint64, seconds float64) {
	m.Calls.WithLabelValues(entryPoint, outcome).Inc()
	m.GasUsed.Observe(float64(gasUsed))
	m.Duration.Observe(seconds)
}
