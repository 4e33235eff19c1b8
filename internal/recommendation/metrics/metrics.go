package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the evaluation pipeline.
type Metrics struct {
	// Evaluation outcomes by path: cache, store, fresh
	EvaluationOutcome *prometheus.CounterVec

	// Result cache hits/misses by entry kind: set, record
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Cache invalidations triggered by attribute changes
	Invalidations prometheus.Counter

	// Publish failures (swallowed, so metrics are the only surfacing)
	PublishFailures prometheus.Counter

	// Overall evaluation latency
	EvaluateLatency prometheus.Histogram
}

// New creates a Metrics instance with all pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		EvaluationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carepath_evaluations_total",
			Help: "Total evaluations by serving path",
		}, []string{"path"}), // path: "cache", "store", "fresh"

		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carepath_result_cache_hits_total",
			Help: "Result cache hits by entry kind",
		}, []string{"kind"}), // kind: "set", "record"

		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carepath_result_cache_misses_total",
			Help: "Result cache misses by entry kind",
		}, []string{"kind"}),

		Invalidations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carepath_cache_invalidations_total",
			Help: "Set-cache invalidations triggered by patient attribute changes",
		}),

		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carepath_event_publish_failures_total",
			Help: "Recommendation event publish failures (best-effort channel)",
		}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "carepath_evaluate_duration_seconds",
			Help:    "Duration of full evaluations including store and cache access",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementOutcome records which path served an evaluation.
func (m *Metrics) IncrementOutcome(path string) {
	if m != nil {
		m.EvaluationOutcome.WithLabelValues(path).Inc()
	}
}

// RecordCacheHit records a result cache hit for the given entry kind.
func (m *Metrics) RecordCacheHit(kind string) {
	if m != nil {
		m.CacheHits.WithLabelValues(kind).Inc()
	}
}

// RecordCacheMiss records a result cache miss for the given entry kind.
func (m *Metrics) RecordCacheMiss(kind string) {
	if m != nil {
		m.CacheMisses.WithLabelValues(kind).Inc()
	}
}

// IncrementInvalidations records an attribute-change invalidation.
func (m *Metrics) IncrementInvalidations() {
	if m != nil {
		m.Invalidations.Inc()
	}
}

// IncrementPublishFailures records a swallowed publish failure.
func (m *Metrics) IncrementPublishFailures() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
