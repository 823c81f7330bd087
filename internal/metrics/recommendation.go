package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation pipeline Prometheus metrics.
var (
	RefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recfeed",
			Name:      "refresh_total",
			Help:      "Refresh passes by resulting quality",
		},
		[]string{"quality"}, // optimal / limited / none
	)

	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "recfeed",
			Name:      "refresh_duration_seconds",
			Help:      "Refresh pass duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	CandidatesScored = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "recfeed",
			Name:      "candidates_scored",
			Help:      "Scored candidates per refresh pass before selection",
			Buckets:   []float64{0, 10, 25, 50, 100, 200, 500, 1000, 2000},
		},
	)

	BackfillItemsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recfeed",
			Name:      "backfill_items_total",
			Help:      "Items added by the recency backfill",
		},
	)

	CleanupDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recfeed",
			Name:      "cleanup_deleted_total",
			Help:      "Recommendations removed by cleanup",
		},
		[]string{"kind"}, // read / stale
	)

	UpstreamDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recfeed",
			Name:      "upstream_degraded_total",
			Help:      "Refresh passes that degraded because a source failed",
		},
		[]string{"source"}, // interests / content
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "recfeed",
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

var recMetricsRegistered bool

// RegisterRecommendationMetrics registers pipeline metrics. Must be called once from main.
func RegisterRecommendationMetrics() {
	if recMetricsRegistered {
		return
	}
	prometheus.MustRegister(RefreshTotal)
	prometheus.MustRegister(RefreshDuration)
	prometheus.MustRegister(CandidatesScored)
	prometheus.MustRegister(BackfillItemsTotal)
	prometheus.MustRegister(CleanupDeletedTotal)
	prometheus.MustRegister(UpstreamDegradedTotal)
	prometheus.MustRegister(BreakerState)
	recMetricsRegistered = true
}
