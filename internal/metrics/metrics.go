package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coaching_auth_attempts_total",
			Help: "Authentication attempts by outcome",
		},
		[]string{"outcome"},
	)

	LifecycleOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coaching_lifecycle_operations_total",
			Help: "Account and clinic lifecycle operations by result",
		},
		[]string{"operation", "result"},
	)

	LifecycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coaching_lifecycle_duration_seconds",
			Help:    "Duration of lifecycle transactions",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 5, 10},
		},
		[]string{"operation"},
	)

	RowsRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coaching_lifecycle_rows_total",
			Help: "Rows deleted or unlinked by committed lifecycle operations, by step",
		},
		[]string{"step"},
	)
)

// ObserveLifecycle records the outcome of one lifecycle transaction.
func ObserveLifecycle(operation string, seconds float64, err error) {
	result := "committed"
	if err != nil {
		result = "aborted"
	}
	LifecycleOperations.WithLabelValues(operation, result).Inc()
	LifecycleDuration.WithLabelValues(operation).Observe(seconds)
}
