package retry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RetryMetrics holds Prometheus metrics for retried operations.
type RetryMetrics struct {
	attemptsTotal *prometheus.CounterVec
	resultsTotal  *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

var (
	retryMetricsInstance *RetryMetrics
	retryMetricsOnce     sync.Once
)

// GetRetryMetrics returns the singleton retry metrics instance.
func GetRetryMetrics() *RetryMetrics {
	retryMetricsOnce.Do(func() {
		retryMetricsInstance = newRetryMetrics()
	})
	return retryMetricsInstance
}

func newRetryMetrics() *RetryMetrics {
	return &RetryMetrics{
		attemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "statportal",
				Subsystem: "retry",
				Name:      "attempts_total",
				Help:      "Total number of retry attempts after the first call",
			},
			[]string{"operation"},
		),
		resultsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "statportal",
				Subsystem: "retry",
				Name:      "results_total",
				Help:      "Outcome of operations that needed at least one retry",
			},
			[]string{"operation", "result"},
		),
		duration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "statportal",
				Subsystem: "retry",
				Name:      "duration_seconds",
				Help:      "Total duration of retried operations",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation", "result"},
		),
	}
}

// MustRegister registers the retry collectors with registry.
func (m *RetryMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(m.attemptsTotal, m.resultsTotal, m.duration)
}

func (m *RetryMetrics) recordAttempt(operation string) {
	m.attemptsTotal.WithLabelValues(operation).Inc()
}

func (m *RetryMetrics) recordResult(operation string, success bool, d time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.resultsTotal.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation, result).Observe(d.Seconds())
}
