package upstream

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClientMetrics holds Prometheus metrics for upstream calls.
type ClientMetrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	tokenRefreshes     *prometheus.CounterVec
	breakerState       prometheus.Gauge
	breakerTransitions *prometheus.CounterVec
}

var (
	clientMetricsInstance *ClientMetrics
	clientMetricsOnce     sync.Once
)

// GetClientMetrics returns the singleton upstream metrics instance.
func GetClientMetrics() *ClientMetrics {
	clientMetricsOnce.Do(func() {
		clientMetricsInstance = newClientMetrics()
	})
	return clientMetricsInstance
}

func newClientMetrics() *ClientMetrics {
	return &ClientMetrics{
		requestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "statportal",
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Total number of upstream API calls by outcome",
			},
			[]string{"endpoint", "result"},
		),
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "statportal",
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Duration of upstream API calls, refresh and replay included",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint"},
		),
		tokenRefreshes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "statportal",
				Subsystem: "upstream",
				Name:      "token_refreshes_total",
				Help:      "Access token refresh attempts",
			},
			[]string{"result"},
		),
		breakerState: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "statportal",
				Subsystem: "upstream",
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
		),
		breakerTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "statportal",
				Subsystem: "upstream",
				Name:      "circuit_breaker_transitions_total",
				Help:      "Circuit breaker state transitions",
			},
			[]string{"from", "to"},
		),
	}
}

// MustRegister registers the upstream collectors with registry.
func (m *ClientMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.tokenRefreshes,
		m.breakerState,
		m.breakerTransitions,
	)
}

func (m *ClientMetrics) observe(endpoint string, err error, d time.Duration) {
	m.requestsTotal.WithLabelValues(endpoint, resultLabel(err)).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func resultLabel(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.As(err, &apiErr):
		return strconv.Itoa(apiErr.Status)
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
