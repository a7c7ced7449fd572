package health

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HealthMetrics holds Prometheus metrics for health checks.
type HealthMetrics struct {
	checksTotal       *prometheus.CounterVec
	checkStatus       *prometheus.GaugeVec
	dependencyUp      *prometheus.GaugeVec
	dependencyLatency *prometheus.HistogramVec
}

var (
	healthMetricsInstance *HealthMetrics
	healthMetricsOnce     sync.Once
)

// GetHealthMetrics returns the singleton health metrics instance.
func GetHealthMetrics() *HealthMetrics {
	healthMetricsOnce.Do(func() {
		healthMetricsInstance = &HealthMetrics{
			checksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "statportal",
					Subsystem: "health",
					Name:      "checks_total",
					Help:      "Total number of health probes served",
				},
				[]string{"type"},
			),
			checkStatus: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "statportal",
					Subsystem: "health",
					Name:      "check_status",
					Help:      "Current health check status (1=healthy, 0=unhealthy)",
				},
				[]string{"check"},
			),
			dependencyUp: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "statportal",
					Subsystem: "health",
					Name:      "dependency_up",
					Help:      "Dependency reachability (1=up, 0=down)",
				},
				[]string{"dependency", "type"},
			),
			dependencyLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "statportal",
					Subsystem: "health",
					Name:      "dependency_check_duration_seconds",
					Help:      "Duration of dependency checks",
					Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 3},
				},
				[]string{"dependency"},
			),
		}
	})
	return healthMetricsInstance
}

// MustRegister registers the health collectors with registry.
func (m *HealthMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.checksTotal,
		m.checkStatus,
		m.dependencyUp,
		m.dependencyLatency,
	)
}

// Init creates the probe label combinations.
func (m *HealthMetrics) Init() {
	for _, checkType := range []string{"liveness", "readiness"} {
		m.checksTotal.WithLabelValues(checkType)
	}
	m.checkStatus.WithLabelValues("overall")
}

func recordDependency(name string, depType DependencyType, healthy bool, elapsed time.Duration) {
	m := GetHealthMetrics()
	up := 0.0
	if healthy {
		up = 1
	}
	m.dependencyUp.WithLabelValues(name, string(depType)).Set(up)
	m.dependencyLatency.WithLabelValues(name).Observe(elapsed.Seconds())
}
