package export

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ExportMetrics holds Prometheus metrics for table exports.
type ExportMetrics struct {
	exportsTotal   *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
}

var (
	exportMetricsInstance *ExportMetrics
	exportMetricsOnce     sync.Once
)

// GetExportMetrics returns the singleton export metrics instance.
func GetExportMetrics() *ExportMetrics {
	exportMetricsOnce.Do(func() {
		exportMetricsInstance = &ExportMetrics{
			exportsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "statportal",
					Subsystem: "export",
					Name:      "total",
					Help:      "Table exports by format and result",
				},
				[]string{"format", "result"},
			),
			exportDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "statportal",
					Subsystem: "export",
					Name:      "duration_seconds",
					Help:      "Time spent writing table exports",
					Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"format"},
			),
		}
	})
	return exportMetricsInstance
}

// MustRegister registers the export collectors with registry.
func (m *ExportMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(m.exportsTotal, m.exportDuration)
}

func (m *ExportMetrics) observe(f Format, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.exportsTotal.WithLabelValues(string(f), result).Inc()
	m.exportDuration.WithLabelValues(string(f)).Observe(d.Seconds())
}
