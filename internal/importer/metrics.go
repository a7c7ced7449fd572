package importer

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK        = "ok"
	resultForbidden = "forbidden"
	resultInvalid   = "invalid"
	resultFailed    = "failed"
)

// ImportMetrics holds Prometheus metrics for workbook imports.
type ImportMetrics struct {
	imports *prometheus.CounterVec
	bytes   prometheus.Counter
}

var (
	importMetricsInstance *ImportMetrics
	importMetricsOnce     sync.Once
)

// GetImportMetrics returns the singleton import metrics instance.
func GetImportMetrics() *ImportMetrics {
	importMetricsOnce.Do(func() {
		importMetricsInstance = &ImportMetrics{
			imports: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "statportal",
					Subsystem: "import",
					Name:      "requests_total",
					Help:      "Workbook imports by result",
				},
				[]string{"result"},
			),
			bytes: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "statportal",
					Subsystem: "import",
					Name:      "bytes_total",
					Help:      "Bytes of successfully imported workbooks",
				},
			),
		}
	})
	return importMetricsInstance
}

// MustRegister registers the import collectors with registry.
func (m *ImportMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(m.imports, m.bytes)
}

func (m *ImportMetrics) record(result string) {
	m.imports.WithLabelValues(result).Inc()
}
