// Package observability provides logging, metrics, and tracing for the
// statistics portal.
//
// # Logging
//
// The Logger interface wraps zap:
//
//	logger, err := observability.NewLogger(observability.DefaultLogConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("table served",
//	    observability.String("table_id", "42"),
//	    observability.Int("rows", 18),
//	)
//
// # Metrics
//
// Metrics owns the registry behind /metrics. Package-level metric sets
// (upstream, cache, export) register themselves into it:
//
//	metrics := observability.NewMetrics("statportal")
//	upstream.GetClientMetrics().MustRegister(metrics.Registry())
//
// # Tracing
//
// OpenTelemetry tracing with optional OTLP gRPC export:
//
//	tracer, err := observability.NewTracer(observability.TracerConfig{
//	    ServiceName: "statportal",
//	    Enabled:     true,
//	})
package observability
