package main

import (
	"fmt"

	"github.com/vyrodovalexey/statportal/internal/config"
	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/upstream"
)

// loadConfig reads and validates the configuration. A missing file at the
// default path falls back to the built-in defaults; an explicit path must
// exist.
func loadConfig(flags *globalFlags, explicit bool) (*config.PortalConfig, string, error) {
	path, err := config.ResolveConfigPath(flags.configPath)
	var cfg *config.PortalConfig
	switch {
	case err == nil:
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, "", err
		}
	case explicit:
		return nil, "", err
	default:
		path = ""
		cfg = config.DefaultConfig()
	}

	if flags.baseURL != "" {
		cfg.Upstream.BaseURL = flags.baseURL
	}
	if flags.logLevel != "" {
		cfg.Observability.LogLevel = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Observability.LogFormat = flags.logFormat
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, path, nil
}

// initLogger builds the process logger and installs it globally.
func initLogger(cfg *config.PortalConfig, output string) (observability.Logger, error) {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
		Output: output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	observability.SetGlobalLogger(logger)
	return logger, nil
}

func initTracer(cfg *config.PortalConfig) (*observability.Tracer, error) {
	t := cfg.Observability.Tracing
	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:    "statportal",
		ServiceVersion: version,
		OTLPEndpoint:   t.OTLPEndpoint,
		SamplingRate:   t.SamplingRate,
		Enabled:        t.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	return tracer, nil
}

func newClient(cfg *config.PortalConfig, logger observability.Logger) (*upstream.Client, error) {
	client, err := upstream.New(cfg.Upstream, upstream.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, nil
}

// stderrOutput is where CLI tools log, keeping stdout for results.
const stderrOutput = "stderr"
