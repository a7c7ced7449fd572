package config

import (
	"time"

	"github.com/vyrodovalexey/statportal/internal/table"
)

// Store backends shared by the cache and session sections.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// PortalConfig is the root configuration document.
type PortalConfig struct {
	Server        ServerConfig        `yaml:"server" json:"server"`
	Upstream      UpstreamConfig      `yaml:"upstream" json:"upstream"`
	Session       SessionConfig       `yaml:"session" json:"session"`
	Cache         CacheConfig         `yaml:"cache" json:"cache"`
	Search        SearchConfig        `yaml:"search" json:"search"`
	Table         TableConfig         `yaml:"table" json:"table"`
	Retry         RetryConfig         `yaml:"retry" json:"retry"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int             `yaml:"port" json:"port"`
	ReadTimeout     Duration        `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    Duration        `yaml:"writeTimeout" json:"writeTimeout"`
	ShutdownTimeout Duration        `yaml:"shutdownTimeout" json:"shutdownTimeout"`
	MaxBodySize     int64           `yaml:"maxBodySize" json:"maxBodySize"`
	RateLimit       RateLimitConfig `yaml:"rateLimit" json:"rateLimit"`
}

// RateLimitConfig configures per-client inbound rate limiting.
type RateLimitConfig struct {
	Enabled           bool     `yaml:"enabled" json:"enabled"`
	RequestsPerSecond float64  `yaml:"requestsPerSecond" json:"requestsPerSecond"`
	Burst             int      `yaml:"burst" json:"burst"`
	ClientTTL         Duration `yaml:"clientTTL" json:"clientTTL"`
}

// UpstreamConfig configures the statistics REST API client.
type UpstreamConfig struct {
	BaseURL        string               `yaml:"baseURL" json:"baseURL"`
	Timeout        Duration             `yaml:"timeout" json:"timeout"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker" json:"circuitBreaker"`
}

// CircuitBreakerConfig configures the upstream circuit breaker.
type CircuitBreakerConfig struct {
	Enabled          bool     `yaml:"enabled" json:"enabled"`
	MaxRequests      uint32   `yaml:"maxRequests" json:"maxRequests"`
	Interval         Duration `yaml:"interval" json:"interval"`
	Timeout          Duration `yaml:"timeout" json:"timeout"`
	FailureThreshold uint32   `yaml:"failureThreshold" json:"failureThreshold"`
}

// RedisConfig locates a Redis server.
type RedisConfig struct {
	Address   string `yaml:"address" json:"address"`
	Password  string `yaml:"password" json:"-"`
	DB        int    `yaml:"db" json:"db"`
	KeyPrefix string `yaml:"keyPrefix" json:"keyPrefix"`
}

// SessionConfig configures the portal session store.
type SessionConfig struct {
	Type         string      `yaml:"type" json:"type"`
	TTL          Duration    `yaml:"ttl" json:"ttl"`
	CookieName   string      `yaml:"cookieName" json:"cookieName"`
	CookieSecure bool        `yaml:"cookieSecure" json:"cookieSecure"`
	Redis        RedisConfig `yaml:"redis" json:"redis"`
}

// CacheConfig configures the table payload cache.
type CacheConfig struct {
	Enabled    bool        `yaml:"enabled" json:"enabled"`
	Type       string      `yaml:"type" json:"type"`
	TTL        Duration    `yaml:"ttl" json:"ttl"`
	MaxEntries int         `yaml:"maxEntries" json:"maxEntries"`
	Redis      RedisConfig `yaml:"redis" json:"redis"`
}

// SearchConfig configures global search.
type SearchConfig struct {
	Debounce       Duration `yaml:"debounce" json:"debounce"`
	MinQueryLength int      `yaml:"minQueryLength" json:"minQueryLength"`
	PreviewSize    int      `yaml:"previewSize" json:"previewSize"`
}

// TableConfig holds the table rendering settings. It is the hot-reloadable
// part of the configuration.
type TableConfig struct {
	CensusYears []int              `yaml:"censusYears" json:"censusYears"`
	Layout      table.LayoutConfig `yaml:"layout" json:"layout"`
}

// RetryConfig configures retries against Redis.
type RetryConfig struct {
	MaxRetries     int      `yaml:"maxRetries" json:"maxRetries"`
	InitialBackoff Duration `yaml:"initialBackoff" json:"initialBackoff"`
	MaxBackoff     Duration `yaml:"maxBackoff" json:"maxBackoff"`
}

// ObservabilityConfig configures logging, metrics and tracing.
type ObservabilityConfig struct {
	LogLevel  string        `yaml:"logLevel" json:"logLevel"`
	LogFormat string        `yaml:"logFormat" json:"logFormat"`
	Metrics   MetricsConfig `yaml:"metrics" json:"metrics"`
	Tracing   TracingConfig `yaml:"tracing" json:"tracing"`
}

// MetricsConfig configures the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	OTLPEndpoint string  `yaml:"otlpEndpoint" json:"otlpEndpoint"`
	SamplingRate float64 `yaml:"samplingRate" json:"samplingRate"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *PortalConfig {
	return &PortalConfig{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(60 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
			MaxBodySize:     20 << 20,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 20,
				Burst:             40,
				ClientTTL:         Duration(10 * time.Minute),
			},
		},
		Upstream: UpstreamConfig{
			BaseURL: "http://localhost:8000/api/",
			Timeout: Duration(30 * time.Second),
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          true,
				MaxRequests:      1,
				Interval:         Duration(60 * time.Second),
				Timeout:          Duration(30 * time.Second),
				FailureThreshold: 5,
			},
		},
		Session: SessionConfig{
			Type:       StoreMemory,
			TTL:        Duration(24 * time.Hour),
			CookieName: "statportal_session",
			Redis:      RedisConfig{Address: "localhost:6379", KeyPrefix: "statportal:session:"},
		},
		Cache: CacheConfig{
			Enabled:    true,
			Type:       StoreMemory,
			TTL:        Duration(5 * time.Minute),
			MaxEntries: 500,
			Redis:      RedisConfig{Address: "localhost:6379", KeyPrefix: "statportal:cache:"},
		},
		Search: SearchConfig{
			Debounce:       Duration(300 * time.Millisecond),
			MinQueryLength: 2,
			PreviewSize:    5,
		},
		Table: TableConfig{
			CensusYears: append([]int(nil), table.DefaultCensusYears...),
			Layout:      table.DefaultLayoutConfig(),
		},
		Retry: RetryConfig{
			MaxRetries:     3,
			InitialBackoff: Duration(50 * time.Millisecond),
			MaxBackoff:     Duration(2 * time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
			Metrics:   MetricsConfig{Enabled: true, Path: "/metrics"},
			Tracing:   TracingConfig{SamplingRate: 1.0},
		},
	}
}

// RenderOptions converts the table section into view options.
func (t TableConfig) RenderOptions() table.Options {
	return table.Options{
		Layout:     t.Layout,
		Classifier: table.NewProjectionClassifier(t.CensusYears),
	}
}
