package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vyrodovalexey/statportal/internal/config"
	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/retry"
)

var (
	// ErrCacheMiss indicates that the key was not found in the cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheDisabled indicates that caching is disabled.
	ErrCacheDisabled = errors.New("cache disabled")

	// ErrInvalidConfig indicates that the cache configuration is invalid.
	ErrInvalidConfig = errors.New("invalid cache configuration")
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns ErrCacheMiss if the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value. A zero ttl selects the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	Close() error
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Hits   int64
	Misses int64
	Size   int64
}

// HitRate returns the cache hit rate as a percentage.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Option configures New.
type Option func(*options)

type options struct {
	logger   observability.Logger
	retryCfg *retry.Config
}

// WithLogger sets the cache logger.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRetryConfig sets the retry policy used for Redis operations.
func WithRetryConfig(cfg *retry.Config) Option {
	return func(o *options) {
		o.retryCfg = cfg
	}
}

// New creates a cache for cfg. A disabled configuration yields a cache
// that never stores anything.
func New(cfg *config.CacheConfig, opts ...Option) (Cache, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = observability.NopLogger()
	}

	if !cfg.Enabled {
		return newDisabledCache(), nil
	}

	switch cfg.Type {
	case config.StoreMemory, "":
		return newMemoryCache(cfg, o.logger), nil
	case config.StoreRedis:
		return newRedisCache(cfg, o.logger, o.retryCfg)
	default:
		return nil, fmt.Errorf("%w: unknown cache type %q", ErrInvalidConfig, cfg.Type)
	}
}

// GetOrLoad returns the cached value for key, calling load on a miss and
// storing its result. Backend failures are logged and degrade to load.
func GetOrLoad(
	ctx context.Context,
	c Cache,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) ([]byte, error),
) ([]byte, error) {
	logger := observability.GetGlobalLogger().WithContext(ctx)

	val, err := c.Get(ctx, key)
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, ErrCacheMiss) && !errors.Is(err, ErrCacheDisabled) {
		logger.Warn("cache read failed, loading from source",
			observability.String("key", key),
			observability.Error(err))
	}

	val, err = load(ctx)
	if err != nil {
		return nil, err
	}

	if setErr := c.Set(ctx, key, val, ttl); setErr != nil && !errors.Is(setErr, ErrCacheDisabled) {
		logger.Warn("cache write failed",
			observability.String("key", key),
			observability.Error(setErr))
	}
	return val, nil
}

// disabledCache never stores anything.
type disabledCache struct{}

func newDisabledCache() Cache {
	return &disabledCache{}
}

func (c *disabledCache) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, ErrCacheDisabled
}

func (c *disabledCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return ErrCacheDisabled
}

func (c *disabledCache) Delete(_ context.Context, _ string) error {
	return nil
}

func (c *disabledCache) Exists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (c *disabledCache) Close() error {
	return nil
}
