package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vyrodovalexey/statportal/internal/config"
	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/retry"
)

const (
	backendRedis = "redis"

	defaultRedisKeyPrefix = "statportal:cache:"

	redisPingTimeout = 5 * time.Second
)

// IsRetryableRedisError reports whether err is worth retrying. Misses and
// context errors are final.
func IsRetryableRedisError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, redis.Nil) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// redisCache stores entries in Redis under a key prefix.
type redisCache struct {
	logger     observability.Logger
	client     *redis.Client
	keyPrefix  string
	defaultTTL time.Duration
	retryCfg   *retry.Config

	hits   atomic.Int64
	misses atomic.Int64
}

func newRedisCache(cfg *config.CacheConfig, logger observability.Logger, retryCfg *retry.Config) (*redisCache, error) {
	if cfg.Redis.Address == "" {
		return nil, fmt.Errorf("%w: redis address is required", ErrInvalidConfig)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	prefix := cfg.Redis.KeyPrefix
	if prefix == "" {
		prefix = defaultRedisKeyPrefix
	}

	c := &redisCache{
		logger:     logger,
		client:     client,
		keyPrefix:  prefix,
		defaultTTL: cfg.TTL.Duration(),
		retryCfg:   retryCfg,
	}

	logger.Info("redis cache initialized",
		observability.String("address", cfg.Redis.Address),
		observability.String("keyPrefix", prefix),
		observability.Duration("defaultTTL", c.defaultTTL))

	return c, nil
}

func (c *redisCache) do(ctx context.Context, op, key string, fn func() error) error {
	return retry.Do(ctx, c.retryCfg, fn, &retry.Options{
		Operation:   "cache_" + op,
		ShouldRetry: IsRetryableRedisError,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			c.logger.Debug("retrying redis "+op,
				observability.String("key", key),
				observability.Int("attempt", attempt),
				observability.Duration("backoff", backoff),
				observability.Error(err))
		},
	})
}

// Get returns the value stored under the prefixed key.
func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span, done := startOp(ctx, backendRedis, "get", key)
	defer done()

	var val []byte
	err := c.do(ctx, "get", key, func() error {
		var getErr error
		val, getErr = c.client.Get(ctx, c.keyPrefix+key).Bytes()
		return getErr
	})

	switch {
	case err == nil:
		c.hits.Add(1)
		recordHit(span, backendRedis, len(val))
		return val, nil
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		recordMiss(span, backendRedis)
		return nil, ErrCacheMiss
	default:
		recordError(span, backendRedis, "get", err)
		c.logger.Error("redis get failed",
			observability.String("key", key),
			observability.Error(err))
		return nil, err
	}
}

// Set stores value. A zero ttl selects the configured default; a negative
// ttl stores without expiry.
func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, span, done := startOp(ctx, backendRedis, "set", key)
	defer done()

	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if ttl < 0 {
		ttl = 0
	}

	err := c.do(ctx, "set", key, func() error {
		return c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err()
	})
	if err != nil {
		recordError(span, backendRedis, "set", err)
		c.logger.Error("redis set failed",
			observability.String("key", key),
			observability.Error(err))
		return err
	}
	return nil
}

// Delete removes the prefixed key.
func (c *redisCache) Delete(ctx context.Context, key string) error {
	ctx, span, done := startOp(ctx, backendRedis, "delete", key)
	defer done()

	err := c.do(ctx, "delete", key, func() error {
		return c.client.Del(ctx, c.keyPrefix+key).Err()
	})
	if err != nil {
		recordError(span, backendRedis, "delete", err)
		return err
	}
	return nil
}

// Exists reports whether the prefixed key is present.
func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	ctx, span, done := startOp(ctx, backendRedis, "exists", key)
	defer done()

	var n int64
	err := c.do(ctx, "exists", key, func() error {
		var existsErr error
		n, existsErr = c.client.Exists(ctx, c.keyPrefix+key).Result()
		return existsErr
	})
	if err != nil {
		recordError(span, backendRedis, "exists", err)
		return false, err
	}
	return n > 0, nil
}

// Ping checks connectivity. It backs the readiness probe.
func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *redisCache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("closing redis cache: %w", err)
	}
	c.logger.Info("redis cache closed")
	return nil
}

// Stats returns hit and miss counts. Size is not tracked for Redis.
func (c *redisCache) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
