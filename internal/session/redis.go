package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vyrodovalexey/statportal/internal/cache"
	"github.com/vyrodovalexey/statportal/internal/config"
	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/retry"
)

const defaultRedisKeyPrefix = "statportal:session:"

// RedisStore keeps sessions in Redis as JSON documents with a TTL.
type RedisStore struct {
	client   *redis.Client
	prefix   string
	ttl      time.Duration
	logger   observability.Logger
	retryCfg *retry.Config
}

func newRedisStore(cfg config.SessionConfig, logger observability.Logger, retryCfg *retry.Config) (*RedisStore, error) {
	if cfg.Redis.Address == "" {
		return nil, fmt.Errorf("%w: redis address is required", ErrInvalidConfig)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session redis connection failed: %w", err)
	}

	prefix := cfg.Redis.KeyPrefix
	if prefix == "" {
		prefix = defaultRedisKeyPrefix
	}

	logger.Info("redis session store initialized",
		observability.String("address", cfg.Redis.Address),
		observability.String("keyPrefix", prefix))

	return &RedisStore{
		client:   client,
		prefix:   prefix,
		ttl:      cfg.TTL.Duration(),
		logger:   logger,
		retryCfg: retryCfg,
	}, nil
}

func (r *RedisStore) do(ctx context.Context, op string, fn func() error) error {
	return retry.Do(ctx, r.retryCfg, fn, &retry.Options{
		Operation:   "session_" + op,
		ShouldRetry: cache.IsRetryableRedisError,
		OnRetry: func(attempt int, err error, _ time.Duration) {
			r.logger.Debug("retrying redis session "+op,
				observability.Int("attempt", attempt),
				observability.Error(err))
		},
	})
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	var raw []byte
	err := r.do(ctx, "get", func() error {
		var getErr error
		raw, getErr = r.client.Get(ctx, r.prefix+id).Bytes()
		return getErr
	})
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		r.logger.Warn("dropping unreadable session", observability.Error(err))
		_ = r.client.Del(ctx, r.prefix+id).Err()
		return nil, ErrNotFound
	}
	return &state, nil
}

// Set implements Store.
func (r *RedisStore) Set(ctx context.Context, id string, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	err = r.do(ctx, "set", func() error {
		return r.client.Set(ctx, r.prefix+id, raw, r.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	err := r.do(ctx, "delete", func() error {
		return r.client.Del(ctx, r.prefix+id).Err()
	})
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Ping checks connectivity. It backs the readiness probe.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close implements Store.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
