package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/statportal/internal/config"
	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/retry"
	"github.com/vyrodovalexey/statportal/internal/upstream"
)

var (
	// ErrNotFound indicates that the session does not exist or expired.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidConfig indicates that the session configuration is invalid.
	ErrInvalidConfig = errors.New("invalid session configuration")
)

// State is what a session remembers.
type State struct {
	Access    string         `json:"access,omitempty"`
	Refresh   string         `json:"refresh,omitempty"`
	User      *upstream.User `json:"user,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Authenticated reports whether the session holds a user.
func (s *State) Authenticated() bool {
	return s != nil && s.User != nil
}

// Store persists session states.
type Store interface {
	// Get returns ErrNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*State, error)

	Set(ctx context.Context, id string, state *State) error

	Delete(ctx context.Context, id string) error

	Close() error
}

// Option configures New.
type Option func(*options)

type options struct {
	logger   observability.Logger
	retryCfg *retry.Config
}

// WithLogger sets the store logger.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRetryConfig sets the retry policy used by the Redis store.
func WithRetryConfig(cfg *retry.Config) Option {
	return func(o *options) {
		o.retryCfg = cfg
	}
}

// New creates the store selected by cfg.Type.
func New(cfg config.SessionConfig, opts ...Option) (Store, error) {
	o := &options{logger: observability.NopLogger()}
	for _, opt := range opts {
		opt(o)
	}

	switch cfg.Type {
	case config.StoreMemory, "":
		return NewMemoryStore(cfg.TTL.Duration()), nil
	case config.StoreRedis:
		return newRedisStore(cfg, o.logger, o.retryCfg)
	default:
		return nil, fmt.Errorf("%w: unknown session store %q", ErrInvalidConfig, cfg.Type)
	}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}
