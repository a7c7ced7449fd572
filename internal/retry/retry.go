package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Default retry configuration.
const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 100 * time.Millisecond
	DefaultMaxBackoff     = 5 * time.Second
	DefaultJitterFactor   = 0.25
	MaxJitterFactor       = 1.0
)

// Config contains retry parameters. Zero fields select the defaults.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFactor   float64
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
		JitterFactor:   DefaultJitterFactor,
	}
}

// GetMaxRetries returns the effective max retries.
func (c *Config) GetMaxRetries() int {
	if c == nil || c.MaxRetries <= 0 {
		return DefaultMaxRetries
	}
	return c.MaxRetries
}

// GetInitialBackoff returns the effective initial backoff.
func (c *Config) GetInitialBackoff() time.Duration {
	if c == nil || c.InitialBackoff <= 0 {
		return DefaultInitialBackoff
	}
	return c.InitialBackoff
}

// GetMaxBackoff returns the effective max backoff.
func (c *Config) GetMaxBackoff() time.Duration {
	if c == nil || c.MaxBackoff <= 0 {
		return DefaultMaxBackoff
	}
	return c.MaxBackoff
}

// GetJitterFactor returns the effective jitter factor.
func (c *Config) GetJitterFactor() float64 {
	if c == nil || c.JitterFactor <= 0 {
		return DefaultJitterFactor
	}
	return math.Min(c.JitterFactor, MaxJitterFactor)
}

// Options tunes a single Do call.
type Options struct {
	// Operation names the call in metrics. Empty disables recording.
	Operation string

	// ShouldRetry filters retryable errors. Nil retries every error.
	ShouldRetry func(error) bool

	// OnRetry is called before each backoff wait.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

// Do calls fn until it succeeds, the error is not retryable, retries are
// exhausted, or ctx is done.
func Do(ctx context.Context, cfg *Config, fn func() error, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}

	maxRetries := cfg.GetMaxRetries()
	initial := cfg.GetInitialBackoff()
	maxBackoff := cfg.GetMaxBackoff()
	jitter := cfg.GetJitterFactor()

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if attempt > 0 && opts.Operation != "" {
			GetRetryMetrics().recordAttempt(opts.Operation)
		}

		lastErr = fn()
		if lastErr == nil {
			if opts.Operation != "" && attempt > 0 {
				GetRetryMetrics().recordResult(opts.Operation, true, time.Since(start))
			}
			return nil
		}

		if opts.ShouldRetry != nil && !opts.ShouldRetry(lastErr) {
			return lastErr
		}

		if attempt == maxRetries {
			break
		}

		backoff := CalculateBackoff(attempt, initial, maxBackoff, jitter)
		if opts.OnRetry != nil {
			opts.OnRetry(attempt+1, lastErr, backoff)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if opts.Operation != "" {
		GetRetryMetrics().recordResult(opts.Operation, false, time.Since(start))
	}
	return lastErr
}

// CalculateBackoff returns initial·2^attempt plus up to jitterFactor of
// random extra, capped at maxBackoff.
func CalculateBackoff(attempt int, initial, maxBackoff time.Duration, jitterFactor float64) time.Duration {
	backoff := float64(initial) * math.Pow(2, float64(attempt))

	//nolint:gosec // jitter for retry timing is not security-sensitive
	backoff += backoff * jitterFactor * rand.Float64()

	if backoff > float64(maxBackoff) {
		backoff = float64(maxBackoff)
	}
	return time.Duration(backoff)
}
