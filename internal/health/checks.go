package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DependencyType labels a dependency in metrics.
type DependencyType string

const (
	DependencyTypeHTTP  DependencyType = "http"
	DependencyTypeCache DependencyType = "cache"
	DependencyTypeStore DependencyType = "store"
)

// DependencyCheck probes one dependency.
type DependencyCheck struct {
	name     string
	depType  DependencyType
	checkFn  func(ctx context.Context) error
	critical bool
}

// DependencyCheckOption configures a DependencyCheck.
type DependencyCheckOption func(*DependencyCheck)

// WithCritical marks whether a failure makes the service unready.
// Checks are critical by default.
func WithCritical(critical bool) DependencyCheckOption {
	return func(d *DependencyCheck) {
		d.critical = critical
	}
}

// NewDependencyCheck creates a dependency check.
func NewDependencyCheck(
	name string,
	depType DependencyType,
	checkFn func(ctx context.Context) error,
	opts ...DependencyCheckOption,
) *DependencyCheck {
	d := &DependencyCheck{
		name:     name,
		depType:  depType,
		checkFn:  checkFn,
		critical: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the check name.
func (d *DependencyCheck) Name() string { return d.name }

// IsCritical reports whether a failure makes the service unready.
func (d *DependencyCheck) IsCritical() bool { return d.critical }

func (d *DependencyCheck) run(ctx context.Context) Check {
	start := time.Now()
	err := d.checkFn(ctx)
	elapsed := time.Since(start)

	healthy := err == nil
	recordDependency(d.name, d.depType, healthy, elapsed)

	result := Check{
		Status:   StatusHealthy,
		Critical: d.critical,
		Duration: elapsed.Round(time.Millisecond).String(),
	}
	if !healthy {
		result.Status = StatusUnhealthy
		result.Message = err.Error()
	}
	return result
}

// HTTPCheck probes url with GET; any status below 500 counts as reachable,
// since API roots commonly answer 401 or 404 to anonymous callers.
func HTTPCheck(name, url string, client *http.Client, opts ...DependencyCheckOption) *DependencyCheck {
	if client == nil {
		client = http.DefaultClient
	}
	return NewDependencyCheck(name, DependencyTypeHTTP, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("unhealthy status code: %d", resp.StatusCode)
		}
		return nil
	}, opts...)
}

// Pinger is implemented by the Redis-backed stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck wraps a Pinger.
func PingCheck(name string, depType DependencyType, p Pinger, opts ...DependencyCheckOption) *DependencyCheck {
	return NewDependencyCheck(name, depType, p.Ping, opts...)
}
