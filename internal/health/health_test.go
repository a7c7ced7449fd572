package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("down") }

func TestChecker_Readiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		checks []*DependencyCheck
		want   Status
	}{
		{name: "no checks", want: StatusHealthy},
		{
			name:   "all healthy",
			checks: []*DependencyCheck{NewDependencyCheck("a", DependencyTypeHTTP, ok)},
			want:   StatusHealthy,
		},
		{
			name: "non critical failure degrades",
			checks: []*DependencyCheck{
				NewDependencyCheck("a", DependencyTypeHTTP, ok),
				NewDependencyCheck("cache", DependencyTypeCache, failing, WithCritical(false)),
			},
			want: StatusDegraded,
		},
		{
			name: "critical failure wins",
			checks: []*DependencyCheck{
				NewDependencyCheck("cache", DependencyTypeCache, failing, WithCritical(false)),
				NewDependencyCheck("upstream", DependencyTypeHTTP, failing),
			},
			want: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewChecker("test")
			for _, check := range tt.checks {
				c.Register(check)
			}
			resp := c.Readiness(context.Background())
			assert.Equal(t, tt.want, resp.Status)
			assert.Len(t, resp.Checks, len(tt.checks))
		})
	}
}

func TestChecker_ReadinessTimeout(t *testing.T) {
	t.Parallel()

	c := NewChecker("test", WithCheckTimeout(20*time.Millisecond))
	c.Register(NewDependencyCheck("slow", DependencyTypeHTTP, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	resp := c.Readiness(context.Background())
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Contains(t, resp.Checks["slow"].Message, "deadline")
}

func TestChecker_RegisterUnregister(t *testing.T) {
	t.Parallel()

	c := NewChecker("test")
	c.Register(NewDependencyCheck("b", DependencyTypeHTTP, ok))
	c.Register(NewDependencyCheck("a", DependencyTypeHTTP, ok))
	assert.Equal(t, []string{"a", "b"}, c.Names())

	c.Unregister("a")
	assert.Equal(t, []string{"b"}, c.Names())
}

func TestHandlers(t *testing.T) {
	t.Parallel()

	c := NewChecker("1.2.3")
	c.Register(PingCheck("session-store", DependencyTypeStore, pingerFunc(failing)))

	r := gin.New()
	r.GET("/healthz", c.HealthHandler())
	r.GET("/readyz", c.ReadinessHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, StatusHealthy, health.Status)
	assert.Equal(t, "1.2.3", health.Version)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var ready ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ready))
	assert.Equal(t, StatusUnhealthy, ready.Status)
	assert.Equal(t, "down", ready.Checks["session-store"].Message)
}

func TestHTTPCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "unauthorized is reachable", status: http.StatusUnauthorized},
		{name: "server error", status: http.StatusBadGateway, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			check := HTTPCheck("upstream", srv.URL, srv.Client())
			err := check.checkFn(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	check := HTTPCheck("upstream", "http://127.0.0.1:1", nil)
	assert.Error(t, check.checkFn(context.Background()))
	assert.True(t, check.IsCritical())
}

func TestHealthMetrics_Register(t *testing.T) {
	t.Parallel()

	m := GetHealthMetrics()
	m.Init()
	assert.NotPanics(t, func() { m.MustRegister(prometheus.NewRegistry()) })
}
