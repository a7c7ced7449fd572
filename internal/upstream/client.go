package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/statportal/internal/config"
	"github.com/vyrodovalexey/statportal/internal/observability"
)

const (
	tracerName = "statportal/upstream"

	// breakerName labels the circuit breaker in logs and metrics.
	breakerName = "upstream"

	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"
)

// Client calls the statistics REST API.
type Client struct {
	base       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     observability.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its timeout takes precedence
// over the configured one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger.
func WithLogger(logger observability.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for cfg.
func New(cfg config.UpstreamConfig, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream base URL %q", cfg.BaseURL)
	}
	base := u.String()
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	c := &Client{
		base:       base,
		httpClient: &http.Client{Timeout: cfg.Timeout.Duration()},
		logger:     observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.CircuitBreaker.Enabled {
		c.breaker = newBreaker(cfg.CircuitBreaker, c.logger)
	}
	GetClientMetrics().breakerState.Set(0)

	return c, nil
}

func newBreaker(cfg config.CircuitBreakerConfig, logger observability.Logger) *gobreaker.CircuitBreaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval.Duration(),
		Timeout:     cfg.Timeout.Duration(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A caller giving up says nothing about the upstream.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()))
			m := GetClientMetrics()
			m.breakerState.Set(float64(to))
			m.breakerTransitions.WithLabelValues(from.String(), to.String()).Inc()
		},
	})
}

// request describes one API call.
type request struct {
	endpoint    string
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string

	// anonymous calls carry no token and never trigger a refresh.
	anonymous bool
}

func jsonRequest(endpoint, method, path string, payload any) (*request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", endpoint, err)
	}
	return &request{
		endpoint:    endpoint,
		method:      method,
		path:        path,
		body:        body,
		contentType: contentTypeJSON,
	}, nil
}

type response struct {
	status int
	body   []byte
}

// call performs req on behalf of the session in ctx and decodes a 2xx body
// into out. A *[]byte out receives the raw body.
func (c *Client) call(ctx context.Context, req *request, out any) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "upstream."+req.endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.method),
			attribute.String("upstream.path", req.path),
		),
	)
	defer span.End()

	start := time.Now()
	err := c.callAuthenticated(ctx, req, out)
	GetClientMetrics().observe(req.endpoint, err, time.Since(start))

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		c.logger.WithContext(ctx).Debug("upstream call failed",
			observability.String("endpoint", req.endpoint),
			observability.Error(err))
	}
	return err
}

func (c *Client) callAuthenticated(ctx context.Context, req *request, out any) error {
	var creds Credentials
	var access, refresh string
	if !req.anonymous {
		creds = CredentialsFromContext(ctx)
		if creds != nil {
			access, refresh = creds.Tokens(ctx)
		}
	}

	resp, err := c.send(ctx, req, access)
	if err != nil {
		return err
	}

	if resp.status == http.StatusUnauthorized && creds != nil && refresh != "" {
		apiErr := &APIError{Status: resp.status, Body: resp.body}
		if apiErr.Code() == tokenNotValidCode {
			resp, err = c.refreshAndReplay(ctx, req, creds, refresh)
			if err != nil {
				return err
			}
		}
	}

	return decode(req.endpoint, resp, out)
}

func (c *Client) refreshAndReplay(
	ctx context.Context, req *request, creds Credentials, refresh string,
) (*response, error) {
	access, err := c.RefreshToken(ctx, refresh)
	if err != nil {
		GetClientMetrics().tokenRefreshes.WithLabelValues("failure").Inc()
		c.expire(ctx, creds, err)
		return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	GetClientMetrics().tokenRefreshes.WithLabelValues("success").Inc()

	if err := creds.SetAccess(ctx, access); err != nil {
		c.logger.WithContext(ctx).Warn("failed to store refreshed access token",
			observability.Error(err))
	}

	resp, err := c.send(ctx, req, access)
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusUnauthorized {
		apiErr := &APIError{Status: resp.status, Body: resp.body}
		c.expire(ctx, creds, apiErr)
		return nil, fmt.Errorf("%w: %w", ErrSessionExpired, apiErr)
	}
	return resp, nil
}

func (c *Client) expire(ctx context.Context, creds Credentials, cause error) {
	logger := c.logger.WithContext(ctx)
	logger.Info("session expired, clearing credentials", observability.Error(cause))
	if err := creds.Clear(ctx); err != nil {
		logger.Warn("failed to clear session", observability.Error(err))
	}
}

// send performs one HTTP exchange through the circuit breaker. Answers of
// 500 and above come back as *APIError; lower statuses are returned as is.
func (c *Client) send(ctx context.Context, req *request, access string) (*response, error) {
	target, err := url.Parse(c.base + req.path)
	if err != nil {
		return nil, fmt.Errorf("building %s URL: %w", req.endpoint, err)
	}
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}

	exchange := func() (any, error) {
		var body io.Reader = http.NoBody
		if req.body != nil {
			body = bytes.NewReader(req.body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), body)
		if err != nil {
			return nil, err
		}
		if req.contentType != "" {
			httpReq.Header.Set(headerContentType, req.contentType)
		}
		httpReq.Header.Set("Accept", contentTypeJSON)
		if access != "" {
			httpReq.Header.Set(headerAuthorization, "Bearer "+access)
		}
		observability.InjectTraceContext(ctx, httpReq)

		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer httpResp.Body.Close()

		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, err
		}
		resp := &response{status: httpResp.StatusCode, body: data}
		if resp.status >= http.StatusInternalServerError {
			return resp, &APIError{Status: resp.status, Body: data}
		}
		return resp, nil
	}

	var result any
	if c.breaker != nil {
		result, err = c.breaker.Execute(exchange)
	} else {
		result, err = exchange()
	}

	var apiErr *APIError
	switch {
	case err == nil:
		return result.(*response), nil
	case errors.As(err, &apiErr):
		return nil, apiErr
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, req.endpoint, err)
	}
}

func decode(endpoint string, resp *response, out any) error {
	if resp.status < 200 || resp.status >= 300 {
		return &APIError{Status: resp.status, Body: resp.body}
	}
	switch dst := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*dst = resp.body
		return nil
	default:
		if err := json.Unmarshal(resp.body, out); err != nil {
			return fmt.Errorf("decoding %s response: %w", endpoint, err)
		}
		return nil
	}
}

func idPath(prefix string, id int, suffix string) string {
	return prefix + "/" + strconv.Itoa(id) + "/" + suffix
}
