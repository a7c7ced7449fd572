package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/statportal/internal/analysis"
	"github.com/vyrodovalexey/statportal/internal/cache"
	"github.com/vyrodovalexey/statportal/internal/catalog"
	"github.com/vyrodovalexey/statportal/internal/config"
	"github.com/vyrodovalexey/statportal/internal/export"
	"github.com/vyrodovalexey/statportal/internal/health"
	"github.com/vyrodovalexey/statportal/internal/importer"
	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/retry"
	"github.com/vyrodovalexey/statportal/internal/session"
	"github.com/vyrodovalexey/statportal/internal/table"
	"github.com/vyrodovalexey/statportal/internal/upstream"
)

// ginModeOnce keeps gin.SetMode from racing between servers.
var ginModeOnce sync.Once

// API is the statistics API as used by the server. *upstream.Client
// implements it.
type API interface {
	catalog.API
	analysis.API
	importer.Uploader

	Login(ctx context.Context, email, password string) (*upstream.LoginResponse, error)
	TableStructure(ctx context.Context, id int) ([]byte, error)
	FilterOptions(ctx context.Context, id int) (*upstream.FilterOptions, error)
	FilterStructure(ctx context.Context, id int, filter upstream.FilterRequest) ([]byte, error)
	Search(ctx context.Context, query string) ([]upstream.SearchResult, error)
}

// Deps are the collaborators of a Server. API and Sessions are required.
type Deps struct {
	API      API
	Sessions session.Store
	Cache    cache.Cache
	Health   *health.Checker
	Metrics  *observability.Metrics
	Logger   observability.Logger
}

// Server is the portal HTTP server.
type Server struct {
	cfg      *config.PortalConfig
	engine   *gin.Engine
	api      API
	sessions session.Store
	cache    cache.Cache
	catalog  *catalog.Service
	analysis *analysis.Service
	importer *importer.Importer
	exports  *export.Registry
	health   *health.Checker
	metrics  *observability.Metrics
	logger   observability.Logger
	limiter  *clientLimiter

	tableOpts atomic.Pointer[table.Options]

	mu         sync.Mutex
	httpServer *http.Server
}

// New builds the server and its routes.
func New(cfg *config.PortalConfig, deps Deps) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if deps.API == nil {
		return nil, errors.New("server: upstream API is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("server: session store is required")
	}
	if deps.Logger == nil {
		deps.Logger = observability.NopLogger()
	}
	if deps.Cache == nil {
		c, err := cache.New(&config.CacheConfig{Enabled: false})
		if err != nil {
			return nil, err
		}
		deps.Cache = c
	}
	if deps.Health == nil {
		deps.Health = health.NewChecker("dev")
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetrics("statportal")
	}

	ginModeOnce.Do(func() {
		if gin.Mode() == gin.DebugMode {
			gin.SetMode(gin.ReleaseMode)
		}
	})

	s := &Server{
		cfg:      cfg,
		engine:   gin.New(),
		api:      deps.API,
		sessions: deps.Sessions,
		cache:    deps.Cache,
		catalog:  catalog.NewService(deps.API, catalog.WithLogger(deps.Logger)),
		analysis: analysis.NewService(deps.API),
		importer: importer.New(deps.API,
			importer.WithMaxSize(cfg.Server.MaxBodySize),
			importer.WithLogger(deps.Logger)),
		exports: export.NewRegistry(export.WithLogger(deps.Logger)),
		health:  deps.Health,
		metrics: deps.Metrics,
		logger:  deps.Logger,
	}
	s.SetTableConfig(cfg.Table)
	registerCollectors(s.metrics)

	s.engine.Use(requestID(), tracing(), accessLog(s.logger), metrics(s.metrics), recovery(s.logger))
	if rl := cfg.Server.RateLimit; rl.Enabled {
		s.limiter = newClientLimiter(rl.RequestsPerSecond, rl.Burst, rl.ClientTTL.Duration())
		s.engine.Use(rateLimit(s.limiter, s.metrics, s.logger))
	}
	if cfg.Server.MaxBodySize > 0 {
		s.engine.Use(bodyLimit(cfg.Server.MaxBodySize))
	}

	s.registerChecks()
	s.routes()
	return s, nil
}

// registerCollectors exposes the package metric singletons on the server
// registry.
func registerCollectors(m *observability.Metrics) {
	reg := m.Registry()
	upstream.GetClientMetrics().MustRegister(reg)
	cache.GetCacheMetrics().MustRegister(reg)
	retry.GetRetryMetrics().MustRegister(reg)
	health.GetHealthMetrics().MustRegister(reg)
	importer.GetImportMetrics().MustRegister(reg)
	export.GetExportMetrics().MustRegister(reg)
}

// SetTableConfig swaps the rendering settings used for new requests.
func (s *Server) SetTableConfig(tc config.TableConfig) {
	opts := tc.RenderOptions()
	s.tableOpts.Store(&opts)
}

func (s *Server) tableOptions() table.Options {
	return *s.tableOpts.Load()
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: s.cfg.Server.WriteTimeout.Duration(),
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("starting HTTP server",
		observability.String("address", addr),
		observability.Duration("readTimeout", srv.ReadTimeout),
		observability.Duration("writeTimeout", srv.WriteTimeout))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	s.logger.Info("stopping HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return <-errCh
}
