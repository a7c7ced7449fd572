package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/statportal/internal/health"
)

func (s *Server) routes() {
	r := s.engine

	r.GET("/healthz", s.health.HealthHandler())
	r.GET("/readyz", s.health.ReadinessHandler())
	if m := s.cfg.Observability.Metrics; m.Enabled {
		path := m.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api", s.sessionMiddleware())
	{
		api.POST("/login", s.login)
		api.POST("/logout", s.logout)
		api.GET("/session", s.sessionInfo)

		api.GET("/categories", s.listCategories)
		api.GET("/categories/:id", s.getCategory)
		api.GET("/categories/:id/themes", s.categoryThemes)
		api.GET("/themes/:id", s.getTheme)
		api.GET("/themes/:id/tables", s.themeTables)
		api.GET("/sources", s.listSources)
		api.GET("/sources/:name/tables", s.sourceTables)
		api.GET("/breadcrumb", s.breadcrumb)

		api.GET("/tables/:id", s.getTable)
		api.GET("/tables/:id/filter-options", s.filterOptions)
		api.POST("/tables/:id/filter", s.filterTable)
		api.GET("/tables/:id/export", s.exportTable)
		api.GET("/tables/:id/analyses", s.analysisKinds)
		api.GET("/tables/:id/chart", s.tableChart)
		api.GET("/tables/:id/map", s.tableMap)

		api.GET("/search", s.search)
		api.POST("/import", s.importWorkbook)
	}
}

// registerChecks adds the readiness checks of the server's dependencies.
// The cache is optional and never makes the server unready.
func (s *Server) registerChecks() {
	if base := s.cfg.Upstream.BaseURL; base != "" {
		client := &http.Client{Timeout: s.cfg.Upstream.Timeout.Duration()}
		s.health.Register(health.HTTPCheck("upstream", base, client))
	}
	if p, ok := s.sessions.(health.Pinger); ok {
		s.health.Register(health.PingCheck("sessions", health.DependencyTypeStore, p))
	}
	if p, ok := s.cache.(health.Pinger); ok {
		s.health.Register(health.PingCheck("cache", health.DependencyTypeCache, p, health.WithCritical(false)))
	}
}
