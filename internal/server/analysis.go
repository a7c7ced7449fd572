package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/statportal/internal/util"
)

// analysisKinds lists the visualisations offered for a table.
func (s *Server) analysisKinds(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	kinds, err := s.analysis.Kinds(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kinds": kinds})
}

func (s *Server) tableChart(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	chart, err := s.analysis.Chart(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

func (s *Server) tableMap(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	m, err := s.analysis.Map(c.Request.Context(), id, c.Query("annee"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
