package server

import (
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/statportal/internal/search"
)

// search answers one query. Debouncing happens in the browser; the server
// applies the same minimum length and preview rules as the Searcher.
func (s *Server) search(c *gin.Context) {
	query := c.Query("q")
	all, _ := strconv.ParseBool(c.Query("all"))

	minLen := s.cfg.Search.MinQueryLength
	if minLen <= 0 {
		minLen = search.DefaultMinQueryLength
	}
	preview := s.cfg.Search.PreviewSize
	if preview <= 0 {
		preview = search.DefaultPreviewSize
	}

	if utf8.RuneCountInString(query) < minLen {
		c.JSON(http.StatusOK, search.Summarize(query, nil, preview, all))
		return
	}
	hits, err := s.api.Search(c.Request.Context(), query)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, search.Summarize(query, hits, preview, all))
}
