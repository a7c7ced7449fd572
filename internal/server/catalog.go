package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/statportal/internal/catalog"
	"github.com/vyrodovalexey/statportal/internal/util"
)

func (s *Server) listCategories(c *gin.Context) {
	cards, err := s.catalog.Categories(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (s *Server) getCategory(c *gin.Context) {
	page, ok := s.categoryPage(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, page)
}

// categoryThemes is the filtered theme list of one category.
func (s *Server) categoryThemes(c *gin.Context) {
	page, ok := s.categoryPage(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, page.Themes)
}

func (s *Server) categoryPage(c *gin.Context) (*catalog.CategoryPage, bool) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	page, err := s.catalog.Category(c.Request.Context(), id, c.Query("q"))
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return page, true
}

func (s *Server) getTheme(c *gin.Context) {
	page, ok := s.themePage(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) themeTables(c *gin.Context) {
	page, ok := s.themePage(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, page.Tables)
}

func (s *Server) themePage(c *gin.Context) (*catalog.ThemePage, bool) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	page, err := s.catalog.Theme(c.Request.Context(), id, c.Query("q"))
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return page, true
}

func (s *Server) listSources(c *gin.Context) {
	names, err := s.catalog.Sources(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, names)
}

func (s *Server) sourceTables(c *gin.Context) {
	page, err := s.catalog.Source(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) breadcrumb(c *gin.Context) {
	crumbs := catalog.Breadcrumb(c.Query("path"))
	if crumbs == nil {
		crumbs = []catalog.Crumb{}
	}
	c.JSON(http.StatusOK, crumbs)
}
