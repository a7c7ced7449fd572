package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/statportal/internal/importer"
	"github.com/vyrodovalexey/statportal/internal/util"
)

// importWorkbook forwards an uploaded workbook for the logged-in user.
func (s *Server) importWorkbook(c *gin.Context) {
	ctx := c.Request.Context()
	h := sessionFrom(c)
	if h == nil || h.User(ctx) == nil {
		s.respondError(c, errLoginRequired)
		return
	}
	user := h.User(ctx)

	req := importer.Request{}
	verr := util.NewValidationError("Veuillez remplir tous les champs.")
	req.ThemeID = formInt(c, "theme_id", verr)
	req.CategoryID = formInt(c, "cat_id", verr)
	if verr.HasErrors() {
		s.respondError(c, verr)
		return
	}

	fh, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		s.respondError(c, fmt.Errorf("reading upload: %w", err))
		return
	default:
		f, err := fh.Open()
		if err != nil {
			s.respondError(c, fmt.Errorf("opening upload: %w", err))
			return
		}
		req.Content, err = io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			s.respondError(c, fmt.Errorf("reading upload: %w", err))
			return
		}
		req.Filename = fh.Filename
	}

	msg, err := s.importer.Import(ctx, user, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// formInt reads an optional positive integer form field. Blank is zero.
func formInt(c *gin.Context, name string, verr *util.ValidationError) int {
	raw := strings.TrimSpace(c.PostForm(name))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		verr.AddField(name, "must be a positive integer")
		return 0
	}
	return n
}
