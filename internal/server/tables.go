package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/statportal/internal/cache"
	"github.com/vyrodovalexey/statportal/internal/export"
	"github.com/vyrodovalexey/statportal/internal/table"
	"github.com/vyrodovalexey/statportal/internal/upstream"
	"github.com/vyrodovalexey/statportal/internal/util"
)

const jsonContentType = "application/json; charset=utf-8"

// filterBody is the row and column selection of a filtered view.
type filterBody struct {
	Rows    []string `json:"lignes"`
	Columns []string `json:"colonnes"`
}

func (f filterBody) empty() bool {
	return len(f.Rows) == 0 && len(f.Columns) == 0
}

func (s *Server) getTable(c *gin.Context) {
	id, vp, ok := s.tableParams(c)
	if !ok {
		return
	}
	v, err := s.buildView(c.Request.Context(), id, filterBody{}, vp)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) filterTable(c *gin.Context) {
	id, vp, ok := s.tableParams(c)
	if !ok {
		return
	}
	var body filterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, fmt.Errorf("%w: filter body: %w", util.ErrInvalidInput, err))
		return
	}
	v, err := s.buildView(c.Request.Context(), id, body, vp)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) filterOptions(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	data, err := cache.GetOrLoad(c.Request.Context(), s.cache, cache.FilterOptionsKey(id), s.cacheTTL(),
		func(ctx context.Context) ([]byte, error) {
			opts, err := s.api.FilterOptions(ctx, id)
			if err != nil {
				return nil, err
			}
			return json.Marshal(opts)
		})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, jsonContentType, data)
}

// exportTable renders the view into memory first so that a failing exporter
// still produces a JSON error instead of a truncated file.
func (s *Server) exportTable(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	f, err := export.Negotiate(c.Query("format"), c.GetHeader("Accept"), export.FormatCSV)
	if err != nil {
		s.respondError(c, err)
		return
	}
	exporter, err := s.exports.Get(f)
	if err != nil {
		s.respondError(c, err)
		return
	}

	filter := filterBody{
		Rows:    splitSelection(c.QueryArray("lignes")),
		Columns: splitSelection(c.QueryArray("colonnes")),
	}
	ctx := c.Request.Context()
	v, err := s.buildView(ctx, id, filter, table.Viewport{})
	if err != nil {
		s.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := s.exports.Write(ctx, &buf, f, v); err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(id, f)))
	c.Data(http.StatusOK, exporter.ContentType(), buf.Bytes())
}

// buildView loads the full or filtered structure through the cache and
// renders it with the current table settings.
func (s *Server) buildView(ctx context.Context, id int, filter filterBody, vp table.Viewport) (*table.View, error) {
	var (
		key  string
		load func(context.Context) ([]byte, error)
	)
	if filter.empty() {
		key = cache.StructureKey(id)
		load = func(ctx context.Context) ([]byte, error) {
			return s.api.TableStructure(ctx, id)
		}
	} else {
		key = cache.FilteredKey(id, filter.Rows, filter.Columns)
		load = func(ctx context.Context) ([]byte, error) {
			return s.api.FilterStructure(ctx, id, upstream.FilterRequest{
				Rows:    filter.Rows,
				Columns: filter.Columns,
			})
		}
	}

	data, err := cache.GetOrLoad(ctx, s.cache, key, s.cacheTTL(), load)
	if err != nil {
		return nil, err
	}
	t, err := table.Decode(data)
	if err != nil {
		return nil, err
	}
	opts := s.tableOptions()
	opts.Viewport = vp
	return table.Build(t, opts), nil
}

// tableParams reads the table id and the optional viewport measurements.
func (s *Server) tableParams(c *gin.Context) (int, table.Viewport, bool) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return 0, table.Viewport{}, false
	}

	verr := util.NewValidationError("Paramètres d'affichage invalides.")
	measure := func(name string) float64 {
		raw := c.Query(name)
		if raw == "" {
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			verr.AddField(name, "must be a non-negative number")
			return 0
		}
		return v
	}
	vp := table.Viewport{
		Width:            measure("width"),
		HeaderRowHeight:  measure("header_height"),
		FirstColumnWidth: measure("first_col_width"),
	}
	if verr.HasErrors() {
		s.respondError(c, verr)
		return 0, table.Viewport{}, false
	}
	return id, vp, true
}

func (s *Server) cacheTTL() time.Duration {
	return s.cfg.Cache.TTL.Duration()
}

// splitSelection drops blank values. Labels may contain commas, so each
// label is its own repeated parameter.
func splitSelection(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
