package upstream

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req, err := jsonRequest("login", http.MethodPost, "login/", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	req.anonymous = true

	var out LoginResponse
	if err := c.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken exchanges a refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (string, error) {
	req, err := jsonRequest("token_refresh", http.MethodPost, "token/refresh/", map[string]string{
		"refresh": refresh,
	})
	if err != nil {
		return "", err
	}
	req.anonymous = true

	var out struct {
		Access string `json:"access"`
	}
	if err := c.call(ctx, req, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", fmt.Errorf("token refresh returned no access token")
	}
	return out.Access, nil
}

// Categories lists every category.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.get(ctx, "categories", "categories/", nil, &out)
	return out, err
}

// Category fetches one category.
func (c *Client) Category(ctx context.Context, id int) (*Category, error) {
	var out Category
	if err := c.get(ctx, "category", idPath("categories", id, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Themes lists every theme.
func (c *Client) Themes(ctx context.Context) ([]Theme, error) {
	var out []Theme
	err := c.get(ctx, "themes", "themes/", nil, &out)
	return out, err
}

// Theme fetches one theme.
func (c *Client) Theme(ctx context.Context, id int) (*Theme, error) {
	var out Theme
	if err := c.get(ctx, "theme", idPath("themes", id, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Tables lists every table.
func (c *Client) Tables(ctx context.Context) ([]TableSummary, error) {
	var out []TableSummary
	err := c.get(ctx, "tables", "tableaux/", nil, &out)
	return out, err
}

// Table fetches one table summary.
func (c *Client) Table(ctx context.Context, id int) (*TableSummary, error) {
	var out TableSummary
	if err := c.get(ctx, "table", idPath("tableaux", id, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TableStructure returns the raw structure payload of a table.
func (c *Client) TableStructure(ctx context.Context, id int) ([]byte, error) {
	var out []byte
	err := c.get(ctx, "table_structure", idPath("tableaux", id, "structure/"), nil, &out)
	return out, err
}

// FilterOptions lists the labels a table can be filtered on.
func (c *Client) FilterOptions(ctx context.Context, id int) (*FilterOptions, error) {
	var out FilterOptions
	if err := c.get(ctx, "filter_options", idPath("tableaux", id, "filtres-options/"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FilterStructure returns the raw structure payload restricted to the
// selected rows and columns.
func (c *Client) FilterStructure(ctx context.Context, id int, filter FilterRequest) ([]byte, error) {
	if filter.Rows == nil {
		filter.Rows = []string{}
	}
	if filter.Columns == nil {
		filter.Columns = []string{}
	}
	req, err := jsonRequest("filter_structure", http.MethodPost, idPath("tableaux", id, "filtrer-structure/"), filter)
	if err != nil {
		return nil, err
	}
	var out []byte
	err = c.call(ctx, req, &out)
	return out, err
}

// Analysis returns the flat cell list of a table.
func (c *Client) Analysis(ctx context.Context, id int) (*Analysis, error) {
	var out Analysis
	if err := c.get(ctx, "analysis", idPath("tableaux", id, "analyse/"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Map returns per-region values of a table. An empty year selects the
// upstream default.
func (c *Client) Map(ctx context.Context, id int, year string) (*MapData, error) {
	var query url.Values
	if year != "" {
		query = url.Values{"annee": {year}}
	}
	var out MapData
	if err := c.get(ctx, "map", idPath("tableaux", id, "carte/"), query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Sources lists the distinct table sources.
func (c *Client) Sources(ctx context.Context) ([]string, error) {
	var out []string
	err := c.get(ctx, "sources", "sources/", nil, &out)
	return out, err
}

// SourceTables lists the tables of one source.
func (c *Client) SourceTables(ctx context.Context, source string) ([]SourceTable, error) {
	var out []SourceTable
	err := c.get(ctx, "source_tables", "sources/"+url.PathEscape(source)+"/tableaux/", nil, &out)
	return out, err
}

// Search runs the global search.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	var out []SearchResult
	err := c.get(ctx, "search", "recherche-globale/", url.Values{"q": {query}}, &out)
	return out, err
}

// Import uploads a workbook as multipart form data.
func (c *Client) Import(ctx context.Context, in ImportRequest) (*ImportResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", in.Filename)
	if err != nil {
		return nil, fmt.Errorf("building import form: %w", err)
	}
	if _, err := part.Write(in.Content); err != nil {
		return nil, fmt.Errorf("building import form: %w", err)
	}
	fields := map[string]int{"cat_id": in.CategoryID, "theme_id": in.ThemeID}
	for _, name := range []string{"cat_id", "theme_id"} {
		if err := w.WriteField(name, strconv.Itoa(fields[name])); err != nil {
			return nil, fmt.Errorf("building import form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("building import form: %w", err)
	}

	req := &request{
		endpoint:    "import",
		method:      http.MethodPost,
		path:        "import-excel/",
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	}
	var out ImportResult
	if err := c.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	return c.call(ctx, &request{
		endpoint: endpoint,
		method:   http.MethodGet,
		path:     path,
		query:    query,
	}, out)
}
