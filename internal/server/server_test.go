package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vyrodovalexey/statportal/internal/config"
	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/session"
	"github.com/vyrodovalexey/statportal/internal/upstream"
)

func init() {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})
}

const structurePayload = `{
  "meta": {"titre": "PIB", "source": "Comptes nationaux", "etiquette_ligne": "Branche"},
  "colonnes_order": [{"principal": "2022", "sous": ""}, {"principal": "2023", "sous": ""}],
  "data": [
    {"indicateur": "Total", "niveau": 0, "valeurs": {"2022": {"": "15000"}}},
    {"indicateur": "Mines", "niveau": 1, "valeurs": {"2023": {"": "N/D"}}}
  ]
}`

// fakeAPI is an in-process statistics API.
type fakeAPI struct {
	structureCalls atomic.Int32
	searchCalls    atomic.Int32
	imports        atomic.Int32
	expireTokens   atomic.Bool
	user           upstream.User
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Identifiants invalides"})
			return
		}
		writeJSON(w, http.StatusOK, upstream.LoginResponse{Access: "acc", Refresh: "ref", User: f.user})
	})
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "token_not_valid"})
	})
	mux.HandleFunc("/api/categories/", func(w http.ResponseWriter, r *http.Request) {
		if f.expireTokens.Load() && r.Header.Get("Authorization") != "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "token_not_valid"})
			return
		}
		writeJSON(w, http.StatusOK, []upstream.Category{
			{ID: 2, Name: "Économie"},
			{ID: 1, Name: "Démographie"},
		})
	})
	mux.HandleFunc("/api/tableaux/7/structure/", func(w http.ResponseWriter, _ *http.Request) {
		f.structureCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, structurePayload)
	})
	mux.HandleFunc("/api/tableaux/7/filtrer-structure/", func(w http.ResponseWriter, r *http.Request) {
		var body upstream.FilterRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"Total"}, body.Rows)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, structurePayload)
	})
	mux.HandleFunc("/api/tableaux/8/structure/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Tableau introuvable"})
	})
	mux.HandleFunc("/api/tableaux/7/carte/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, upstream.MapData{
			Title:  "Population",
			Years:  []string{"2024", "2023"},
			Values: map[string]float64{"Tunis": 1_100_000, "Sfax": 0},
		})
	})
	mux.HandleFunc("/api/recherche-globale/", func(w http.ResponseWriter, r *http.Request) {
		f.searchCalls.Add(1)
		hits := make([]upstream.SearchResult, 7)
		for i := range hits {
			hits[i] = upstream.SearchResult{Type: upstream.KindTable, ID: i + 1, Name: r.URL.Query().Get("q")}
		}
		writeJSON(w, http.StatusOK, hits)
	})
	mux.HandleFunc("/api/import-excel/", func(w http.ResponseWriter, r *http.Request) {
		f.imports.Add(1)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "3", r.FormValue("theme_id"))
		assert.Equal(t, "2", r.FormValue("cat_id"))
		writeJSON(w, http.StatusOK, map[string]string{"message": "Fichier importé"})
	})
	return mux
}

type testEnv struct {
	api    *fakeAPI
	server *Server
	store  *session.MemoryStore
}

func newTestEnv(t *testing.T, mutate ...func(*config.PortalConfig)) *testEnv {
	t.Helper()

	api := &fakeAPI{user: upstream.User{ID: 4, Email: "chef@example.org", IsChef: true, Category: &upstream.UserCategory{ID: 2, Name: "Démographie"}}}
	up := httptest.NewServer(api.handler(t))
	t.Cleanup(up.Close)

	cfg := config.DefaultConfig()
	cfg.Upstream.BaseURL = up.URL + "/api/"
	cfg.Upstream.Timeout = config.Duration(5 * time.Second)
	cfg.Server.RateLimit.Enabled = false
	for _, m := range mutate {
		m(cfg)
	}

	client, err := upstream.New(cfg.Upstream)
	require.NoError(t, err)

	store := session.NewMemoryStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	srv, err := New(cfg, Deps{API: client, Sessions: store})
	require.NoError(t, err)
	return &testEnv{api: api, server: srv, store: store}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return e.do(req)
}

// login returns the session cookie of a fresh login.
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"chef@example.org","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == "statportal_session" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func TestNew_RequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Deps{})
	assert.Error(t, err)

	client, err := upstream.New(config.UpstreamConfig{BaseURL: "http://localhost/api/"})
	require.NoError(t, err)
	_, err = New(nil, Deps{API: client})
	assert.Error(t, err)
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = env.get("/readyz")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.get("/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "statportal_")
}

func TestServer_LoginSessionLogout(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	var anon session.Info
	decodeBody(t, env.get("/api/session"), &anon)
	assert.False(t, anon.Authenticated)

	cookie := env.login(t)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 1, env.store.Len())

	var info session.Info
	decodeBody(t, env.get("/api/session", cookie), &info)
	assert.True(t, info.Authenticated)
	assert.True(t, info.CanImport)
	require.NotNil(t, info.User)
	assert.Equal(t, "chef@example.org", info.User.Email)

	// A second login rotates the id and drops the old session.
	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"chef@example.org","password":"secret"}`))
	req.AddCookie(cookie)
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.store.Len())

	req = httptest.NewRequest(http.MethodPost, "/api/logout", http.NoBody)
	req.AddCookie(w.Result().Cookies()[0])
	w = env.do(req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, env.store.Len())
	require.NotEmpty(t, w.Result().Cookies())
	assert.Less(t, w.Result().Cookies()[0].MaxAge, 0)
}

// brokenDeleteStore fails deletion of one session id.
type brokenDeleteStore struct {
	*session.MemoryStore
	failID string
}

func (s *brokenDeleteStore) Delete(ctx context.Context, id string) error {
	if id == s.failID {
		return errors.New("store unavailable")
	}
	return s.MemoryStore.Delete(ctx, id)
}

func TestServer_LoginLogsFailedClear(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{user: upstream.User{ID: 4, Email: "chef@example.org", IsChef: true}}
	up := httptest.NewServer(api.handler(t))
	t.Cleanup(up.Close)

	cfg := config.DefaultConfig()
	cfg.Upstream.BaseURL = up.URL + "/api/"
	cfg.Server.RateLimit.Enabled = false

	client, err := upstream.New(cfg.Upstream)
	require.NoError(t, err)

	mem := session.NewMemoryStore(time.Hour)
	t.Cleanup(func() { _ = mem.Close() })
	store := &brokenDeleteStore{MemoryStore: mem}

	core, logs := observer.New(zap.WarnLevel)
	srv, err := New(cfg, Deps{
		API:      client,
		Sessions: store,
		Logger:   observability.NewLoggerFromZap(zap.New(core)),
	})
	require.NoError(t, err)
	env := &testEnv{api: api, server: srv, store: mem}

	cookie := env.login(t)
	store.failID = cookie.Value

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"chef@example.org","password":"secret"}`))
	req.AddCookie(cookie)
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	entries := logs.FilterMessage("failed to clear previous session").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "store unavailable", entries[0].ContextMap()["error"])
}

func TestServer_LoginErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantFields []string
	}{
		{name: "malformed", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "missing fields", body: `{}`, wantStatus: http.StatusBadRequest, wantFields: []string{"email", "password"}},
		{name: "bad password", body: `{"email":"a@b.c","password":"nope"}`, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body))
			w := env.do(req)
			assert.Equal(t, tt.wantStatus, w.Code)

			var body errorBody
			decodeBody(t, w, &body)
			for _, f := range tt.wantFields {
				assert.Contains(t, body.Fields, f)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Identifiants invalides", body.Message)
				assert.True(t, body.LoginRequired)
			}
		})
	}
}

func TestServer_Categories(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	var all []map[string]any
	decodeBody(t, env.get("/api/categories"), &all)
	require.Len(t, all, 2)
	assert.EqualValues(t, 1, all[0]["id"])

	var filtered []map[string]any
	decodeBody(t, env.get("/api/categories?q=ECONO"), &filtered)
	require.Len(t, filtered, 1)
	assert.EqualValues(t, 2, filtered[0]["id"])
}

func TestServer_SessionExpired(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	cookie := env.login(t)
	env.api.expireTokens.Store(true)

	w := env.get("/api/categories", cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body errorBody
	decodeBody(t, w, &body)
	assert.True(t, body.LoginRequired)
	assert.Equal(t, 0, env.store.Len())

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "statportal_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestServer_TableView(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	for range 2 {
		w := env.get("/api/tables/7?width=1200&header_height=30")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var view map[string]any
		decodeBody(t, w, &view)
		assert.Contains(t, view, "layout")
	}
	assert.EqualValues(t, 1, env.api.structureCalls.Load())
}

func TestServer_TableErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{path: "/api/tables/abc", wantStatus: http.StatusBadRequest},
		{path: "/api/tables/7?width=-3", wantStatus: http.StatusBadRequest},
		{path: "/api/tables/8", wantStatus: http.StatusNotFound},
		{path: "/api/tables/7/export?format=docx", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := env.get(tt.path)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestServer_FilterTable(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/tables/7/filter",
		strings.NewReader(`{"lignes":["Total"],"colonnes":[]}`))
	req.Header.Set("Content-Type", "application/json")
	w := env.do(req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestServer_Export(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	w := env.get("/api/tables/7/export?format=csv")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, `attachment; filename="tableau_7.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "Total")

	req := httptest.NewRequest(http.MethodGet, "/api/tables/7/export", http.NoBody)
	req.Header.Set("Accept", "application/pdf")
	w = env.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = env.get("/api/tables/7/export?format=xlsx&lignes=Total")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `attachment; filename="tableau_7.xlsx"`, w.Header().Get("Content-Disposition"))
}

func TestServer_Map(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.get("/api/tables/7/map?annee=2023")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var m map[string]any
	decodeBody(t, w, &m)
	assert.Equal(t, "2023", m["year"])
}

func TestServer_Breadcrumb(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	var crumbs []map[string]any
	decodeBody(t, env.get("/api/breadcrumb?path=/etat-civil/3"), &crumbs)
	require.Len(t, crumbs, 3)
	assert.Equal(t, "Accueil", crumbs[0]["label"])
	assert.Equal(t, "Etat Civil", crumbs[1]["label"])

	decodeBody(t, env.get("/api/breadcrumb?path=/"), &crumbs)
	assert.Empty(t, crumbs)
}

func TestServer_Search(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	var short map[string]any
	decodeBody(t, env.get("/api/search?q=a"), &short)
	assert.EqualValues(t, 0, short["total"])
	assert.Zero(t, env.api.searchCalls.Load())

	var preview map[string]any
	decodeBody(t, env.get("/api/search?q=pib"), &preview)
	assert.EqualValues(t, 7, preview["total"])
	assert.Len(t, preview["items"], 5)
	assert.Equal(t, true, preview["truncated"])

	var all map[string]any
	decodeBody(t, env.get("/api/search?q=pib&all=true"), &all)
	assert.Len(t, all["items"], 7)
}

func multipartImport(t *testing.T, fields map[string]string, filename string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("PK\x03\x04workbook"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestServer_Import(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	w := env.do(multipartImport(t, map[string]string{"theme_id": "3"}, "data.xlsx"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var anon errorBody
	decodeBody(t, w, &anon)
	assert.True(t, anon.LoginRequired)

	cookie := env.login(t)

	req := multipartImport(t, map[string]string{"theme_id": "3"}, "")
	req.AddCookie(cookie)
	w = env.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = multipartImport(t, map[string]string{"theme_id": "x"}, "data.xlsx")
	req.AddCookie(cookie)
	w = env.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = multipartImport(t, map[string]string{"theme_id": "3"}, "data.xlsx")
	req.AddCookie(cookie)
	w = env.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"Fichier importé"}`, w.Body.String())
	assert.EqualValues(t, 1, env.api.imports.Load())
}

func TestServer_RateLimit(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(cfg *config.PortalConfig) {
		cfg.Server.RateLimit = config.RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 0.001,
			Burst:             1,
			ClientTTL:         config.Duration(time.Minute),
		}
	})

	assert.Equal(t, http.StatusOK, env.get("/api/breadcrumb?path=/a").Code)
	w := env.get("/api/breadcrumb?path=/a")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestServer_BodyLimit(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(cfg *config.PortalConfig) {
		cfg.Server.MaxBodySize = 16
	})
	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"chef@example.org","password":"secret"}`))
	w := env.do(req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestServer_SetTableConfig(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tc := config.DefaultConfig().Table
	tc.CensusYears = []int{2022}
	env.server.SetTableConfig(tc)

	opts := env.server.tableOptions()
	assert.True(t, opts.Classifier.IsProjectionColumn("2023", "Projections"))
}

func TestServer_StartAndShutdown(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(cfg *config.PortalConfig) {
		cfg.Server.Port = 0
		cfg.Server.ShutdownTimeout = config.Duration(time.Second)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
