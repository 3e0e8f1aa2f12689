package api_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwmc/portable-launcher/internal/api"
	"github.com/cwmc/portable-launcher/internal/api/apierr"
	"github.com/cwmc/portable-launcher/internal/api/handler"
	"github.com/cwmc/portable-launcher/internal/api/response"
	"github.com/cwmc/portable-launcher/internal/factory"
	"github.com/cwmc/portable-launcher/internal/middleware"
	"github.com/cwmc/portable-launcher/internal/model"
	"github.com/cwmc/portable-launcher/internal/services/directory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		AuthService:   app.AuthService,
		RosterService: app.RosterService,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path, body string, admin bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if admin {
		req.SetBasicAuth(factory.TestAdminUsername, factory.TestAdminPassword)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestDocumentsNotPublished(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{directory.TeamsPath, directory.ConfigPath} {
		rr := ts.request(http.MethodGet, path, "", false)
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
		assert.Equal(t, apierr.CodeDocumentNotFound, decodeError(t, rr).Code)
	}
}

func TestPublishAndFetchTeams(t *testing.T) {
	ts := newTestServer(t)

	body := `{
		// comments are allowed in uploads
		"teams": [{"name": "Red (1)", "members": ["Kovács Anna"], "server_port": 25566},]
	}`
	rr := ts.request(http.MethodPut, "/admin/teams.json", body, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var published response.Published
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &published))
	assert.Equal(t, model.DocumentTeams, published.Document)
	assert.Equal(t, factory.TestAdminUsername, published.UpdatedBy)
	assert.NotEmpty(t, published.Revision)
	assert.True(t, published.UpdatedAt.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))

	rr = ts.request(http.MethodGet, "/teams.json", "", false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	var doc model.TeamsDocument
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	require.Len(t, doc.Teams, 1)
	assert.Equal(t, "Red (1)", doc.Teams[0].Name)
	assert.Equal(t, []string{"Kovács Anna"}, doc.Teams[0].Members)
}

func TestPublishAndFetchConfig(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPut, "/admin/args.json", `{"useModpack": true, "wipeOnStart": true, "modpackUrl": "event.zip"}`, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodGet, "/args.json", "", false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"useModpack": true, "wipeOnStart": true, "modpackUrl": "event.zip"}`, rr.Body.String())
}

func TestPublishInvalidDocument(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPut, "/admin/teams.json", `{"teams": [{"name": "Red", "server_port": 99999}]}`, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := decodeError(t, rr)
	assert.Equal(t, apierr.CodeInvalidDocument, apiErr.Code)
	assert.Contains(t, apiErr.Message, "99999")
}

func TestPublishTooLarge(t *testing.T) {
	ts := newTestServer(t)

	body := `{"teams": [], "pad": "` + strings.Repeat("x", handler.MaxDocumentBytes) + `"}`
	rr := ts.request(http.MethodPut, "/admin/teams.json", body, true)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestAdminRequiresCredentials(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPut, "/admin/args.json", `{}`, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodPut, "/admin/args.json", strings.NewReader(`{}`))
	req.SetBasicAuth(factory.TestAdminUsername, "wrong")
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/args.json", "", false)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminDisabledWithoutPasswordHash(t *testing.T) {
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)
	router := api.NewRouter(api.RouterConfig{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		AuthService:   app.AuthService,
		RosterService: app.RosterService,
	})

	req := httptest.NewRequest(http.MethodPut, "/admin/args.json", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeAdminDisabled, decodeError(t, rr).Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/nope.json", "", false)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decodeError(t, rr).Code)
}

// The launcher's own client must be able to read what the server publishes
func TestLauncherClientReadsPublishedDocuments(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()

	_, err := ts.app.RosterService.PutTeams(ctx, []byte(`{"teams": [{"name": "Blue (2)", "members": ["Nagy Béla"], "server_port": 25567}]}`), "seed")
	require.NoError(t, err)
	_, err = ts.app.RosterService.PutConfig(ctx, []byte(`{"wipeOnStart": true}`), "seed")
	require.NoError(t, err)

	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	client, err := directory.NewClient(srv.URL, srv.Client())
	require.NoError(t, err)

	teams, err := client.FetchTeams(ctx)
	require.NoError(t, err)
	require.Len(t, teams.Teams, 1)
	assert.True(t, teams.Teams[0].HasMember("Nagy Béla"))

	cfg, err := client.FetchConfig(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.WipeOnStart)
}
