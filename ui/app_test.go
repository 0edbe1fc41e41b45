package ui

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"funnelboard/adapters/canvas"
	"funnelboard/adapters/memory"
	"funnelboard/app"
	"funnelboard/domain/funnel"
	"funnelboard/internal"
	"funnelboard/internal/queries"
	"funnelboard/ports"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	logger := internal.NewLogger(internal.LogLevelError)
	svc := app.NewFunnelService(app.DefaultServiceConfig(), logger)
	require.NoError(t, svc.Register(memory.DemoAccountCreation()))
	require.NoError(t, svc.Register(memory.NewSource("empty", funnel.Spec{})))

	catalog, err := queries.Default()
	require.NoError(t, err)

	a, err := NewApp(DefaultConfig(), svc, catalog, logger)
	require.NoError(t, err)
	return a
}

func get(t *testing.T, a *App, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestIndexPage(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="funnelPyramidChart"`)
	assert.Contains(t, body, `data-funnel="account-creation"`)
	assert.Contains(t, body, `data-query="account_funnel"`)

	rec = get(t, a, "/?funnel=empty")
	assert.Contains(t, rec.Body.String(), `data-funnel="empty"`)
}

func TestStaticAssets(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/static/js/dashboard.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "addEventListener('resize'")
}

func TestFunnelSpecEndpoint(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/api/funnel/account-creation")
	require.Equal(t, http.StatusOK, rec.Code)

	var spec funnel.Spec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Len(t, spec.Stages, 7)
	assert.Equal(t, "Account Created", spec.Stages[0].Label)
}

func TestFunnelErrors(t *testing.T) {
	a := newTestApp(t)

	rec := get(t, a, "/api/funnel/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Error)

	rec = get(t, a, "/api/funnel/empty/summary")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "EMPTY_FUNNEL", decodeError(t, rec).Error)

	for _, q := range []string{"width=abc", "width=0", "height=-1", "width=100000"} {
		rec = get(t, a, "/api/funnel/account-creation/pyramid.svg?"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Error, q)
	}
}

func TestListFunnels(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/api/funnels")
	require.Equal(t, http.StatusOK, rec.Code)

	var results []app.LoadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 2)
	assert.NotNil(t, results[0].Summary)
	assert.Equal(t, "EMPTY_FUNNEL", results[1].Code)
}

func TestPyramidEndpoints(t *testing.T) {
	a := newTestApp(t)

	rec := get(t, a, "/api/funnel/account-creation/pyramid.svg?width=600&height=400")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Render-ID"))
	assert.Equal(t, "miss", rec.Header().Get("X-Render-Cache"))
	assert.True(t, strings.Contains(rec.Body.String(), "<svg"))

	rec = get(t, a, "/api/funnel/account-creation/pyramid.svg?width=600&height=400")
	assert.Equal(t, "hit", rec.Header().Get("X-Render-Cache"))

	rec = get(t, a, "/api/funnel/account-creation/pyramid.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = get(t, a, "/api/funnel/account-creation/pyramid.json?width=500&height=300")
	require.Equal(t, http.StatusOK, rec.Code)
	var list canvas.Recorder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 500.0, list.Width)
	assert.Len(t, list.Ops, 1+7*5)
	assert.Equal(t, "Account Created", list.Ops[3].Text)
}

func TestExportWorkbook(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/api/funnel/account-creation/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "account-creation.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.NotEmpty(t, f.GetSheetList())
}

func TestBarChart(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/charts/funnel/account-creation")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "echarts")
	assert.Contains(t, body, "Enabled Finder")
	assert.Contains(t, body, "#667eea")
}

func TestSQLQueries(t *testing.T) {
	a := newTestApp(t)

	rec := get(t, a, "/api/sql-queries")
	require.Equal(t, http.StatusOK, rec.Code)
	var all map[string]queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Contains(t, all, "account_funnel")
	assert.Len(t, all, 23)
	assert.Equal(t, "Account Creation Drop-off Funnel", all["account_funnel"].Name)
	assert.Contains(t, all["account_funnel"].DescriptionHTML, "<strong>")

	rec = get(t, a, "/api/sql-queries/dau")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, a, "/api/sql-queries/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Query not found"}`, rec.Body.String())
}

func TestMetricsMetadata(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/api/metrics-metadata")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var md ports.MetricsMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &md))
	require.Len(t, md.Categories, 4)
	assert.Equal(t, "talent", md.Categories[3].ID)
	assert.Equal(t, "top_skills_projects", md.Categories[3].Metrics[4].ID)
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","funnels":2,"render_cache_entries":0}`, rec.Body.String())
}
