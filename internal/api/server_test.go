package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/hotspot/internal/db/sqlite"
	"github.com/AI2HU/hotspot/internal/loader"
	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/services"
)

type stubSource struct {
	records []models.Record
	err     error
}

func (s stubSource) Load(ctx context.Context, source string) ([]models.Record, *models.LoadReport, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.records, &models.LoadReport{Source: source, KeptRows: len(s.records)}, nil
}

func sampleRecords() []models.Record {
	var records []models.Record
	for d := 1; d <= 10; d++ {
		day := time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC)
		desa := "Sungai Ayak"
		if d > 5 {
			desa = "Nanga Pinoh"
		}
		records = append(records, models.Record{Timestamp: &day, CategoryA: desa, CategoryB: "B7"})
	}
	return records
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T, source services.RecordSource, snapshots *services.SnapshotService) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dashboard := services.NewDashboardService(source, "sheet.csv", models.MapView{CenterLat: -0.5, CenterLon: 110.5, Zoom: 7})
	return NewServer(dashboard, snapshots, "")
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, stubSource{}, nil)

	w, env := get(t, s, "/api/v1/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "sheet.csv", health.Source)
	assert.False(t, health.SnapshotStore)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDashboardWithPreset(t *testing.T) {
	s := newTestServer(t, stubSource{records: sampleRecords()}, nil)

	w, env := get(t, s, "/api/v1/dashboard?preset=last_7_days&today=2024-01-10")
	require.Equal(t, http.StatusOK, w.Code)

	var d models.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, "2024-01-04..2024-01-10", d.Window.String())
	assert.Equal(t, 7, d.Total)
	assert.Len(t, d.Records, 7)
	assert.Equal(t, 1, d.KPIs.Today)
}

func TestSummaryOmitsRecords(t *testing.T) {
	s := newTestServer(t, stubSource{records: sampleRecords()}, nil)

	w, env := get(t, s, "/api/v1/summary?category_a=Nanga%20Pinoh")
	require.Equal(t, http.StatusOK, w.Code)

	var d models.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, 5, d.Total)
	assert.Empty(t, d.Records)
	require.Len(t, d.ByCategory, 1)
	assert.Equal(t, "Nanga Pinoh", d.ByCategory[0].Category)
}

func TestDashboardEmptySelectionIsNotAnError(t *testing.T) {
	s := newTestServer(t, stubSource{records: sampleRecords()}, nil)

	w, env := get(t, s, "/api/v1/dashboard?start=2024-01-08&end=2024-01-03")
	require.Equal(t, http.StatusOK, w.Code)

	var d models.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Zero(t, d.Total)
	assert.NotNil(t, d.ByCategory)
}

func TestDashboardBadInputIs400(t *testing.T) {
	s := newTestServer(t, stubSource{records: sampleRecords()}, nil)

	for _, path := range []string{
		"/api/v1/dashboard?preset=fortnight",
		"/api/v1/dashboard?start=yesterday",
		"/api/v1/kpi?facet=broken",
	} {
		w, env := get(t, s, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.False(t, env.Success)
	}
}

func TestSourceUnavailableIs502(t *testing.T) {
	s := newTestServer(t, stubSource{err: fmt.Errorf("%w: status 500", loader.ErrSourceUnavailable)}, nil)

	for _, path := range []string{"/api/v1/dashboard", "/api/v1/facets", "/api/v1/kpi"} {
		w, env := get(t, s, path)
		assert.Equal(t, http.StatusBadGateway, w.Code, path)
		assert.Contains(t, env.Error, "source unavailable")
	}
}

func TestThrottledSourceIs503(t *testing.T) {
	s := newTestServer(t, stubSource{err: fmt.Errorf("%w: rate limit", loader.ErrThrottled)}, nil)

	for _, path := range []string{"/api/v1/dashboard", "/api/v1/facets", "/api/v1/kpi"} {
		w, env := get(t, s, path)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		assert.Contains(t, env.Error, "throttled")
	}
}

func TestFacetsKPIsMapAndPresets(t *testing.T) {
	s := newTestServer(t, stubSource{records: sampleRecords()}, nil)

	_, env := get(t, s, "/api/v1/facets")
	var facets models.FacetValues
	require.NoError(t, json.Unmarshal(env.Data, &facets))
	assert.Equal(t, []string{"Nanga Pinoh", "Sungai Ayak"}, facets.CategoryA)

	_, env = get(t, s, "/api/v1/kpi?today=2024-01-10&category_a=Sungai%20Ayak")
	var kpis models.KPIs
	require.NoError(t, json.Unmarshal(env.Data, &kpis))
	assert.Equal(t, 0, kpis.Today)
	assert.Equal(t, 2, kpis.Last7Days)
	assert.Equal(t, 5, kpis.Last30Days)

	_, env = get(t, s, "/api/v1/map")
	var view models.MapView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, 7, view.Zoom)

	_, env = get(t, s, "/api/v1/presets")
	var presets []PresetResponse
	require.NoError(t, json.Unmarshal(env.Data, &presets))
	assert.Len(t, presets, 5)
	assert.Equal(t, "all", presets[0].Name)
}

func TestSnapshotsEndpoints(t *testing.T) {
	store, err := sqlite.New(&models.Config{URI: filepath.Join(t.TempDir(), "hotspot.db")})
	require.NoError(t, err)
	require.NoError(t, store.Connect(context.Background()))
	defer store.Disconnect(context.Background())

	snapshots := services.NewSnapshotService(store, nil)
	s := newTestServer(t, stubSource{records: sampleRecords()}, snapshots)

	recorded, err := snapshots.Record(context.Background(), sampleRecords(), &models.LoadReport{Source: "sheet.csv", TotalRows: 10, KeptRows: 10})
	require.NoError(t, err)

	w, _ := get(t, s, "/api/v1/summary")
	require.Equal(t, http.StatusOK, w.Code)

	w, env := get(t, s, "/api/v1/snapshots")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1, "serving a dashboard does not record a snapshot")
	assert.Equal(t, recorded.ID, list[0].ID)

	w, env = get(t, s, "/api/v1/snapshots/"+recorded.ID)
	require.Equal(t, http.StatusOK, w.Code)
	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, 10, snap.KeptRows)

	w, _ = get(t, s, "/api/v1/snapshots/does-not-exist")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = get(t, s, "/api/v1/snapshots/"+recorded.ID+"/stats")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSnapshotsWithoutStore(t *testing.T) {
	s := newTestServer(t, stubSource{}, nil)

	w, env := get(t, s, "/api/v1/snapshots")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", string(env.Data))
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dashboard := services.NewDashboardService(stubSource{}, "sheet.csv", models.MapView{})
	s := NewServer(dashboard, nil, "https://dashboard.example.com")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/dashboard", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
