package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/hotspot/internal/services"
	"github.com/AI2HU/hotspot/internal/shared"
	"github.com/AI2HU/hotspot/internal/window"
)

// PresetResponse describes one selectable date preset
type PresetResponse struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status        string    `json:"status"`
	Time          time.Time `json:"time"`
	Uptime        string    `json:"uptime"`
	Source        string    `json:"source"`
	SnapshotStore bool      `json:"snapshot_store"`
	RecordArchive bool      `json:"record_archive"`
}

// health handles GET /api/v1/health
func (s *Server) health(c *gin.Context) {
	s.successResponse(c, HealthResponse{
		Status:        "ok",
		Time:          time.Now().UTC(),
		Uptime:        time.Since(s.startedAt).Round(time.Second).String(),
		Source:        s.dashboardService.SourceURI(),
		SnapshotStore: s.snapshotService.HasStore(),
		RecordArchive: s.snapshotService.HasArchive(),
	})
}

// listPresets handles GET /api/v1/presets
func (s *Server) listPresets(c *gin.Context) {
	presets := make([]PresetResponse, 0, len(window.Presets))
	for _, p := range window.Presets {
		presets = append(presets, PresetResponse{Name: string(p), Label: p.Label()})
	}
	s.successResponse(c, presets)
}

func (s *Server) buildDashboard(c *gin.Context, withRecords bool) {
	params, err := shared.ParseDashboardQuery(c)
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	dashboard, err := s.dashboardService.Build(c.Request.Context(), services.Query{
		Preset:      params.Preset,
		Start:       params.Start,
		End:         params.End,
		Facets:      params.Facets,
		Now:         params.Now(),
		WithRecords: withRecords,
	})
	if err != nil {
		s.failure(c, "Failed to build dashboard", err)
		return
	}

	s.successResponse(c, dashboard)
}

// getDashboard handles GET /api/v1/dashboard
func (s *Server) getDashboard(c *gin.Context) {
	s.buildDashboard(c, true)
}

// getSummary handles GET /api/v1/summary; same as the dashboard without the record list
func (s *Server) getSummary(c *gin.Context) {
	s.buildDashboard(c, false)
}

// getFacets handles GET /api/v1/facets
func (s *Server) getFacets(c *gin.Context) {
	facets, err := s.dashboardService.Facets(c.Request.Context())
	if err != nil {
		s.failure(c, "Failed to load facets", err)
		return
	}
	s.successResponse(c, facets)
}

// getKPIs handles GET /api/v1/kpi
func (s *Server) getKPIs(c *gin.Context) {
	params, err := shared.ParseDashboardQuery(c)
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	kpis, err := s.dashboardService.KPIs(c.Request.Context(), params.Now(), params.Facets)
	if err != nil {
		s.failure(c, "Failed to compute KPIs", err)
		return
	}
	s.successResponse(c, kpis)
}

// getMap handles GET /api/v1/map
func (s *Server) getMap(c *gin.Context) {
	s.successResponse(c, s.dashboardService.MapView())
}
