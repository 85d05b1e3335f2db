package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/shared"
	"github.com/AI2HU/hotspot/internal/window"
)

// SnapshotStatsResponse holds archive-side aggregations for one snapshot
type SnapshotStatsResponse struct {
	SnapshotID      string                      `json:"snapshot_id"`
	Window          models.DateWindow           `json:"window"`
	ByCategory      []models.CategoryCount      `json:"by_category"`
	ByCategoryMonth []models.CategoryMonthCount `json:"by_category_month"`
}

// listSnapshots handles GET /api/v1/snapshots
func (s *Server) listSnapshots(c *gin.Context) {
	limit := shared.ParseLimit(c, 20, 500)

	snapshots, err := s.snapshotService.List(c.Request.Context(), limit)
	if err != nil {
		s.failure(c, "Failed to list snapshots", err)
		return
	}
	s.successResponse(c, snapshots)
}

// getSnapshot handles GET /api/v1/snapshots/:id
func (s *Server) getSnapshot(c *gin.Context) {
	snapshot, err := s.snapshotService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.failure(c, "Failed to get snapshot", err)
		return
	}
	s.successResponse(c, snapshot)
}

// getSnapshotStats handles GET /api/v1/snapshots/:id/stats. The window is
// resolved against the snapshot's own date range.
func (s *Server) getSnapshotStats(c *gin.Context) {
	if !s.snapshotService.HasArchive() {
		s.errorResponse(c, http.StatusServiceUnavailable, "Record archive is not configured")
		return
	}

	params, err := shared.ParseDashboardQuery(c)
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	snapshot, err := s.snapshotService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.failure(c, "Failed to get snapshot", err)
		return
	}

	response := SnapshotStatsResponse{
		SnapshotID:      snapshot.ID,
		ByCategory:      []models.CategoryCount{},
		ByCategoryMonth: []models.CategoryMonthCount{},
	}
	if snapshot.MinDate == nil || snapshot.MaxDate == nil {
		s.successResponse(c, response)
		return
	}

	response.Window = window.ResolveWindow(*snapshot.MinDate, *snapshot.MaxDate, window.Selection{
		Preset: params.Preset,
		Start:  params.Start,
		End:    params.End,
	})

	byCategory, byMonth, err := s.snapshotService.ArchivedCounts(c.Request.Context(), snapshot.ID, response.Window)
	if err != nil {
		s.failure(c, "Failed to aggregate snapshot", err)
		return
	}
	response.ByCategory = byCategory
	response.ByCategoryMonth = byMonth

	s.successResponse(c, response)
}
