package shared

import (
	"time"

	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/window"
)

// DashboardParams are the filter inputs accepted by both the API and the CLI
type DashboardParams struct {
	Preset window.Preset
	Start  *time.Time
	End    *time.Time
	Facets []models.Facet
	Today  *time.Time // overrides the wall clock for KPIs
}

// Now returns the instant KPIs are computed against
func (p DashboardParams) Now() time.Time {
	if p.Today != nil {
		return *p.Today
	}
	return time.Now()
}
