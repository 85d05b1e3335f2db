package services

import (
	"context"
	"fmt"
	"time"

	"github.com/AI2HU/hotspot/internal/filter"
	"github.com/AI2HU/hotspot/internal/logger"
	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/stats"
	"github.com/AI2HU/hotspot/internal/window"
)

// RecordSource loads the full hotspot dataset
type RecordSource interface {
	Load(ctx context.Context, source string) ([]models.Record, *models.LoadReport, error)
}

// Query is one dashboard refresh: a date selection, facet constraints and
// the wall-clock instant KPIs are computed against.
type Query struct {
	Preset      window.Preset
	Start       *time.Time
	End         *time.Time
	Facets      []models.Facet
	Now         time.Time
	WithRecords bool // include the filtered records, e.g. for map markers
}

// Selection returns the date part of the query
func (q Query) Selection() window.Selection {
	return window.Selection{Preset: q.Preset, Start: q.Start, End: q.End}
}

// DashboardService loads the dataset and derives every dashboard view from it
type DashboardService struct {
	source    RecordSource
	sourceURI string
	mapView   models.MapView
	log       *logger.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(source RecordSource, sourceURI string, mapView models.MapView) *DashboardService {
	return &DashboardService{
		source:    source,
		sourceURI: sourceURI,
		mapView:   mapView,
		log:       logger.Component("dashboard"),
	}
}

// SourceURI returns the configured bulk source
func (s *DashboardService) SourceURI() string {
	return s.sourceURI
}

// Load fetches the dataset once
func (s *DashboardService) Load(ctx context.Context) ([]models.Record, *models.LoadReport, error) {
	records, report, err := s.source.Load(ctx, s.sourceURI)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load hotspots: %w", err)
	}
	return records, report, nil
}

// Build loads the dataset and computes the dashboard for q. It only reads:
// snapshots are recorded by the refresher.
func (s *DashboardService) Build(ctx context.Context, q Query) (*models.Dashboard, error) {
	records, report, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := Compose(records, q)
	dashboard.Load = report

	s.log.Debug("Built dashboard for %s: %d of %d records", dashboard.Window, dashboard.Total, len(records))
	return dashboard, nil
}

// Facets returns the values offered for each facet dropdown
func (s *DashboardService) Facets(ctx context.Context) (models.FacetValues, error) {
	records, _, err := s.Load(ctx)
	if err != nil {
		return models.FacetValues{}, err
	}
	return facetValues(records), nil
}

// KPIs returns today-relative counts over the records matching facets
func (s *DashboardService) KPIs(ctx context.Context, now time.Time, facets []models.Facet) (models.KPIs, error) {
	records, _, err := s.Load(ctx)
	if err != nil {
		return models.KPIs{}, err
	}
	return stats.TodayKPIs(filter.ByFacets(records, facets), now), nil
}

// MapView returns the map settings handed to the presentation layer
func (s *DashboardService) MapView() models.MapView {
	return s.mapView
}

// Compose derives the dashboard from already-loaded records. The date
// window is resolved against the data's own min and max dates; KPIs ignore
// the window and only honor the facets.
func Compose(records []models.Record, q Query) *models.Dashboard {
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}

	dashboard := &models.Dashboard{
		Facets:          q.Facets,
		AvailableFacets: facetValues(records),
	}

	if lo, hi, ok := window.Bounds(records); ok {
		dashboard.DataMin, dashboard.DataMax = &lo, &hi
		dashboard.Window = window.ResolveWindow(lo, hi, q.Selection())
	}

	filtered := filter.Filter(records, dashboard.Window, q.Facets)

	dashboard.Total = len(filtered)
	dashboard.ByCategory = stats.SortByCount(stats.ByCategory(filtered))
	dashboard.ByCategoryMonth = stats.ByCategoryAndMonth(filtered)
	dashboard.ByDay = stats.ByDay(filtered)
	dashboard.KPIs = stats.TodayKPIs(filter.ByFacets(records, q.Facets), now)
	if q.WithRecords {
		dashboard.Records = filtered
	}

	return dashboard
}

func facetValues(records []models.Record) models.FacetValues {
	return models.FacetValues{
		CategoryA: filter.DistinctValues(records, models.FieldCategoryA),
		CategoryB: filter.DistinctValues(records, models.FieldCategoryB),
	}
}
