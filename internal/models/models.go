package models

import (
	"encoding/json"
	"time"
)

// APIResponse is the envelope returned by every API endpoint
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Snapshot records one load of the bulk source
type Snapshot struct {
	ID            string     `json:"id"`
	Source        string     `json:"source"`
	FetchedAt     time.Time  `json:"fetched_at"`
	TotalRows     int        `json:"total_rows"`
	KeptRows      int        `json:"kept_rows"`
	OtherKindRows int        `json:"other_kind_rows"`
	MalformedRows int        `json:"malformed_rows"`
	KindFiltered  bool       `json:"kind_filtered"`
	MinDate       *time.Time `json:"min_date,omitempty"`
	MaxDate       *time.Time `json:"max_date,omitempty"`
}

// NewSnapshot builds a snapshot from a load report and the dataset's date range
func NewSnapshot(id string, report *LoadReport, minDate, maxDate *time.Time) *Snapshot {
	s := &Snapshot{ID: id, MinDate: minDate, MaxDate: maxDate}
	if report != nil {
		s.Source = report.Source
		s.FetchedAt = report.FetchedAt
		s.TotalRows = report.TotalRows
		s.KeptRows = report.KeptRows
		s.OtherKindRows = report.OtherKindRows
		s.MalformedRows = report.MalformedRows
		s.KindFiltered = report.KindFiltered
	}
	return s
}

// MapView tells the presentation layer where to center the map
type MapView struct {
	CenterLat float64         `json:"center_lat"`
	CenterLon float64         `json:"center_lon"`
	Zoom      int             `json:"zoom"`
	Basemap   string          `json:"basemap"`
	Basemaps  []Basemap       `json:"basemaps"`
	Boundary  json.RawMessage `json:"boundary,omitempty"` // GeoJSON, passed through untouched
	FromFile  bool            `json:"from_file"`          // center derived from the boundary file
}

// Basemap is a selectable tile layer
type Basemap struct {
	Name  string `json:"name"`
	Tiles string `json:"tiles"`
}

// FacetValues lists the distinct values offered for each facet dropdown
type FacetValues struct {
	CategoryA []string `json:"category_a"`
	CategoryB []string `json:"category_b"`
}

// Dashboard is everything the presentation layer needs for one refresh
type Dashboard struct {
	Window          DateWindow           `json:"window"`
	DataMin         *time.Time           `json:"data_min,omitempty"`
	DataMax         *time.Time           `json:"data_max,omitempty"`
	Facets          []Facet              `json:"facets,omitempty"`
	Total           int                  `json:"total"`
	Records         []Record             `json:"records,omitempty"`
	ByCategory      []CategoryCount      `json:"by_category"`
	ByCategoryMonth []CategoryMonthCount `json:"by_category_month"`
	ByDay           []DayCount           `json:"by_day"`
	KPIs            KPIs                 `json:"kpis"`
	AvailableFacets FacetValues          `json:"available_facets"`
	Load            *LoadReport          `json:"load,omitempty"`
}

// Empty reports whether the filtered set has no records. An empty
// dashboard is a valid, displayable state.
func (d *Dashboard) Empty() bool {
	return d.Total == 0
}
