package boundary

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/AI2HU/hotspot/internal/config"
	"github.com/AI2HU/hotspot/internal/logger"
	"github.com/AI2HU/hotspot/internal/models"
)

// Extent is a lon/lat bounding box
type Extent struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// Center returns the midpoint of the extent as (lat, lon)
func (e Extent) Center() (float64, float64) {
	return (e.MinLat + e.MaxLat) / 2, (e.MinLon + e.MaxLon) / 2
}

// Parse decodes a GeoJSON document (FeatureCollection, Feature or bare
// geometry) and returns the extent of every geometry in it.
func Parse(data []byte) (Extent, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Extent{}, fmt.Errorf("failed to parse boundary: %w", err)
	}

	var geometries []geom.T
	switch probe.Type {
	case "FeatureCollection":
		var fc geojson.FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return Extent{}, fmt.Errorf("failed to parse feature collection: %w", err)
		}
		for _, f := range fc.Features {
			if f != nil && f.Geometry != nil {
				geometries = append(geometries, f.Geometry)
			}
		}
	case "Feature":
		var f geojson.Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return Extent{}, fmt.Errorf("failed to parse feature: %w", err)
		}
		if f.Geometry != nil {
			geometries = append(geometries, f.Geometry)
		}
	default:
		var g geom.T
		if err := geojson.Unmarshal(data, &g); err != nil {
			return Extent{}, fmt.Errorf("failed to parse geometry: %w", err)
		}
		geometries = append(geometries, g)
	}

	return extentOf(geometries)
}

func extentOf(geometries []geom.T) (Extent, error) {
	e := Extent{
		MinLon: math.Inf(1), MinLat: math.Inf(1),
		MaxLon: math.Inf(-1), MaxLat: math.Inf(-1),
	}
	found := false
	for _, g := range geometries {
		b := g.Bounds()
		if b == nil || b.IsEmpty() {
			continue
		}
		found = true
		e.MinLon = math.Min(e.MinLon, b.Min(0))
		e.MinLat = math.Min(e.MinLat, b.Min(1))
		e.MaxLon = math.Max(e.MaxLon, b.Max(0))
		e.MaxLat = math.Max(e.MaxLat, b.Max(1))
	}
	if !found {
		return Extent{}, fmt.Errorf("boundary has no coordinates")
	}
	return e, nil
}

// Basemaps are the tile layers offered to the map, in display order
var Basemaps = []models.Basemap{
	{Name: "OpenStreetMap", Tiles: "OpenStreetMap"},
	{Name: "CartoDB Positron", Tiles: "CartoDB positron"},
	{Name: "CartoDB Dark", Tiles: "CartoDB dark_matter"},
	{Name: "Esri World Imagery", Tiles: "Esri.WorldImagery"},
	{Name: "Stamen Terrain", Tiles: "Stamen Terrain"},
}

// selectBasemap returns name if it is a known basemap, otherwise the first one
func selectBasemap(name string) string {
	for _, b := range Basemaps {
		if b.Name == name {
			return name
		}
	}
	return Basemaps[0].Name
}

// MapView builds the map view from config. When a boundary file is
// configured and readable, the map is centered on it and the GeoJSON is
// passed through; otherwise the configured center is used and the error,
// if any, is logged.
func MapView(cfg config.MapConfig) models.MapView {
	view := models.MapView{
		CenterLat: cfg.CenterLat,
		CenterLon: cfg.CenterLon,
		Zoom:      cfg.Zoom,
		Basemap:   selectBasemap(cfg.Basemap),
		Basemaps:  Basemaps,
	}
	if cfg.BoundaryPath == "" {
		return view
	}

	data, err := os.ReadFile(cfg.BoundaryPath)
	if err != nil {
		logger.Warning("Boundary file unavailable, using default map center: %v", err)
		return view
	}
	extent, err := Parse(data)
	if err != nil {
		logger.Warning("Boundary file %s unusable, using default map center: %v", cfg.BoundaryPath, err)
		return view
	}

	view.CenterLat, view.CenterLon = extent.Center()
	view.Boundary = json.RawMessage(data)
	view.FromFile = true
	return view
}
