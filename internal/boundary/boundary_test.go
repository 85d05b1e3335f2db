package boundary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/hotspot/internal/config"
)

const concession = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Blok A"},
     "geometry": {"type": "Polygon", "coordinates": [[[110.0, -1.0], [111.0, -1.0], [111.0, 0.0], [110.0, 0.0], [110.0, -1.0]]]}},
    {"type": "Feature", "properties": {"name": "Pos"},
     "geometry": {"type": "Point", "coordinates": [112.0, 0.5]}}
  ]
}`

func TestParseFeatureCollection(t *testing.T) {
	e, err := Parse([]byte(concession))
	require.NoError(t, err)

	assert.Equal(t, Extent{MinLon: 110, MinLat: -1, MaxLon: 112, MaxLat: 0.5}, e)
	lat, lon := e.Center()
	assert.InDelta(t, -0.25, lat, 1e-9)
	assert.InDelta(t, 111.0, lon, 1e-9)
}

func TestParseBareGeometry(t *testing.T) {
	e, err := Parse([]byte(`{"type": "Point", "coordinates": [110.5, -0.5]}`))
	require.NoError(t, err)
	lat, lon := e.Center()
	assert.InDelta(t, -0.5, lat, 1e-9)
	assert.InDelta(t, 110.5, lon, 1e-9)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("not json"))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"type": "FeatureCollection", "features": []}`))
	assert.Error(t, err)
}

func TestMapViewFallsBackToConfiguredCenter(t *testing.T) {
	cfg := config.DefaultConfig().Map

	view := MapView(cfg)
	assert.Equal(t, config.DefaultCenterLat, view.CenterLat)
	assert.Equal(t, config.DefaultCenterLon, view.CenterLon)
	assert.False(t, view.FromFile)
	assert.Equal(t, "OpenStreetMap", view.Basemap)
	assert.Len(t, view.Basemaps, len(Basemaps))

	cfg.BoundaryPath = filepath.Join(t.TempDir(), "missing.json")
	view = MapView(cfg)
	assert.Equal(t, config.DefaultCenterLat, view.CenterLat)
	assert.Nil(t, view.Boundary)
}

func TestMapViewUsesBoundaryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CMI.json")
	require.NoError(t, os.WriteFile(path, []byte(concession), 0644))

	cfg := config.DefaultConfig().Map
	cfg.BoundaryPath = path

	view := MapView(cfg)
	assert.True(t, view.FromFile)
	assert.InDelta(t, -0.25, view.CenterLat, 1e-9)
	assert.InDelta(t, 111.0, view.CenterLon, 1e-9)
	assert.Equal(t, config.DefaultZoom, view.Zoom)
	assert.JSONEq(t, concession, string(view.Boundary))
}

func TestUnknownBasemapFallsBackToFirst(t *testing.T) {
	cfg := config.DefaultConfig().Map
	cfg.Basemap = "Esri World Imagery"
	assert.Equal(t, "Esri World Imagery", MapView(cfg).Basemap)

	cfg.Basemap = "Google Satellite"
	assert.Equal(t, Basemaps[0].Name, MapView(cfg).Basemap)
}
