package shared

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/window"
)

func TestParseDashboardParams(t *testing.T) {
	params, err := ParseDashboardParams(RawParams{
		Preset:    "Last 7 days",
		Start:     "2024-01-02",
		CategoryA: "Sungai Ayak",
		CategoryB: models.ShowAll,
		Facets:    []string{"Owner:PT A", ""},
	})
	require.NoError(t, err)

	assert.Equal(t, window.PresetLast7Days, params.Preset)
	require.NotNil(t, params.Start)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), *params.Start)
	assert.Nil(t, params.End)
	assert.Equal(t, []models.Facet{
		{Field: models.FieldCategoryA, Value: "Sungai Ayak"},
		{Field: models.FieldCategoryB, Value: models.ShowAll},
		{Field: "Owner", Value: "PT A"},
	}, params.Facets)
}

func TestParseDashboardParamsRejectsBadInput(t *testing.T) {
	_, err := ParseDashboardParams(RawParams{Preset: "fortnight"})
	assert.Error(t, err)

	_, err = ParseDashboardParams(RawParams{Start: "05/01/2024"})
	assert.Error(t, err)

	_, err = ParseDashboardParams(RawParams{Facets: []string{"no-separator"}})
	assert.Error(t, err)
}

func TestDashboardParamsNow(t *testing.T) {
	today := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, today, DashboardParams{Today: &today}.Now())
	assert.WithinDuration(t, time.Now(), DashboardParams{}.Now(), time.Minute)
}

func TestParseDashboardQueryAndLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?preset=30d&facet=Owner:PT%20A&facet=Blok=B7&limit=500", nil)

	params, err := ParseDashboardQuery(c)
	require.NoError(t, err)
	assert.Equal(t, window.PresetLast30Days, params.Preset)
	assert.Len(t, params.Facets, 2)

	assert.Equal(t, 20, ParseLimit(c, 20, 100))
	c.Request = httptest.NewRequest("GET", "/?limit=5", nil)
	assert.Equal(t, 5, ParseLimit(c, 20, 100))
}
