package shared

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/hotspot/internal/filter"
	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/window"
)

// RawParams holds unparsed filter inputs as they arrive from a query string or flags
type RawParams struct {
	Preset    string
	Start     string
	End       string
	Today     string
	CategoryA string
	CategoryB string
	Facets    []string // "field:value"
}

// ParseDashboardParams validates raw inputs. Empty strings mean "not set".
func ParseDashboardParams(raw RawParams) (DashboardParams, error) {
	var params DashboardParams

	preset, err := window.ParsePreset(raw.Preset)
	if err != nil {
		return params, err
	}
	params.Preset = preset

	if params.Start, err = parseOptionalDate(raw.Start); err != nil {
		return params, fmt.Errorf("start: %w", err)
	}
	if params.End, err = parseOptionalDate(raw.End); err != nil {
		return params, fmt.Errorf("end: %w", err)
	}
	if params.Today, err = parseOptionalDate(raw.Today); err != nil {
		return params, fmt.Errorf("today: %w", err)
	}

	if raw.CategoryA != "" {
		params.Facets = append(params.Facets, models.Facet{Field: models.FieldCategoryA, Value: raw.CategoryA})
	}
	if raw.CategoryB != "" {
		params.Facets = append(params.Facets, models.Facet{Field: models.FieldCategoryB, Value: raw.CategoryB})
	}
	for _, f := range raw.Facets {
		if strings.TrimSpace(f) == "" {
			continue
		}
		facet, err := filter.ParseFacet(f)
		if err != nil {
			return params, err
		}
		params.Facets = append(params.Facets, facet)
	}

	return params, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := window.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseDashboardQuery reads filter inputs from the request query string
func ParseDashboardQuery(c *gin.Context) (DashboardParams, error) {
	return ParseDashboardParams(RawParams{
		Preset:    c.Query("preset"),
		Start:     c.Query("start"),
		End:       c.Query("end"),
		Today:     c.Query("today"),
		CategoryA: c.Query("category_a"),
		CategoryB: c.Query("category_b"),
		Facets:    c.QueryArray("facet"),
	})
}

// ParseLimit parses the limit query parameter, falling back to def when it
// is missing, invalid or above max
func ParseLimit(c *gin.Context, def, max int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 || limit > max {
		return def
	}
	return limit
}
