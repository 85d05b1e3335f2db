// Package filter narrows a record set to a date window and categorical facets.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AI2HU/hotspot/internal/models"
)

// Filter returns the records whose timestamp date falls inside w (inclusive
// on both ends) and that match every facet. Records without a timestamp are
// never kept. Facet order does not matter and the input is not modified.
func Filter(records []models.Record, w models.DateWindow, facets []models.Facet) []models.Record {
	result := make([]models.Record, 0)
	if w.IsInverted() {
		return result
	}

	active := activeFacets(facets)
	for _, r := range records {
		if r.Timestamp == nil || !w.Contains(*r.Timestamp) {
			continue
		}
		if !matchesAll(r, active) {
			continue
		}
		result = append(result, r)
	}
	return result
}

// ByFacets applies only the categorical facets, ignoring time entirely
func ByFacets(records []models.Record, facets []models.Facet) []models.Record {
	active := activeFacets(facets)
	result := make([]models.Record, 0, len(records))
	for _, r := range records {
		if matchesAll(r, active) {
			result = append(result, r)
		}
	}
	return result
}

func activeFacets(facets []models.Facet) []models.Facet {
	active := make([]models.Facet, 0, len(facets))
	for _, f := range facets {
		if !f.IsShowAll() {
			active = append(active, f)
		}
	}
	return active
}

func matchesAll(r models.Record, facets []models.Facet) bool {
	for _, f := range facets {
		v, ok := r.Field(f.Field)
		if !ok || v != f.Value {
			return false
		}
	}
	return true
}

// DistinctValues returns the sorted distinct non-empty values of field,
// suitable for populating a facet dropdown.
func DistinctValues(records []models.Record, field string) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if v, ok := r.Field(field); ok && v != "" {
			seen[v] = struct{}{}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// ParseFacet parses "field:value" or "field=value"
func ParseFacet(s string) (models.Facet, error) {
	idx := strings.IndexAny(s, ":=")
	if idx <= 0 {
		return models.Facet{}, fmt.Errorf("invalid facet %q, expected field:value", s)
	}
	return models.Facet{Field: strings.TrimSpace(s[:idx]), Value: s[idx+1:]}, nil
}
