// Package window resolves the date range a dashboard is filtered to.
//
// Presets are relative to the latest date present in the data, never to the
// wall clock; see the stats package for today-relative KPIs.
package window

import (
	"fmt"
	"strings"
	"time"

	"github.com/AI2HU/hotspot/internal/models"
)

// Preset is a named shorthand resolving to a window ending on the dataset's max date
type Preset string

const (
	PresetAll         Preset = "all"
	PresetLast7Days   Preset = "last_7_days"
	PresetLast30Days  Preset = "last_30_days"
	PresetLast6Months Preset = "last_6_months"
	PresetLastYear    Preset = "last_year"
)

// Presets lists every supported preset in display order
var Presets = []Preset{PresetAll, PresetLast7Days, PresetLast30Days, PresetLast6Months, PresetLastYear}

var presetAliases = map[string]Preset{
	"":         PresetAll,
	"all":      PresetAll,
	"all_data": PresetAll,
	"7d":       PresetLast7Days,
	"30d":      PresetLast30Days,
	"6m":       PresetLast6Months,
	"1y":       PresetLastYear,
	"12m":      PresetLastYear,
}

// ParsePreset accepts canonical preset names, a few short aliases
// ("7d", "30d", "6m", "1y") and the dashboard labels ("Last 7 days").
func ParsePreset(s string) (Preset, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if p, ok := presetAliases[key]; ok {
		return p, nil
	}
	for _, p := range Presets {
		if string(p) == key {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown preset %q", s)
}

// Label returns the human-readable name of the preset
func (p Preset) Label() string {
	switch p {
	case PresetAll:
		return "All data"
	case PresetLast7Days:
		return "Last 7 days"
	case PresetLast30Days:
		return "Last 30 days"
	case PresetLast6Months:
		return "Last 6 months"
	case PresetLastYear:
		return "Last year"
	default:
		return string(p)
	}
}

// Selection is what the user picked: a preset, explicit bounds, or nothing.
// Explicit bounds win over a preset when both are set. A single bound
// selects that one day, the same as a date picker with only one date chosen.
type Selection struct {
	Preset Preset
	Start  *time.Time
	End    *time.Time
}

// IsExplicit reports whether at least one explicit bound was supplied
func (s Selection) IsExplicit() bool {
	return s.Start != nil || s.End != nil
}

func (s Selection) bounds() (time.Time, time.Time) {
	switch {
	case s.Start != nil && s.End != nil:
		return models.DateOf(*s.Start), models.DateOf(*s.End)
	case s.Start != nil:
		d := models.DateOf(*s.Start)
		return d, d
	default:
		d := models.DateOf(*s.End)
		return d, d
	}
}

// ResolveWindow turns a selection into a concrete window within [min, max].
//
// Explicit bounds are clamped (start raised to min, end lowered to max); an
// inverted pair stays inverted and therefore matches nothing. Presets end on
// max and have their start clamped to min. No selection yields [min, max].
func ResolveWindow(min, max time.Time, sel Selection) models.DateWindow {
	lo, hi := models.DateOf(min), models.DateOf(max)

	if sel.IsExplicit() {
		start, end := sel.bounds()
		if start.Before(lo) {
			start = lo
		}
		if end.After(hi) {
			end = hi
		}
		return models.DateWindow{Start: start, End: end}
	}

	start := presetStart(sel.Preset, hi)
	if start.Before(lo) {
		start = lo
	}
	return models.DateWindow{Start: start, End: hi}
}

// presetStart returns the first date covered by the preset ending on max.
// Day presets span exactly N calendar days; month presets span N calendar
// months, so last_6_months ending 2024-08-31 starts on 2024-03-01.
func presetStart(p Preset, max time.Time) time.Time {
	switch p {
	case PresetLast7Days:
		return max.AddDate(0, 0, -6)
	case PresetLast30Days:
		return max.AddDate(0, 0, -29)
	case PresetLast6Months:
		return subtractMonths(max, 6).AddDate(0, 0, 1)
	case PresetLastYear:
		return subtractMonths(max, 12).AddDate(0, 0, 1)
	default:
		return time.Time{}
	}
}

// subtractMonths moves back n calendar months, clamping the day to the end
// of the target month instead of overflowing into the next one.
func subtractMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -n, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// Bounds returns the earliest and latest calendar dates among timestamped
// records. ok is false when no record carries a timestamp.
func Bounds(records []models.Record) (min, max time.Time, ok bool) {
	for _, r := range records {
		d, has := r.Date()
		if !has {
			continue
		}
		if !ok || d.Before(min) {
			min = d
		}
		if !ok || d.After(max) {
			max = d
		}
		ok = true
	}
	return min, max, ok
}

// ParseDate parses a calendar date in the API/CLI layout (2006-01-02)
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
