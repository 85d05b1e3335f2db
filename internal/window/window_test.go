package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/hotspot/internal/models"
)

func date(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func TestPresetLast7DaysEndsOnMaxDate(t *testing.T) {
	w := ResolveWindow(date("2024-01-01"), date("2024-01-10"), Selection{Preset: PresetLast7Days})

	assert.Equal(t, date("2024-01-04"), w.Start)
	assert.Equal(t, date("2024-01-10"), w.End)
	assert.Equal(t, 7, w.Days())
}

func TestPresetsStayInsideDataBounds(t *testing.T) {
	bounds := []struct{ min, max string }{
		{"2024-01-01", "2024-01-10"},
		{"2023-02-15", "2024-08-31"},
		{"2024-03-31", "2024-03-31"},
		{"2020-01-01", "2024-02-29"},
	}

	for _, b := range bounds {
		for _, p := range Presets {
			w := ResolveWindow(date(b.min), date(b.max), Selection{Preset: p})
			assert.False(t, w.Start.Before(date(b.min)), "%s %v starts before min", p, b)
			assert.False(t, w.End.After(date(b.max)), "%s %v ends after max", p, b)
			assert.False(t, w.IsInverted(), "%s %v inverted", p, b)
			assert.Equal(t, date(b.max), w.End)
		}
	}
}

func TestPresetStartClampedToMin(t *testing.T) {
	w := ResolveWindow(date("2024-01-08"), date("2024-01-10"), Selection{Preset: PresetLast30Days})
	assert.Equal(t, date("2024-01-08"), w.Start)
}

func TestMonthPresetsClampDayToMonthEnd(t *testing.T) {
	min := date("2020-01-01")

	w := ResolveWindow(min, date("2024-08-31"), Selection{Preset: PresetLast6Months})
	assert.Equal(t, date("2024-03-01"), w.Start)

	w = ResolveWindow(min, date("2024-02-29"), Selection{Preset: PresetLastYear})
	assert.Equal(t, date("2023-03-01"), w.Start)

	w = ResolveWindow(min, date("2024-05-15"), Selection{Preset: PresetLast6Months})
	assert.Equal(t, date("2023-11-16"), w.Start)
}

func TestNoSelectionCoversAllData(t *testing.T) {
	w := ResolveWindow(date("2024-01-01"), date("2024-03-01"), Selection{})
	assert.Equal(t, models.DateWindow{Start: date("2024-01-01"), End: date("2024-03-01")}, w)

	w = ResolveWindow(date("2024-01-01"), date("2024-03-01"), Selection{Preset: PresetAll})
	assert.Equal(t, date("2024-01-01"), w.Start)
}

func TestExplicitBoundsAreClamped(t *testing.T) {
	sel := Selection{Start: ptr(date("2023-12-01")), End: ptr(date("2024-02-01"))}
	w := ResolveWindow(date("2024-01-01"), date("2024-01-10"), sel)

	assert.Equal(t, date("2024-01-01"), w.Start)
	assert.Equal(t, date("2024-01-10"), w.End)
}

func TestExplicitBoundsWinOverPreset(t *testing.T) {
	sel := Selection{Preset: PresetLast7Days, Start: ptr(date("2024-01-02")), End: ptr(date("2024-01-03"))}
	w := ResolveWindow(date("2024-01-01"), date("2024-01-10"), sel)

	assert.Equal(t, models.DateWindow{Start: date("2024-01-02"), End: date("2024-01-03")}, w)
}

func TestInvertedExplicitWindowStaysInverted(t *testing.T) {
	sel := Selection{Start: ptr(date("2024-02-01")), End: ptr(date("2024-01-01"))}
	w := ResolveWindow(date("2023-06-01"), date("2024-06-01"), sel)

	assert.True(t, w.IsInverted())
	assert.Equal(t, 0, w.Days())
}

func TestWindowOutsideDataMatchesNothing(t *testing.T) {
	sel := Selection{Start: ptr(date("2024-01-20")), End: ptr(date("2024-01-25"))}
	w := ResolveWindow(date("2024-01-01"), date("2024-01-10"), sel)

	assert.True(t, w.IsInverted())
	assert.False(t, w.Contains(date("2024-01-10")))
}

func TestSingleBoundSelectsOneDay(t *testing.T) {
	w := ResolveWindow(date("2024-01-01"), date("2024-01-10"), Selection{Start: ptr(date("2024-01-05"))})
	assert.Equal(t, models.DateWindow{Start: date("2024-01-05"), End: date("2024-01-05")}, w)
}

func TestBounds(t *testing.T) {
	ts := func(s string) *time.Time { v := date(s).Add(13 * time.Hour); return &v }
	records := []models.Record{
		{Timestamp: ts("2024-01-05")},
		{},
		{Timestamp: ts("2024-01-02")},
		{Timestamp: ts("2024-01-09")},
	}

	min, max, ok := Bounds(records)
	require.True(t, ok)
	assert.Equal(t, date("2024-01-02"), min)
	assert.Equal(t, date("2024-01-09"), max)

	_, _, ok = Bounds([]models.Record{{}})
	assert.False(t, ok)
}

func TestParsePreset(t *testing.T) {
	cases := map[string]Preset{
		"":              PresetAll,
		"All data":      PresetAll,
		"last_7_days":   PresetLast7Days,
		"Last 30 days":  PresetLast30Days,
		"6m":            PresetLast6Months,
		"last-year":     PresetLastYear,
		"LAST_6_MONTHS": PresetLast6Months,
	}
	for in, want := range cases {
		got, err := ParsePreset(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePreset("fortnight")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-03-05 ")
	require.NoError(t, err)
	assert.Equal(t, date("2024-03-05"), d)

	_, err = ParseDate("05/03/2024")
	assert.Error(t, err)
}
