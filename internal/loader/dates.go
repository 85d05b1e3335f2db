package loader

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DefaultDateLayouts are tried in order before falling back to dateparse.
// Ambiguous slash and dash dates are read month-first, so 03/04/2024 is
// 4 March. Set day_first in the config for sheets written the other way.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"01-02-2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
}

// DayFirstDateLayouts read 03/04/2024 as 3 April
var DayFirstDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04:05",
	"02-01-2006",
	"2 January 2006",
	"2 Jan 2006",
}

var clockLayouts = []string{"15:04:05", "15:04", "15.04.05", "15.04"}

// emptyMarkers are cell values treated as "no value" before any parsing
var emptyMarkers = map[string]struct{}{
	"":     {},
	"-":    {},
	"n/a":  {},
	"na":   {},
	"nan":  {},
	"null": {},
	"none": {},
	"nat":  {},
}

func isEmptyCell(s string) bool {
	_, ok := emptyMarkers[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseTimestamp parses a heterogeneous date cell. It never fails loudly:
// ok is false for anything it cannot read. Values without a zone are taken
// as-is (UTC wall clock), so the calendar date is the one written in the cell.
// Ambiguous dates the layouts miss are read month-first.
func ParseTimestamp(value string, layouts []string) (time.Time, bool) {
	return parseTimestamp(value, layouts, false)
}

func parseTimestamp(value string, layouts []string, dayFirst bool) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if isEmptyCell(s) {
		return time.Time{}, false
	}
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(!dayFirst))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// withClock sets the time of day on ts from a clock cell such as "13:45".
// Timestamps that already carry a time of day, and unreadable clocks, are
// returned unchanged.
func withClock(ts time.Time, clock string) time.Time {
	if ts.Hour() != 0 || ts.Minute() != 0 || ts.Second() != 0 {
		return ts
	}
	s := strings.TrimSpace(clock)
	if isEmptyCell(s) {
		return ts
	}
	for _, layout := range clockLayouts {
		c, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(ts.Year(), ts.Month(), ts.Day(), c.Hour(), c.Minute(), c.Second(), 0, ts.Location())
	}
	return ts
}
