package models

import (
	"time"
)

// Core domain models

// Record is a single geolocated fire-detection observation.
// Timestamp is nil when the source cell could not be parsed. CategoryA is
// the village or area name and CategoryB the block or zone name; an empty
// string means the value is missing.
type Record struct {
	Timestamp  *time.Time        `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
	CategoryA  string            `json:"category_a,omitempty" bson:"category_a,omitempty"`
	CategoryB  string            `json:"category_b,omitempty" bson:"category_b,omitempty"`
	Latitude   *float64          `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude  *float64          `json:"longitude,omitempty" bson:"longitude,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" bson:"attributes,omitempty"`
}

// HasTimestamp reports whether the record can take part in time-windowed views
func (r Record) HasTimestamp() bool {
	return r.Timestamp != nil
}

// HasLocation reports whether both coordinates were parsed
func (r Record) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Date returns the calendar date of the timestamp as UTC midnight.
// The wall-clock fields are used as-is, so a timestamp carrying an offset
// keeps the date it was written with.
func (r Record) Date() (time.Time, bool) {
	if r.Timestamp == nil {
		return time.Time{}, false
	}
	return DateOf(*r.Timestamp), true
}

// Field returns the value of a categorical field by name. Known names are
// category_a and category_b; anything else is looked up in Attributes.
func (r Record) Field(name string) (string, bool) {
	switch name {
	case FieldCategoryA:
		return r.CategoryA, true
	case FieldCategoryB:
		return r.CategoryB, true
	}
	v, ok := r.Attributes[name]
	return v, ok
}

// Field names accepted by Record.Field
const (
	FieldCategoryA = "category_a"
	FieldCategoryB = "category_b"
)

// DateOf truncates t to its calendar date, expressed as UTC midnight
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateWindow is an inclusive calendar-date range
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateWindow builds a window from any two instants, dropping the time of day
func NewDateWindow(start, end time.Time) DateWindow {
	return DateWindow{Start: DateOf(start), End: DateOf(end)}
}

// IsInverted reports a window whose start is after its end. Such a window
// matches nothing.
func (w DateWindow) IsInverted() bool {
	return w.Start.After(w.End)
}

// Contains reports whether the calendar date of t falls inside the window
func (w DateWindow) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Days returns the number of calendar days covered, or 0 for an inverted window
func (w DateWindow) Days() int {
	if w.IsInverted() {
		return 0
	}
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// String formats the window as "2006-01-02..2006-01-02"
func (w DateWindow) String() string {
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}

// Facet is a categorical equality constraint applied on top of the date window
type Facet struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ShowAll is the sentinel facet value meaning "no constraint"
const ShowAll = "*"

// IsShowAll reports whether the facet imposes no constraint
func (f Facet) IsShowAll() bool {
	return f.Value == "" || f.Value == ShowAll
}

// Date layouts used across the API and CLI
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)
