package models

import (
	"time"
)

// CategoryCount is one row of the per-category table
type CategoryCount struct {
	Category string `json:"category" bson:"_id"`
	Count    int    `json:"count" bson:"count"`
}

// CategoryMonthCount is one row of the per-category-per-month table
type CategoryMonthCount struct {
	Category  string `json:"category" bson:"category"`
	YearMonth string `json:"year_month" bson:"year_month"` // 2006-01
	Count     int    `json:"count" bson:"count"`
}

// DayCount is one point of the daily timeline
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// KPIs are hotspot counts relative to the wall-clock date, not to the dataset
type KPIs struct {
	AsOf            time.Time  `json:"as_of"`
	Today           int        `json:"today"`
	Last7Days       int        `json:"last_7_days"`
	Last30Days      int        `json:"last_30_days"`
	ThisMonth       int        `json:"this_month"`
	LatestDate      *time.Time `json:"latest_date,omitempty"`
	DaysSinceLatest int        `json:"days_since_latest"` // -1 when no record has a timestamp, never below 0 otherwise
}

// LoadReport summarizes what the loader kept and dropped from a source
type LoadReport struct {
	Source        string    `json:"source"`
	FetchedAt     time.Time `json:"fetched_at"`
	TotalRows     int       `json:"total_rows"`
	KeptRows      int       `json:"kept_rows"`
	OtherKindRows int       `json:"other_kind_rows"` // rows whose kind column is not a hotspot
	MalformedRows int       `json:"malformed_rows"`  // kept rows with an unreadable timestamp or coordinate
	KindFiltered  bool      `json:"kind_filtered"`   // whether the kind column was present
}
