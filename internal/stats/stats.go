package stats

import (
	"sort"
	"time"

	"github.com/AI2HU/hotspot/internal/models"
)

// ByCategory counts records per category_a. Records with an empty category
// are left out rather than folded into an "unknown" bucket. Row order is
// unspecified; use SortByCount for presentation.
func ByCategory(records []models.Record) []models.CategoryCount {
	counts := make(map[string]int)
	for _, r := range records {
		if r.CategoryA == "" {
			continue
		}
		counts[r.CategoryA]++
	}

	results := make([]models.CategoryCount, 0, len(counts))
	for category, count := range counts {
		results = append(results, models.CategoryCount{Category: category, Count: count})
	}
	return results
}

// SortByCount orders category rows by count descending, then by name
func SortByCount(rows []models.CategoryCount) []models.CategoryCount {
	sorted := make([]models.CategoryCount, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Category < sorted[j].Category
	})
	return sorted
}

// ByCategoryAndMonth counts records per (category_b, calendar month).
// Records without a timestamp or without category_b are skipped. Rows are
// sorted ascending by month so charts render chronologically.
func ByCategoryAndMonth(records []models.Record) []models.CategoryMonthCount {
	type key struct {
		category string
		month    string
	}

	counts := make(map[key]int)
	for _, r := range records {
		if r.CategoryB == "" || r.Timestamp == nil {
			continue
		}
		counts[key{r.CategoryB, r.Timestamp.Format(models.MonthLayout)}]++
	}

	results := make([]models.CategoryMonthCount, 0, len(counts))
	for k, count := range counts {
		results = append(results, models.CategoryMonthCount{
			Category:  k.category,
			YearMonth: k.month,
			Count:     count,
		})
	}

	SortByMonth(results)
	return results
}

// SortByMonth sorts rows ascending by month, ties broken by category
func SortByMonth(rows []models.CategoryMonthCount) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].YearMonth != rows[j].YearMonth {
			return rows[i].YearMonth < rows[j].YearMonth
		}
		return rows[i].Category < rows[j].Category
	})
}

// ByDay counts timestamped records per calendar date, ascending
func ByDay(records []models.Record) []models.DayCount {
	counts := make(map[time.Time]int)
	for _, r := range records {
		if d, ok := r.Date(); ok {
			counts[d]++
		}
	}

	results := make([]models.DayCount, 0, len(counts))
	for d, count := range counts {
		results = append(results, models.DayCount{Date: d, Count: count})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Date.Before(results[j].Date)
	})
	return results
}

// TodayKPIs counts records relative to the wall-clock date of now, unlike
// window presets which are anchored on the dataset's latest date. "Last N
// days" includes today, so Last7Days covers today and the six days before.
func TodayKPIs(records []models.Record, now time.Time) models.KPIs {
	today := models.DateOf(now)
	weekStart := today.AddDate(0, 0, -6)
	monthStart := today.AddDate(0, 0, -29)
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	kpis := models.KPIs{AsOf: today, DaysSinceLatest: -1}
	var latest time.Time
	for _, r := range records {
		d, ok := r.Date()
		if !ok {
			continue
		}
		if d.After(latest) {
			latest = d
		}
		if d.After(today) {
			continue
		}
		if d.Equal(today) {
			kpis.Today++
		}
		if !d.Before(weekStart) {
			kpis.Last7Days++
		}
		if !d.Before(monthStart) {
			kpis.Last30Days++
		}
		if !d.Before(firstOfMonth) {
			kpis.ThisMonth++
		}
	}

	if !latest.IsZero() {
		kpis.LatestDate = &latest
		// records dated after today count as seen today
		kpis.DaysSinceLatest = max(0, int(today.Sub(latest).Hours()/24))
	}
	return kpis
}

// Total returns the sum of the counts in a per-category table
func Total(rows []models.CategoryCount) int {
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	return total
}
