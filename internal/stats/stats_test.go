package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/hotspot/internal/models"
)

func ts(s string) *time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestEmptyInputYieldsEmptyTables(t *testing.T) {
	byCat := ByCategory(nil)
	byMonth := ByCategoryAndMonth([]models.Record{})
	byDay := ByDay(nil)

	assert.NotNil(t, byCat)
	assert.Empty(t, byCat)
	assert.NotNil(t, byMonth)
	assert.Empty(t, byMonth)
	assert.NotNil(t, byDay)
	assert.Empty(t, byDay)
}

func TestSameCategoryDifferentMonths(t *testing.T) {
	records := []models.Record{
		{Timestamp: ts("2024-01-15"), CategoryA: "Sungai Ayak", CategoryB: "B7"},
		{Timestamp: ts("2024-02-03"), CategoryA: "Sungai Ayak", CategoryB: "B7"},
	}

	byCat := ByCategory(records)
	require.Len(t, byCat, 1)
	assert.Equal(t, models.CategoryCount{Category: "Sungai Ayak", Count: 2}, byCat[0])

	byMonth := ByCategoryAndMonth(records)
	assert.Equal(t, []models.CategoryMonthCount{
		{Category: "B7", YearMonth: "2024-01", Count: 1},
		{Category: "B7", YearMonth: "2024-02", Count: 1},
	}, byMonth)
}

func TestByCategorySkipsMissingCategory(t *testing.T) {
	records := []models.Record{
		{CategoryA: "A"},
		{CategoryA: ""},
		{CategoryA: "B"},
		{CategoryA: "A"},
		{},
	}

	rows := ByCategory(records)
	assert.Len(t, rows, 2)
	assert.Equal(t, 3, Total(rows))
	assert.Equal(t, []models.CategoryCount{{Category: "A", Count: 2}, {Category: "B", Count: 1}}, SortByCount(rows))
}

func TestByCategoryCountsSumToNonEmptyCategoryRecords(t *testing.T) {
	records := []models.Record{
		{CategoryA: "X"}, {CategoryA: "Y"}, {CategoryA: "X"}, {CategoryA: ""}, {CategoryA: "Z"}, {CategoryA: "X"},
	}
	nonEmpty := 0
	for _, r := range records {
		if r.CategoryA != "" {
			nonEmpty++
		}
	}
	assert.Equal(t, nonEmpty, Total(ByCategory(records)))
}

func TestByCategoryAndMonthSortedByMonth(t *testing.T) {
	records := []models.Record{
		{Timestamp: ts("2024-03-01"), CategoryB: "B1"},
		{Timestamp: ts("2023-12-31"), CategoryB: "B2"},
		{Timestamp: ts("2024-01-10"), CategoryB: "B1"},
		{Timestamp: ts("2024-03-20"), CategoryB: "B1"},
		{Timestamp: ts("2024-01-11"), CategoryB: "A9"},
		{Timestamp: nil, CategoryB: "B1"},
		{Timestamp: ts("2024-01-12"), CategoryB: ""},
	}

	rows := ByCategoryAndMonth(records)
	require.Len(t, rows, 4)
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i-1].YearMonth, rows[i].YearMonth)
	}
	assert.Equal(t, models.CategoryMonthCount{Category: "B2", YearMonth: "2023-12", Count: 1}, rows[0])
	assert.Equal(t, "A9", rows[1].Category)
	assert.Equal(t, models.CategoryMonthCount{Category: "B1", YearMonth: "2024-03", Count: 2}, rows[3])
}

func TestByDay(t *testing.T) {
	later := ts("2024-01-02").Add(20 * time.Hour)
	records := []models.Record{
		{Timestamp: ts("2024-01-02")},
		{Timestamp: ts("2024-01-01")},
		{Timestamp: &later},
		{},
	}

	days := ByDay(records)
	require.Len(t, days, 2)
	assert.Equal(t, *ts("2024-01-01"), days[0].Date)
	assert.Equal(t, 1, days[0].Count)
	assert.Equal(t, 2, days[1].Count)
}

func TestTodayKPIsUseWallClock(t *testing.T) {
	now := ts("2024-05-20").Add(15 * time.Hour)
	records := []models.Record{
		{Timestamp: ts("2024-05-20")},
		{Timestamp: ts("2024-05-14")},
		{Timestamp: ts("2024-05-13")},
		{Timestamp: ts("2024-05-01")},
		{Timestamp: ts("2024-04-21")},
		{Timestamp: ts("2024-04-20")},
		{Timestamp: ts("2024-05-25")},
		{},
	}

	kpis := TodayKPIs(records, now)
	assert.Equal(t, *ts("2024-05-20"), kpis.AsOf)
	assert.Equal(t, 1, kpis.Today)
	assert.Equal(t, 2, kpis.Last7Days)
	assert.Equal(t, 5, kpis.Last30Days)
	assert.Equal(t, 4, kpis.ThisMonth)
	require.NotNil(t, kpis.LatestDate)
	assert.Equal(t, *ts("2024-05-25"), *kpis.LatestDate)
	assert.Zero(t, kpis.DaysSinceLatest)
}

func TestTodayKPIsDaysSinceLatest(t *testing.T) {
	now := ts("2024-05-20").Add(9 * time.Hour)

	kpis := TodayKPIs([]models.Record{{Timestamp: ts("2024-05-17")}}, now)
	assert.Equal(t, 3, kpis.DaysSinceLatest)

	kpis = TodayKPIs([]models.Record{{Timestamp: ts("2024-06-02")}}, now)
	require.NotNil(t, kpis.LatestDate)
	assert.Equal(t, *ts("2024-06-02"), *kpis.LatestDate)
	assert.Equal(t, 0, kpis.DaysSinceLatest)
	assert.Zero(t, kpis.Today)
}

func TestTodayKPIsWithoutTimestamps(t *testing.T) {
	kpis := TodayKPIs([]models.Record{{}}, time.Now())
	assert.Nil(t, kpis.LatestDate)
	assert.Equal(t, -1, kpis.DaysSinceLatest)
	assert.Zero(t, kpis.Last30Days)
}
