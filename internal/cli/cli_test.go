package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/hotspot/internal/config"
	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/shared"
	"github.com/AI2HU/hotspot/internal/window"
)

func withoutColors(t *testing.T) {
	t.Helper()
	prev := colorsEnabled
	colorsEnabled = false
	t.Cleanup(func() { colorsEnabled = prev })
}

func at(s string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestPrompterOptionalAndYesNo(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("\ncustom\nmaybe\ny\n"), &out)

	v, err := p.optional("first: ", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", v)

	v, err = p.optional("second: ", "default")
	require.NoError(t, err)
	assert.Equal(t, "custom", v)

	yes, err := p.yesNo("sure? ")
	require.NoError(t, err)
	assert.True(t, yes)
	assert.Contains(t, out.String(), "invalid input: maybe")
}

func TestPrompterStopsAtEndOfInput(t *testing.T) {
	p := newPrompter(strings.NewReader(""), &bytes.Buffer{})
	_, err := p.optional("value: ", "x")
	assert.Error(t, err)

	p = newPrompter(strings.NewReader("maybe"), &bytes.Buffer{})
	_, err = p.yesNo("sure? ")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...xyz", truncate("abcdefghijklmnopqrstuvwxyz", 9))
	assert.Len(t, []rune(truncate(strings.Repeat("é", 100), 20)), 20)
}

func TestFormatBar(t *testing.T) {
	withoutColors(t)

	assert.Equal(t, "", FormatBar(0, 10, 30))
	assert.Equal(t, strings.Repeat("█", 30), FormatBar(10, 10, 30))
	assert.Equal(t, strings.Repeat("█", 15), FormatBar(5, 10, 30))
	assert.Equal(t, "█", FormatBar(1, 1000, 30))
}

func TestColorsCanBeDisabled(t *testing.T) {
	withoutColors(t)
	assert.Equal(t, "Title:", FormatHeader("Title:"))
	assert.Equal(t, "7", FormatCount(7))

	colorsEnabled = true
	assert.Equal(t, HeaderStyle+"Title:"+Reset, FormatHeader("Title:"))
}

func TestQueryFromFlags(t *testing.T) {
	q, err := queryFromFlags(shared.RawParams{
		Preset:    "30d",
		Today:     "2024-03-01",
		CategoryA: "Sungai Ayak",
	}, true)
	require.NoError(t, err)

	assert.Equal(t, window.PresetLast30Days, q.Preset)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), q.Now)
	assert.True(t, q.WithRecords)
	require.Len(t, q.Facets, 1)
	assert.Equal(t, "Last 30 days", selectionLabel(q))

	q.Start = at("2024-01-01 00:00")
	assert.Equal(t, "custom range", selectionLabel(q))

	_, err = queryFromFlags(shared.RawParams{End: "tomorrow"}, false)
	assert.Error(t, err)
}

func TestNewestFirst(t *testing.T) {
	records := []models.Record{
		{CategoryA: "old", Timestamp: at("2024-01-01 08:00")},
		{CategoryA: "undated"},
		{CategoryA: "new", Timestamp: at("2024-01-03 08:00")},
		{CategoryA: "mid", Timestamp: at("2024-01-02 08:00")},
	}

	sorted := newestFirst(records)

	var order []string
	for _, r := range sorted {
		order = append(order, r.CategoryA)
	}
	assert.Equal(t, []string{"new", "mid", "old", "undated"}, order)
	assert.Equal(t, "old", records[0].CategoryA)
}

func TestPrintRecords(t *testing.T) {
	withoutColors(t)

	lat, lon := -0.123456, 110.5
	records := []models.Record{
		{Timestamp: at("2024-01-03 13:20"), CategoryA: "Sungai Ayak", Latitude: &lat, Longitude: &lon},
		{Timestamp: at("2024-01-02 00:00"), CategoryB: "B7"},
		{Timestamp: at("2024-01-01 00:00"), CategoryA: "Nanga Pinoh"},
	}

	var out bytes.Buffer
	printRecords(&out, records, 2)
	text := out.String()

	assert.Contains(t, text, "2024-01-03 13:20")
	assert.Contains(t, text, "-0.12346")
	assert.Contains(t, text, "110.50000")
	assert.Contains(t, text, "2024-01-02 ")
	assert.Contains(t, text, "1 more")
	assert.NotContains(t, text, "Nanga Pinoh")
}

func TestPrintDashboard(t *testing.T) {
	withoutColors(t)

	latest := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	d := &models.Dashboard{
		Window:  models.NewDateWindow(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), latest),
		DataMin: at("2024-01-01 00:00"),
		DataMax: &latest,
		Total:   5,
		ByCategory: []models.CategoryCount{
			{Category: "Sungai Ayak", Count: 3},
			{Category: "", Count: 2},
		},
		ByCategoryMonth: []models.CategoryMonthCount{
			{Category: "Sungai Ayak", YearMonth: "2024-01", Count: 3},
		},
		ByDay: []models.DayCount{{Date: latest, Count: 5}},
		KPIs:  models.KPIs{AsOf: latest, Today: 2, Last7Days: 5, LatestDate: &latest},
		Load:  &models.LoadReport{Source: "sheet.csv", TotalRows: 7, KeptRows: 6, OtherKindRows: 1},
	}

	var out bytes.Buffer
	printDashboard(&out, d, "Last 7 days", 10, 7)
	text := out.String()

	assert.Contains(t, text, "Window: 2024-01-04..2024-01-10 (Last 7 days)")
	assert.Contains(t, text, "Data range: 2024-01-01 .. 2024-01-10")
	assert.Contains(t, text, "Today: 2")
	assert.Contains(t, text, "Sungai Ayak")
	assert.Contains(t, text, "2024-01")
	assert.Contains(t, text, "Wed 2024-01-10")
	assert.Contains(t, text, "Other kind: 1")
}

func TestPrintDashboardEmpty(t *testing.T) {
	withoutColors(t)

	var out bytes.Buffer
	printDashboard(&out, &models.Dashboard{}, "All data", 10, 7)
	text := out.String()

	assert.Contains(t, text, "no dated records")
	assert.Contains(t, text, "No hotspots match this selection.")
	assert.NotContains(t, text, "By village")
}

func TestInitWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	prevFile, prevDefaults := cfgFile, initDefaults
	cfgFile, initDefaults = path, true
	t.Cleanup(func() { cfgFile, initDefaults = prevFile, prevDefaults })

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, runInit(cmd, nil))
	assert.Contains(t, out.String(), path)

	saved, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Source.URI, saved.Source.URI)
	assert.Equal(t, "Titik Api", saved.HotspotKind)

	assert.Error(t, runInit(cmd, nil), "refuses to overwrite")
}

func TestInitWizard(t *testing.T) {
	withoutColors(t)

	dir := t.TempDir()
	input := strings.Join([]string{
		filepath.Join(dir, "sheet.csv"),
		"",
		filepath.Join(dir, "hotspot.db"),
		"",
		"not a cron",
		"@hourly",
	}, "\n") + "\n"

	var out bytes.Buffer
	c, err := runWizard(newPrompter(strings.NewReader(input), &out), &out)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "sheet.csv"), c.Source.URI)
	assert.Equal(t, "Titik Api", c.HotspotKind)
	assert.Equal(t, filepath.Join(dir, "hotspot.db"), c.SQLDatabase.URI)
	assert.Empty(t, c.NoSQLDatabase.URI)
	assert.Equal(t, "@hourly", c.Refresh.Cron)
	assert.Contains(t, out.String(), "invalid cron expression")
}
