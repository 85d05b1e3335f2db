package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/services"
	"github.com/AI2HU/hotspot/internal/shared"
)

var (
	summaryParams shared.RawParams
	summaryLimit  int
	summaryDays   int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard for a date window and facet selection",
	Long: `Load the source and print the dashboard: the resolved date window,
today-relative KPIs, hotspots per village, per block and month, and the
most recent days of the timeline.

Presets (all, last_7_days, last_30_days, last_6_months, last_year) end on
the latest date present in the data. --start and --end override the preset
and are clamped to the data range.`,
	RunE: runSummary,
}

func init() {
	bindFilterFlags(summaryCmd.Flags(), &summaryParams)
	summaryCmd.Flags().IntVarP(&summaryLimit, "limit", "l", 15, "Limit rows per table (0 for all)")
	summaryCmd.Flags().IntVar(&summaryDays, "days", 14, "Number of most recent timeline days to show")
}

// bindFilterFlags registers the date and facet flags shared by summary and records
func bindFilterFlags(flags *pflag.FlagSet, raw *shared.RawParams) {
	flags.StringVarP(&raw.Preset, "preset", "p", "", "date preset, e.g. last_30_days or 7d")
	flags.StringVar(&raw.Start, "start", "", "window start date (YYYY-MM-DD)")
	flags.StringVar(&raw.End, "end", "", "window end date (YYYY-MM-DD)")
	flags.StringVar(&raw.Today, "today", "", "compute KPIs as of this date instead of the current date")
	flags.StringVar(&raw.CategoryA, "village", "", "only this village ('*' for all)")
	flags.StringVar(&raw.CategoryB, "block", "", "only this block ('*' for all)")
	flags.StringArrayVar(&raw.Facets, "facet", nil, "extra facet as field:value, repeatable")
}

func queryFromFlags(raw shared.RawParams, withRecords bool) (services.Query, error) {
	params, err := shared.ParseDashboardParams(raw)
	if err != nil {
		return services.Query{}, fmt.Errorf("invalid filter: %w", err)
	}
	return services.Query{
		Preset:      params.Preset,
		Start:       params.Start,
		End:         params.End,
		Facets:      params.Facets,
		Now:         params.Now(),
		WithRecords: withRecords,
	}, nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	q, err := queryFromFlags(summaryParams, false)
	if err != nil {
		return err
	}

	dashboard, err := dashboardService.Build(cmd.Context(), q)
	if err != nil {
		return err
	}

	printDashboard(cmd.OutOrStdout(), dashboard, selectionLabel(q), summaryLimit, summaryDays)
	return nil
}

func selectionLabel(q services.Query) string {
	if q.Selection().IsExplicit() {
		return "custom range"
	}
	return q.Preset.Label()
}

func printDashboard(out io.Writer, d *models.Dashboard, label string, limit, days int) {
	fmt.Fprintln(out, FormatTitle("🔥 Hotspot Summary"))
	fmt.Fprintln(out)

	if d.Load != nil {
		fmt.Fprintf(out, "%s\n", FormatLabelValue("Source:", truncate(d.Load.Source, 70)))
		fmt.Fprintf(out, "%s  %s  %s  %s\n",
			FormatCountLabel("Rows:", d.Load.TotalRows),
			FormatCountLabel("Kept:", d.Load.KeptRows),
			FormatCountLabel("Other kind:", d.Load.OtherKindRows),
			FormatCountLabel("Malformed:", d.Load.MalformedRows),
		)
	}
	if d.DataMin != nil && d.DataMax != nil {
		fmt.Fprintf(out, "%s\n", FormatLabelValue("Data range:", d.DataMin.Format(models.DateLayout)+" .. "+d.DataMax.Format(models.DateLayout)))
	}
	if d.DataMin != nil {
		fmt.Fprintf(out, "%s %s\n", FormatLabelValue("Window:", d.Window.String()), FormatMeta("("+label+")"))
	} else {
		fmt.Fprintf(out, "%s %s\n", FormatLabelValue("Window:", "-"), FormatMeta("(no dated records)"))
	}
	if len(d.Facets) > 0 {
		fmt.Fprintf(out, "%s\n", FormatLabelValue("Facets:", formatFacets(d.Facets)))
	}
	fmt.Fprintln(out)

	printKPIs(out, d.KPIs)

	if d.Empty() {
		fmt.Fprintln(out, FormatWarning("No hotspots match this selection."))
		return
	}

	fmt.Fprintf(out, "%s %s\n\n", FormatHeader("Hotspots in window:"), FormatCount(d.Total))
	printCategoryTable(out, d.ByCategory, limit)
	printCategoryMonthTable(out, d.ByCategoryMonth, limit)
	printTimeline(out, d.ByDay, days)
}

func printKPIs(out io.Writer, k models.KPIs) {
	fmt.Fprintf(out, "%s %s\n", FormatHeader("KPIs"), FormatMeta("as of "+k.AsOf.Format(models.DateLayout)))
	fmt.Fprintf(out, "  %s  %s  %s  %s\n",
		FormatCountLabel("Today:", k.Today),
		FormatCountLabel("7 days:", k.Last7Days),
		FormatCountLabel("30 days:", k.Last30Days),
		FormatCountLabel("This month:", k.ThisMonth),
	)
	if k.LatestDate != nil {
		fmt.Fprintf(out, "  %s %s\n",
			FormatLabelValue("Latest hotspot:", k.LatestDate.Format(models.DateLayout)),
			FormatMeta(fmt.Sprintf("(%d days ago)", k.DaysSinceLatest)),
		)
	}
	fmt.Fprintln(out)
}

func printCategoryTable(out io.Writer, rows []models.CategoryCount, limit int) {
	fmt.Fprintln(out, FormatHeader("By village"))

	max := 0
	if len(rows) > 0 {
		max = rows[0].Count
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\n", FormatLabel("RANK\tVILLAGE\tHOTSPOTS\t"))
	for i, row := range rows {
		if limit > 0 && i >= limit {
			fmt.Fprintf(w, "%s\n", FormatMeta(fmt.Sprintf("…\t%d more\t\t", len(rows)-limit)))
			break
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, FormatValue(orDash(row.Category)), FormatCount(row.Count), FormatBar(row.Count, max, 30))
	}
	w.Flush()
	fmt.Fprintln(out)
}

func printCategoryMonthTable(out io.Writer, rows []models.CategoryMonthCount, limit int) {
	fmt.Fprintln(out, FormatHeader("By block and month"))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\n", FormatLabel("MONTH\tBLOCK\tHOTSPOTS"))
	for i, row := range rows {
		if limit > 0 && i >= limit {
			fmt.Fprintf(w, "%s\n", FormatMeta(fmt.Sprintf("…\t%d more\t", len(rows)-limit)))
			break
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", row.YearMonth, FormatValue(orDash(row.Category)), FormatCount(row.Count))
	}
	w.Flush()
	fmt.Fprintln(out)
}

// printTimeline prints the last days entries of the daily series
func printTimeline(out io.Writer, series []models.DayCount, days int) {
	if days <= 0 || len(series) == 0 {
		return
	}
	if len(series) > days {
		series = series[len(series)-days:]
	}

	max := 0
	for _, d := range series {
		if d.Count > max {
			max = d.Count
		}
	}

	fmt.Fprintln(out, FormatHeader("Timeline"))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, d := range series {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Date.Format("Mon 2006-01-02"), FormatCount(d.Count), FormatBar(d.Count, max, 30))
	}
	w.Flush()
	fmt.Fprintln(out)
}

func formatFacets(facets []models.Facet) string {
	parts := make([]string, 0, len(facets))
	for _, f := range facets {
		parts = append(parts, f.Field+"="+f.Value)
	}
	return strings.Join(parts, ", ")
}

// formatTimestamp renders a record timestamp, or a dash when it is missing
func formatTimestamp(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	if ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0 {
		return ts.Format(models.DateLayout)
	}
	return ts.Format("2006-01-02 15:04")
}
