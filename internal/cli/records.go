package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/shared"
)

var (
	recordsParams shared.RawParams
	recordsLimit  int
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List the hotspots matching a date window and facet selection",
	Long: `Load the source and list the hotspots that fall inside the selected date
window and facets, newest first. Records without a readable timestamp are
never part of a windowed selection.`,
	RunE: runRecords,
}

func init() {
	bindFilterFlags(recordsCmd.Flags(), &recordsParams)
	recordsCmd.Flags().IntVarP(&recordsLimit, "limit", "l", 50, "Limit number of records (0 for all)")
}

func runRecords(cmd *cobra.Command, args []string) error {
	q, err := queryFromFlags(recordsParams, true)
	if err != nil {
		return err
	}

	dashboard, err := dashboardService.Build(cmd.Context(), q)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dashboard.Empty() {
		fmt.Fprintln(out, FormatWarning("No hotspots match this selection."))
		return nil
	}

	fmt.Fprintf(out, "%s %s %s\n\n",
		FormatHeader("🔥 Hotspots"),
		FormatLabelValue("window", dashboard.Window.String()),
		FormatCountLabel("total", dashboard.Total),
	)
	printRecords(out, newestFirst(dashboard.Records), recordsLimit)
	return nil
}

func printRecords(out io.Writer, records []models.Record, limit int) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\n", FormatLabel("TIMESTAMP\tVILLAGE\tBLOCK\tLATITUDE\tLONGITUDE"))
	for i, r := range records {
		if limit > 0 && i >= limit {
			fmt.Fprintf(w, "%s\n", FormatMeta(fmt.Sprintf("…\t%d more\t\t\t", len(records)-limit)))
			break
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			formatTimestamp(r.Timestamp),
			FormatValue(orDash(r.CategoryA)),
			orDash(r.CategoryB),
			formatCoordinate(r.Latitude),
			formatCoordinate(r.Longitude),
		)
	}
	w.Flush()
}

// newestFirst returns a copy of records in reverse chronological order
func newestFirst(records []models.Record) []models.Record {
	sorted := make([]models.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Timestamp, sorted[j].Timestamp
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	return sorted
}

func formatCoordinate(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 5, 64)
}
