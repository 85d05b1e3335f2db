package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/shared"
	"github.com/AI2HU/hotspot/internal/window"
)

var (
	snapshotsLimit  int
	snapshotsParams shared.RawParams
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List recorded loads of the source",
	RunE:  runSnapshotsList,
}

var snapshotsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one snapshot and, when archived, its aggregated counts",
	Long: `Show one snapshot. Use "latest" for the most recent one. When the MongoDB
archive is configured, the archived records are aggregated per village and
per block and month for the selected date window.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshotsShow,
}

func init() {
	snapshotsCmd.AddCommand(snapshotsShowCmd)

	snapshotsCmd.Flags().IntVarP(&snapshotsLimit, "limit", "l", 20, "Limit number of snapshots")
	snapshotsShowCmd.Flags().StringVarP(&snapshotsParams.Preset, "preset", "p", "", "date preset for archived counts")
	snapshotsShowCmd.Flags().StringVar(&snapshotsParams.Start, "start", "", "window start date (YYYY-MM-DD)")
	snapshotsShowCmd.Flags().StringVar(&snapshotsParams.End, "end", "", "window end date (YYYY-MM-DD)")
}

func runSnapshotsList(cmd *cobra.Command, args []string) error {
	if !snapshotService.HasStore() {
		return fmt.Errorf("no snapshot store configured (set sql_database.uri)")
	}

	snapshots, err := snapshotService.List(cmd.Context(), snapshotsLimit)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(snapshots) == 0 {
		fmt.Fprintln(out, FormatWarning("No snapshots recorded yet. Run 'hotspot refresh' first!"))
		return nil
	}

	fmt.Fprintln(out, FormatTitle("📸 Snapshots"))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\n", FormatLabel("ID\tFETCHED\tKEPT\tOTHER\tMALFORMED\tDATES"))
	for _, s := range snapshots {
		dates := "-"
		if s.MinDate != nil && s.MaxDate != nil {
			dates = s.MinDate.Format(models.DateLayout) + ".." + s.MaxDate.Format(models.DateLayout)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			FormatValue(s.ID),
			FormatMeta(s.FetchedAt.Local().Format("2006-01-02 15:04")),
			FormatCount(s.KeptRows),
			s.OtherKindRows,
			s.MalformedRows,
			dates,
		)
	}
	w.Flush()
	return nil
}

func runSnapshotsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	params, err := shared.ParseDashboardParams(snapshotsParams)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	var snapshot *models.Snapshot
	if args[0] == "latest" {
		snapshot, err = snapshotService.Latest(ctx)
	} else {
		snapshot, err = snapshotService.Get(ctx, args[0])
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, FormatTitle("📸 Snapshot"))
	printSnapshot(out, snapshot)
	fmt.Fprintln(out)

	if !snapshotService.HasArchive() {
		fmt.Fprintln(out, FormatMeta("Record archive not configured, no archived counts."))
		return nil
	}
	if snapshot.MinDate == nil || snapshot.MaxDate == nil {
		fmt.Fprintln(out, FormatWarning("Snapshot has no dated records."))
		return nil
	}

	w := window.ResolveWindow(*snapshot.MinDate, *snapshot.MaxDate, window.Selection{
		Preset: params.Preset,
		Start:  params.Start,
		End:    params.End,
	})
	byCategory, byMonth, err := snapshotService.ArchivedCounts(ctx, snapshot.ID, w)
	if err != nil {
		return fmt.Errorf("failed to aggregate snapshot: %w", err)
	}

	fmt.Fprintf(out, "%s\n\n", FormatLabelValue("Archived counts for", w.String()))
	printCategoryTable(out, byCategory, 0)
	printCategoryMonthTable(out, byMonth, 0)
	return nil
}
