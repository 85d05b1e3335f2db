package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AI2HU/hotspot/internal/logger"
	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/scheduler"
)

var (
	runImmediately bool
	runCron        string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the background refresher",
	Long: `Load the source on the configured cron schedule, record a snapshot of
every load and archive its records when MongoDB is configured. Runs until
interrupted.`,
	RunE: runScheduler,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Load the source once and record a snapshot",
	RunE:  runRefresh,
}

func init() {
	runCmd.Flags().BoolVar(&runImmediately, "now", true, "refresh once before waiting for the schedule")
	runCmd.Flags().StringVar(&runCron, "cron", "", "cron expression (overrides config)")
}

func newScheduler() *scheduler.Scheduler {
	expr := cfg.Refresh.Cron
	if runCron != "" {
		expr = runCron
	}
	return scheduler.New(hotspotLoader, cfg.Source.URI, snapshotService, expr)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !snapshotService.HasStore() {
		logger.Warning("No snapshot store configured, refreshes will not be kept")
	}

	sched := newScheduler()

	logger.Info("🚀 Starting Hotspot Scheduler")
	if runImmediately {
		if _, err := sched.RefreshNow(ctx); err != nil {
			logger.Error("Initial refresh failed: %v", err)
		}
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	logger.Info("✅ Scheduler is running, next refresh at %s. Press Ctrl+C to stop.", sched.NextRun().Format(time.RFC3339))

	<-ctx.Done()

	logger.Info("⏸️  Stopping scheduler...")
	sched.Stop()
	logger.Info("✅ Scheduler stopped. Goodbye!")
	return nil
}

func runRefresh(cmd *cobra.Command, args []string) error {
	sched := newScheduler()
	sched.SetRetry(1, 0)

	snapshot, err := sched.RefreshNow(cmd.Context())
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, FormatSuccess("✅ Refresh complete"))
	printSnapshot(out, snapshot)
	if !snapshotService.HasStore() {
		fmt.Fprintln(out, FormatWarning("⚠️  No snapshot store configured, this snapshot was not saved"))
	}
	return nil
}

func printSnapshot(out io.Writer, s *models.Snapshot) {
	fmt.Fprintf(out, "%s\n", FormatLabelValue("ID:", s.ID))
	fmt.Fprintf(out, "%s\n", FormatLabelValue("Source:", truncate(s.Source, 70)))
	fmt.Fprintf(out, "%s\n", FormatLabelValue("Fetched:", s.FetchedAt.Local().Format("2006-01-02 15:04:05")))
	fmt.Fprintf(out, "%s  %s  %s  %s\n",
		FormatCountLabel("Rows:", s.TotalRows),
		FormatCountLabel("Kept:", s.KeptRows),
		FormatCountLabel("Other kind:", s.OtherKindRows),
		FormatCountLabel("Malformed:", s.MalformedRows),
	)
	if s.MinDate != nil && s.MaxDate != nil {
		fmt.Fprintf(out, "%s\n", FormatLabelValue("Dates:", s.MinDate.Format(models.DateLayout)+" .. "+s.MaxDate.Format(models.DateLayout)))
	}
	if !s.KindFiltered {
		fmt.Fprintln(out, FormatMeta("Source has no kind column, every row was kept"))
	}
}
