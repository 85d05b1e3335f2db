package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AI2HU/hotspot/internal/api"
	"github.com/AI2HU/hotspot/internal/logger"
	"github.com/AI2HU/hotspot/internal/scheduler"
)

var (
	apiPort          string
	apiHost          string
	corsOrigin       string
	apiWithScheduler bool
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the hotspot REST API server",
	Long: `Start the read-only hotspot REST API. Every dashboard request loads the
source, so the API always reflects the current sheet. With --scheduler the
background refresher runs in the same process.

The API runs on HTTP (no authentication required for now).`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVarP(&apiPort, "port", "p", "8989", "Port to run the API server on")
	apiCmd.Flags().StringVarP(&apiHost, "host", "H", "0.0.0.0", "Host to bind the API server to")
	apiCmd.Flags().StringVarP(&corsOrigin, "cors-origin", "c", "", "CORS origin to allow (overrides config file, use '*' for all origins)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "scheduler", false, "also run the background refresher")
}

func runAPI(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	selectedCORSOrigin := corsOrigin
	if selectedCORSOrigin == "" {
		selectedCORSOrigin = cfg.CORSOrigin
	}
	if selectedCORSOrigin == "" {
		selectedCORSOrigin = "*"
	}

	if !logger.IsDebugEnabled() {
		gin.SetMode(gin.ReleaseMode)
	}

	fmt.Fprintln(out, FormatTitle("🚀 Starting Hotspot API Server"))
	fmt.Fprintf(out, "%s\n", FormatLabelValue("Source:", truncate(cfg.Source.URI, 70)))
	fmt.Fprintf(out, "%s\n", FormatLabelValue("CORS Origin:", selectedCORSOrigin))
	fmt.Fprintf(out, "%s\n", FormatLabelValue("URL:", fmt.Sprintf("http://%s:%s/api/v1", apiHost, apiPort)))
	fmt.Fprintln(out)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if apiWithScheduler {
		sched := scheduler.New(hotspotLoader, cfg.Source.URI, snapshotService, cfg.Refresh.Cron)
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()
		fmt.Fprintf(out, "%s\n\n", FormatLabelValue("Refresh:", cfg.Refresh.Cron))
	}

	server := api.NewServer(dashboardService, snapshotService, selectedCORSOrigin)
	printEndpoints(out)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(fmt.Sprintf("%s:%s", apiHost, apiPort))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	fmt.Fprintln(out, "\n🛑 Shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return <-errCh
}

func printEndpoints(out io.Writer) {
	fmt.Fprintln(out, "📚 Available Endpoints:")
	fmt.Fprintln(out, "  Dashboard:")
	fmt.Fprintln(out, "    GET    /api/v1/dashboard            - Window, tables, timeline, KPIs and records")
	fmt.Fprintln(out, "    GET    /api/v1/summary              - Same as dashboard without records")
	fmt.Fprintln(out, "    GET    /api/v1/facets               - Values for the village and block filters")
	fmt.Fprintln(out, "    GET    /api/v1/kpi                  - Today-relative counts")
	fmt.Fprintln(out, "    GET    /api/v1/map                  - Map center, zoom, basemaps and boundary")
	fmt.Fprintln(out, "    GET    /api/v1/presets              - Date presets")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Snapshots:")
	fmt.Fprintln(out, "    GET    /api/v1/snapshots            - Recent loads of the source")
	fmt.Fprintln(out, "    GET    /api/v1/snapshots/:id        - One snapshot")
	fmt.Fprintln(out, "    GET    /api/v1/snapshots/:id/stats  - Archived counts for a snapshot")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "    GET    /api/v1/health               - Health check")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Query parameters: preset, start, end, today, category_a, category_b, facet=field:value")
	fmt.Fprintln(out, "Press Ctrl+C to stop the server")
}
