package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/AI2HU/hotspot/internal/boundary"
	"github.com/AI2HU/hotspot/internal/config"
	"github.com/AI2HU/hotspot/internal/db"
	"github.com/AI2HU/hotspot/internal/db/mongodb"
	"github.com/AI2HU/hotspot/internal/db/sqlite"
	"github.com/AI2HU/hotspot/internal/loader"
	"github.com/AI2HU/hotspot/internal/logger"
	"github.com/AI2HU/hotspot/internal/services"
)

var (
	cfgFile  string
	logLevel string

	cfg              *config.Config
	sqlStore         *sqlite.SQLite
	recordArchive    *mongodb.MongoDB
	hotspotLoader    *loader.Loader
	snapshotService  *services.SnapshotService
	dashboardService *services.DashboardService
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hotspot",
	Short: "Wildfire hotspot dashboard",
	Long: `Hotspot loads a published sheet of fire-detection observations and
turns it into dashboard views: a date window, per-village and per-block
counts, a daily timeline and today-relative KPIs.

Every scheduled refresh is recorded as a snapshot in SQLite, and its
records can be archived to MongoDB.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init writes the configuration, it does not read it
		if cmd.Name() == "init" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}

		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		logger.Init(logger.ParseLogLevel(level), os.Stderr)

		return setupServices(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardownServices(context.Background())
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hotspot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warning or error (overrides config)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(migrateCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetConfigPath()
}

// loadConfig reads the config file, or falls back to the defaults when the
// default location has none. An explicit --config must exist.
func loadConfig() (*config.Config, error) {
	path := configPath()
	if !config.Exists(path) {
		if cfgFile != "" {
			return nil, fmt.Errorf("configuration file not found at %s. Run 'hotspot init' to create one", path)
		}
		return config.DefaultConfig(), nil
	}

	loaded, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return loaded, nil
}

// setupServices connects the configured backends and builds the services.
// The snapshot store is required when configured; the archive is optional
// and is skipped with a warning when it cannot be reached.
func setupServices(ctx context.Context) error {
	var store db.SnapshotStore
	if cfg.SQLDatabase.URI != "" {
		s, err := sqlite.New(cfg.SQLConfig())
		if err != nil {
			return fmt.Errorf("failed to create snapshot store: %w", err)
		}
		if err := s.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to snapshot store: %w", err)
		}
		sqlStore = s
		store = s
	}

	var archive db.RecordArchive
	if cfg.NoSQLConfig().Enabled() {
		m, err := mongodb.New(cfg.NoSQLConfig())
		if err != nil {
			return fmt.Errorf("failed to create record archive: %w", err)
		}
		if err := m.Connect(ctx); err != nil {
			logger.Warning("Record archive unavailable, continuing without it: %v", err)
		} else {
			recordArchive = m
			archive = m
		}
	}

	hotspotLoader = loader.New(loader.OptionsFromConfig(cfg), &http.Client{})
	snapshotService = services.NewSnapshotService(store, archive)
	dashboardService = services.NewDashboardService(hotspotLoader, cfg.Source.URI, boundary.MapView(cfg.Map))
	return nil
}

func teardownServices(ctx context.Context) error {
	var firstErr error
	if recordArchive != nil {
		if err := recordArchive.Disconnect(ctx); err != nil {
			firstErr = err
		}
		recordArchive = nil
	}
	if sqlStore != nil {
		if err := sqlStore.Disconnect(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		sqlStore = nil
	}
	return firstErr
}
