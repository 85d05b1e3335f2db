package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/AI2HU/hotspot/internal/config"
	"github.com/AI2HU/hotspot/internal/db/mongodb"
	"github.com/AI2HU/hotspot/internal/db/sqlite"
)

var initDefaults bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize hotspot configuration",
	Long: `Interactive wizard that writes the hotspot configuration: the source
sheet, the SQLite snapshot store, the optional MongoDB record archive and
the refresh schedule. Use --defaults to write the default configuration
without prompting.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDefaults, "defaults", false, "write the default configuration without prompting")
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := configPath()

	if initDefaults {
		if config.Exists(path) {
			return fmt.Errorf("configuration file already exists at %s", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(out, "✅ Default configuration saved to: %s\n", path)
		return nil
	}

	p := newPrompter(cmd.InOrStdin(), out)

	fmt.Fprintln(out, FormatTitle("🔥 Hotspot Setup"))
	fmt.Fprintln(out)

	if config.Exists(path) {
		fmt.Fprintf(out, "Configuration file already exists at: %s\n", path)
		confirmed, err := p.yesNo("Do you want to overwrite it? (y/N): ")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	newCfg, err := runWizard(p, out)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()
	checkBackends(ctx, out, newCfg)

	fmt.Fprintln(out, "\n💾 Saving configuration...")
	if err := newCfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(out, "✅ Configuration saved to: %s\n", path)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Check the data:     hotspot summary --preset last_30_days")
	fmt.Fprintln(out, "  2. Serve the API:      hotspot api")
	fmt.Fprintln(out, "  3. Start the refresher: hotspot run")
	return nil
}

func runWizard(p *prompter, out io.Writer) (*config.Config, error) {
	c := config.DefaultConfig()
	var err error

	fmt.Fprintln(out, "\n📄 Source")
	fmt.Fprintln(out, "---------")
	if c.Source.URI, err = p.optional("Sheet CSV URL or local path [published sheet]: ", c.Source.URI); err != nil {
		return nil, err
	}
	if c.HotspotKind, err = p.optional(fmt.Sprintf("Hotspot kind value [%s]: ", c.HotspotKind), c.HotspotKind); err != nil {
		return nil, err
	}

	fmt.Fprintln(out, "\n📊 Storage")
	fmt.Fprintln(out, "----------")
	if c.SQLDatabase.URI, err = p.optional(fmt.Sprintf("SQLite snapshot database [%s]: ", c.SQLDatabase.URI), c.SQLDatabase.URI); err != nil {
		return nil, err
	}
	if c.NoSQLDatabase.URI, err = p.optional("MongoDB archive URI (empty to disable) []: ", ""); err != nil {
		return nil, err
	}

	fmt.Fprintln(out, "\n⏰ Refresh")
	fmt.Fprintln(out, "----------")
	c.Refresh.Cron, err = p.withRetry(fmt.Sprintf("Refresh cron expression [%s]: ", c.Refresh.Cron), func(input string) (string, error) {
		if input == "" {
			return c.Refresh.Cron, nil
		}
		if _, err := cron.ParseStandard(input); err != nil {
			return "", fmt.Errorf("invalid cron expression: %v", err)
		}
		return input, nil
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

// checkBackends tries every configured backend and reports the outcome.
// Failures are reported but do not stop the configuration from being saved.
func checkBackends(ctx context.Context, out io.Writer, c *config.Config) {
	fmt.Fprintln(out, "\n🔌 Testing storage...")

	if store, err := sqlite.New(c.SQLConfig()); err != nil {
		fmt.Fprintf(out, "%s\n", FormatWarning("⚠️  SQLite: "+err.Error()))
	} else if err := store.Connect(ctx); err != nil {
		fmt.Fprintf(out, "%s\n", FormatWarning("⚠️  SQLite: "+err.Error()))
	} else {
		store.Disconnect(ctx)
		fmt.Fprintln(out, FormatSuccess("✅ SQLite snapshot store ready"))
	}

	if !c.NoSQLConfig().Enabled() {
		fmt.Fprintln(out, FormatMeta("   MongoDB archive disabled"))
		return
	}
	archive, err := mongodb.New(c.NoSQLConfig())
	if err == nil {
		err = archive.Connect(ctx)
	}
	if err != nil {
		fmt.Fprintf(out, "%s\n", FormatWarning("⚠️  MongoDB: "+err.Error()))
		return
	}
	archive.Disconnect(ctx)
	fmt.Fprintln(out, FormatSuccess("✅ MongoDB archive reachable"))
}
