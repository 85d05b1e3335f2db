package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage snapshot store migrations",
	Long:  `Manage the SQLite snapshot store schema. Migrations are embedded in the binary.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runMigrateUp,
}

var migrateVersionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"status"},
	Short:   "Show the current migration version",
	RunE:    runMigrateVersion,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

// runMigrateUp reports the schema version. Connecting the store, done
// before every command, already applied pending migrations.
func runMigrateUp(cmd *cobra.Command, args []string) error {
	if sqlStore == nil {
		return fmt.Errorf("no snapshot store configured (set sql_database.uri)")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "🔄 Running database migrations...")
	if err := printMigrationVersion(cmd); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), FormatSuccess("✅ Migrations completed successfully!"))
	return nil
}

func runMigrateVersion(cmd *cobra.Command, args []string) error {
	if sqlStore == nil {
		return fmt.Errorf("no snapshot store configured (set sql_database.uri)")
	}
	return printMigrationVersion(cmd)
}

func printMigrationVersion(cmd *cobra.Command) error {
	version, dirty, err := sqlStore.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	path, _ := sqlStore.Path()
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", FormatLabelValue("Database:", path))
	status := fmt.Sprintf("%d", version)
	if dirty {
		status += " " + FormatWarning("(dirty)")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", FormatLabelValue("Current migration version:", status))
	return nil
}
