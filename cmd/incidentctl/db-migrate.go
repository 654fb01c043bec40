package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/incidentd/pkg/db"
)

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending database migrations for the dialect selected
by DATABASE_URL. The migrations are embedded in the binary.

Example:
  incidentctl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}
		if err := runMigrations(cmd.OutOrStdout(), cfg.DatabaseURL); err != nil {
			fmt.Fprintln(os.Stderr, "Migration failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  incidentctl db down      # Rollback 1 migration
  incidentctl db down 3    # Rollback 3 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				fmt.Fprintf(os.Stderr, "Invalid number of steps: %q\n", args[0])
				os.Exit(1)
			}
			steps = n
		}

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}
		if err := runMigrationsDown(cmd.OutOrStdout(), cfg.DatabaseURL, steps); err != nil {
			fmt.Fprintln(os.Stderr, "Rollback failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}
		if err := showMigrationStatus(cmd.OutOrStdout(), cfg.DatabaseURL); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to get status:", err)
			os.Exit(1)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

func runMigrations(out io.Writer, dbURL string) error {
	version, err := db.Migrate(dbURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated to version: %d\n", version)
	return nil
}

func runMigrationsDown(out io.Writer, dbURL string, steps int) error {
	version, err := db.MigrateDown(dbURL, steps)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Rolled back %d migration(s), now at version: %d\n", steps, version)
	return nil
}

func showMigrationStatus(out io.Writer, dbURL string) error {
	version, dirty, err := db.MigrationVersion(dbURL)
	if errors.Is(err, db.ErrNoVersion) {
		fmt.Fprintln(out, "No migrations applied")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}
