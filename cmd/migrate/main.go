package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the recipe database schema",
	Long: `Apply or inspect the schema of the configured recipe database.

The database is selected with the same environment variables as the API
(STORE_BACKEND, DB_HOST, DB_PORT, ...). Postgres schemas are managed with
the embedded SQL migrations, sqlite schemas with auto-migration.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		return logging.Setup(os.Stderr, level, "text")
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE:  runUp,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and when they were applied",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(upCmd, statusCmd)
}

func openDatabase() (*gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.StoreBackend == config.BackendMemory {
		return nil, fmt.Errorf("STORE_BACKEND=%s has no schema to migrate", cfg.StoreBackend)
	}
	return database.Open(cfg)
}

func runUp(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close(db)

	applied, err := database.RunMigrations(cmd.Context(), db)
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
		return nil
	}
	for _, name := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "Applied migration: %s\n", name)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close(db)

	migrations, err := database.MigrationStatus(cmd.Context(), db)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MIGRATION\tAPPLIED AT")
	for _, m := range migrations {
		applied := "pending"
		if m.Applied() {
			applied = m.AppliedAt.Format("2006-01-02 15:04:05 MST")
		}
		fmt.Fprintf(w, "%s\t%s\n", m.Name, applied)
	}
	return w.Flush()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("migrate failed")
		os.Exit(1)
	}
}
