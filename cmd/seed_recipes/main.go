package main

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/seed"
	"github.com/pageza/recipebox/backend/internal/store"
)

var (
	seedFile  string
	seedForce bool
	seedDry   bool
)

var rootCmd = &cobra.Command{
	Use:   "seed_recipes",
	Short: "Seed the recipe database",
	Long: `Create recipes from a YAML seed file in the configured sqlite or
postgres database. Without --file the built-in starter recipes are used.

Examples:
  seed_recipes
  seed_recipes --file recipes.yaml --force`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML seed file (default: built-in recipes)")
	rootCmd.Flags().BoolVar(&seedForce, "force", false, "seed even if the store already holds recipes")
	rootCmd.Flags().BoolVar(&seedDry, "dry-run", false, "validate the seed file without writing")
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := logging.Setup(os.Stderr, "info", "text"); err != nil {
		return err
	}

	recipes, err := seed.Load(seedFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d recipes\n", len(recipes))
	if seedDry {
		fmt.Fprintln(cmd.OutOrStdout(), "Dry run - no changes made")
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.StoreBackend == config.BackendMemory {
		return fmt.Errorf("STORE_BACKEND=%s does not persist seeded recipes", cfg.StoreBackend)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if _, err := database.RunMigrations(cmd.Context(), db); err != nil {
		return err
	}

	s := store.NewGormStore(db)
	var n int
	if seedForce {
		n, err = seed.Apply(cmd.Context(), s, recipes)
	} else {
		n, err = seed.IfEmpty(cmd.Context(), s, recipes)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %d recipes\n", n)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("seeding failed")
		os.Exit(1)
	}
}
