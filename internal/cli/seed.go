package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/statusboard/internal/app"
	"github.com/MrSnakeDoc/statusboard/internal/metrics"
	"github.com/MrSnakeDoc/statusboard/internal/sources/catalog"
	"github.com/MrSnakeDoc/statusboard/internal/utils"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Register the services of a catalog file",
	Long: `Runs one catalog seeding pass against the configured store. Services
that already exist are left untouched.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "catalog file (defaults to STATUSBOARD_CATALOG_FILE)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, loggerClient := bootstrap()
	defer func() { _ = loggerClient.Sync() }()

	file := seedFile
	if file == "" {
		file = cfg.CatalogFile
	}
	if file == "" {
		return errors.New("no catalog file: pass --file or set STATUSBOARD_CATALOG_FILE")
	}

	s, err := app.OpenStore(cmd.Context(), cfg, loggerClient)
	if err != nil {
		return err
	}
	defer utils.MustClose(s, loggerClient)

	t := app.NewTracker(s, loggerClient, metrics.New())
	res, err := catalog.NewSeeder(file, t, loggerClient).Seed(cmd.Context())
	if err != nil {
		return fmt.Errorf("seed %s: %w", file, err)
	}

	cmd.Printf("Catalog seeded: %d valid, %d registered, %d already present, %d skipped.\n",
		res.Loaded, res.Registered, res.Existing, res.Skipped)
	return nil
}
