package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/statusboard/internal/app"
	"github.com/MrSnakeDoc/statusboard/internal/config"
	"github.com/MrSnakeDoc/statusboard/internal/utils"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Applies the embedded schema migrations to the configured SQL store
(postgres or sqlite). Memory and redis stores have no schema.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, loggerClient := bootstrap()
	defer func() { _ = loggerClient.Sync() }()

	if cfg.Store != config.StorePostgres && cfg.Store != config.StoreSQLite {
		cmd.Printf("Store %q has no schema, nothing to migrate.\n", cfg.Store)
		return nil
	}

	// Opening a SQL store applies pending migrations.
	s, err := app.OpenStore(cmd.Context(), cfg, loggerClient)
	if err != nil {
		return err
	}
	defer utils.MustClose(s, loggerClient)

	cmd.Printf("%s schema is up to date.\n", s.Engine())
	return nil
}
