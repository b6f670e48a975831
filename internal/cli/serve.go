package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/statusboard/internal/app"
	"github.com/MrSnakeDoc/statusboard/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Opens the configured store, seeds the catalog when
STATUSBOARD_CATALOG_FILE is set and serves the HTTP API until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, loggerClient := bootstrap()
	defer func() { _ = loggerClient.Sync() }()

	a, err := app.New(cmd.Context(), cfg, loggerClient)
	if err != nil {
		loggerClient.Error("failed to initialize", logger.Error(err))
		return fmt.Errorf("initialize: %w", err)
	}
	return a.Run(cmd.Context())
}
