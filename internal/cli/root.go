// Package cli holds the statusboard command tree.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/statusboard/internal/config"
	"github.com/MrSnakeDoc/statusboard/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "statusboard",
	Short: "Community service status tracker",
	Long: `statusboard keeps a registry of online services and a ledger of
user-submitted problem reports, and derives each service's status from
the number of reports it has received.

Configuration is read from STATUSBOARD_* environment variables.`,
	SilenceUsage: true,
}

// Execute runs the command tree until completion or SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// bootstrap loads configuration and builds the logger shared by commands.
func bootstrap() (*config.Config, logger.Logger) {
	cfg := config.Load()
	return cfg, logger.New(cfg.LogLevel, cfg.PrettyLog)
}
