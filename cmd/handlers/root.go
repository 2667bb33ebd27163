package handlers

import (
	"context"
	"dailydigest/internal/config"
	"dailydigest/internal/logger"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the dailydigest command tree. Without a subcommand it performs a run.
func NewRootCmd() *cobra.Command {
	var opts runOptions

	rootCmd := &cobra.Command{
		Use:   "dailydigest",
		Short: "Compile and send an AI-curated daily news digest",
		Long: `dailydigest - Daily News Digest

Reads the front pages of a fixed list of news sites, extracts the top stories
with an AI model, groups them into themed categories and publishes the result
as an HTML email, a static web archive and an RSS feed.

Examples:
  # Run the daily digest (same as 'dailydigest run')
  dailydigest

  # Build and publish without sending email
  dailydigest run --no-email

  # Check sources and prompt sizes without calling the AI
  dailydigest run --dry-run

  # List stored digests
  dailydigest history`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .dailydigest.yaml)")
	addRunFlags(rootCmd, &opts)

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewHistoryCmd())
	rootCmd.AddCommand(NewRebuildCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// Execute runs the root command until it finishes or the process is interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}

// setup loads configuration and applies its logging settings. The returned
// closer flushes the log file, if any.
func setup(req config.Requirements) (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.LoadFor(cfgFile, req)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.App.Debug && cfg.Logging.Level == "info" {
		cfg.Logging.Level = "debug"
	}
	closer, err := logger.Configure(cfg.Logging)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger.Get(), closer, nil
}
