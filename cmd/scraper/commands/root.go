package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/riskibarqy/fantasy-league-scraper/internal/app"
	"github.com/riskibarqy/fantasy-league-scraper/internal/config"
	"github.com/riskibarqy/fantasy-league-scraper/internal/observability"
	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/logging"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:           "scraper",
	Short:         "scraper logs into a fantasy football league site and extracts its private pages.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliEnv is the process wide state shared by the scrape commands.
type cliEnv struct {
	cfg    config.Config
	logger *logging.Logger
	app    *app.App

	shutdownTracing func(context.Context) error
}

func setup(ctx context.Context) (*cliEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("build app: %w", err)
	}

	return &cliEnv{cfg: cfg, logger: logger, app: a, shutdownTracing: shutdownTracing}, nil
}

func (r *cliEnv) close() {
	if err := r.app.Close(); err != nil {
		r.logger.Warn("close store failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := r.shutdownTracing(ctx); err != nil {
		r.logger.Warn("shutdown tracing failed", "error", err)
	}
	_ = r.logger.Sync()
}
