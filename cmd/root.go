// Package cmd contains the rss-digest CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rss-digest/pkg/config"
	"rss-digest/pkg/logging"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rss-digest",
	Short: "Personal RSS aggregation with keyword tagging and retention",
	Long: `rss-digest polls a bounded set of RSS/Atom feeds, deduplicates articles by
canonical URL, tags them by keyword and removes old articles while keeping favorites.

Example usage:
  rss-digest migrate                         # create tables or indexes
  rss-digest source add "Go Blog" https://go.dev/blog/feed.atom
  rss-digest tag add Go --keywords "golang, goroutine"
  rss-digest fetch                           # ingest every active source once
  rss-digest sweep --days 14                 # drop articles older than 14 days
  rss-digest serve                           # cron endpoints and scheduled jobs`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command with ctx, which is cancelled on shutdown signals.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (environment variables RSS_DIGEST_* override it)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err = logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	logger.Debug("configuration loaded",
		zap.String("driver", cfg.Database.Driver),
		zap.Int("max_sources", cfg.Ingest.MaxSources),
	)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
