package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rss-digest/pkg/draft"
	"rss-digest/pkg/ingest"
	"rss-digest/pkg/scheduler"
	"rss-digest/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the cron endpoints and run scheduled jobs",
	Long: `Serve the token-protected endpoints:

  GET|POST /api/cron/fetch-rss             ingest every active source
  GET|POST /api/cron/cleanup-old-articles  apply the stored retention setting
  POST     /api/generate-post              draft a share post with the LLM
  GET      /healthz                        storage health
  GET      /metrics                        Prometheus metrics

Calls must send "Authorization: Bearer <server.cron_secret>" or the
X-Cron-Auth-Token header. When schedule.fetch_interval or
schedule.sweep_interval is set, the same jobs also run in-process.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	orchestrator := a.orchestrator()
	sweeper := a.sweeper()

	deps := server.Deps{Fetcher: orchestrator, Sweeper: sweeper, Health: a.store}
	gen, err := a.generator()
	switch {
	case err == nil:
		deps.Generator = gen
	case errors.Is(err, draft.ErrMissingAPIKey):
		a.logger.Warn("post generation disabled", zap.Error(err))
	default:
		return err
	}

	if a.cfg.Server.CronSecret == "" {
		a.logger.Warn("server.cron_secret is empty, every API call will be rejected")
	}

	jobs := scheduler.New(a.logger)
	jobs.Add(scheduler.Job{
		Name:     "fetch-rss",
		Interval: a.cfg.Schedule.FetchInterval,
		Timeout:  a.cfg.Schedule.JobTimeout,
		Fn: func(ctx context.Context) error {
			_, err := orchestrator.FetchAll(ctx)
			if errors.Is(err, ingest.ErrRunInProgress) {
				a.logger.Info("skipping scheduled fetch, a run is in progress")
				return nil
			}
			return err
		},
	})
	jobs.Add(scheduler.Job{
		Name:     "cleanup-old-articles",
		Interval: a.cfg.Schedule.SweepInterval,
		Timeout:  a.cfg.Schedule.JobTimeout,
		Fn: func(ctx context.Context) error {
			_, _, err := sweeper.SweepWithSettings(ctx)
			return err
		},
	})

	jobCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	if jobs.Len() > 0 {
		a.logger.Info("starting scheduled jobs", zap.Int("jobs", jobs.Len()))
		jobs.Start(jobCtx)
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	srv := server.New(deps, server.Options{
		CronSecret: a.cfg.Server.CronSecret,
		Logger:     a.logger,
		Gatherer:   a.registry,
	})
	serveErr := srv.ListenAndServe(ctx, addr)

	stopJobs()
	jobs.Wait()
	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return nil
}
