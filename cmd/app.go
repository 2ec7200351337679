package cmd

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"rss-digest/pkg/catalog"
	"rss-digest/pkg/config"
	"rss-digest/pkg/db"
	"rss-digest/pkg/draft"
	"rss-digest/pkg/ingest"
	"rss-digest/pkg/metrics"
	"rss-digest/pkg/parser"
	"rss-digest/pkg/retention"
)

// app holds the components a command works with.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    db.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newApp(ctx context.Context) (*app, error) {
	store, err := db.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		registry: registry,
		metrics:  metrics.New(registry),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", zap.Error(err))
	}
}

func (a *app) orchestrator() *ingest.Orchestrator {
	p := parser.NewRSSParser(parser.Options{
		UserAgent:         a.cfg.Ingest.UserAgent,
		RequestsPerSecond: a.cfg.Ingest.RequestsPerSecond,
	})
	fetcher := ingest.NewFetcher(p, a.store, ingest.FetcherOptions{
		FetchTimeout: a.cfg.Ingest.FetchTimeout,
		Logger:       a.logger,
		Metrics:      a.metrics,
	})
	return ingest.NewOrchestrator(a.store, fetcher, a.logger)
}

func (a *app) sweeper() *retention.Sweeper {
	return retention.NewSweeper(a.store, a.logger, a.metrics)
}

func (a *app) catalog() *catalog.Service {
	return catalog.NewService(a.store, a.cfg.Ingest.MaxSources, a.logger)
}

func (a *app) generator() (*draft.Generator, error) {
	return draft.NewGenerator(a.cfg.LLM)
}
