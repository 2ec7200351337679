package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"rss-digest/pkg/domain"
	"rss-digest/pkg/logging"
)

// ErrRunInProgress is returned by FetchAll while another run on the same orchestrator is active.
var ErrRunInProgress = errors.New("an ingestion run is already in progress")

// CatalogReader loads what a batch run needs to know about sources and tags.
type CatalogReader interface {
	ListSources(ctx context.Context) ([]domain.Source, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
}

// SourceFetcher ingests one source. *Fetcher implements it.
type SourceFetcher interface {
	FetchOne(ctx context.Context, source domain.Source, tags []domain.Tag) domain.FetchResult
}

// Orchestrator runs the fetcher over every active source.
type Orchestrator struct {
	catalog CatalogReader
	fetcher SourceFetcher
	logger  *zap.Logger
	running sync.Mutex
}

func NewOrchestrator(catalog CatalogReader, fetcher SourceFetcher, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		catalog: catalog,
		fetcher: fetcher,
		logger:  logging.OrNop(logger),
	}
}

// FetchAll ingests active sources one after another with the tag set loaded once.
// It fails only when sources or tags cannot be loaded. A cancelled context stops
// the run before the next source; results gathered so far are returned with ctx.Err().
// Only one run executes at a time; overlapping calls get ErrRunInProgress.
func (o *Orchestrator) FetchAll(ctx context.Context) (domain.BatchFetchResult, error) {
	if !o.running.TryLock() {
		return domain.BatchFetchResult{}, ErrRunInProgress
	}
	defer o.running.Unlock()

	sources, err := o.catalog.ListSources(ctx)
	if err != nil {
		return domain.BatchFetchResult{}, fmt.Errorf("load sources: %w", err)
	}
	active := domain.ActiveSources(sources)

	tags, err := o.catalog.ListTags(ctx)
	if err != nil {
		return domain.BatchFetchResult{}, fmt.Errorf("load tags: %w", err)
	}

	batch := domain.BatchFetchResult{
		TotalSources: len(active),
		Results:      make([]domain.FetchResult, 0, len(active)),
	}

	for _, src := range active {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("fetch run cancelled", zap.Int("completed", len(batch.Results)), zap.Int("total", len(active)))
			return batch, err
		}

		result := o.fetcher.FetchOne(ctx, src, tags)
		if len(result.Errors) > 0 {
			o.logger.Warn("source reported errors",
				zap.String("source", src.Name),
				zap.Strings("errors", result.Errors),
			)
		}
		batch.Results = append(batch.Results, result)
	}

	created, skipped, errs := batch.Totals()
	o.logger.Info("fetch run finished",
		zap.Int("sources", batch.TotalSources),
		zap.Int("created", created),
		zap.Int("skipped", skipped),
		zap.Int("errors", errs),
	)
	return batch, nil
}
