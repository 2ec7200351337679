// Package ingest pulls feed items into storage, deduplicating by canonical URL and tagging by keyword.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rss-digest/pkg/db"
	"rss-digest/pkg/domain"
	"rss-digest/pkg/logging"
	"rss-digest/pkg/metrics"
	"rss-digest/pkg/parser"
	"rss-digest/pkg/tagmatch"
	"rss-digest/pkg/urls"
)

// DefaultFetchTimeout bounds a single feed retrieval when none is configured.
const DefaultFetchTimeout = 30 * time.Second

// rollbackTimeout bounds the delete that undoes a half-stored article. It runs
// even after the caller's context is done.
const rollbackTimeout = 5 * time.Second

// ArticleWriter is the storage the fetcher needs.
type ArticleWriter interface {
	ArticleExistsByCanonicalURL(ctx context.Context, canonicalURL string) (bool, error)
	CreateArticle(ctx context.Context, article domain.NewArticle) (domain.Article, error)
	AttachTags(ctx context.Context, articleID string, tagIDs []string) error
	DeleteArticle(ctx context.Context, id string) error
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	FetchTimeout time.Duration
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
}

// Fetcher ingests a single source.
type Fetcher struct {
	parser  parser.FeedParser
	store   ArticleWriter
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewFetcher creates a fetcher reading feeds through p and writing to store.
func NewFetcher(p parser.FeedParser, store ArticleWriter, opts FetcherOptions) *Fetcher {
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{
		parser:  p,
		store:   store,
		timeout: timeout,
		logger:  logging.OrNop(opts.Logger),
		metrics: opts.Metrics,
	}
}

// itemOutcome is what happened to one feed item.
type itemOutcome int

const (
	outcomeIgnored itemOutcome = iota
	outcomeCreated
	outcomeSkipped
)

// FetchOne retrieves source's feed and stores every new item. Problems are
// reported in the result's Errors; it never returns an error.
func (f *Fetcher) FetchOne(ctx context.Context, source domain.Source, tags []domain.Tag) domain.FetchResult {
	start := time.Now()
	result := domain.FetchResult{
		SourceID:   source.ID,
		SourceName: source.Name,
		Errors:     []string{},
	}
	log := f.logger.With(zap.String("source_id", source.ID), zap.String("source", source.Name))

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	items, err := f.parser.ParseURL(fetchCtx, source.URL)
	cancel()
	if err != nil {
		log.Warn("feed retrieval failed", zap.String("url", source.URL), zap.Error(err))
		f.metrics.RecordSourceFailure(source.Name)
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			log.Warn("source fetch interrupted", zap.Int("remaining_items", len(items)-i), zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("stopped with %d items left: %s", len(items)-i, err.Error()))
			break
		}

		outcome, err := f.storeItem(ctx, source, item, tags)
		if err != nil {
			// gofeed reports a missing title as ""
			title := item.Title
			if title == "" {
				title = "unknown"
			}
			log.Warn("item failed", zap.String("title", title), zap.String("link", item.Link), zap.Error(err))
			f.metrics.RecordItemError()
			result.Errors = append(result.Errors, fmt.Sprintf(`Item "%s": %s`, title, err.Error()))
			continue
		}

		switch outcome {
		case outcomeCreated:
			result.Created++
			f.metrics.RecordCreated()
		case outcomeSkipped:
			result.Skipped++
			f.metrics.RecordSkipped()
		}
	}

	f.metrics.ObserveFetch(time.Since(start).Seconds())
	log.Info("source fetched",
		zap.Int("items", len(items)),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result
}

func (f *Fetcher) storeItem(ctx context.Context, source domain.Source, item parser.FeedItem, tags []domain.Tag) (itemOutcome, error) {
	if item.Link == "" {
		return outcomeIgnored, nil
	}

	canonical := urls.NormalizeURL(item.Link)
	exists, err := f.store.ArticleExistsByCanonicalURL(ctx, canonical)
	if err != nil {
		return outcomeIgnored, err
	}
	if exists {
		return outcomeSkipped, nil
	}

	matched := tagmatch.Match(item.Title, item.Description, tags)
	status := domain.StatusExcluded
	if len(matched) > 0 {
		status = domain.StatusVisible
	}

	article, err := f.store.CreateArticle(ctx, domain.NewArticle{
		Title:        item.Title,
		Description:  item.Description,
		Link:         item.Link,
		CanonicalURL: canonical,
		PublishedAt:  item.PublishedAt,
		SourceID:     source.ID,
		Status:       status,
	})
	if errors.Is(err, db.ErrDuplicate) {
		// stored concurrently after the existence check
		return outcomeSkipped, nil
	}
	if err != nil {
		return outcomeIgnored, err
	}

	if len(matched) > 0 {
		if err := f.store.AttachTags(ctx, article.ID, domain.MatchedTagIDs(matched)); err != nil {
			if delErr := f.rollback(ctx, article.ID); delErr != nil {
				return outcomeIgnored, errors.Join(err, fmt.Errorf("removing article %s: %w", article.ID, delErr))
			}
			return outcomeIgnored, err
		}
	}

	return outcomeCreated, nil
}

// rollback deletes an article whose tags could not be linked. A cancelled ctx
// must not leave it behind, since later runs skip its canonical URL.
func (f *Fetcher) rollback(ctx context.Context, articleID string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	return f.store.DeleteArticle(ctx, articleID)
}
