// Package replication copies a whole rss-digest dataset from one store into another,
// for example when moving from the in-memory or Mongo backend to Postgres.
package replication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rss-digest/pkg/db"
	"rss-digest/pkg/domain"
	"rss-digest/pkg/logging"
)

const (
	batchSize  = 100
	numWorkers = 5

	rollbackTimeout = 5 * time.Second
)

// Config wires the replication endpoints.
type Config struct {
	From   db.Store
	To     db.Store
	Logger *zap.Logger
}

// Stats counts what was written to the target.
type Stats struct {
	Sources         int `json:"sources"`
	Tags            int `json:"tags"`
	Articles        int `json:"articles"`
	SkippedArticles int `json:"skippedArticles"`
	Favorites       int `json:"favorites"`
	Prompts         int `json:"prompts"`
}

// Replicator copies sources, tags, articles with their tag links and
// favorites, settings and prompts. Records already in the target (same source
// URL, tag name, canonical URL or prompt name) are reused, so a run can be repeated.
type Replicator struct {
	from   db.Store
	to     db.Store
	logger *zap.Logger
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.From == nil {
		return nil, errors.New("source store is required")
	}
	if cfg.To == nil {
		return nil, errors.New("target store is required")
	}
	return &Replicator{from: cfg.From, to: cfg.To, logger: logging.OrNop(cfg.Logger)}, nil
}

// Replicate runs one full copy. Article batches are written in parallel; the
// first failing batch stops the run.
func (r *Replicator) Replicate(ctx context.Context) (Stats, error) {
	var stats Stats

	sourceIDs, err := r.replicateSources(ctx, &stats)
	if err != nil {
		return stats, err
	}
	tagIDs, err := r.replicateTags(ctx, &stats)
	if err != nil {
		return stats, err
	}

	articles, err := r.readAllArticles(ctx)
	if err != nil {
		return stats, err
	}
	r.logger.Info("loaded articles, processing in batches", zap.Int("articles", len(articles)))
	if err := r.processBatches(ctx, articles, sourceIDs, tagIDs, &stats); err != nil {
		return stats, err
	}

	if err := r.replicateSettings(ctx); err != nil {
		return stats, err
	}
	if err := r.replicatePrompts(ctx, &stats); err != nil {
		return stats, err
	}

	r.logger.Info("replication complete",
		zap.Int("sources", stats.Sources),
		zap.Int("tags", stats.Tags),
		zap.Int("articles", stats.Articles),
		zap.Int("skipped_articles", stats.SkippedArticles),
		zap.Int("favorites", stats.Favorites),
		zap.Int("prompts", stats.Prompts),
	)
	return stats, nil
}

// replicateSources returns a map from source IDs in the origin to IDs in the target.
func (r *Replicator) replicateSources(ctx context.Context, stats *Stats) (map[string]string, error) {
	from, err := r.from.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	existing, err := r.to.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("read target sources: %w", err)
	}
	byURL := make(map[string]string, len(existing))
	for _, s := range existing {
		byURL[s.URL] = s.ID
	}

	ids := make(map[string]string, len(from))
	for _, s := range from {
		if id, ok := byURL[s.URL]; ok {
			ids[s.ID] = id
			continue
		}
		created, err := r.to.CreateSource(ctx, s.Name, s.URL)
		if err != nil {
			return nil, fmt.Errorf("copy source %s: %w", s.URL, err)
		}
		if !s.IsActive {
			if _, err := r.to.SetSourceActive(ctx, created.ID, false); err != nil {
				return nil, fmt.Errorf("copy source %s: %w", s.URL, err)
			}
		}
		ids[s.ID] = created.ID
		stats.Sources++
	}
	return ids, nil
}

func (r *Replicator) replicateTags(ctx context.Context, stats *Stats) (map[string]string, error) {
	from, err := r.from.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}
	existing, err := r.to.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("read target tags: %w", err)
	}
	byName := make(map[string]string, len(existing))
	for _, t := range existing {
		byName[t.Name] = t.ID
	}

	ids := make(map[string]string, len(from))
	for _, t := range from {
		if id, ok := byName[t.Name]; ok {
			ids[t.ID] = id
			continue
		}
		keywords := make([]string, len(t.Keywords))
		for i, k := range t.Keywords {
			keywords[i] = k.Keyword
		}
		created, err := r.to.CreateTag(ctx, t.Name, keywords)
		if err != nil {
			return nil, fmt.Errorf("copy tag %s: %w", t.Name, err)
		}
		if !t.IsActive {
			if _, err := r.to.SetTagActive(ctx, created.ID, false); err != nil {
				return nil, fmt.Errorf("copy tag %s: %w", t.Name, err)
			}
		}
		ids[t.ID] = created.ID
		stats.Tags++
	}
	return ids, nil
}

func (r *Replicator) readAllArticles(ctx context.Context) ([]domain.ArticleView, error) {
	var all []domain.ArticleView
	for _, status := range []domain.ArticleStatus{domain.StatusVisible, domain.StatusExcluded} {
		for page := 1; ; page++ {
			res, err := r.from.ListArticles(ctx, db.ArticleQuery{Page: page, Limit: batchSize, Status: status})
			if err != nil {
				return nil, fmt.Errorf("read %s articles page %d: %w", status, page, err)
			}
			all = append(all, res.Articles...)
			if len(res.Articles) < batchSize || page*batchSize >= res.Total {
				break
			}
		}
	}
	return all, nil
}

type batchResult struct {
	inserted  int
	skipped   int
	favorites int
}

func (r *Replicator) processBatches(ctx context.Context, articles []domain.ArticleView, sourceIDs, tagIDs map[string]string, stats *Stats) error {
	numBatches := (len(articles) + batchSize - 1) / batchSize
	results := make([]batchResult, numBatches)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	for i := 0; i < numBatches; i++ {
		i := i
		start := i * batchSize
		end := min(start+batchSize, len(articles))
		g.Go(func() error {
			res, err := r.processBatch(gctx, articles[start:end], sourceIDs, tagIDs)
			if err != nil {
				return fmt.Errorf("batch [%d:%d]: %w", start, end, err)
			}
			results[i] = res
			return nil
		})
	}
	err := g.Wait()

	for _, res := range results {
		stats.Articles += res.inserted
		stats.SkippedArticles += res.skipped
		stats.Favorites += res.favorites
	}
	return err
}

// processBatch copies one batch, skipping articles whose canonical URL the target already holds.
func (r *Replicator) processBatch(ctx context.Context, batch []domain.ArticleView, sourceIDs, tagIDs map[string]string) (batchResult, error) {
	var res batchResult
	for _, a := range batch {
		exists, err := r.to.ArticleExistsByCanonicalURL(ctx, a.CanonicalURL)
		if err != nil {
			return res, err
		}
		if exists {
			res.skipped++
			continue
		}

		sourceID, ok := sourceIDs[a.SourceID]
		if !ok {
			return res, fmt.Errorf("article %s: unknown source %s", a.ID, a.SourceID)
		}
		created, err := r.to.CreateArticle(ctx, domain.NewArticle{
			Title:        a.Title,
			Description:  a.Description,
			Link:         a.Link,
			CanonicalURL: a.CanonicalURL,
			PublishedAt:  a.PublishedAt,
			SourceID:     sourceID,
			Status:       a.Status,
		})
		if errors.Is(err, db.ErrDuplicate) {
			res.skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("article %s: %w", a.CanonicalURL, err)
		}

		if err := r.copyLinks(ctx, created.ID, a, tagIDs); err != nil {
			if delErr := r.rollback(ctx, created.ID); delErr != nil {
				err = errors.Join(err, fmt.Errorf("removing article %s: %w", created.ID, delErr))
			}
			return res, fmt.Errorf("article %s: %w", a.CanonicalURL, err)
		}
		if a.Favorited {
			res.favorites++
		}
		res.inserted++
	}
	r.logger.Debug("batch replicated", zap.Int("inserted", res.inserted), zap.Int("skipped", res.skipped))
	return res, nil
}

// copyLinks re-attaches tags and the favorite mark of a to its copy.
func (r *Replicator) copyLinks(ctx context.Context, articleID string, a domain.ArticleView, tagIDs map[string]string) error {
	if len(a.Tags) > 0 {
		ids := make([]string, 0, len(a.Tags))
		for _, t := range a.Tags {
			if id, ok := tagIDs[t.ID]; ok {
				ids = append(ids, id)
			}
		}
		if err := r.to.AttachTags(ctx, articleID, ids); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
	}
	if a.Favorited {
		if _, err := r.to.ToggleFavorite(ctx, articleID); err != nil {
			return fmt.Errorf("favorite: %w", err)
		}
	}
	return nil
}

// rollback removes a copy whose links failed, so the next run copies it again
// instead of skipping its canonical URL.
func (r *Replicator) rollback(ctx context.Context, articleID string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	return r.to.DeleteArticle(ctx, articleID)
}

func (r *Replicator) replicateSettings(ctx context.Context) error {
	settings, err := r.from.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	if _, err := r.to.UpdateSettings(ctx, settings.ArticleRetentionDays); err != nil {
		return fmt.Errorf("copy settings: %w", err)
	}
	return nil
}

func (r *Replicator) replicatePrompts(ctx context.Context, stats *Stats) error {
	from, err := r.from.ListPrompts(ctx)
	if err != nil {
		return fmt.Errorf("read prompts: %w", err)
	}
	existing, err := r.to.ListPrompts(ctx)
	if err != nil {
		return fmt.Errorf("read target prompts: %w", err)
	}
	names := make(map[string]bool, len(existing))
	for _, p := range existing {
		names[p.Name] = true
	}

	for _, p := range from {
		if names[p.Name] {
			continue
		}
		if _, err := r.to.CreatePrompt(ctx, domain.Prompt{Name: p.Name, Template: p.Template, IsDefault: p.IsDefault}); err != nil {
			return fmt.Errorf("copy prompt %s: %w", p.Name, err)
		}
		stats.Prompts++
	}
	return nil
}
