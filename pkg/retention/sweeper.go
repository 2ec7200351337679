// Package retention removes articles older than the retention window, sparing favorites.
package retention

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rss-digest/pkg/domain"
	"rss-digest/pkg/logging"
	"rss-digest/pkg/metrics"
)

// ErrInvalidRetention is returned for a window outside 1..365 days.
var ErrInvalidRetention = errors.New("retention days must be between 1 and 365")

// Store is the storage the sweeper needs.
type Store interface {
	FavoriteArticleIDs(ctx context.Context) ([]string, error)
	DeleteArticlesCreatedBefore(ctx context.Context, cutoff time.Time, exclude []string) (int64, error)
	GetSettings(ctx context.Context) (domain.Settings, error)
}

type Sweeper struct {
	store   Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewSweeper(store Store, logger *zap.Logger, m *metrics.Metrics) *Sweeper {
	return &Sweeper{
		store:   store,
		logger:  logging.OrNop(logger),
		metrics: m,
		now:     time.Now,
	}
}

// WithClock replaces the clock, for tests.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Sweep deletes articles created more than retentionDays ago that are not favorites.
func (s *Sweeper) Sweep(ctx context.Context, retentionDays int) (domain.SweepResult, error) {
	if retentionDays < domain.MinRetentionDays || retentionDays > domain.MaxRetentionDays {
		return domain.SweepResult{}, fmt.Errorf("%w: got %d", ErrInvalidRetention, retentionDays)
	}

	favorites, err := s.store.FavoriteArticleIDs(ctx)
	if err != nil {
		return domain.SweepResult{}, fmt.Errorf("load favorites: %w", err)
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	deleted, err := s.store.DeleteArticlesCreatedBefore(ctx, cutoff, favorites)
	if err != nil {
		return domain.SweepResult{}, fmt.Errorf("delete articles before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	s.metrics.RecordSwept(deleted)
	s.logger.Info("retention sweep finished",
		zap.Int("retention_days", retentionDays),
		zap.Time("cutoff", cutoff),
		zap.Int("favorites_kept", len(favorites)),
		zap.Int64("deleted", deleted),
	)
	return domain.SweepResult{DeletedCount: deleted}, nil
}

// SweepWithSettings sweeps with the stored retention window and returns the window used.
func (s *Sweeper) SweepWithSettings(ctx context.Context) (domain.SweepResult, int, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return domain.SweepResult{}, 0, fmt.Errorf("load settings: %w", err)
	}
	days := settings.ArticleRetentionDays
	res, err := s.Sweep(ctx, days)
	return res, days, err
}
