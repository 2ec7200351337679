package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"rss-digest/pkg/db"
	"rss-digest/pkg/domain"
	"rss-digest/pkg/urls"
)

// SourceLimitError reports the cap that blocked a new source. It matches ErrSourceLimit.
type SourceLimitError struct {
	Max int
}

func (e *SourceLimitError) Error() string {
	return fmt.Sprintf("maximum sources limit (%d) reached", e.Max)
}

func (e *SourceLimitError) Is(target error) bool { return target == ErrSourceLimit }

// CreateSourceRequest is the input for adding a feed source.
type CreateSourceRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	URL  string `json:"url" validate:"required"`
}

// CreateSource validates req, enforces the source cap and stores the source.
func (s *Service) CreateSource(ctx context.Context, req CreateSourceRequest) (domain.Source, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)
	if err := s.validate.validate(req); err != nil {
		return domain.Source{}, err
	}
	if err := urls.ValidateFeedURL(req.URL); err != nil {
		return domain.Source{}, &ValidationError{Fields: map[string]string{"url": err.Error()}}
	}

	count, err := s.store.CountSources(ctx)
	if err != nil {
		return domain.Source{}, fmt.Errorf("count sources: %w", err)
	}
	if count >= s.maxSources {
		return domain.Source{}, &SourceLimitError{Max: s.maxSources}
	}

	src, err := s.store.CreateSource(ctx, req.Name, req.URL)
	if errors.Is(err, db.ErrDuplicate) {
		return domain.Source{}, ErrSourceExists
	}
	if err != nil {
		return domain.Source{}, fmt.Errorf("create source: %w", err)
	}

	s.logger.Info("source created", zap.String("source_id", src.ID), zap.String("url", src.URL))
	return src, nil
}

// ListSources returns every source, newest first.
func (s *Service) ListSources(ctx context.Context) ([]domain.Source, error) {
	sources, err := s.store.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// DeleteSource removes a source and, through the store's cascade, its articles.
func (s *Service) DeleteSource(ctx context.Context, id string) error {
	if id == "" {
		return invalid("id", "is required")
	}
	if err := s.store.DeleteSource(ctx, id); err != nil {
		return fmt.Errorf("delete source %s: %w", id, err)
	}
	s.logger.Info("source deleted", zap.String("source_id", id))
	return nil
}

// SetSourceActive enables or disables a source for ingestion.
func (s *Service) SetSourceActive(ctx context.Context, id string, active bool) (domain.Source, error) {
	if id == "" {
		return domain.Source{}, invalid("id", "is required")
	}
	src, err := s.store.SetSourceActive(ctx, id, active)
	if err != nil {
		return domain.Source{}, fmt.Errorf("update source %s: %w", id, err)
	}
	return src, nil
}
