// Package catalog manages the user-curated records: feed sources, tags,
// article status and favorites, retention settings and share-draft prompts.
package catalog

import (
	"errors"

	"go.uber.org/zap"

	"rss-digest/pkg/config"
	"rss-digest/pkg/db"
	"rss-digest/pkg/logging"
)

var (
	// ErrSourceLimit is returned when creating a source would exceed the configured maximum.
	ErrSourceLimit = errors.New("maximum sources limit reached")
	// ErrSourceExists is returned when a source with the same URL is already stored.
	ErrSourceExists = errors.New("a source with this URL already exists")
	// ErrTagExists is returned when a tag with the same name is already stored.
	ErrTagExists = errors.New("a tag with this name already exists")
)

// Service validates catalog requests and applies them to the store.
type Service struct {
	store      db.Store
	validate   *requestValidator
	maxSources int
	logger     *zap.Logger
}

// NewService creates a catalog service. maxSources below 1 falls back to config.DefaultMaxSources.
func NewService(store db.Store, maxSources int, logger *zap.Logger) *Service {
	if maxSources < 1 {
		maxSources = config.DefaultMaxSources
	}
	return &Service{
		store:      store,
		validate:   newRequestValidator(),
		maxSources: maxSources,
		logger:     logging.OrNop(logger),
	}
}

// MaxSources returns the source cap the service enforces.
func (s *Service) MaxSources() int {
	return s.maxSources
}
