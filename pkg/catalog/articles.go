package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"rss-digest/pkg/db"
	"rss-digest/pkg/domain"
)

// DefaultPageSize is the article page size when none is requested.
const DefaultPageSize = 20

// ListArticlesRequest selects one page of articles. Zero Page and Limit pick the defaults.
type ListArticlesRequest struct {
	Page          int    `json:"page" validate:"gte=1"`
	Limit         int    `json:"limit" validate:"gte=1,lte=100"`
	Status        string `json:"status" validate:"omitempty,oneof=visible excluded"`
	TagID         string `json:"tagId"`
	Search        string `json:"search"`
	FavoritesOnly bool   `json:"favoritesOnly"`
}

// sanitizeSearch drops the characters that delimit filter expressions.
func sanitizeSearch(search string) string {
	return strings.TrimSpace(strings.NewReplacer(",", "", "(", "", ")", "").Replace(search))
}

// ListArticles returns a page of articles with their source, tags and favorite flag.
func (s *Service) ListArticles(ctx context.Context, req ListArticlesRequest) (db.ArticlePage, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = DefaultPageSize
	}
	if err := s.validate.validate(req); err != nil {
		return db.ArticlePage{}, err
	}

	status := domain.StatusVisible
	if req.Status != "" {
		status = domain.ArticleStatus(req.Status)
	}

	page, err := s.store.ListArticles(ctx, db.ArticleQuery{
		Page:          req.Page,
		Limit:         req.Limit,
		Status:        status,
		TagID:         req.TagID,
		Search:        sanitizeSearch(req.Search),
		FavoritesOnly: req.FavoritesOnly,
	})
	if err != nil {
		return db.ArticlePage{}, fmt.Errorf("list articles: %w", err)
	}
	return page, nil
}

// GetArticle returns one article with its relations.
func (s *Service) GetArticle(ctx context.Context, id string) (domain.ArticleView, error) {
	if id == "" {
		return domain.ArticleView{}, invalid("id", "is required")
	}
	article, err := s.store.GetArticle(ctx, id)
	if err != nil {
		return domain.ArticleView{}, fmt.Errorf("get article %s: %w", id, err)
	}
	return article, nil
}

// ExcludeArticle hides an article from the main feed.
func (s *Service) ExcludeArticle(ctx context.Context, id string) (domain.Article, error) {
	return s.setStatus(ctx, id, domain.StatusExcluded)
}

// RestoreArticle puts an excluded article back into the main feed.
func (s *Service) RestoreArticle(ctx context.Context, id string) (domain.Article, error) {
	return s.setStatus(ctx, id, domain.StatusVisible)
}

func (s *Service) setStatus(ctx context.Context, id string, status domain.ArticleStatus) (domain.Article, error) {
	if id == "" {
		return domain.Article{}, invalid("id", "is required")
	}
	article, err := s.store.UpdateArticleStatus(ctx, id, status)
	if err != nil {
		return domain.Article{}, fmt.Errorf("update article %s: %w", id, err)
	}
	s.logger.Debug("article status changed", zap.String("article_id", id), zap.String("status", string(status)))
	return article, nil
}

// ToggleFavorite flips the favorite mark of an article and reports the new state.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, invalid("id", "is required")
	}
	favorited, err := s.store.ToggleFavorite(ctx, id)
	if err != nil {
		return false, fmt.Errorf("toggle favorite %s: %w", id, err)
	}
	return favorited, nil
}
