package db

import (
	"context"
	"errors"
	"time"

	"rss-digest/pkg/domain"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field (canonical URL, source URL, tag name) is already taken.
	ErrDuplicate = errors.New("record already exists")
)

// ArticleQuery selects a page of articles for listing.
type ArticleQuery struct {
	Page          int // 1-based
	Limit         int
	Status        domain.ArticleStatus
	TagID         string
	Search        string // matched case-insensitively against title and description
	FavoritesOnly bool
}

// Offset returns the number of rows skipped for the query's page.
func (q ArticleQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// ArticlePage is one page of listed articles plus the total match count.
type ArticlePage struct {
	Articles []domain.ArticleView `json:"articles"`
	Total    int                  `json:"total"`
}

// ArticleStore persists articles, their tag links and favorites.
type ArticleStore interface {
	ArticleExistsByCanonicalURL(ctx context.Context, canonicalURL string) (bool, error)
	CreateArticle(ctx context.Context, article domain.NewArticle) (domain.Article, error)
	AttachTags(ctx context.Context, articleID string, tagIDs []string) error
	DeleteArticle(ctx context.Context, id string) error
	GetArticle(ctx context.Context, id string) (domain.ArticleView, error)
	ListArticles(ctx context.Context, q ArticleQuery) (ArticlePage, error)
	UpdateArticleStatus(ctx context.Context, id string, status domain.ArticleStatus) (domain.Article, error)
	ToggleFavorite(ctx context.Context, articleID string) (bool, error)
	FavoriteArticleIDs(ctx context.Context) ([]string, error)
	// DeleteArticlesCreatedBefore removes articles created before cutoff whose
	// IDs are not in exclude and returns how many were removed.
	DeleteArticlesCreatedBefore(ctx context.Context, cutoff time.Time, exclude []string) (int64, error)
}

// SourceStore persists feed sources. Deleting a source removes its articles.
type SourceStore interface {
	ListSources(ctx context.Context) ([]domain.Source, error)
	CountSources(ctx context.Context) (int, error)
	CreateSource(ctx context.Context, name, url string) (domain.Source, error)
	DeleteSource(ctx context.Context, id string) error
	SetSourceActive(ctx context.Context, id string, active bool) (domain.Source, error)
}

// TagStore persists tags with their keywords.
type TagStore interface {
	ListTags(ctx context.Context) ([]domain.Tag, error)
	CreateTag(ctx context.Context, name string, keywords []string) (domain.Tag, error)
	ReplaceTagKeywords(ctx context.Context, tagID string, keywords []string) ([]domain.Keyword, error)
	SetTagActive(ctx context.Context, id string, active bool) (domain.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

// SettingsStore persists the single settings record.
type SettingsStore interface {
	// GetSettings returns domain.DefaultSettings when nothing is stored yet.
	GetSettings(ctx context.Context) (domain.Settings, error)
	UpdateSettings(ctx context.Context, retentionDays int) (domain.Settings, error)
}

// PromptStore persists share-draft prompt templates.
type PromptStore interface {
	ListPrompts(ctx context.Context) ([]domain.Prompt, error)
	GetPrompt(ctx context.Context, id string) (domain.Prompt, error)
	GetDefaultPrompt(ctx context.Context) (domain.Prompt, error)
	// CreatePrompt stores name, template and default flag; making it default clears the previous default.
	CreatePrompt(ctx context.Context, prompt domain.Prompt) (domain.Prompt, error)
	UpdatePrompt(ctx context.Context, id string, update domain.PromptUpdate) (domain.Prompt, error)
	DeletePrompt(ctx context.Context, id string) error
}

// Store is the full persistence surface used by the application.
type Store interface {
	ArticleStore
	SourceStore
	TagStore
	SettingsStore
	PromptStore
	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error
	Close() error
}
