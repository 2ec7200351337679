package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rss-digest/pkg/db"
	"rss-digest/pkg/domain"
	"rss-digest/pkg/logging"
)

// ErrNoPrompt is returned when no prompt is given and none is marked default.
var ErrNoPrompt = errors.New("no prompt selected and no default prompt stored")

// Store is the storage a draft needs.
type Store interface {
	GetArticle(ctx context.Context, id string) (domain.ArticleView, error)
	GetPrompt(ctx context.Context, id string) (domain.Prompt, error)
	GetDefaultPrompt(ctx context.Context) (domain.Prompt, error)
}

// PostGenerator writes a post from a template and an article.
type PostGenerator interface {
	Generate(ctx context.Context, in GenerateInput) (Result, error)
}

// Service drafts posts for stored articles.
type Service struct {
	store     Store
	generator PostGenerator
	logger    *zap.Logger
}

func NewService(store Store, generator PostGenerator, logger *zap.Logger) *Service {
	return &Service{store: store, generator: generator, logger: logging.OrNop(logger)}
}

// ContextFor converts a stored article into template data.
func ContextFor(article domain.ArticleView) ArticleContext {
	ac := ArticleContext{
		Title:       article.Title,
		Description: article.Description,
		Link:        article.Link,
		MatchedTags: make([]string, 0, len(article.Tags)),
	}
	if article.PublishedAt != nil {
		published := article.PublishedAt.UTC().Format(time.RFC3339)
		ac.PublishedAt = &published
	}
	for _, t := range article.Tags {
		ac.MatchedTags = append(ac.MatchedTags, t.Name)
	}
	return ac
}

// DraftForArticle writes a post for the article using the prompt with
// promptID, or the default prompt when promptID is empty.
func (s *Service) DraftForArticle(ctx context.Context, articleID, promptID string) (Result, error) {
	article, err := s.store.GetArticle(ctx, articleID)
	if err != nil {
		return Result{}, fmt.Errorf("load article %s: %w", articleID, err)
	}

	var prompt domain.Prompt
	if promptID != "" {
		prompt, err = s.store.GetPrompt(ctx, promptID)
	} else {
		prompt, err = s.store.GetDefaultPrompt(ctx)
		if errors.Is(err, db.ErrNotFound) {
			return Result{}, ErrNoPrompt
		}
	}
	if err != nil {
		return Result{}, fmt.Errorf("load prompt: %w", err)
	}

	result, err := s.generator.Generate(ctx, GenerateInput{Template: prompt.Template, Article: ContextFor(article)})
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("post drafted",
		zap.String("article_id", articleID),
		zap.String("prompt", prompt.Name),
		zap.String("provider", result.Provider),
	)
	return result, nil
}
