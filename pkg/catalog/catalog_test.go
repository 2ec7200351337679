package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rss-digest/pkg/db"
	"rss-digest/pkg/domain"
)

func newService(t *testing.T, maxSources int) (*Service, *db.MemoryStore) {
	t.Helper()
	store := db.NewMemoryStore()
	return NewService(store, maxSources, nil), store
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	return verr.Fields
}

func TestCreateSource(t *testing.T) {
	svc, _ := newService(t, 0)
	ctx := context.Background()

	src, err := svc.CreateSource(ctx, CreateSourceRequest{Name: "  Go Blog ", URL: "https://go.dev/blog/feed.atom"})
	require.NoError(t, err)
	assert.Equal(t, "Go Blog", src.Name)
	assert.True(t, src.IsActive)
	assert.Equal(t, 10, svc.MaxSources())

	_, err = svc.CreateSource(ctx, CreateSourceRequest{Name: "Again", URL: "https://go.dev/blog/feed.atom"})
	assert.ErrorIs(t, err, ErrSourceExists)
}

func TestCreateSourceValidation(t *testing.T) {
	svc, _ := newService(t, 0)
	ctx := context.Background()

	_, err := svc.CreateSource(ctx, CreateSourceRequest{URL: "https://example.com/feed"})
	assert.Equal(t, "is required", fieldErrors(t, err)["name"])

	_, err = svc.CreateSource(ctx, CreateSourceRequest{Name: strings.Repeat("n", 101), URL: "https://example.com/feed"})
	assert.Equal(t, "must not exceed 100 characters", fieldErrors(t, err)["name"])

	_, err = svc.CreateSource(ctx, CreateSourceRequest{Name: "ftp", URL: "ftp://example.com/feed"})
	assert.Contains(t, fieldErrors(t, err)["url"], "invalid URL format")
}

func TestCreateSourceLimit(t *testing.T) {
	svc, store := newService(t, 2)
	ctx := context.Background()

	for _, u := range []string{"https://a.example/feed", "https://b.example/feed"} {
		_, err := svc.CreateSource(ctx, CreateSourceRequest{Name: u, URL: u})
		require.NoError(t, err)
	}

	_, err := svc.CreateSource(ctx, CreateSourceRequest{Name: "c", URL: "https://c.example/feed"})
	require.ErrorIs(t, err, ErrSourceLimit)
	assert.Equal(t, "maximum sources limit (2) reached", err.Error())

	count, err := store.CountSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSourceLifecycle(t *testing.T) {
	svc, _ := newService(t, 0)
	ctx := context.Background()

	src, err := svc.CreateSource(ctx, CreateSourceRequest{Name: "A", URL: "https://a.example/feed"})
	require.NoError(t, err)

	disabled, err := svc.SetSourceActive(ctx, src.ID, false)
	require.NoError(t, err)
	assert.False(t, disabled.IsActive)

	require.NoError(t, svc.DeleteSource(ctx, src.ID))
	sources, err := svc.ListSources(ctx)
	require.NoError(t, err)
	assert.Empty(t, sources)

	assert.ErrorIs(t, svc.DeleteSource(ctx, src.ID), db.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteSource(ctx, ""), ErrInvalidInput)
}

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, []string{"go", "rust lang", "zig"}, ParseKeywords(" go, rust lang ,, zig,"))
	assert.Equal(t, []string{}, ParseKeywords("   "))
}

func TestCreateTag(t *testing.T) {
	svc, _ := newService(t, 0)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, CreateTagRequest{Name: " AI ", Keywords: []string{"LLM", " llm", "", "agents "}})
	require.NoError(t, err)
	assert.Equal(t, "AI", tag.Name)
	require.Len(t, tag.Keywords, 2)
	assert.Equal(t, "LLM", tag.Keywords[0].Keyword)
	assert.Equal(t, "agents", tag.Keywords[1].Keyword)

	_, err = svc.CreateTag(ctx, CreateTagRequest{Name: "AI"})
	assert.ErrorIs(t, err, ErrTagExists)
}

func TestCreateTagValidation(t *testing.T) {
	svc, _ := newService(t, 0)
	ctx := context.Background()

	_, err := svc.CreateTag(ctx, CreateTagRequest{Name: "   "})
	assert.Equal(t, "is required", fieldErrors(t, err)["name"])

	_, err = svc.CreateTag(ctx, CreateTagRequest{Name: strings.Repeat("x", 51)})
	assert.Equal(t, "must not exceed 50 characters", fieldErrors(t, err)["name"])

	many := make([]string, 21)
	for i := range many {
		many[i] = "k" + strings.Repeat("x", i)
	}
	_, err = svc.CreateTag(ctx, CreateTagRequest{Name: "many", Keywords: many})
	assert.Equal(t, "must not have more than 20 entries", fieldErrors(t, err)["keywords"])
}

func TestTagUpdates(t *testing.T) {
	svc, _ := newService(t, 0)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, CreateTagRequest{Name: "Go", Keywords: []string{"golang"}})
	require.NoError(t, err)

	keywords, err := svc.UpdateTagKeywords(ctx, UpdateTagKeywordsRequest{TagID: tag.ID, Keywords: ParseKeywords("go1.24, goroutine")})
	require.NoError(t, err)
	require.Len(t, keywords, 2)

	_, err = svc.UpdateTagKeywords(ctx, UpdateTagKeywordsRequest{TagID: "missing"})
	assert.ErrorIs(t, err, db.ErrNotFound)

	off, err := svc.SetTagActive(ctx, tag.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	require.NoError(t, svc.DeleteTag(ctx, tag.ID))
	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func seedArticle(t *testing.T, store *db.MemoryStore, title string, status domain.ArticleStatus) domain.Article {
	t.Helper()
	ctx := context.Background()
	sources, err := store.ListSources(ctx)
	require.NoError(t, err)
	var sourceID string
	if len(sources) == 0 {
		src, err := store.CreateSource(ctx, "S", "https://s.example/feed")
		require.NoError(t, err)
		sourceID = src.ID
	} else {
		sourceID = sources[0].ID
	}
	link := "https://s.example/" + strings.ReplaceAll(title, " ", "-")
	a, err := store.CreateArticle(ctx, domain.NewArticle{
		Title: title, Link: link, CanonicalURL: link, SourceID: sourceID, Status: status,
	})
	require.NoError(t, err)
	return a
}

func TestListArticlesDefaults(t *testing.T) {
	svc, store := newService(t, 0)
	ctx := context.Background()
	seedArticle(t, store, "visible one", domain.StatusVisible)
	seedArticle(t, store, "hidden one", domain.StatusExcluded)

	page, err := svc.ListArticles(ctx, ListArticlesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Articles, 1)
	assert.Equal(t, "visible one", page.Articles[0].Title)

	page, err = svc.ListArticles(ctx, ListArticlesRequest{Status: "excluded"})
	require.NoError(t, err)
	require.Len(t, page.Articles, 1)
	assert.Equal(t, "hidden one", page.Articles[0].Title)
}

func TestListArticlesValidation(t *testing.T) {
	svc, _ := newService(t, 0)
	ctx := context.Background()

	_, err := svc.ListArticles(ctx, ListArticlesRequest{Limit: 101})
	assert.Equal(t, "must be less than or equal to 100", fieldErrors(t, err)["limit"])

	_, err = svc.ListArticles(ctx, ListArticlesRequest{Page: -1})
	assert.Contains(t, fieldErrors(t, err), "page")

	_, err = svc.ListArticles(ctx, ListArticlesRequest{Status: "archived"})
	assert.Equal(t, "must be one of: visible excluded", fieldErrors(t, err)["status"])
}

func TestListArticlesSanitisesSearch(t *testing.T) {
	svc, store := newService(t, 0)
	seedArticle(t, store, "Release notes", domain.StatusVisible)

	page, err := svc.ListArticles(context.Background(), ListArticlesRequest{Search: "(release),"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	assert.Equal(t, "a b", sanitizeSearch(" a,( b) "))
}

func TestArticleStatusAndFavorite(t *testing.T) {
	svc, store := newService(t, 0)
	ctx := context.Background()
	a := seedArticle(t, store, "story", domain.StatusVisible)

	excluded, err := svc.ExcludeArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExcluded, excluded.Status)

	restored, err := svc.RestoreArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVisible, restored.Status)

	on, err := svc.ToggleFavorite(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, on)

	view, err := svc.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, view.Favorited)

	off, err := svc.ToggleFavorite(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, off)

	_, err = svc.ExcludeArticle(ctx, "missing")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestUpdateRetentionDays(t *testing.T) {
	svc, _ := newService(t, 0)
	ctx := context.Background()

	settings, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRetentionDays, settings.ArticleRetentionDays)

	settings, err = svc.UpdateRetentionDays(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, settings.ArticleRetentionDays)

	for _, bad := range []int{0, 366, -5} {
		_, err := svc.UpdateRetentionDays(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidInput, "days %d", bad)
	}

	settings, err = svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, settings.ArticleRetentionDays)
}

func TestPrompts(t *testing.T) {
	svc, _ := newService(t, 0)
	ctx := context.Background()

	first, err := svc.CreatePrompt(ctx, CreatePromptRequest{Name: "Short", Template: "Summarise {{title}}", IsDefault: true})
	require.NoError(t, err)
	second, err := svc.CreatePrompt(ctx, CreatePromptRequest{Name: "Long", Template: "Explain {{link}}"})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	makeDefault := true
	updated, err := svc.UpdatePrompt(ctx, second.ID, UpdatePromptRequest{IsDefault: &makeDefault})
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	assert.Equal(t, "Long", updated.Name)

	prompts, err := svc.ListPrompts(ctx)
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	for _, p := range prompts {
		assert.Equal(t, p.ID == second.ID, p.IsDefault, "prompt %s", p.Name)
	}

	require.NoError(t, svc.DeletePrompt(ctx, first.ID))
	assert.ErrorIs(t, svc.DeletePrompt(ctx, first.ID), db.ErrNotFound)
}

func TestPromptValidation(t *testing.T) {
	svc, _ := newService(t, 0)
	ctx := context.Background()

	_, err := svc.CreatePrompt(ctx, CreatePromptRequest{Name: "x"})
	assert.Equal(t, "is required", fieldErrors(t, err)["template"])

	_, err = svc.CreatePrompt(ctx, CreatePromptRequest{Name: "x", Template: strings.Repeat("t", 10001)})
	assert.Equal(t, "must not exceed 10000 characters", fieldErrors(t, err)["template"])

	empty := ""
	_, err = svc.UpdatePrompt(ctx, "any", UpdatePromptRequest{Name: &empty})
	assert.Equal(t, "must be at least 1 characters", fieldErrors(t, err)["name"])
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"url": "is required", "name": "is required"}}
	assert.Equal(t, "validation failed: name is required; url is required", err.Error())
}
