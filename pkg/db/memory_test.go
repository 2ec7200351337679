package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rss-digest/pkg/domain"
)

func seedSource(t *testing.T, m *MemoryStore) domain.Source {
	t.Helper()
	src, err := m.CreateSource(context.Background(), "Example", "https://example.com/feed.xml")
	require.NoError(t, err)
	return src
}

func TestMemoryStoreArticleDedup(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	src := seedSource(t, m)

	in := domain.NewArticle{Title: "A", Link: "https://e.com/a", CanonicalURL: "https://e.com/a", SourceID: src.ID, Status: domain.StatusVisible}
	_, err := m.CreateArticle(ctx, in)
	require.NoError(t, err)

	exists, err := m.ArticleExistsByCanonicalURL(ctx, "https://e.com/a")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = m.CreateArticle(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryStoreDeleteSourceCascades(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	src := seedSource(t, m)
	tag, err := m.CreateTag(ctx, "Go", []string{"go"})
	require.NoError(t, err)

	a, err := m.CreateArticle(ctx, domain.NewArticle{Title: "A", Link: "l", CanonicalURL: "l", SourceID: src.ID, Status: domain.StatusVisible})
	require.NoError(t, err)
	require.NoError(t, m.AttachTags(ctx, a.ID, []string{tag.ID}))
	_, err = m.ToggleFavorite(ctx, a.ID)
	require.NoError(t, err)

	require.NoError(t, m.DeleteSource(ctx, src.ID))

	_, err = m.GetArticle(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	ids, err := m.FavoriteArticleIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemoryStoreAttachTagsUnknownTag(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	src := seedSource(t, m)
	a, err := m.CreateArticle(ctx, domain.NewArticle{Title: "A", Link: "l", CanonicalURL: "l", SourceID: src.ID, Status: domain.StatusVisible})
	require.NoError(t, err)

	assert.ErrorIs(t, m.AttachTags(ctx, a.ID, []string{"missing"}), ErrNotFound)
}

func TestMemoryStoreDeleteArticlesCreatedBefore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return now.AddDate(0, 0, -30) })
	src := seedSource(t, m)

	oldFav, err := m.CreateArticle(ctx, domain.NewArticle{Title: "fav", Link: "1", CanonicalURL: "1", SourceID: src.ID, Status: domain.StatusVisible})
	require.NoError(t, err)
	_, err = m.CreateArticle(ctx, domain.NewArticle{Title: "old", Link: "2", CanonicalURL: "2", SourceID: src.ID, Status: domain.StatusVisible})
	require.NoError(t, err)

	m.SetClock(func() time.Time { return now })
	_, err = m.CreateArticle(ctx, domain.NewArticle{Title: "new", Link: "3", CanonicalURL: "3", SourceID: src.ID, Status: domain.StatusVisible})
	require.NoError(t, err)

	n, err := m.DeleteArticlesCreatedBefore(ctx, now.AddDate(0, 0, -7), []string{oldFav.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	page, err := m.ListArticles(ctx, ArticleQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestMemoryStoreListArticles(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	src := seedSource(t, m)

	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(24 * time.Hour)
	desc := "all about goroutines"

	_, err := m.CreateArticle(ctx, domain.NewArticle{Title: "Early", Link: "1", CanonicalURL: "1", PublishedAt: &early, SourceID: src.ID, Status: domain.StatusVisible})
	require.NoError(t, err)
	_, err = m.CreateArticle(ctx, domain.NewArticle{Title: "Undated", Link: "2", CanonicalURL: "2", SourceID: src.ID, Status: domain.StatusVisible})
	require.NoError(t, err)
	_, err = m.CreateArticle(ctx, domain.NewArticle{Title: "Late", Description: &desc, Link: "3", CanonicalURL: "3", PublishedAt: &late, SourceID: src.ID, Status: domain.StatusVisible})
	require.NoError(t, err)
	_, err = m.CreateArticle(ctx, domain.NewArticle{Title: "Hidden", Link: "4", CanonicalURL: "4", SourceID: src.ID, Status: domain.StatusExcluded})
	require.NoError(t, err)

	page, err := m.ListArticles(ctx, ArticleQuery{Page: 1, Limit: 10, Status: domain.StatusVisible})
	require.NoError(t, err)
	require.Len(t, page.Articles, 3)
	assert.Equal(t, "Late", page.Articles[0].Title)
	assert.Equal(t, "Early", page.Articles[1].Title)
	assert.Equal(t, "Undated", page.Articles[2].Title)
	assert.Equal(t, "Example", page.Articles[0].SourceName)

	page, err = m.ListArticles(ctx, ArticleQuery{Page: 2, Limit: 2, Status: domain.StatusVisible})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Articles, 1)

	page, err = m.ListArticles(ctx, ArticleQuery{Page: 1, Limit: 10, Search: "GOROUTINE"})
	require.NoError(t, err)
	require.Len(t, page.Articles, 1)
	assert.Equal(t, "Late", page.Articles[0].Title)
}

func TestMemoryStorePromptDefaultSwitch(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	first, err := m.CreatePrompt(ctx, domain.Prompt{Name: "first", Template: "t", IsDefault: true})
	require.NoError(t, err)
	second, err := m.CreatePrompt(ctx, domain.Prompt{Name: "second", Template: "t", IsDefault: true})
	require.NoError(t, err)

	def, err := m.GetDefaultPrompt(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)

	yes := true
	_, err = m.UpdatePrompt(ctx, first.ID, domain.PromptUpdate{IsDefault: &yes})
	require.NoError(t, err)

	def, err = m.GetDefaultPrompt(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, def.ID)

	prompts, err := m.ListPrompts(ctx)
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.True(t, prompts[0].IsDefault)
	assert.False(t, prompts[1].IsDefault)
}

func TestMemoryStoreSettings(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	st, err := m.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRetentionDays, st.ArticleRetentionDays)

	_, err = m.UpdateSettings(ctx, 30)
	require.NoError(t, err)
	st, err = m.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, st.ArticleRetentionDays)
}
