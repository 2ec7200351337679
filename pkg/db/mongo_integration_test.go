package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rss-digest/pkg/domain"
)

// setupMongo connects to the database named by RSS_DIGEST_TEST_MONGO_URI and
// returns a store on a throwaway database.
func setupMongo(t *testing.T) (*MongoStore, context.Context) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	uri := os.Getenv("RSS_DIGEST_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("RSS_DIGEST_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	client := NewMongoClient(uri, "rssdigest_test_"+uuid.NewString()[:8])
	require.NoError(t, client.Connect(ctx))
	t.Cleanup(func() {
		_ = client.Database().Drop(context.Background())
		_ = client.Close(context.Background())
	})

	store := NewMongoStore(client)
	require.NoError(t, store.EnsureIndexes(ctx))
	return store, ctx
}

func TestIntegration_MongoArticleLifecycle(t *testing.T) {
	store, ctx := setupMongo(t)

	src, err := store.CreateSource(ctx, "Example", "https://example.com/feed")
	require.NoError(t, err)
	_, err = store.CreateSource(ctx, "Again", "https://example.com/feed")
	assert.ErrorIs(t, err, ErrDuplicate)

	tag, err := store.CreateTag(ctx, "Go", []string{"go", "golang"})
	require.NoError(t, err)

	a, err := store.CreateArticle(ctx, domain.NewArticle{
		Title: "Go news", Link: "https://e.com/a", CanonicalURL: "https://e.com/a",
		SourceID: src.ID, Status: domain.StatusVisible,
	})
	require.NoError(t, err)
	require.NoError(t, store.AttachTags(ctx, a.ID, []string{tag.ID}))

	_, err = store.CreateArticle(ctx, domain.NewArticle{
		Title: "dup", Link: "https://e.com/a", CanonicalURL: "https://e.com/a",
		SourceID: src.ID, Status: domain.StatusVisible,
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	fav, err := store.ToggleFavorite(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, fav)

	view, err := store.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Example", view.SourceName)
	assert.True(t, view.Favorited)
	assert.Equal(t, []domain.MatchedTag{{ID: tag.ID, Name: "Go"}}, view.Tags)

	page, err := store.ListArticles(ctx, ArticleQuery{Page: 1, Limit: 10, TagID: tag.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	n, err := store.DeleteArticlesCreatedBefore(ctx, time.Now().Add(time.Hour), []string{a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, store.DeleteSource(ctx, src.ID))
	_, err = store.GetArticle(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIntegration_MongoSettingsAndPrompts(t *testing.T) {
	store, ctx := setupMongo(t)

	st, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRetentionDays, st.ArticleRetentionDays)

	_, err = store.UpdateSettings(ctx, 21)
	require.NoError(t, err)
	st, err = store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 21, st.ArticleRetentionDays)

	first, err := store.CreatePrompt(ctx, domain.Prompt{Name: "a", Template: "t", IsDefault: true})
	require.NoError(t, err)
	second, err := store.CreatePrompt(ctx, domain.Prompt{Name: "b", Template: "t", IsDefault: true})
	require.NoError(t, err)

	def, err := store.GetDefaultPrompt(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)

	got, err := store.GetPrompt(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)
}
