package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"rss-digest/pkg/db"
	"rss-digest/pkg/domain"
	"rss-digest/pkg/metrics"
	"rss-digest/pkg/parser"
)

type stubParser struct {
	items []parser.FeedItem
	err   error
	calls []string
}

func (p *stubParser) ParseURL(ctx context.Context, feedURL string) ([]parser.FeedItem, error) {
	p.calls = append(p.calls, feedURL)
	return p.items, p.err
}

// failingAttachStore fails every AttachTags call, optionally also DeleteArticle.
type failingAttachStore struct {
	*db.MemoryStore
	deleteErr error
	deleted   []string
}

func (s *failingAttachStore) AttachTags(context.Context, string, []string) error {
	return errors.New("tag link failed")
}

func (s *failingAttachStore) DeleteArticle(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.MemoryStore.DeleteArticle(ctx, id)
}

func strPtr(s string) *string { return &s }

func setup(t *testing.T) (*db.MemoryStore, domain.Source, []domain.Tag) {
	t.Helper()
	ctx := context.Background()
	store := db.NewMemoryStore()
	src, err := store.CreateSource(ctx, "Example", "https://example.com/feed.xml")
	require.NoError(t, err)
	tag, err := store.CreateTag(ctx, "Go", []string{"golang"})
	require.NoError(t, err)
	return store, src, []domain.Tag{tag}
}

func TestFetchOneCreatesAndSkips(t *testing.T) {
	ctx := context.Background()
	store, src, tags := setup(t)

	existing, err := store.CreateArticle(ctx, domain.NewArticle{
		Title: "old", Link: "https://example.com/old", CanonicalURL: "https://example.com/old",
		SourceID: src.ID, Status: domain.StatusVisible,
	})
	require.NoError(t, err)

	p := &stubParser{items: []parser.FeedItem{
		{Title: "Golang 1.24 released", Link: "https://example.com/new?utm_source=rss"},
		{Title: "Old again", Link: existing.Link + "/"},
		{Title: "no link"},
	}}
	m := metrics.New(prometheus.NewRegistry())
	f := NewFetcher(p, store, FetcherOptions{Metrics: m})

	result := f.FetchOne(ctx, src, tags)

	assert.Equal(t, src.ID, result.SourceID)
	assert.Equal(t, "Example", result.SourceName)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{src.URL}, p.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArticlesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArticlesSkipped))

	exists, err := store.ArticleExistsByCanonicalURL(ctx, "https://example.com/new")
	require.NoError(t, err)
	assert.True(t, exists, "article should be stored under its canonical URL")
}

func TestFetchOneStatusFollowsTagMatch(t *testing.T) {
	ctx := context.Background()
	store, src, tags := setup(t)

	p := &stubParser{items: []parser.FeedItem{
		{Title: "Why golang", Link: "https://example.com/a"},
		{Title: "Cooking", Description: strPtr("pasta"), Link: "https://example.com/b"},
	}}
	result := NewFetcher(p, store, FetcherOptions{}).FetchOne(ctx, src, tags)
	require.Equal(t, 2, result.Created)

	visible, err := store.ListArticles(ctx, db.ArticleQuery{Page: 1, Limit: 10, Status: domain.StatusVisible})
	require.NoError(t, err)
	require.Len(t, visible.Articles, 1)
	assert.Equal(t, "Why golang", visible.Articles[0].Title)
	assert.Equal(t, []domain.MatchedTag{{ID: tags[0].ID, Name: "Go"}}, visible.Articles[0].Tags)

	excluded, err := store.ListArticles(ctx, db.ArticleQuery{Page: 1, Limit: 10, Status: domain.StatusExcluded})
	require.NoError(t, err)
	require.Len(t, excluded.Articles, 1)
	assert.Empty(t, excluded.Articles[0].Tags)
}

func TestFetchOneAttachFailureRemovesArticle(t *testing.T) {
	ctx := context.Background()
	mem, src, tags := setup(t)
	store := &failingAttachStore{MemoryStore: mem}

	p := &stubParser{items: []parser.FeedItem{{Title: "golang news", Link: "https://example.com/a"}}}
	result := NewFetcher(p, store, FetcherOptions{}).FetchOne(ctx, src, tags)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, `Item "golang news": tag link failed`, result.Errors[0])
	require.Len(t, store.deleted, 1)

	exists, err := mem.ArticleExistsByCanonicalURL(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFetchOneCompensationFailureJoinsErrors(t *testing.T) {
	ctx := context.Background()
	mem, src, tags := setup(t)
	store := &failingAttachStore{MemoryStore: mem, deleteErr: errors.New("delete failed")}

	p := &stubParser{items: []parser.FeedItem{{Description: strPtr("golang tips"), Link: "https://example.com/g"}}}
	result := NewFetcher(p, store, FetcherOptions{}).FetchOne(ctx, src, tags)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `Item "unknown": tag link failed`)
	assert.Contains(t, result.Errors[0], "delete failed")
}

func TestFetchOneFeedFailure(t *testing.T) {
	store, src, tags := setup(t)
	core, logs := observer.New(zapcore.WarnLevel)
	m := metrics.New(prometheus.NewRegistry())

	p := &stubParser{err: errors.New("failed to parse RSS feed: http error: 404 Not Found")}
	result := NewFetcher(p, store, FetcherOptions{Logger: zap.New(core), Metrics: m}).
		FetchOne(context.Background(), src, tags)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, []string{"failed to parse RSS feed: http error: 404 Not Found"}, result.Errors)
	assert.Equal(t, 1, logs.FilterMessage("feed retrieval failed").Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceFailures.WithLabelValues("Example")))
}

// flakyExistsStore fails the existence check for one canonical URL.
type flakyExistsStore struct {
	*db.MemoryStore
	failURL string
}

func (s *flakyExistsStore) ArticleExistsByCanonicalURL(ctx context.Context, u string) (bool, error) {
	if u == s.failURL {
		return false, fmt.Errorf("connection reset")
	}
	return s.MemoryStore.ArticleExistsByCanonicalURL(ctx, u)
}

func TestFetchOneItemErrorDoesNotStopLoop(t *testing.T) {
	mem, src, tags := setup(t)
	store := &flakyExistsStore{MemoryStore: mem, failURL: "https://example.com/bad"}

	p := &stubParser{items: []parser.FeedItem{
		{Title: "bad", Link: "https://example.com/bad"},
		{Title: "good", Link: "https://example.com/good"},
	}}
	result := NewFetcher(p, store, FetcherOptions{}).FetchOne(context.Background(), src, tags)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []string{`Item "bad": connection reset`}, result.Errors)
}

// duplicateOnCreateStore reports every insert as a unique violation.
type duplicateOnCreateStore struct {
	*db.MemoryStore
}

func (s *duplicateOnCreateStore) CreateArticle(context.Context, domain.NewArticle) (domain.Article, error) {
	return domain.Article{}, fmt.Errorf("insert article: %w", db.ErrDuplicate)
}

func TestFetchOneDuplicateOnInsertCountsAsSkipped(t *testing.T) {
	mem, src, tags := setup(t)
	p := &stubParser{items: []parser.FeedItem{{Title: "x", Link: "https://example.com/x"}}}

	result := NewFetcher(p, &duplicateOnCreateStore{mem}, FetcherOptions{}).FetchOne(context.Background(), src, tags)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)
}

func TestFetchOneAgainstFeedServer(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example</title>
    <item>
      <title>Goroutines in golang</title>
      <link>https://example.com/posts/1/?utm_campaign=x</link>
      <description><![CDATA[<p>All about <b>goroutines</b></p>]]></description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Second</title>
      <link>https://example.com/posts/2</link>
    </item>
  </channel>
</rss>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feed))
	}))
	defer server.Close()

	ctx := context.Background()
	store := db.NewMemoryStore()
	src, err := store.CreateSource(ctx, "Example", server.URL)
	require.NoError(t, err)
	tag, err := store.CreateTag(ctx, "Go", []string{"goroutine"})
	require.NoError(t, err)

	f := NewFetcher(parser.NewRSSParser(parser.Options{}), store, FetcherOptions{FetchTimeout: 5 * time.Second})
	result := f.FetchOne(ctx, src, []domain.Tag{tag})
	require.Empty(t, result.Errors)
	assert.Equal(t, 2, result.Created)

	// a second pass finds everything already stored
	again := f.FetchOne(ctx, src, []domain.Tag{tag})
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 2, again.Skipped)

	page, err := store.ListArticles(ctx, db.ArticleQuery{Page: 1, Limit: 10, Status: domain.StatusVisible})
	require.NoError(t, err)
	require.Len(t, page.Articles, 1)
	got := page.Articles[0]
	assert.Equal(t, "https://example.com/posts/1", got.CanonicalURL)
	require.NotNil(t, got.Description)
	assert.Equal(t, "All about goroutines", *got.Description)
	require.NotNil(t, got.PublishedAt)
}

// cancellingStore cancels the fetch context while linking tags and, like the
// SQL and Mongo drivers, refuses work on a done context.
type cancellingStore struct {
	*db.MemoryStore
	cancel context.CancelFunc
}

func (s *cancellingStore) AttachTags(ctx context.Context, _ string, _ []string) error {
	s.cancel()
	return ctx.Err()
}

func (s *cancellingStore) DeleteArticle(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.DeleteArticle(ctx, id)
}

func TestFetchOneRollbackSurvivesCancellation(t *testing.T) {
	mem, src, tags := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &cancellingStore{MemoryStore: mem, cancel: cancel}

	p := &stubParser{items: []parser.FeedItem{
		{Title: "golang news", Link: "https://example.com/a"},
		{Title: "golang more", Link: "https://example.com/b"},
		{Title: "golang again", Link: "https://example.com/c"},
	}}
	result := NewFetcher(p, store, FetcherOptions{}).FetchOne(ctx, src, tags)

	assert.Equal(t, 0, result.Created)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, `Item "golang news": context canceled`, result.Errors[0])
	assert.Equal(t, "stopped with 2 items left: context canceled", result.Errors[1])

	for _, link := range []string{"https://example.com/a", "https://example.com/b"} {
		exists, err := mem.ArticleExistsByCanonicalURL(context.Background(), link)
		require.NoError(t, err)
		assert.False(t, exists, link)
	}
}

func TestFetchOneStopsOnCancelledContext(t *testing.T) {
	store, src, tags := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &stubParser{items: []parser.FeedItem{
		{Title: "one", Link: "https://example.com/1"},
		{Title: "two", Link: "https://example.com/2"},
	}}
	result := NewFetcher(p, store, FetcherOptions{}).FetchOne(ctx, src, tags)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, []string{"stopped with 2 items left: context canceled"}, result.Errors)
}
