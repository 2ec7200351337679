package db

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rss-digest/pkg/domain"
)

// MemoryStore is an in-process Store used for dry runs and tests.
type MemoryStore struct {
	mu sync.RWMutex

	sources     map[string]domain.Source
	tags        map[string]domain.Tag
	articles    map[string]domain.Article
	articleTags map[string][]string // article ID -> tag IDs
	favorites   map[string]domain.Favorite
	settings    *domain.Settings
	prompts     map[string]domain.Prompt

	// seq orders records created within the same clock tick
	seq   map[string]int
	next  int
	now   func() time.Time
	newID func() string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sources:     map[string]domain.Source{},
		tags:        map[string]domain.Tag{},
		articles:    map[string]domain.Article{},
		articleTags: map[string][]string{},
		favorites:   map[string]domain.Favorite{},
		prompts:     map[string]domain.Prompt{},
		seq:         map[string]int{},
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// SetClock replaces the clock used for timestamps.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) ArticleExistsByCanonicalURL(_ context.Context, canonicalURL string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.articles {
		if a.CanonicalURL == canonicalURL {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) CreateArticle(_ context.Context, in domain.NewArticle) (domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sources[in.SourceID]; !ok {
		return domain.Article{}, ErrNotFound
	}
	for _, a := range m.articles {
		if a.CanonicalURL == in.CanonicalURL {
			return domain.Article{}, ErrDuplicate
		}
	}

	now := m.now()
	a := domain.Article{
		ID:           m.newID(),
		Title:        in.Title,
		Description:  in.Description,
		Link:         in.Link,
		CanonicalURL: in.CanonicalURL,
		PublishedAt:  in.PublishedAt,
		SourceID:     in.SourceID,
		Status:       in.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.articles[a.ID] = a
	m.track(a.ID)
	return a, nil
}

func (m *MemoryStore) AttachTags(_ context.Context, articleID string, tagIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.articles[articleID]; !ok {
		return ErrNotFound
	}
	for _, id := range tagIDs {
		if _, ok := m.tags[id]; !ok {
			return ErrNotFound
		}
	}

	existing := m.articleTags[articleID]
	for _, id := range tagIDs {
		if !slices.Contains(existing, id) {
			existing = append(existing, id)
		}
	}
	m.articleTags[articleID] = existing
	return nil
}

func (m *MemoryStore) DeleteArticle(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; !ok {
		return ErrNotFound
	}
	m.deleteArticleLocked(id)
	return nil
}

func (m *MemoryStore) deleteArticleLocked(id string) {
	delete(m.articles, id)
	delete(m.articleTags, id)
	delete(m.favorites, id)
}

func (m *MemoryStore) GetArticle(_ context.Context, id string) (domain.ArticleView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.articles[id]
	if !ok {
		return domain.ArticleView{}, ErrNotFound
	}
	return m.viewLocked(a), nil
}

func (m *MemoryStore) viewLocked(a domain.Article) domain.ArticleView {
	tags := []domain.MatchedTag{}
	for _, id := range m.articleTags[a.ID] {
		if t, ok := m.tags[id]; ok {
			tags = append(tags, domain.MatchedTag{ID: t.ID, Name: t.Name})
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	_, fav := m.favorites[a.ID]
	return domain.ArticleView{
		Article:    a,
		SourceName: m.sources[a.SourceID].Name,
		Tags:       tags,
		Favorited:  fav,
	}
}

func (m *MemoryStore) ListArticles(_ context.Context, q ArticleQuery) (ArticlePage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(q.Search)
	matched := []domain.Article{}
	for _, a := range m.articles {
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		if q.TagID != "" && !slices.Contains(m.articleTags[a.ID], q.TagID) {
			continue
		}
		if q.FavoritesOnly {
			if _, ok := m.favorites[a.ID]; !ok {
				continue
			}
		}
		if search != "" {
			haystack := strings.ToLower(a.Title)
			if a.Description != nil {
				haystack += " " + strings.ToLower(*a.Description)
			}
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		matched = append(matched, a)
	}

	// published_at desc, nulls last, then created_at desc
	sort.Slice(matched, func(i, j int) bool {
		pi, pj := matched[i].PublishedAt, matched[j].PublishedAt
		switch {
		case pi != nil && pj != nil && !pi.Equal(*pj):
			return pi.After(*pj)
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		}
		return m.newerLocked(matched[i].ID, matched[i].CreatedAt, matched[j].ID, matched[j].CreatedAt)
	})

	page := ArticlePage{Articles: []domain.ArticleView{}, Total: len(matched)}
	start := q.Offset()
	if start >= len(matched) {
		return page, nil
	}
	end := len(matched)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	for _, a := range matched[start:end] {
		page.Articles = append(page.Articles, m.viewLocked(a))
	}
	return page, nil
}

func (m *MemoryStore) UpdateArticleStatus(_ context.Context, id string, status domain.ArticleStatus) (domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return domain.Article{}, ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = m.now()
	m.articles[id] = a
	return a, nil
}

func (m *MemoryStore) ToggleFavorite(_ context.Context, articleID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[articleID]; !ok {
		return false, ErrNotFound
	}
	if _, ok := m.favorites[articleID]; ok {
		delete(m.favorites, articleID)
		return false, nil
	}
	m.favorites[articleID] = domain.Favorite{ID: m.newID(), ArticleID: articleID, CreatedAt: m.now()}
	return true, nil
}

func (m *MemoryStore) FavoriteArticleIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.favorites))
	for id := range m.favorites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) DeleteArticlesCreatedBefore(_ context.Context, cutoff time.Time, exclude []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, a := range m.articles {
		if a.CreatedAt.Before(cutoff) && !slices.Contains(exclude, id) {
			m.deleteArticleLocked(id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) ListSources(_ context.Context) ([]domain.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Source, 0, len(m.sources))
	for _, s := range m.sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return m.newerLocked(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt) })
	return out, nil
}

// newerLocked orders by creation time descending, then by insertion descending.
func (m *MemoryStore) newerLocked(idA string, a time.Time, idB string, b time.Time) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return m.seq[idA] > m.seq[idB]
}

func (m *MemoryStore) track(id string) {
	m.next++
	m.seq[id] = m.next
}

func (m *MemoryStore) CountSources(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sources), nil
}

func (m *MemoryStore) CreateSource(_ context.Context, name, url string) (domain.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sources {
		if s.URL == url {
			return domain.Source{}, ErrDuplicate
		}
	}
	src := domain.Source{ID: m.newID(), Name: name, URL: url, IsActive: true, CreatedAt: m.now()}
	m.sources[src.ID] = src
	m.track(src.ID)
	return src, nil
}

func (m *MemoryStore) DeleteSource(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; !ok {
		return ErrNotFound
	}
	delete(m.sources, id)
	for aid, a := range m.articles {
		if a.SourceID == id {
			m.deleteArticleLocked(aid)
		}
	}
	return nil
}

func (m *MemoryStore) SetSourceActive(_ context.Context, id string, active bool) (domain.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sources[id]
	if !ok {
		return domain.Source{}, ErrNotFound
	}
	s.IsActive = active
	m.sources[id] = s
	return s, nil
}

func (m *MemoryStore) ListTags(_ context.Context) ([]domain.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Tag, 0, len(m.tags))
	for _, t := range m.tags {
		t.Keywords = append([]domain.Keyword{}, t.Keywords...)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return m.newerLocked(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) CreateTag(_ context.Context, name string, keywords []string) (domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tags {
		if t.Name == name {
			return domain.Tag{}, ErrDuplicate
		}
	}
	t := domain.Tag{ID: m.newID(), Name: name, IsActive: true, CreatedAt: m.now()}
	t.Keywords = m.keywordsLocked(t.ID, keywords)
	m.tags[t.ID] = t
	m.track(t.ID)
	return t, nil
}

func (m *MemoryStore) keywordsLocked(tagID string, keywords []string) []domain.Keyword {
	out := make([]domain.Keyword, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, domain.Keyword{ID: m.newID(), TagID: tagID, Keyword: k})
	}
	return out
}

func (m *MemoryStore) ReplaceTagKeywords(_ context.Context, tagID string, keywords []string) ([]domain.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tags[tagID]
	if !ok {
		return nil, ErrNotFound
	}
	t.Keywords = m.keywordsLocked(tagID, keywords)
	m.tags[tagID] = t
	return append([]domain.Keyword{}, t.Keywords...), nil
}

func (m *MemoryStore) SetTagActive(_ context.Context, id string, active bool) (domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tags[id]
	if !ok {
		return domain.Tag{}, ErrNotFound
	}
	t.IsActive = active
	m.tags[id] = t
	return t, nil
}

func (m *MemoryStore) DeleteTag(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tags[id]; !ok {
		return ErrNotFound
	}
	delete(m.tags, id)
	for aid, ids := range m.articleTags {
		m.articleTags[aid] = slices.DeleteFunc(ids, func(v string) bool { return v == id })
	}
	return nil
}

func (m *MemoryStore) GetSettings(_ context.Context) (domain.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return domain.DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *MemoryStore) UpdateSettings(_ context.Context, retentionDays int) (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := domain.Settings{ArticleRetentionDays: retentionDays, UpdatedAt: m.now()}
	m.settings = &st
	return st, nil
}

func (m *MemoryStore) ListPrompts(_ context.Context) ([]domain.Prompt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Prompt, 0, len(m.prompts))
	for _, p := range m.prompts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MemoryStore) GetPrompt(_ context.Context, id string) (domain.Prompt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prompts[id]
	if !ok {
		return domain.Prompt{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) GetDefaultPrompt(_ context.Context) (domain.Prompt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.prompts {
		if p.IsDefault {
			return p, nil
		}
	}
	return domain.Prompt{}, ErrNotFound
}

func (m *MemoryStore) CreatePrompt(_ context.Context, in domain.Prompt) (domain.Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if in.IsDefault {
		m.clearDefaultLocked("", now)
	}
	p := domain.Prompt{
		ID:        m.newID(),
		Name:      in.Name,
		Template:  in.Template,
		IsDefault: in.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.prompts[p.ID] = p
	return p, nil
}

func (m *MemoryStore) UpdatePrompt(_ context.Context, id string, update domain.PromptUpdate) (domain.Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prompts[id]
	if !ok {
		return domain.Prompt{}, ErrNotFound
	}
	now := m.now()
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Template != nil {
		p.Template = *update.Template
	}
	if update.IsDefault != nil {
		if *update.IsDefault {
			m.clearDefaultLocked(id, now)
		}
		p.IsDefault = *update.IsDefault
	}
	p.UpdatedAt = now
	m.prompts[id] = p
	return p, nil
}

func (m *MemoryStore) clearDefaultLocked(exceptID string, now time.Time) {
	for id, p := range m.prompts {
		if p.IsDefault && id != exceptID {
			p.IsDefault = false
			p.UpdatedAt = now
			m.prompts[id] = p
		}
	}
}

func (m *MemoryStore) DeletePrompt(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.prompts[id]; !ok {
		return ErrNotFound
	}
	delete(m.prompts, id)
	return nil
}
