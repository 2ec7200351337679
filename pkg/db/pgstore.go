package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rss-digest/pkg/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PGStore implements Store on Postgres (plain or Supabase-hosted).
type PGStore struct {
	db    PgxIface
	now   func() time.Time
	newID func() string
}

// NewPGStore creates a store over an open pool.
func NewPGStore(db PgxIface) *PGStore {
	return &PGStore{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Ping runs a trivial query.
func (s *PGStore) Ping(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *PGStore) Close() error {
	s.db.Close()
	return nil
}

// mapError converts pgx errors into the package sentinels.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

const articleColumns = `a.id, a.title, a.description, a.link, a.canonical_url, a.published_at,
	a.source_id, a.status, a.created_at, a.updated_at`

func scanArticle(row rowScanner, extra ...any) (domain.Article, error) {
	var (
		a      domain.Article
		status string
	)
	dest := append([]any{
		&a.ID, &a.Title, &a.Description, &a.Link, &a.CanonicalURL, &a.PublishedAt,
		&a.SourceID, &status, &a.CreatedAt, &a.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Article{}, err
	}
	a.Status = domain.ArticleStatus(status)
	return a, nil
}

// ArticleExistsByCanonicalURL reports whether an article with the canonical URL is stored.
func (s *PGStore) ArticleExistsByCanonicalURL(ctx context.Context, canonicalURL string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE canonical_url = $1)`, canonicalURL,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article %q: %w", canonicalURL, err)
	}
	return exists, nil
}

// CreateArticle inserts an article. A canonical URL that is already stored yields ErrDuplicate.
func (s *PGStore) CreateArticle(ctx context.Context, in domain.NewArticle) (domain.Article, error) {
	now := s.now()
	a := domain.Article{
		ID:           s.newID(),
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

	_, err := s.db.Exec(ctx, `INSERT INTO articles
		(id, title, description, link, canonical_url, published_at, source_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.Title, a.Description, a.Link, a.CanonicalURL, a.PublishedAt,
		a.SourceID, string(a.Status), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return domain.Article{}, fmt.Errorf("insert article: %w", mapError(err))
	}
	return a, nil
}

// AttachTags links the article to each tag. Existing links are kept.
func (s *PGStore) AttachTags(ctx context.Context, articleID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `INSERT INTO article_tags (article_id, tag_id)
		SELECT $1, unnest($2::text[])
		ON CONFLICT DO NOTHING`, articleID, tagIDs)
	if err != nil {
		return fmt.Errorf("attach tags to article %s: %w", articleID, mapError(err))
	}
	return nil
}

// DeleteArticle removes an article together with its tag links and favorite.
func (s *PGStore) DeleteArticle(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const articleViewSelect = `SELECT ` + articleColumns + `, s.name,
	EXISTS (SELECT 1 FROM favorites f WHERE f.article_id = a.id)
	FROM articles a JOIN sources s ON s.id = a.source_id`

// GetArticle loads one article with its source name, tags and favorite flag.
func (s *PGStore) GetArticle(ctx context.Context, id string) (domain.ArticleView, error) {
	var view domain.ArticleView
	article, err := scanArticle(
		s.db.QueryRow(ctx, articleViewSelect+` WHERE a.id = $1`, id),
		&view.SourceName, &view.Favorited,
	)
	if err != nil {
		return domain.ArticleView{}, fmt.Errorf("get article %s: %w", id, mapError(err))
	}
	view.Article = article

	tags, err := s.articleTags(ctx, []string{id})
	if err != nil {
		return domain.ArticleView{}, err
	}
	view.Tags = tags[id]
	if view.Tags == nil {
		view.Tags = []domain.MatchedTag{}
	}
	return view, nil
}

// ListArticles returns one page of articles ordered by publication date, newest first.
func (s *PGStore) ListArticles(ctx context.Context, q ArticleQuery) (ArticlePage, error) {
	where, args := articleFilter(q)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM articles a`+where, args...).Scan(&total); err != nil {
		return ArticlePage{}, fmt.Errorf("count articles: %w", err)
	}

	limitArg := strconv.Itoa(len(args) + 1)
	offsetArg := strconv.Itoa(len(args) + 2)
	query := articleViewSelect + where +
		` ORDER BY a.published_at DESC NULLS LAST, a.created_at DESC` +
		` LIMIT $` + limitArg + ` OFFSET $` + offsetArg

	rows, err := s.db.Query(ctx, query, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return ArticlePage{}, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	views := []domain.ArticleView{}
	for rows.Next() {
		var view domain.ArticleView
		article, err := scanArticle(rows, &view.SourceName, &view.Favorited)
		if err != nil {
			return ArticlePage{}, fmt.Errorf("scan article: %w", err)
		}
		view.Article = article
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return ArticlePage{}, fmt.Errorf("list articles: %w", err)
	}

	if len(views) > 0 {
		ids := make([]string, len(views))
		for i, v := range views {
			ids[i] = v.ID
		}
		tags, err := s.articleTags(ctx, ids)
		if err != nil {
			return ArticlePage{}, err
		}
		for i := range views {
			views[i].Tags = tags[views[i].ID]
			if views[i].Tags == nil {
				views[i].Tags = []domain.MatchedTag{}
			}
		}
	}

	return ArticlePage{Articles: views, Total: total}, nil
}

// articleFilter builds the WHERE clause shared by the count and page queries.
func articleFilter(q ArticleQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if q.Status != "" {
		conds = append(conds, "a.status = "+next(string(q.Status)))
	}
	if q.TagID != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM article_tags at WHERE at.article_id = a.id AND at.tag_id = "+next(q.TagID)+")")
	}
	if q.Search != "" {
		p := next("%" + q.Search + "%")
		conds = append(conds, "(a.title ILIKE "+p+" OR a.description ILIKE "+p+")")
	}
	if q.FavoritesOnly {
		conds = append(conds, "EXISTS (SELECT 1 FROM favorites f WHERE f.article_id = a.id)")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// articleTags loads matched tags for the given articles, keyed by article ID.
func (s *PGStore) articleTags(ctx context.Context, articleIDs []string) (map[string][]domain.MatchedTag, error) {
	rows, err := s.db.Query(ctx, `SELECT at.article_id, t.id, t.name
		FROM article_tags at JOIN tags t ON t.id = at.tag_id
		WHERE at.article_id = ANY($1)
		ORDER BY t.name`, articleIDs)
	if err != nil {
		return nil, fmt.Errorf("load article tags: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.MatchedTag, len(articleIDs))
	for rows.Next() {
		var articleID string
		var tag domain.MatchedTag
		if err := rows.Scan(&articleID, &tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("scan article tag: %w", err)
		}
		out[articleID] = append(out[articleID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load article tags: %w", err)
	}
	return out, nil
}

// UpdateArticleStatus sets the status and returns the updated article.
func (s *PGStore) UpdateArticleStatus(ctx context.Context, id string, status domain.ArticleStatus) (domain.Article, error) {
	a, err := scanArticle(s.db.QueryRow(ctx, `UPDATE articles a SET status = $2, updated_at = $3
		WHERE a.id = $1
		RETURNING `+articleColumns, id, string(status), s.now()))
	if err != nil {
		return domain.Article{}, fmt.Errorf("update article %s: %w", id, mapError(err))
	}
	return a, nil
}

// ToggleFavorite flips the favorite flag and reports whether the article is now a favorite.
func (s *PGStore) ToggleFavorite(ctx context.Context, articleID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM favorites WHERE article_id = $1`, articleID)
	if err != nil {
		return false, fmt.Errorf("unfavorite article %s: %w", articleID, err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = s.db.Exec(ctx, `INSERT INTO favorites (id, article_id, created_at) VALUES ($1, $2, $3)`,
		s.newID(), articleID, s.now())
	if err != nil {
		return false, fmt.Errorf("favorite article %s: %w", articleID, mapError(err))
	}
	return true, nil
}

// FavoriteArticleIDs returns the IDs of all favorited articles.
func (s *PGStore) FavoriteArticleIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT article_id FROM favorites`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return ids, nil
}

// DeleteArticlesCreatedBefore removes articles older than cutoff, sparing exclude.
func (s *PGStore) DeleteArticlesCreatedBefore(ctx context.Context, cutoff time.Time, exclude []string) (int64, error) {
	// A nil slice encodes as NULL and NOT (id = ANY(NULL)) never holds.
	if exclude == nil {
		exclude = []string{}
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM articles WHERE created_at < $1 AND NOT (id = ANY($2))`, cutoff, exclude)
	if err != nil {
		return 0, fmt.Errorf("delete old articles: %w", err)
	}
	return tag.RowsAffected(), nil
}
