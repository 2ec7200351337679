package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rss-digest/pkg/domain"
)

// ListSources returns every source, newest first.
func (s *PGStore) ListSources(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, url, is_active, created_at FROM sources ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	sources := []domain.Source{}
	for rows.Next() {
		var src domain.Source
		if err := rows.Scan(&src.ID, &src.Name, &src.URL, &src.IsActive, &src.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// CountSources returns the number of stored sources, active or not.
func (s *PGStore) CountSources(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM sources`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sources: %w", err)
	}
	return n, nil
}

// CreateSource stores an active source. A URL that is already stored yields ErrDuplicate.
func (s *PGStore) CreateSource(ctx context.Context, name, url string) (domain.Source, error) {
	src := domain.Source{ID: s.newID(), Name: name, URL: url, IsActive: true, CreatedAt: s.now()}
	_, err := s.db.Exec(ctx, `INSERT INTO sources (id, name, url, is_active, created_at) VALUES ($1, $2, $3, $4, $5)`,
		src.ID, src.Name, src.URL, src.IsActive, src.CreatedAt)
	if err != nil {
		return domain.Source{}, fmt.Errorf("insert source: %w", mapError(err))
	}
	return src, nil
}

// DeleteSource removes the source and, through the foreign key, its articles.
func (s *PGStore) DeleteSource(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete source %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) SetSourceActive(ctx context.Context, id string, active bool) (domain.Source, error) {
	var src domain.Source
	err := s.db.QueryRow(ctx, `UPDATE sources SET is_active = $2 WHERE id = $1
		RETURNING id, name, url, is_active, created_at`, id, active,
	).Scan(&src.ID, &src.Name, &src.URL, &src.IsActive, &src.CreatedAt)
	if err != nil {
		return domain.Source{}, fmt.Errorf("update source %s: %w", id, mapError(err))
	}
	return src, nil
}

// ListTags returns every tag with its keywords, newest first.
func (s *PGStore) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, is_active, created_at FROM tags ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	index := map[string]int{}
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		t.Keywords = []domain.Keyword{}
		index[t.ID] = len(tags)
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	rows.Close()

	kwRows, err := s.db.Query(ctx, `SELECT id, tag_id, keyword FROM tag_keywords ORDER BY keyword`)
	if err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	defer kwRows.Close()

	for kwRows.Next() {
		var kw domain.Keyword
		if err := kwRows.Scan(&kw.ID, &kw.TagID, &kw.Keyword); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		if i, ok := index[kw.TagID]; ok {
			tags[i].Keywords = append(tags[i].Keywords, kw)
		}
	}
	if err := kwRows.Err(); err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	return tags, nil
}

// CreateTag stores an active tag and its keywords in one transaction.
func (s *PGStore) CreateTag(ctx context.Context, name string, keywords []string) (domain.Tag, error) {
	tag := domain.Tag{ID: s.newID(), Name: name, IsActive: true, CreatedAt: s.now()}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO tags (id, name, is_active, created_at) VALUES ($1, $2, $3, $4)`,
			tag.ID, tag.Name, tag.IsActive, tag.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert tag: %w", mapError(err))
		}
		tag.Keywords, err = s.insertKeywords(ctx, tx, tag.ID, keywords)
		return err
	})
	if err != nil {
		return domain.Tag{}, err
	}
	return tag, nil
}

// ReplaceTagKeywords swaps the tag's keyword set for the given one.
func (s *PGStore) ReplaceTagKeywords(ctx context.Context, tagID string, keywords []string) ([]domain.Keyword, error) {
	var out []domain.Keyword
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tags WHERE id = $1)`, tagID).Scan(&exists); err != nil {
			return fmt.Errorf("check tag %s: %w", tagID, err)
		}
		if !exists {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM tag_keywords WHERE tag_id = $1`, tagID); err != nil {
			return fmt.Errorf("clear keywords of tag %s: %w", tagID, err)
		}
		var err error
		out, err = s.insertKeywords(ctx, tx, tagID, keywords)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PGStore) insertKeywords(ctx context.Context, tx pgx.Tx, tagID string, keywords []string) ([]domain.Keyword, error) {
	out := make([]domain.Keyword, 0, len(keywords))
	for _, k := range keywords {
		kw := domain.Keyword{ID: s.newID(), TagID: tagID, Keyword: k}
		_, err := tx.Exec(ctx, `INSERT INTO tag_keywords (id, tag_id, keyword) VALUES ($1, $2, $3)`,
			kw.ID, kw.TagID, kw.Keyword)
		if err != nil {
			return nil, fmt.Errorf("insert keyword %q: %w", k, mapError(err))
		}
		out = append(out, kw)
	}
	return out, nil
}

func (s *PGStore) SetTagActive(ctx context.Context, id string, active bool) (domain.Tag, error) {
	var t domain.Tag
	err := s.db.QueryRow(ctx, `UPDATE tags SET is_active = $2 WHERE id = $1
		RETURNING id, name, is_active, created_at`, id, active,
	).Scan(&t.ID, &t.Name, &t.IsActive, &t.CreatedAt)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("update tag %s: %w", id, mapError(err))
	}

	rows, err := s.db.Query(ctx, `SELECT id, tag_id, keyword FROM tag_keywords WHERE tag_id = $1 ORDER BY keyword`, id)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("load keywords of tag %s: %w", id, err)
	}
	defer rows.Close()

	t.Keywords = []domain.Keyword{}
	for rows.Next() {
		var kw domain.Keyword
		if err := rows.Scan(&kw.ID, &kw.TagID, &kw.Keyword); err != nil {
			return domain.Tag{}, fmt.Errorf("scan keyword: %w", err)
		}
		t.Keywords = append(t.Keywords, kw)
	}
	return t, rows.Err()
}

// DeleteTag removes the tag, its keywords and its article links.
func (s *PGStore) DeleteTag(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSettings returns the stored settings or the defaults when none exist.
func (s *PGStore) GetSettings(ctx context.Context) (domain.Settings, error) {
	var st domain.Settings
	err := s.db.QueryRow(ctx, `SELECT article_retention_days, updated_at FROM settings WHERE id = 1`).
		Scan(&st.ArticleRetentionDays, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

// UpdateSettings upserts the singleton settings row.
func (s *PGStore) UpdateSettings(ctx context.Context, retentionDays int) (domain.Settings, error) {
	st := domain.Settings{ArticleRetentionDays: retentionDays, UpdatedAt: s.now()}
	_, err := s.db.Exec(ctx, `INSERT INTO settings (id, article_retention_days, updated_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET article_retention_days = EXCLUDED.article_retention_days, updated_at = EXCLUDED.updated_at`,
		st.ArticleRetentionDays, st.UpdatedAt)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return st, nil
}

const promptColumns = `id, name, template, is_default, created_at, updated_at`

func scanPrompt(row rowScanner) (domain.Prompt, error) {
	var p domain.Prompt
	err := row.Scan(&p.ID, &p.Name, &p.Template, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListPrompts returns the default prompt first, then the rest by name.
func (s *PGStore) ListPrompts(ctx context.Context) ([]domain.Prompt, error) {
	rows, err := s.db.Query(ctx, `SELECT `+promptColumns+` FROM prompts ORDER BY is_default DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	prompts := []domain.Prompt{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return prompts, nil
}

func (s *PGStore) GetPrompt(ctx context.Context, id string) (domain.Prompt, error) {
	p, err := scanPrompt(s.db.QueryRow(ctx, `SELECT `+promptColumns+` FROM prompts WHERE id = $1`, id))
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("get prompt %s: %w", id, mapError(err))
	}
	return p, nil
}

func (s *PGStore) GetDefaultPrompt(ctx context.Context) (domain.Prompt, error) {
	p, err := scanPrompt(s.db.QueryRow(ctx, `SELECT `+promptColumns+` FROM prompts WHERE is_default LIMIT 1`))
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("get default prompt: %w", mapError(err))
	}
	return p, nil
}

// CreatePrompt inserts a prompt. When it is the default, the previous default is cleared first.
func (s *PGStore) CreatePrompt(ctx context.Context, in domain.Prompt) (domain.Prompt, error) {
	now := s.now()
	p := domain.Prompt{
		ID:        s.newID(),
		Name:      in.Name,
		Template:  in.Template,
		IsDefault: in.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if p.IsDefault {
			if _, err := tx.Exec(ctx, `UPDATE prompts SET is_default = FALSE, updated_at = $1 WHERE is_default`, now); err != nil {
				return fmt.Errorf("clear default prompt: %w", err)
			}
		}
		_, err := tx.Exec(ctx, `INSERT INTO prompts (`+promptColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.Name, p.Template, p.IsDefault, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert prompt: %w", mapError(err))
		}
		return nil
	})
	if err != nil {
		return domain.Prompt{}, err
	}
	return p, nil
}

// UpdatePrompt applies the non-nil fields of update.
func (s *PGStore) UpdatePrompt(ctx context.Context, id string, update domain.PromptUpdate) (domain.Prompt, error) {
	now := s.now()
	var p domain.Prompt
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if update.IsDefault != nil && *update.IsDefault {
			_, err := tx.Exec(ctx, `UPDATE prompts SET is_default = FALSE, updated_at = $2 WHERE is_default AND id <> $1`, id, now)
			if err != nil {
				return fmt.Errorf("clear default prompt: %w", err)
			}
		}
		var err error
		p, err = scanPrompt(tx.QueryRow(ctx, `UPDATE prompts SET
			name = COALESCE($2, name),
			template = COALESCE($3, template),
			is_default = COALESCE($4, is_default),
			updated_at = $5
			WHERE id = $1
			RETURNING `+promptColumns, id, update.Name, update.Template, update.IsDefault, now))
		if err != nil {
			return fmt.Errorf("update prompt %s: %w", id, mapError(err))
		}
		return nil
	})
	if err != nil {
		return domain.Prompt{}, err
	}
	return p, nil
}

func (s *PGStore) DeletePrompt(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM prompts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prompt %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// inTx runs fn in a transaction, committing on success.
func (s *PGStore) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
