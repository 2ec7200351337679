package db

import (
	"context"
	"fmt"
)

// schemaStatements create the Postgres tables used by PGStore. Each statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tag_keywords (
		id TEXT PRIMARY KEY,
		tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		keyword TEXT NOT NULL,
		UNIQUE (tag_id, keyword)
	)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		link TEXT NOT NULL,
		canonical_url TEXT NOT NULL UNIQUE,
		published_at TIMESTAMPTZ,
		source_id TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
		status TEXT NOT NULL CHECK (status IN ('visible', 'excluded')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS articles_created_at_idx ON articles (created_at)`,
	`CREATE INDEX IF NOT EXISTS articles_published_at_idx ON articles (published_at DESC NULLS LAST)`,
	`CREATE TABLE IF NOT EXISTS article_tags (
		article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (article_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		id TEXT PRIMARY KEY,
		article_id TEXT NOT NULL UNIQUE REFERENCES articles(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		article_retention_days INTEGER NOT NULL CHECK (article_retention_days BETWEEN 1 AND 365),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS prompts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		template TEXT NOT NULL,
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS prompts_single_default_idx ON prompts (is_default) WHERE is_default`,
}

// EnsureSchema creates missing tables and indexes.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
