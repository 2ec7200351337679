package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"rss-digest/pkg/db"
	"rss-digest/pkg/domain"
)

// CreateTagRequest is the input for adding a tag.
type CreateTagRequest struct {
	Name     string   `json:"name" validate:"required,min=1,max=50"`
	Keywords []string `json:"keywords" validate:"max=20"`
}

// UpdateTagKeywordsRequest replaces the keywords of an existing tag.
type UpdateTagKeywordsRequest struct {
	TagID    string   `json:"tagId" validate:"required"`
	Keywords []string `json:"keywords" validate:"max=20"`
}

// ParseKeywords splits a comma-separated keyword list, trimming each entry and
// dropping empty ones.
func ParseKeywords(raw string) []string {
	keywords := []string{}
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// cleanKeywords trims keywords and removes empty and repeated entries,
// comparing case-insensitively since matching ignores case.
func cleanKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, k)
	}
	return out
}

// CreateTag validates req and stores the tag with its keywords.
func (s *Service) CreateTag(ctx context.Context, req CreateTagRequest) (domain.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Keywords = cleanKeywords(req.Keywords)
	if err := s.validate.validate(req); err != nil {
		return domain.Tag{}, err
	}

	tag, err := s.store.CreateTag(ctx, req.Name, req.Keywords)
	if errors.Is(err, db.ErrDuplicate) {
		return domain.Tag{}, ErrTagExists
	}
	if err != nil {
		return domain.Tag{}, fmt.Errorf("create tag: %w", err)
	}

	s.logger.Info("tag created", zap.String("tag_id", tag.ID), zap.Int("keywords", len(tag.Keywords)))
	return tag, nil
}

// UpdateTagKeywords replaces all keywords of a tag.
func (s *Service) UpdateTagKeywords(ctx context.Context, req UpdateTagKeywordsRequest) ([]domain.Keyword, error) {
	req.Keywords = cleanKeywords(req.Keywords)
	if err := s.validate.validate(req); err != nil {
		return nil, err
	}

	keywords, err := s.store.ReplaceTagKeywords(ctx, req.TagID, req.Keywords)
	if err != nil {
		return nil, fmt.Errorf("update keywords of tag %s: %w", req.TagID, err)
	}
	return keywords, nil
}

// ListTags returns every tag with its keywords.
func (s *Service) ListTags(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// SetTagActive enables or disables a tag for matching.
func (s *Service) SetTagActive(ctx context.Context, id string, active bool) (domain.Tag, error) {
	if id == "" {
		return domain.Tag{}, invalid("id", "is required")
	}
	tag, err := s.store.SetTagActive(ctx, id, active)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("update tag %s: %w", id, err)
	}
	return tag, nil
}

// DeleteTag removes a tag, its keywords and its article links.
func (s *Service) DeleteTag(ctx context.Context, id string) error {
	if id == "" {
		return invalid("id", "is required")
	}
	if err := s.store.DeleteTag(ctx, id); err != nil {
		return fmt.Errorf("delete tag %s: %w", id, err)
	}
	s.logger.Info("tag deleted", zap.String("tag_id", id))
	return nil
}
