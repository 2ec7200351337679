package catalog

import (
	"context"
	"fmt"

	"rss-digest/pkg/domain"
)

// CreatePromptRequest is the input for adding a share-draft prompt.
type CreatePromptRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=255"`
	Template  string `json:"template" validate:"required,min=1,max=10000"`
	IsDefault bool   `json:"isDefault"`
}

// UpdatePromptRequest edits a prompt. Nil fields are left unchanged.
type UpdatePromptRequest struct {
	Name      *string `json:"name" validate:"omitnil,min=1,max=255"`
	Template  *string `json:"template" validate:"omitnil,min=1,max=10000"`
	IsDefault *bool   `json:"isDefault"`
}

// CreatePrompt stores a prompt. Marking it default clears the previous default.
func (s *Service) CreatePrompt(ctx context.Context, req CreatePromptRequest) (domain.Prompt, error) {
	if err := s.validate.validate(req); err != nil {
		return domain.Prompt{}, err
	}
	prompt, err := s.store.CreatePrompt(ctx, domain.Prompt{
		Name:      req.Name,
		Template:  req.Template,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("create prompt: %w", err)
	}
	return prompt, nil
}

// UpdatePrompt applies the non-nil fields of req to the prompt with id.
func (s *Service) UpdatePrompt(ctx context.Context, id string, req UpdatePromptRequest) (domain.Prompt, error) {
	if id == "" {
		return domain.Prompt{}, invalid("id", "is required")
	}
	if err := s.validate.validate(req); err != nil {
		return domain.Prompt{}, err
	}
	prompt, err := s.store.UpdatePrompt(ctx, id, domain.PromptUpdate{
		Name:      req.Name,
		Template:  req.Template,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("update prompt %s: %w", id, err)
	}
	return prompt, nil
}

// DeletePrompt removes a prompt.
func (s *Service) DeletePrompt(ctx context.Context, id string) error {
	if id == "" {
		return invalid("id", "is required")
	}
	if err := s.store.DeletePrompt(ctx, id); err != nil {
		return fmt.Errorf("delete prompt %s: %w", id, err)
	}
	return nil
}

// ListPrompts returns every prompt, default first.
func (s *Service) ListPrompts(ctx context.Context) ([]domain.Prompt, error) {
	prompts, err := s.store.ListPrompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return prompts, nil
}
