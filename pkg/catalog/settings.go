package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rss-digest/pkg/domain"
)

type retentionRequest struct {
	Days int `json:"articleRetentionDays" validate:"gte=1,lte=365"`
}

// GetSettings returns the stored settings, or the defaults when none are stored.
func (s *Service) GetSettings(ctx context.Context) (domain.Settings, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// UpdateRetentionDays stores how many days articles are kept.
func (s *Service) UpdateRetentionDays(ctx context.Context, days int) (domain.Settings, error) {
	if err := s.validate.validate(retentionRequest{Days: days}); err != nil {
		return domain.Settings{}, err
	}
	settings, err := s.store.UpdateSettings(ctx, days)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("update settings: %w", err)
	}
	s.logger.Info("retention updated", zap.Int("days", days))
	return settings, nil
}
