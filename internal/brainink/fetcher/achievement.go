package fetcher

import (
	"context"
	"fmt"

	"github.com/brainink/hub/internal/brainink/api"
	"github.com/brainink/hub/internal/brainink/types"
	"go.uber.org/zap"
)

// AchievementFetcher handles retrieval of the acting user's achievements.
type AchievementFetcher struct {
	api     *api.API
	baseURL string
	logger  *zap.Logger
}

// NewAchievementFetcher creates an AchievementFetcher for the achievements service at baseURL.
func NewAchievementFetcher(a *api.API, baseURL string, logger *zap.Logger) *AchievementFetcher {
	return &AchievementFetcher{
		api:     a,
		baseURL: baseURL,
		logger:  logger.Named("achievement_fetcher"),
	}
}

// GetAchievements returns the acting user's achievements in backend order.
func (a *AchievementFetcher) GetAchievements(ctx context.Context) ([]types.Achievement, error) {
	var list types.AchievementList
	if err := a.api.GetEnvelope(ctx, api.Request{URL: a.baseURL + "/achievements"}, &list); err != nil {
		return nil, fmt.Errorf("failed to get achievements: %w", err)
	}
	logSkipped(a.logger, "achievements", &list)
	return list.Achievements, nil
}

// FetchAll returns the achievements, or an empty slice when the request fails.
func (a *AchievementFetcher) FetchAll(ctx context.Context) []types.Achievement {
	achievements, err := a.GetAchievements(ctx)
	if err != nil {
		a.logger.Warn("Failed to fetch achievements", zap.Error(err))
		return []types.Achievement{}
	}
	return achievements
}
