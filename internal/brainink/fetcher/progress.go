package fetcher

import (
	"context"
	"fmt"

	"github.com/brainink/hub/internal/brainink/api"
	"github.com/brainink/hub/internal/brainink/types"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ProgressResult holds the user group. Either field is nil when its request failed.
type ProgressResult struct {
	Progress *types.UserProgress
	Stats    *types.UserStats
}

// ProgressFetcher handles retrieval of the acting user's progress and stats.
type ProgressFetcher struct {
	api     *api.API
	baseURL string
	logger  *zap.Logger
}

// NewProgressFetcher creates a ProgressFetcher for the achievements service at baseURL.
func NewProgressFetcher(a *api.API, baseURL string, logger *zap.Logger) *ProgressFetcher {
	return &ProgressFetcher{
		api:     a,
		baseURL: baseURL,
		logger:  logger.Named("progress_fetcher"),
	}
}

// GetProgress returns the acting user's progress.
func (p *ProgressFetcher) GetProgress(ctx context.Context) (*types.UserProgress, error) {
	var progress types.UserProgress
	if err := p.api.GetJSON(ctx, p.baseURL+"/progress", &progress); err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &progress, nil
}

// GetStats returns the acting user's stats.
func (p *ProgressFetcher) GetStats(ctx context.Context) (*types.UserStats, error) {
	var stats types.UserStats
	if err := p.api.GetJSON(ctx, p.baseURL+"/stats", &stats); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &stats, nil
}

// FetchAll retrieves progress and stats concurrently. Failed requests are
// logged and leave their field nil.
func (p *ProgressFetcher) FetchAll(ctx context.Context) *ProgressResult {
	var (
		result ProgressResult
		wg     = pool.New().WithContext(ctx)
	)

	// Fetch progress
	wg.Go(func(ctx context.Context) error {
		progress, err := p.GetProgress(ctx)
		if err != nil {
			p.logger.Warn("Failed to fetch user progress", zap.Error(err))
			return nil
		}
		result.Progress = progress
		return nil
	})

	// Fetch stats
	wg.Go(func(ctx context.Context) error {
		stats, err := p.GetStats(ctx)
		if err != nil {
			p.logger.Warn("Failed to fetch user stats", zap.Error(err))
			return nil
		}
		result.Stats = stats
		return nil
	})

	_ = wg.Wait()

	return &result
}
