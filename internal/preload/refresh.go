package preload

import (
	"context"
	"fmt"
	"strings"

	"github.com/brainink/hub/internal/session"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Category selects the slice of the Snapshot to refresh.
type Category string

const (
	CategoryUser         Category = "user"
	CategoryFriends      Category = "friends"
	CategoryAchievements Category = "achievements"
	CategoryTournaments  Category = "tournaments"
	CategoryAll          Category = "all"
)

// Categories lists every valid Category.
var Categories = []Category{CategoryUser, CategoryFriends, CategoryAchievements, CategoryTournaments, CategoryAll}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	category := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range Categories {
		if c == category {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Refresh re-fetches one slice of the Snapshot and publishes a new Snapshot
// with that slice replaced, fresh notifications and a bumped LastUpdated.
// It does nothing when no Snapshot exists. CategoryAll behaves like Preload:
// a fresh Snapshot is kept, otherwise an assembly is joined or started.
//
// A category refresh publishes only if Clear has not run since it started.
// It does not wait for an assembly in flight, so whichever of the two
// publishes last is the current Snapshot.
func (c *Cache) Refresh(ctx context.Context, category Category) error {
	switch category {
	case CategoryAll:
		_, err := c.Preload(ctx)
		return err
	case CategoryUser, CategoryFriends, CategoryAchievements, CategoryTournaments:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	c.mu.RLock()
	exists := c.snapshot != nil
	generation := c.generation
	c.mu.RUnlock()

	if !exists {
		c.logger.Debug("Skipping refresh without preloaded data", zap.String("category", string(category)))
		return nil
	}

	ctx, span := c.tracer.Start(ctx, "preload.refresh",
		trace.WithAttributes(attribute.String("category", string(category))))
	defer span.End()

	claims, err := c.identity(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "authentication failed")
		return err
	}

	patch := c.fetchCategory(ctx, category, claims)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation || c.snapshot == nil {
		return nil
	}

	next := c.snapshot.clone()
	patch(next)

	now := c.now()
	if now.Before(c.snapshot.LastUpdated) {
		now = c.snapshot.LastUpdated
	}

	next.LastUpdated = now
	next.Notifications = BuildNotifications(next, claims.UserID, now)
	c.snapshot = next

	span.SetAttributes(attribute.Int("notifications.count", next.Notifications.Count()))

	c.logger.Debug("Refreshed preloaded data",
		zap.String("category", string(category)),
		zap.Int("notifications", next.Notifications.Count()))

	return nil
}

// fetchCategory fetches one slice outside the lock and returns the function
// that applies it to a cloned Snapshot.
func (c *Cache) fetchCategory(ctx context.Context, category Category, claims *session.Claims) func(*Snapshot) {
	switch category {
	case CategoryUser:
		result := c.fetchers.Progress.FetchAll(ctx)
		return func(s *Snapshot) {
			s.User = UserData{Profile: claims, Progress: result.Progress, Stats: result.Stats}
		}
	case CategoryFriends:
		data := friendsData(c.fetchFriends(ctx, claims.UserID))
		return func(s *Snapshot) {
			s.Friends = data
		}
	case CategoryAchievements:
		achievements := c.fetchers.Achievements.FetchAll(ctx)
		return func(s *Snapshot) {
			s.Achievements = achievements
		}
	case CategoryTournaments:
		data := tournamentsData(c.fetchers.Tournaments.FetchAll(ctx))
		return func(s *Snapshot) {
			s.Tournaments = data
		}
	}
	return func(*Snapshot) {}
}

