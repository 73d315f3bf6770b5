// Package preload assembles the acting user's data from the BrainInk services
// into one Snapshot, derives a notification feed from it, and serves cached
// reads until the Snapshot goes stale.
package preload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brainink/hub/internal/brainink/fetcher"
	"github.com/brainink/hub/internal/brainink/types"
	"github.com/brainink/hub/internal/session"
	"github.com/brainink/hub/internal/setup/config"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// assemblyKey is the single singleflight key; at most one assembly runs at a time.
const assemblyKey = "assemble"

// Fetchers bundles the per-service fetchers the cache reads from.
type Fetchers struct {
	Progress     *fetcher.ProgressFetcher
	Friends      *fetcher.FriendFetcher
	Achievements *fetcher.AchievementFetcher
	Tournaments  *fetcher.TournamentFetcher
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// Cache holds the current Snapshot. It is safe for concurrent use.
type Cache struct {
	store    session.Store
	fetchers Fetchers
	cfg      config.Preload
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time

	group singleflight.Group

	mu         sync.RWMutex
	snapshot   *Snapshot
	generation uint64
}

// New creates an empty Cache.
func New(store session.Store, fetchers Fetchers, cfg config.Preload, logger *zap.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:    store,
		fetchers: fetchers,
		cfg:      cfg,
		logger:   logger.Named("preload"),
		tracer:   otel.Tracer("preload"),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Preload returns the current Snapshot if it is fresh. Otherwise it joins the
// assembly in flight or starts a new one. The assembly is not cancelled by
// ctx; a caller whose ctx ends stops waiting and gets ctx.Err().
func (c *Cache) Preload(ctx context.Context) (*Snapshot, error) {
	if snap := c.fresh(); snap != nil {
		return snap, nil
	}
	return c.run(ctx)
}

// IsFresh reports whether a Snapshot exists and is younger than the TTL.
func (c *Cache) IsFresh() bool {
	return c.fresh() != nil
}

// Clear drops the Snapshot. An assembly in flight still completes but its
// result is not published.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.snapshot = nil
	c.generation++
	c.mu.Unlock()

	c.logger.Debug("Cleared preloaded data")
}

// fresh returns the Snapshot if it is within the TTL.
func (c *Cache) fresh() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snapshot == nil {
		return nil
	}

	if c.now().Sub(c.snapshot.LastUpdated) >= c.cfg.TTLDuration() {
		return nil
	}

	return c.snapshot
}

// run executes or joins the assembly. A Snapshot published while this call
// waited for the group short-circuits the new assembly.
func (c *Cache) run(ctx context.Context) (*Snapshot, error) {
	ch := c.group.DoChan(assemblyKey, func() (any, error) {
		if snap := c.fresh(); snap != nil {
			return snap, nil
		}
		return c.assemble(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// identity reads and decodes the stored credential.
func (c *Cache) identity(ctx context.Context) (*session.Claims, error) {
	token, err := c.store.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	claims, err := session.DecodeClaims(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	return claims, nil
}

// assemble fetches all four groups concurrently and publishes the result.
func (c *Cache) assemble(ctx context.Context) (*Snapshot, error) {
	ctx, span := c.tracer.Start(ctx, "preload.assemble")
	defer span.End()

	start := time.Now()

	c.mu.RLock()
	generation := c.generation
	c.mu.RUnlock()

	claims, err := c.identity(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "authentication failed")
		return nil, err
	}

	c.logger.Info("Starting data preload", zap.Int64("userID", claims.UserID))

	var (
		progress     *fetcher.ProgressResult
		friends      *fetcher.FriendsResult
		achievements []types.Achievement
		tournaments  *fetcher.TournamentsResult
		wg           conc.WaitGroup
	)

	wg.Go(func() {
		progress = c.fetchers.Progress.FetchAll(ctx)
	})
	wg.Go(func() {
		friends = c.fetchFriends(ctx, claims.UserID)
	})
	wg.Go(func() {
		achievements = c.fetchers.Achievements.FetchAll(ctx)
	})
	wg.Go(func() {
		tournaments = c.fetchers.Tournaments.FetchAll(ctx)
	})
	wg.Wait()

	snap := &Snapshot{
		User: UserData{
			Profile:  claims,
			Progress: progress.Progress,
			Stats:    progress.Stats,
		},
		Friends:      friendsData(friends),
		Achievements: achievements,
		Tournaments:  tournamentsData(tournaments),
	}

	published := c.publish(snap, claims.UserID, generation)

	span.SetAttributes(
		attribute.Int64("user.id", claims.UserID),
		attribute.Int("friends.count", len(snap.Friends.List)),
		attribute.Int("conversations.count", len(snap.Friends.Conversations)),
		attribute.Int("achievements.count", len(snap.Achievements)),
		attribute.Int("tournaments.available", len(snap.Tournaments.Available)),
		attribute.Int("notifications.count", snap.Notifications.Count()),
		attribute.Bool("published", published),
	)

	c.logger.Info("Data preload completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("friends", len(snap.Friends.List)),
		zap.Int("pendingRequests", len(snap.Friends.PendingRequests)),
		zap.Int("achievements", len(snap.Achievements)),
		zap.Int("notifications", snap.Notifications.Count()),
		zap.Bool("published", published))

	return snap, nil
}

// publish stamps snap and makes it current unless Clear ran since generation
// was read. LastUpdated never moves backwards.
func (c *Cache) publish(snap *Snapshot, userID int64, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.snapshot != nil && now.Before(c.snapshot.LastUpdated) {
		now = c.snapshot.LastUpdated
	}

	snap.LastUpdated = now
	snap.Notifications = BuildNotifications(snap, userID, now)

	if generation != c.generation {
		return false
	}

	c.snapshot = snap
	return true
}

func (c *Cache) fetchFriends(ctx context.Context, userID int64) *fetcher.FriendsResult {
	return c.fetchers.Friends.FetchAll(ctx, userID,
		c.cfg.ConversationFriends, c.cfg.ConversationMessages, c.cfg.MaxConcurrent)
}

func friendsData(r *fetcher.FriendsResult) FriendsData {
	return FriendsData{
		List:            r.List,
		PendingRequests: r.PendingRequests,
		Conversations:   r.Conversations,
	}
}

func tournamentsData(r *fetcher.TournamentsResult) TournamentsData {
	return TournamentsData{
		Mine: MyTournaments{
			Created:       r.Mine.Created,
			Participating: r.Mine.Participating,
			Invited:       r.Mine.Invited,
		},
		Available:   r.Available,
		Invitations: r.Invitations,
	}
}
