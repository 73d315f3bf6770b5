package preload_test

import (
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/brainink/hub/internal/brainink/api"
	"github.com/brainink/hub/internal/brainink/backendtest"
	"github.com/brainink/hub/internal/brainink/fetcher"
	"github.com/brainink/hub/internal/brainink/types"
	"github.com/brainink/hub/internal/preload"
	"github.com/brainink/hub/internal/session"
	"github.com/brainink/hub/internal/setup/client"
	"github.com/brainink/hub/internal/setup/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const actingUserID = 7

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	srv   *backendtest.Server
	store *session.MemoryStore
	clock *clock
	cache *preload.Cache
}

func ts(t time.Time) types.Timestamp { return types.NewTimestamp(t) }

func tsPtr(t time.Time) *types.Timestamp {
	v := types.NewTimestamp(t)
	return &v
}

func signToken(t *testing.T, userID int64) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": "grace",
		"fname":    "Grace",
		"lname":    "Hopper",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return token
}

func fixtureFriends(n int) []types.User {
	base := []types.User{
		{ID: 11, Username: "ada", FirstName: "Ada", LastName: "Lovelace"},
		{ID: 12, Username: "bob"},
		{ID: 13, Username: "cy"},
	}
	return base[:n]
}

// drainSeen discards the request notifications recorded so far.
func drainSeen(srv *backendtest.Server) {
	for {
		select {
		case <-srv.Seen():
		default:
			return
		}
	}
}

// newFixture starts a fake backend populated with a complete data set and a
// cache reading from it.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := baseTime
	srv := backendtest.New(t)

	srv.JSON(http.MethodGet, "/progress", types.UserProgress{TotalXP: 1500, LoginStreak: 3})
	srv.JSON(http.MethodGet, "/stats", types.UserStats{UserID: actingUserID, AchievementsCount: 8})

	srv.JSON(http.MethodGet, "/friends/list/7", map[string]any{"friends": fixtureFriends(2)})
	srv.JSON(http.MethodGet, "/friends/requests/pending/7", []types.FriendRequest{
		{ID: 1, RequesterID: 20, ReceiverID: actingUserID, CreatedAt: ts(now.Add(-5 * time.Minute)),
			FriendInfo: &types.User{ID: 20, Username: "cdee", FirstName: "Cy", LastName: "Dee"}},
		{ID: 2, RequesterID: 21, ReceiverID: actingUserID, CreatedAt: ts(now.Add(-3 * time.Hour))},
	})

	srv.JSON(http.MethodGet, "/friends/conversation/7/ada", map[string]any{"messages": []types.Message{
		{ID: 101, SenderID: 11, Content: "first", Status: "sent", CreatedAt: ts(now.Add(-2 * time.Hour))},
		{ID: 102, SenderID: 11, Content: "are you coming to the algebra study session tonight?", Status: "sent", CreatedAt: ts(now.Add(-30 * time.Minute))},
		{ID: 103, SenderID: 11, Content: "third", Status: "delivered", CreatedAt: ts(now.Add(-1 * time.Hour))},
		{ID: 104, SenderID: actingUserID, Content: "mine", Status: "sent", CreatedAt: ts(now.Add(-10 * time.Minute))},
	}})
	srv.JSON(http.MethodGet, "/friends/conversation/7/bob", map[string]any{"messages": []types.Message{
		{ID: 201, SenderID: 12, Content: "read", Status: "read", CreatedAt: ts(now.Add(-1 * time.Hour)), ReadAt: tsPtr(now.Add(-50 * time.Minute))},
		{ID: 202, SenderID: 12, Content: "old", Status: "sent", CreatedAt: ts(now.Add(-30 * time.Hour))},
	}})
	srv.JSON(http.MethodGet, "/friends/conversation/7/cy", map[string]any{"messages": []types.Message{}})

	achievements := make([]types.Achievement, 0, 9)
	for i := range 7 {
		achievements = append(achievements, types.Achievement{
			ID:       int64(300 + i),
			Name:     "Achievement " + strconv.Itoa(i),
			XPReward: int64(100 + i),
			EarnedAt: tsPtr(now.Add(-time.Duration(i+1) * time.Hour)),
		})
	}
	achievements = append(achievements,
		types.Achievement{ID: 398, Name: "Old", XPReward: 50, EarnedAt: tsPtr(now.Add(-10 * 24 * time.Hour))},
		types.Achievement{ID: 399, Name: "Locked", XPReward: 50},
	)
	srv.JSON(http.MethodGet, "/achievements", achievements)

	srv.JSON(http.MethodGet, "/api/tournaments/my-tournaments", map[string]any{
		"created": []types.Tournament{{ID: "t-created", Name: "Mine"}},
		"participating": []types.Tournament{
			{ID: "t-soon", Name: "Geometry Cup", StartTime: tsPtr(now.Add(2 * time.Hour))},
			{ID: "t-later", Name: "Calculus Open", StartTime: tsPtr(now.Add(48 * time.Hour))},
		},
		"invited": []types.Tournament{},
	})
	srv.JSON(http.MethodGet, "/api/tournaments/", []types.Tournament{{ID: "t-open", Name: "Open Bracket"}})
	srv.JSON(http.MethodGet, "/api/tournaments/invitations/my-invitations", map[string]any{"invitations": []types.TournamentInvitation{
		{ID: "inv-1", TournamentID: "t-open", Status: types.InvitationPending, CreatedAt: ts(now.Add(-20 * time.Minute)),
			Tournament: &types.Tournament{ID: "t-open", Name: "Open Bracket"}},
		{ID: "inv-2", TournamentID: "t-old", Status: types.InvitationAccepted, CreatedAt: ts(now.Add(-2 * time.Hour))},
	}})

	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken(t.Context(), signToken(t, actingUserID)))

	clk := &clock{now: now}

	return &fixture{
		srv:   srv,
		store: store,
		clock: clk,
		cache: newCache(t, srv, store, clk),
	}
}

func newCache(t *testing.T, srv *backendtest.Server, store session.Store, clk *clock) *preload.Cache {
	t.Helper()

	cfg := config.Default()
	cfg.Transport.Singleflight = false
	cfg.Endpoints = srv.Endpoints()

	logger := zap.NewNop()
	httpClient, _ := client.New(cfg, store, logger)
	a := api.New(httpClient)

	fetchers := preload.Fetchers{
		Progress:     fetcher.NewProgressFetcher(a, cfg.Endpoints.Achievements, logger),
		Friends:      fetcher.NewFriendFetcher(a, cfg.Endpoints.Friends, logger),
		Achievements: fetcher.NewAchievementFetcher(a, cfg.Endpoints.Achievements, logger),
		Tournaments:  fetcher.NewTournamentFetcher(a, cfg.Endpoints.Tournaments, logger),
	}

	return preload.New(store, fetchers, cfg.Preload, logger, preload.WithClock(clk.Now))
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
