package preload_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/brainink/hub/internal/brainink/types"
	"github.com/brainink/hub/internal/preload"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptySnapshot() *preload.Snapshot {
	return &preload.Snapshot{
		Friends: preload.FriendsData{Conversations: map[string][]types.Message{}},
	}
}

func notificationIDs(ns []preload.Notification) []string {
	ids := make([]string, 0, len(ns))
	for _, n := range ns {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestBuildNotifications_Empty(t *testing.T) {
	t.Parallel()

	got := preload.BuildNotifications(emptySnapshot(), actingUserID, baseTime)

	assert.Zero(t, got.Count())
	assert.NotNil(t, got.FriendRequests)
	assert.NotNil(t, got.Messages)
	assert.NotNil(t, got.Achievements)
	assert.NotNil(t, got.Tournaments)
	assert.Empty(t, got.All())
}

func TestBuildNotifications_Idempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	snap, err := f.cache.Preload(t.Context())
	require.NoError(t, err)

	first := preload.BuildNotifications(snap, actingUserID, baseTime)
	second := preload.BuildNotifications(snap, actingUserID, baseTime)

	assert.Empty(t, cmp.Diff(first, second))
	assert.Empty(t, cmp.Diff(snap.Notifications, first))
}

func TestBuildNotifications_Messages(t *testing.T) {
	t.Parallel()

	now := baseTime
	readAt := tsPtr(now.Add(-time.Minute))

	tests := []struct {
		name      string
		messages  []types.Message
		wantID    string
		wantCount int
	}{
		{
			name: "own messages ignored",
			messages: []types.Message{
				{ID: 1, SenderID: actingUserID, Status: "sent", CreatedAt: ts(now.Add(-time.Minute))},
			},
		},
		{
			name: "read messages ignored",
			messages: []types.Message{
				{ID: 1, SenderID: 11, Status: "read", ReadAt: readAt, CreatedAt: ts(now.Add(-time.Minute))},
			},
		},
		{
			name: "read status without timestamp is unread",
			messages: []types.Message{
				{ID: 1, SenderID: 11, Status: "read", CreatedAt: ts(now.Add(-time.Minute))},
			},
			wantID:    "message_11_1",
			wantCount: 1,
		},
		{
			name: "messages older than a day ignored",
			messages: []types.Message{
				{ID: 1, SenderID: 11, Status: "sent", CreatedAt: ts(now.Add(-24 * time.Hour))},
				{ID: 2, SenderID: 11, Status: "sent", CreatedAt: ts(now.Add(-23 * time.Hour))},
			},
			wantID:    "message_11_2",
			wantCount: 1,
		},
		{
			name: "most recent message wins regardless of order",
			messages: []types.Message{
				{ID: 5, SenderID: 11, Status: "sent", CreatedAt: ts(now.Add(-time.Minute))},
				{ID: 4, SenderID: 11, Status: "sent", CreatedAt: ts(now.Add(-time.Hour))},
				{ID: 6, SenderID: 11, Status: "sent", CreatedAt: ts(now.Add(-2 * time.Hour))},
			},
			wantID:    "message_11_5",
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			snap := emptySnapshot()
			snap.Friends.List = fixtureFriends(1)
			snap.Friends.Conversations["ada"] = tt.messages

			got := preload.BuildNotifications(snap, actingUserID, now).Messages
			if tt.wantID == "" {
				assert.Empty(t, got)
				return
			}

			require.Len(t, got, 1)
			assert.Equal(t, tt.wantID, got[0].ID)
			assert.Equal(t, preload.TypeMessage, got[0].Type)
			assert.False(t, got[0].Read)

			data, ok := got[0].Data.(preload.MessageData)
			require.True(t, ok)
			assert.Equal(t, tt.wantCount, data.UnreadCount)
			assert.Equal(t, int64(11), data.Friend.ID)
		})
	}
}

func TestBuildNotifications_MessagesFollowFriendOrder(t *testing.T) {
	t.Parallel()

	snap := emptySnapshot()
	snap.Friends.List = fixtureFriends(3)
	snap.Friends.Conversations["cy"] = []types.Message{
		{ID: 31, SenderID: 13, Content: "hey", CreatedAt: ts(baseTime.Add(-time.Minute))},
	}
	snap.Friends.Conversations["ada"] = []types.Message{
		{ID: 11, SenderID: 11, Content: "line one\n\n  line two", CreatedAt: ts(baseTime.Add(-time.Hour))},
	}

	got := preload.BuildNotifications(snap, actingUserID, baseTime).Messages

	assert.Equal(t, []string{"message_11_11", "message_13_31"}, notificationIDs(got))
	assert.Equal(t, "Ada Lovelace: line one line two", got[0].Message)
	assert.Equal(t, "1h ago", got[0].Time)
	assert.Equal(t, "cy: hey", got[1].Message)
}

func TestBuildNotifications_Achievements(t *testing.T) {
	t.Parallel()

	achievements := make([]types.Achievement, 0, 8)
	for i := range 6 {
		achievements = append(achievements, types.Achievement{
			ID:       int64(i + 1),
			Name:     "A" + strconv.Itoa(i+1),
			XPReward: 25,
			EarnedAt: tsPtr(baseTime.Add(-time.Duration(6-i) * 24 * time.Hour)),
		})
	}
	achievements = append(achievements,
		types.Achievement{ID: 7, Name: "Too old", XPReward: 10, EarnedAt: tsPtr(baseTime.Add(-7 * 24 * time.Hour))},
		types.Achievement{ID: 8, Name: "Locked", XPReward: 10},
	)

	snap := emptySnapshot()
	snap.Achievements = achievements

	got := preload.BuildNotifications(snap, actingUserID, baseTime).Achievements

	// Newest first, capped at five
	assert.Equal(t, []string{
		"achievement_6", "achievement_5", "achievement_4", "achievement_3", "achievement_2",
	}, notificationIDs(got))

	assert.Equal(t, `You've unlocked "A6"`, got[0].Message)
	assert.Equal(t, "1d ago", got[0].Time)
	assert.Equal(t, &preload.Reward{XP: 25, Tokens: 12}, got[0].Reward)

	// Input order is left untouched
	assert.Equal(t, int64(1), snap.Achievements[0].ID)
}

func TestBuildNotifications_Tournaments(t *testing.T) {
	t.Parallel()

	snap := emptySnapshot()
	snap.Tournaments.Invitations = []types.TournamentInvitation{
		{ID: "inv-a", TournamentID: "t-1", InviterAddress: "0xabc", CreatedAt: ts(baseTime.Add(-time.Hour))},
		{ID: "inv-b", TournamentID: "t-2", Status: types.InvitationDeclined},
		{ID: "inv-c", TournamentID: "t-3", Status: types.InvitationPending,
			Tournament: &types.Tournament{ID: "t-3", Name: "Spelling Bee"}},
	}
	snap.Tournaments.Mine.Participating = []types.Tournament{
		{ID: "late", Name: "Late", StartTime: tsPtr(baseTime.Add(20 * time.Hour))},
		{ID: "soon", Name: "Soon", StartTime: tsPtr(baseTime.Add(45 * time.Minute))},
		{ID: "started", Name: "Started", StartTime: tsPtr(baseTime.Add(-time.Minute))},
		{ID: "far", Name: "Far", StartTime: tsPtr(baseTime.Add(25 * time.Hour))},
		{ID: "unscheduled", Name: "Unscheduled"},
	}

	got := preload.BuildNotifications(snap, actingUserID, baseTime).Tournaments

	assert.Equal(t, []string{
		"tournament_invite_inv-a", "tournament_invite_inv-c",
		"tournament_start_soon", "tournament_start_late",
	}, notificationIDs(got))

	assert.Equal(t, `You've been invited to "t-1" by 0xabc`, got[0].Message)
	assert.Equal(t, `You've been invited to "Spelling Bee"`, got[1].Message)
	assert.Equal(t, `"Soon" starts in 45m`, got[2].Message)
	assert.Equal(t, "in 45m", got[2].Time)
	assert.Equal(t, "in 20h", got[3].Time)

	data, ok := got[2].Data.(preload.TournamentData)
	require.True(t, ok)
	require.NotNil(t, data.Tournament)
	assert.Equal(t, "soon", data.Tournament.ID)
	assert.Nil(t, data.Invitation)
}

func TestBuildNotifications_TournamentCap(t *testing.T) {
	t.Parallel()

	snap := emptySnapshot()
	for i := range 8 {
		snap.Tournaments.Invitations = append(snap.Tournaments.Invitations, types.TournamentInvitation{
			ID: "inv-" + strconv.Itoa(i), Status: types.InvitationPending,
		})
	}
	for i := range 5 {
		snap.Tournaments.Mine.Participating = append(snap.Tournaments.Mine.Participating, types.Tournament{
			ID: "t-" + strconv.Itoa(i), StartTime: tsPtr(baseTime.Add(time.Duration(i+1) * time.Hour)),
		})
	}

	got := preload.BuildNotifications(snap, actingUserID, baseTime).Tournaments

	require.Len(t, got, 10)
	assert.Equal(t, "tournament_invite_inv-7", got[7].ID)
	assert.Equal(t, "tournament_start_t-0", got[8].ID)
	assert.Equal(t, "tournament_start_t-1", got[9].ID)
}

func TestBuildNotifications_FriendRequests(t *testing.T) {
	t.Parallel()

	snap := emptySnapshot()
	snap.Friends.PendingRequests = []types.FriendRequest{
		{ID: 9, FriendInfo: &types.User{Username: "zed"}, CreatedAt: ts(baseTime.Add(-2 * 24 * time.Hour))},
		{ID: 4},
	}

	got := preload.BuildNotifications(snap, actingUserID, baseTime).FriendRequests

	assert.Equal(t, []string{"friend_request_9", "friend_request_4"}, notificationIDs(got))
	assert.Equal(t, "zed wants to be your friend", got[0].Message)
	assert.Equal(t, "2d ago", got[0].Time)
	assert.Equal(t, "unknown", got[1].Time)

	data, ok := got[0].Data.(preload.FriendRequestData)
	require.True(t, ok)
	assert.Equal(t, int64(9), data.FriendshipID)
}

func TestNotifications_All(t *testing.T) {
	t.Parallel()

	n := preload.Notifications{
		FriendRequests: []preload.Notification{{ID: "a"}},
		Messages:       []preload.Notification{{ID: "b"}},
		Achievements:   []preload.Notification{{ID: "c"}, {ID: "d"}},
		Tournaments:    []preload.Notification{{ID: "e"}},
	}

	assert.Equal(t, 5, n.Count())
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, notificationIDs(n.All()))
}
