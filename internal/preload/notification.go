package preload

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"github.com/brainink/hub/internal/brainink/types"
	"github.com/brainink/hub/pkg/utils"
)

// Type tags a notification with its source.
type Type string

const (
	TypeFriendRequest    Type = "friend_request"
	TypeMessage          Type = "message"
	TypeAchievement      Type = "achievement"
	TypeTournamentInvite Type = "tournament_invite"
	TypeTournamentStart  Type = "tournament_start"
)

const (
	messageWindow       = 24 * time.Hour
	achievementWindow   = 7 * 24 * time.Hour
	tournamentWindow    = 24 * time.Hour
	maxAchievements     = 5
	maxTournaments      = 10
	messagePreviewRunes = 30
)

// Reward is the reward shown with an achievement notification.
type Reward struct {
	XP     int64 `json:"xp"`
	Tokens int64 `json:"tokens"`
}

// Notification is a feed entry derived from a Snapshot. IDs are stable for
// the same source entity, so regenerating from the same data yields the
// same IDs.
type Notification struct {
	ID      string  `json:"id"`
	Type    Type    `json:"type"`
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Time    string  `json:"time"`
	Read    bool    `json:"read"`
	Data    any     `json:"data,omitempty"`
	Reward  *Reward `json:"reward,omitempty"`
}

// FriendRequestData is the payload of a friend request notification.
type FriendRequestData struct {
	FriendshipID int64       `json:"friendship_id"`
	Requester    *types.User `json:"requester,omitempty"`
}

// MessageData is the payload of a message notification.
type MessageData struct {
	Friend      types.User    `json:"friend"`
	Message     types.Message `json:"message"`
	UnreadCount int           `json:"unreadCount"`
}

// AchievementData is the payload of an achievement notification.
type AchievementData struct {
	Achievement types.Achievement `json:"achievement"`
}

// TournamentData is the payload of a tournament notification. Exactly one
// field is set depending on the notification type.
type TournamentData struct {
	Invitation *types.TournamentInvitation `json:"invitation,omitempty"`
	Tournament *types.Tournament           `json:"tournament,omitempty"`
}

// Notifications is the derived feed, grouped by source.
type Notifications struct {
	FriendRequests []Notification `json:"friendRequests"`
	Messages       []Notification `json:"messages"`
	Achievements   []Notification `json:"achievements"`
	Tournaments    []Notification `json:"tournaments"`
}

// All returns every notification in group order.
func (n Notifications) All() []Notification {
	all := make([]Notification, 0, n.Count())
	all = append(all, n.FriendRequests...)
	all = append(all, n.Messages...)
	all = append(all, n.Achievements...)
	all = append(all, n.Tournaments...)
	return all
}

// Count returns the total number of notifications.
func (n Notifications) Count() int {
	return len(n.FriendRequests) + len(n.Messages) + len(n.Achievements) + len(n.Tournaments)
}

func (n Notifications) copy() Notifications {
	return Notifications{
		FriendRequests: cloneSlice(n.FriendRequests),
		Messages:       cloneSlice(n.Messages),
		Achievements:   cloneSlice(n.Achievements),
		Tournaments:    cloneSlice(n.Tournaments),
	}
}

// BuildNotifications derives the notification feed from snap for userID at
// time now. It does not modify snap.
func BuildNotifications(snap *Snapshot, userID int64, now time.Time) Notifications {
	return Notifications{
		FriendRequests: friendRequestNotifications(snap.Friends.PendingRequests, now),
		Messages:       messageNotifications(snap.Friends, userID, now),
		Achievements:   achievementNotifications(snap.Achievements, now),
		Tournaments:    tournamentNotifications(snap.Tournaments, now),
	}
}

func friendRequestNotifications(requests []types.FriendRequest, now time.Time) []Notification {
	out := make([]Notification, 0, len(requests))

	for _, req := range requests {
		name := req.RequesterName()
		if name == "" {
			name = "Someone"
		}

		out = append(out, Notification{
			ID:      "friend_request_" + strconv.FormatInt(req.ID, 10),
			Type:    TypeFriendRequest,
			Title:   "New Friend Request",
			Message: name + " wants to be your friend",
			Time:    FormatRelative(req.CreatedAt.Time, now),
			Data: FriendRequestData{
				FriendshipID: req.ID,
				Requester:    req.FriendInfo,
			},
		})
	}

	return out
}

// messageNotifications emits at most one notification per friend, walking
// friends in list order.
func messageNotifications(friends FriendsData, userID int64, now time.Time) []Notification {
	out := []Notification{}
	cutoff := now.Add(-messageWindow)

	for _, friend := range friends.List {
		messages, ok := friends.Conversations[friend.Username]
		if !ok {
			continue
		}

		var (
			latest *types.Message
			unread int
		)

		for i := range messages {
			msg := &messages[i]
			if msg.SenderID == userID || !msg.CreatedAt.After(cutoff) || !msg.IsUnread() {
				continue
			}

			unread++

			if latest == nil || msg.CreatedAt.After(latest.CreatedAt.Time) {
				latest = msg
			}
		}

		if latest == nil {
			continue
		}

		out = append(out, Notification{
			ID:      "message_" + strconv.FormatInt(friend.ID, 10) + "_" + strconv.FormatInt(latest.ID, 10),
			Type:    TypeMessage,
			Title:   "New Message",
			Message: friend.DisplayName() + ": " + utils.Preview(latest.Content, messagePreviewRunes),
			Time:    FormatRelative(latest.CreatedAt.Time, now),
			Data: MessageData{
				Friend:      friend,
				Message:     *latest,
				UnreadCount: unread,
			},
		})
	}

	return out
}

// achievementNotifications covers achievements earned in the last week,
// newest first.
func achievementNotifications(achievements []types.Achievement, now time.Time) []Notification {
	cutoff := now.Add(-achievementWindow)

	recent := make([]types.Achievement, 0, len(achievements))
	for _, a := range achievements {
		if a.IsEarned() && a.EarnedAt.After(cutoff) {
			recent = append(recent, a)
		}
	}

	slices.SortStableFunc(recent, func(a, b types.Achievement) int {
		return b.EarnedAt.Compare(a.EarnedAt.Time)
	})

	if len(recent) > maxAchievements {
		recent = recent[:maxAchievements]
	}

	out := make([]Notification, 0, len(recent))
	for _, a := range recent {
		out = append(out, Notification{
			ID:      "achievement_" + strconv.FormatInt(a.ID, 10),
			Type:    TypeAchievement,
			Title:   "New Achievement!",
			Message: `You've unlocked "` + a.Name + `"`,
			Time:    FormatRelative(a.EarnedAt.Time, now),
			Reward: &Reward{
				XP:     a.XPReward,
				Tokens: a.XPReward / 2,
			},
			Data: AchievementData{Achievement: a},
		})
	}

	return out
}

// tournamentNotifications lists pending invitations, then participating
// tournaments starting within the next day, capped in that order.
func tournamentNotifications(tournaments TournamentsData, now time.Time) []Notification {
	out := []Notification{}

	for _, inv := range tournaments.Invitations {
		if inv.Status != "" && inv.Status != types.InvitationPending {
			continue
		}

		message := `You've been invited to "` + inv.TournamentName() + `"`
		if inv.InviterAddress != "" {
			message += " by " + inv.InviterAddress
		}

		out = append(out, Notification{
			ID:      "tournament_invite_" + inv.ID,
			Type:    TypeTournamentInvite,
			Title:   "Tournament Invitation",
			Message: message,
			Time:    FormatRelative(inv.CreatedAt.Time, now),
			Data:    TournamentData{Invitation: &inv},
		})
	}

	horizon := now.Add(tournamentWindow)

	upcoming := make([]types.Tournament, 0, len(tournaments.Mine.Participating))
	for _, t := range tournaments.Mine.Participating {
		if t.StartTime == nil || t.StartTime.IsZero() {
			continue
		}
		if t.StartTime.Before(now) || t.StartTime.After(horizon) {
			continue
		}
		upcoming = append(upcoming, t)
	}

	slices.SortStableFunc(upcoming, func(a, b types.Tournament) int {
		return cmp.Compare(a.StartTime.UnixNano(), b.StartTime.UnixNano())
	})

	for _, t := range upcoming {
		out = append(out, Notification{
			ID:      "tournament_start_" + t.ID,
			Type:    TypeTournamentStart,
			Title:   "Tournament Starting Soon",
			Message: `"` + t.Name + `" starts ` + formatUntil(t.StartTime.Time, now),
			Time:    formatUntil(t.StartTime.Time, now),
			Data:    TournamentData{Tournament: &t},
		})
	}

	if len(out) > maxTournaments {
		out = out[:maxTournaments]
	}

	return out
}
