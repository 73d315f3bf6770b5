package preload

import (
	"slices"
	"time"

	"github.com/brainink/hub/internal/brainink/types"
	"github.com/brainink/hub/internal/session"
)

// UserData is the acting user's identity and progression.
// Progress and Stats are nil when their fetch failed.
type UserData struct {
	Profile  *session.Claims     `json:"profile"`
	Progress *types.UserProgress `json:"progress"`
	Stats    *types.UserStats    `json:"stats"`
}

// FriendsData is the social graph slice. Conversations is keyed by friend
// username and holds previews for the first friends in List only.
type FriendsData struct {
	List            []types.User               `json:"list"`
	PendingRequests []types.FriendRequest      `json:"pendingRequests"`
	Conversations   map[string][]types.Message `json:"conversations"`
}

// MyTournaments groups the acting user's tournaments by role.
type MyTournaments struct {
	Created       []types.Tournament `json:"created"`
	Participating []types.Tournament `json:"participating"`
	Invited       []types.Tournament `json:"invited"`
}

// TournamentsData is the tournaments slice.
type TournamentsData struct {
	Mine        MyTournaments                `json:"myTournaments"`
	Available   []types.Tournament           `json:"availableTournaments"`
	Invitations []types.TournamentInvitation `json:"invitations"`
}

// Snapshot is one assembled view of the acting user's data. A published
// Snapshot is never mutated; refreshes publish a new one.
type Snapshot struct {
	User          UserData            `json:"user"`
	Friends       FriendsData         `json:"friends"`
	Achievements  []types.Achievement `json:"achievements"`
	Tournaments   TournamentsData     `json:"tournaments"`
	Notifications Notifications       `json:"notifications"`
	LastUpdated   time.Time           `json:"lastUpdated"`
}

// emptyFriends returns FriendsData with non-nil collections.
func emptyFriends() FriendsData {
	return FriendsData{
		List:            []types.User{},
		PendingRequests: []types.FriendRequest{},
		Conversations:   make(map[string][]types.Message),
	}
}

// emptyTournaments returns TournamentsData with non-nil collections.
func emptyTournaments() TournamentsData {
	return TournamentsData{
		Mine: MyTournaments{
			Created:       []types.Tournament{},
			Participating: []types.Tournament{},
			Invited:       []types.Tournament{},
		},
		Available:   []types.Tournament{},
		Invitations: []types.TournamentInvitation{},
	}
}

// clone returns a shallow copy. Slices are shared, which is safe because
// published snapshots are never modified in place.
func (s *Snapshot) clone() *Snapshot {
	c := *s
	return &c
}

// copy returns a deep copy for callers.
func (f FriendsData) copy() FriendsData {
	out := FriendsData{
		List:            cloneSlice(f.List),
		PendingRequests: cloneSlice(f.PendingRequests),
		Conversations:   make(map[string][]types.Message, len(f.Conversations)),
	}
	for username, messages := range f.Conversations {
		out.Conversations[username] = cloneSlice(messages)
	}
	return out
}

func (t TournamentsData) copy() TournamentsData {
	return TournamentsData{
		Mine: MyTournaments{
			Created:       cloneSlice(t.Mine.Created),
			Participating: cloneSlice(t.Mine.Participating),
			Invited:       cloneSlice(t.Mine.Invited),
		},
		Available:   cloneSlice(t.Available),
		Invitations: cloneSlice(t.Invitations),
	}
}

// cloneSlice copies s, returning an empty non-nil slice for nil.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}
