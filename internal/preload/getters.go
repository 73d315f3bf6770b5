package preload

import (
	"time"

	"github.com/brainink/hub/internal/brainink/types"
	"github.com/brainink/hub/internal/session"
)

// The getters below never touch the network. With no Snapshot they return
// nil for singular values and empty collections otherwise. Collections are
// copies the caller may modify.

// Snapshot returns the current Snapshot or nil. It must be treated as read-only.
func (c *Cache) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// LastUpdated returns when the current Snapshot was published, or the zero time.
func (c *Cache) LastUpdated() time.Time {
	if snap := c.Snapshot(); snap != nil {
		return snap.LastUpdated
	}
	return time.Time{}
}

// Profile returns the acting user's identity claims.
func (c *Cache) Profile() *session.Claims {
	snap := c.Snapshot()
	if snap == nil || snap.User.Profile == nil {
		return nil
	}
	profile := *snap.User.Profile
	return &profile
}

// Progress returns the acting user's progress.
func (c *Cache) Progress() *types.UserProgress {
	snap := c.Snapshot()
	if snap == nil || snap.User.Progress == nil {
		return nil
	}
	progress := *snap.User.Progress
	return &progress
}

// Stats returns the acting user's stats.
func (c *Cache) Stats() *types.UserStats {
	snap := c.Snapshot()
	if snap == nil || snap.User.Stats == nil {
		return nil
	}
	stats := *snap.User.Stats
	return &stats
}

// Friends returns the friends list in backend order.
func (c *Cache) Friends() []types.User {
	snap := c.Snapshot()
	if snap == nil {
		return []types.User{}
	}
	return cloneSlice(snap.Friends.List)
}

// PendingRequests returns friend requests awaiting an answer.
func (c *Cache) PendingRequests() []types.FriendRequest {
	snap := c.Snapshot()
	if snap == nil {
		return []types.FriendRequest{}
	}
	return cloneSlice(snap.Friends.PendingRequests)
}

// Conversation returns the cached preview for the friend named username.
func (c *Cache) Conversation(username string) []types.Message {
	snap := c.Snapshot()
	if snap == nil {
		return []types.Message{}
	}
	return cloneSlice(snap.Friends.Conversations[username])
}

// FriendsData returns the whole friends slice.
func (c *Cache) FriendsData() FriendsData {
	snap := c.Snapshot()
	if snap == nil {
		return emptyFriends()
	}
	return snap.Friends.copy()
}

// Achievements returns the achievements in backend order.
func (c *Cache) Achievements() []types.Achievement {
	snap := c.Snapshot()
	if snap == nil {
		return []types.Achievement{}
	}
	return cloneSlice(snap.Achievements)
}

// Tournaments returns the tournaments slice.
func (c *Cache) Tournaments() TournamentsData {
	snap := c.Snapshot()
	if snap == nil {
		return emptyTournaments()
	}
	return snap.Tournaments.copy()
}

// Notifications returns the derived notification feed.
func (c *Cache) Notifications() Notifications {
	snap := c.Snapshot()
	if snap == nil {
		return Notifications{}.copy()
	}
	return snap.Notifications.copy()
}
