package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/brainink/hub/internal/brainink/api"
	"github.com/brainink/hub/internal/brainink/types"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// FriendsResult holds the friends group. Conversations is keyed by friend
// username and only holds entries for the first friends in List.
type FriendsResult struct {
	List            []types.User
	PendingRequests []types.FriendRequest
	Conversations   map[string][]types.Message
}

// FriendFetcher handles retrieval of friends, friend requests and conversation previews.
type FriendFetcher struct {
	api     *api.API
	baseURL string
	logger  *zap.Logger
}

// NewFriendFetcher creates a FriendFetcher for the friends service at baseURL.
func NewFriendFetcher(a *api.API, baseURL string, logger *zap.Logger) *FriendFetcher {
	return &FriendFetcher{
		api:     a,
		baseURL: baseURL,
		logger:  logger.Named("friend_fetcher"),
	}
}

// GetFriends returns the user's friends in backend order.
func (f *FriendFetcher) GetFriends(ctx context.Context, userID int64) ([]types.User, error) {
	var list types.FriendList

	reqURL := f.baseURL + "/list/" + strconv.FormatInt(userID, 10)
	if err := f.api.GetEnvelope(ctx, api.Request{URL: reqURL}, &list); err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}
	logSkipped(f.logger, "friends", &list)

	return list.Friends, nil
}

// GetPendingRequests returns friend requests awaiting the user's answer.
func (f *FriendFetcher) GetPendingRequests(ctx context.Context, userID int64) ([]types.FriendRequest, error) {
	var list types.RequestList

	reqURL := f.baseURL + "/requests/pending/" + strconv.FormatInt(userID, 10)
	if err := f.api.GetEnvelope(ctx, api.Request{URL: reqURL}, &list); err != nil {
		return nil, fmt.Errorf("failed to get pending requests: %w", err)
	}
	logSkipped(f.logger, "pending_requests", &list)

	return list.Requests, nil
}

// GetConversation returns the first page of the conversation between the
// user and the friend named username.
func (f *FriendFetcher) GetConversation(
	ctx context.Context, userID int64, username string, pageSize int,
) ([]types.Message, error) {
	var page types.ConversationPage

	reqURL := f.baseURL + "/conversation/" + strconv.FormatInt(userID, 10) + "/" + url.PathEscape(username)
	if err := f.api.GetEnvelope(ctx, api.Request{
		URL: reqURL,
		Query: url.Values{
			"page":      {"1"},
			"page_size": {strconv.Itoa(pageSize)},
		},
	}, &page); err != nil {
		return nil, fmt.Errorf("failed to get conversation with %s: %w", username, err)
	}
	logSkipped(f.logger, "conversation", &page)

	return page.Messages, nil
}

// FetchAll retrieves the friends list and pending requests concurrently, then
// loads conversation previews for the first maxFriends friends with at most
// maxConcurrent requests in flight. Failed requests degrade to empty values.
func (f *FriendFetcher) FetchAll(
	ctx context.Context, userID int64, maxFriends, pageSize, maxConcurrent int,
) *FriendsResult {
	result := &FriendsResult{
		List:            []types.User{},
		PendingRequests: []types.FriendRequest{},
		Conversations:   make(map[string][]types.Message),
	}

	p := pool.New().WithContext(ctx)

	// Fetch friends list
	p.Go(func(ctx context.Context) error {
		friends, err := f.GetFriends(ctx, userID)
		if err != nil {
			f.logger.Warn("Failed to fetch friends list",
				zap.Error(err),
				zap.Int64("userID", userID))
			return nil
		}
		result.List = friends
		return nil
	})

	// Fetch pending requests
	p.Go(func(ctx context.Context) error {
		requests, err := f.GetPendingRequests(ctx, userID)
		if err != nil {
			f.logger.Warn("Failed to fetch pending friend requests",
				zap.Error(err),
				zap.Int64("userID", userID))
			return nil
		}
		result.PendingRequests = requests
		return nil
	})

	_ = p.Wait()

	result.Conversations = f.fetchConversations(ctx, userID, result.List, maxFriends, pageSize, maxConcurrent)

	f.logger.Debug("Finished fetching friends",
		zap.Int64("userID", userID),
		zap.Int("friends", len(result.List)),
		zap.Int("pendingRequests", len(result.PendingRequests)),
		zap.Int("conversations", len(result.Conversations)))

	return result
}

// fetchConversations loads previews for the first maxFriends friends. A
// failed preview is stored as an empty conversation.
func (f *FriendFetcher) fetchConversations(
	ctx context.Context, userID int64, friends []types.User, maxFriends, pageSize, maxConcurrent int,
) map[string][]types.Message {
	conversations := make(map[string][]types.Message)
	if len(friends) == 0 || maxFriends <= 0 {
		return conversations
	}

	if len(friends) > maxFriends {
		friends = friends[:maxFriends]
	}

	var (
		p  = pool.New().WithMaxGoroutines(max(maxConcurrent, 1)).WithContext(ctx)
		mu sync.Mutex
	)

	for _, friend := range friends {
		if friend.Username == "" {
			continue
		}

		p.Go(func(ctx context.Context) error {
			messages, err := f.GetConversation(ctx, userID, friend.Username, pageSize)
			if err != nil {
				f.logger.Warn("Failed to fetch conversation preview",
					zap.Error(err),
					zap.String("friend", friend.Username))

				messages = []types.Message{}
			}

			if len(messages) > pageSize {
				messages = messages[:pageSize]
			}

			mu.Lock()
			conversations[friend.Username] = messages
			mu.Unlock()

			return nil
		})
	}

	_ = p.Wait()

	return conversations
}
