package session

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"
)

const (
	tokenKeySuffix    = "access_token"
	userDataKeySuffix = "encrypted_user_data"
)

// RedisStore keeps the credential in Redis so several processes share one login.
type RedisStore struct {
	client      rueidis.Client
	tokenKey    string
	userDataKey string
}

// NewRedisStore creates a RedisStore whose keys are prefixed with namespace.
func NewRedisStore(client rueidis.Client, namespace string) *RedisStore {
	return &RedisStore{
		client:      client,
		tokenKey:    fmt.Sprintf("%s:%s", namespace, tokenKeySuffix),
		userDataKey: fmt.Sprintf("%s:%s", namespace, userDataKeySuffix),
	}
}

func (s *RedisStore) Token(ctx context.Context) (string, error) {
	token, err := s.client.Do(ctx, s.client.B().Get().Key(s.tokenKey).Build()).ToString()
	if rueidis.IsRedisNil(err) {
		return "", ErrNoCredential
	}

	if err != nil {
		return "", fmt.Errorf("failed to read access token: %w", err)
	}

	if token == "" {
		return "", ErrNoCredential
	}

	return token, nil
}

func (s *RedisStore) SetToken(ctx context.Context, token string) error {
	if err := s.client.Do(ctx, s.client.B().Set().Key(s.tokenKey).Value(token).Build()).Error(); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}

	return nil
}

func (s *RedisStore) UserData(ctx context.Context) ([]byte, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().Key(s.userDataKey).Build()).AsBytes()
	if rueidis.IsRedisNil(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read user data: %w", err)
	}

	return data, nil
}

func (s *RedisStore) SetUserData(ctx context.Context, data []byte) error {
	cmd := s.client.B().Set().Key(s.userDataKey).Value(rueidis.BinaryString(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to store user data: %w", err)
	}

	return nil
}

// Clear deletes both keys with single-key commands, since the keys may hash
// to different cluster slots.
func (s *RedisStore) Clear(ctx context.Context) error {
	cmds := rueidis.Commands{
		s.client.B().Del().Key(s.tokenKey).Build(),
		s.client.B().Del().Key(s.userDataKey).Build(),
	}

	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
	}

	return nil
}
