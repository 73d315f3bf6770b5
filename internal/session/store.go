// Package session holds the bearer credential shared by every remote call and
// decodes the identity claims it carries.
package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNoCredential is returned when no access token is stored.
var ErrNoCredential = errors.New("no access token available")

// Store persists the bearer credential and the cached user data that
// accompanies it. Implementations must be safe for concurrent use.
type Store interface {
	// Token returns the stored access token or ErrNoCredential.
	Token(ctx context.Context) (string, error)
	// SetToken stores a new access token.
	SetToken(ctx context.Context, token string) error
	// UserData returns the opaque user data blob stored alongside the token.
	UserData(ctx context.Context) ([]byte, error)
	// SetUserData stores the opaque user data blob.
	SetUserData(ctx context.Context, data []byte) error
	// Clear removes the token and user data, forcing re-authentication.
	Clear(ctx context.Context) error
}

// MemoryStore keeps the credential in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	token    string
	userData []byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", ErrNoCredential
	}

	return s.token, nil
}

func (s *MemoryStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token

	return nil
}

func (s *MemoryStore) UserData(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]byte(nil), s.userData...), nil
}

func (s *MemoryStore) SetUserData(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userData = append([]byte(nil), data...)

	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.userData = nil

	return nil
}
