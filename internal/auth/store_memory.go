package auth

import (
	"context"
	"fmt"
	"sync"

	"carepath/pkg/platform/sentinel"
)

// UserStore looks up credential records by username.
//
// Error contract:
// - FindByUsername returns sentinel.ErrNotFound (wrapped) for unknown users
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	Save(ctx context.Context, user *User) error
}

// InMemoryUserStore keeps users in memory. The server seeds it from config at
// startup; it is injected into the auth service rather than living as a
// module-level singleton.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewInMemoryUserStore constructs an empty in-memory user store.
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[string]*User)}
}

func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[username]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, fmt.Errorf("user %q: %w", username, sentinel.ErrNotFound)
}

func (s *InMemoryUserStore) Save(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.users[user.Username] = &copied
	return nil
}
