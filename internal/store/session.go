package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sakif/file-vault/internal/model"
	"github.com/sakif/file-vault/internal/repository"
)

// SessionStore holds the single signed-in user of this vault.
//
// LIFECYCLE:
//
//	Restore   → once at startup, loads "currentUser" from the backend
//	Establish → after a successful login/signup
//	Clear     → on logout
//
// Current never touches the backend; it returns the value set by the last of the above.
type SessionStore struct {
	mu      sync.RWMutex
	kv      repository.KeyValueStore
	current *model.User
	logger  *slog.Logger
}

func NewSessionStore(kv repository.KeyValueStore, logger *slog.Logger) *SessionStore {
	return &SessionStore{kv: kv, logger: logger}
}

// Restore loads the persisted session, if any. A missing or corrupt entry yields nil.
func (s *SessionStore) Restore(ctx context.Context) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil

	raw, ok, err := s.kv.Get(ctx, repository.KeyCurrentUser)
	if err != nil {
		return nil, fmt.Errorf("store: reading session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == "" {
		s.logger.Warn("ignoring malformed session entry")
		return nil, nil
	}

	s.current = &user
	return copyUser(s.current), nil
}

// Establish makes user the active session and persists it.
func (s *SessionStore) Establish(ctx context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("store: encoding session: %w", err)
	}
	if err := s.kv.Set(ctx, repository.KeyCurrentUser, string(data)); err != nil {
		return fmt.Errorf("store: writing session: %w", err)
	}

	s.current = &user
	return nil
}

// Clear ends the active session and removes the persisted entry.
func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, repository.KeyCurrentUser); err != nil {
		return fmt.Errorf("store: clearing session: %w", err)
	}
	s.current = nil
	return nil
}

// Current returns a copy of the active user, or nil when signed out.
func (s *SessionStore) Current() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.current)
}

func copyUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
