// Package memory is an in-process repository.KeyValueStore. Nothing survives a restart;
// it backs tests and STORAGE_BACKEND=memory.
package memory

import (
	"context"
	"sync"

	"github.com/sakif/file-vault/internal/repository"
)

var _ repository.KeyValueStore = (*Store)(nil)

type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

func New() *Store {
	return &Store{data: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
