package blob

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Storage used by tests and ephemeral runs.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string]string
	versions map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:   make(map[string]string),
		versions: make(map[string]int64),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.versions[key]++
	return nil
}

func (s *MemoryStore) Version(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[key], nil
}
