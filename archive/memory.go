package archive

import (
	"context"
	"strings"
	"sync"
)

// MemStore is an in-memory Store implementation for testing.
// Thread-safe for concurrent reads and writes.
type MemStore struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
}

// NewMemStore creates a new in-memory artifact store.
func NewMemStore() *MemStore {
	return &MemStore{
		artifacts: make(map[string][]byte),
	}
}

// Put writes an artifact atomically under the given name.
func (s *MemStore) Put(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to prevent external mutation
	copied := make([]byte, len(data))
	copy(copied, data)
	s.artifacts[name] = copied
	return nil
}

// Get reads an artifact back.
func (s *MemStore) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.artifacts[name]
	if !ok {
		return nil, ErrNotFound
	}

	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

// List returns all artifact names matching the prefix, unordered.
func (s *MemStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name := range s.artifacts {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

// Delete removes an artifact.
func (s *MemStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.artifacts, name)
	return nil
}
