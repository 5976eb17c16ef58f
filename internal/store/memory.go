package store

import (
	"context"
	"sync"
)

// MemoryStateStore is an in-memory implementation of StateStore.
// Use this for development/testing; state does not survive restart.
type MemoryStateStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStateStore creates a new in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{entries: make(map[string][]byte)}
}

// Get retrieves a snapshot by key.
func (s *MemoryStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.entries[key]
	if !exists {
		return nil, ErrNotFound
	}

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Set rewrites the snapshot under key wholesale.
func (s *MemoryStateStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	s.entries[key] = valueCopy
	return nil
}

// Delete removes a snapshot by key.
func (s *MemoryStateStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStateStore) Close() error {
	return nil
}

var _ StateStore = (*MemoryStateStore)(nil)
