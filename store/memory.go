package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore keeps snapshots in process memory.
// Useful for testing and short-lived tools. Entries are copied on the way
// in and out, so callers can never mutate stored bytes.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]byte),
	}
}

// Put stores a copy of data under key, replacing any existing entry.
func (s *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = slices.Clone(data)
	return nil
}

// Get returns a copy of the bytes stored under key, or ErrEntryNotFound.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, exists := s.entries[key]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, key)
	}
	return slices.Clone(data), nil
}

// Delete removes the entry under key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Has reports whether an entry exists under key.
func (s *MemoryStore) Has(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.entries[key]
	return exists, nil
}

// Close releases nothing; entries stay available until the store is
// garbage collected.
func (s *MemoryStore) Close() error {
	return nil
}
