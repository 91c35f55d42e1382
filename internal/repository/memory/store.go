package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/manakavoo/manakavoo-backend/internal/repository"
)

// Store is an in-process KVStore used for tests and the "memory" storage driver
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{items: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Put stores a copy of value under key
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return repository.ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = append([]byte(nil), value...)
	return nil
}

// List returns all entries ordered by key
func (s *Store) List(ctx context.Context) ([]repository.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]repository.Entry, 0, len(s.items))
	for key, value := range s.items {
		entries = append(entries, repository.Entry{Key: key, Value: append([]byte(nil), value...)})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries, nil
}

// Len reports the number of stored keys
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
