// Package memory is an in-process db.Store for local runs without Redis.
// Data lives as long as the process.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/runway/internal/db"
)

var _ db.Store = (*Store)(nil)

// Store is a mutex-guarded map implementing db.Store. Values are copied on
// the way in and out.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{items: make(map[string][]byte)}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// WaitForReady returns immediately.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// Close drops all keys.
func (s *Store) Close() {
	s.mu.Lock()
	s.items = make(map[string][]byte)
	s.mu.Unlock()
}

// Get returns a copy of the value stored at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return clone(v), nil
}

// Set stores a copy of value.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	v := clone(value)
	s.mu.Lock()
	s.items[key] = v
	s.mu.Unlock()
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
