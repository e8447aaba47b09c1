// Package db defines the storage contract the ledger persists through.
// Drivers live in subpackages: redis (Redis and Valkey) and memory.
package db

import (
	"context"
	"time"
)

// Store is what the service needs from a driver: a health check, a
// startup readiness wait and whole-record reads and writes.
type Store interface {
	Pinger
	KVStore
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore reads and overwrites opaque records by key.
type KVStore interface {
	// Get returns ErrKeyNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the record at key.
	Set(ctx context.Context, key string, value []byte) error
}
