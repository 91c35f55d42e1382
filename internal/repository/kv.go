package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by KVStore.Get when no value exists for a key
	ErrNotFound = errors.New("key not found")
	// ErrInvalidKey is returned when a key cannot be represented by the backend
	ErrInvalidKey = errors.New("invalid key")
)

// Entry is a single key/value pair returned by KVStore.List
type Entry struct {
	Key   string
	Value []byte
}

// KVStore is the storage medium behind the conversation store and the
// transcript cache. Values are opaque JSON documents.
//
// Implementations do not coordinate read-modify-write cycles across callers:
// two concurrent Puts to the same key race and the last completed write wins.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	List(ctx context.Context) ([]Entry, error)
}
