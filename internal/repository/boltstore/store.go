package boltstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/manakavoo/manakavoo-backend/internal/repository"
)

// DB wraps a bbolt database shared by several bucket-scoped stores
type DB struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt file at path
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database file
func (d *DB) Close() error {
	return d.db.Close()
}

// Bucket returns a KVStore scoped to the named bucket, creating it if needed
func (d *DB) Bucket(name string) (*Store, error) {
	err := d.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket %s: %w", name, err)
	}
	return &Store{db: d.db, bucket: []byte(name)}, nil
}

// Store is a KVStore over one bbolt bucket
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Get returns the value stored under key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return repository.ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return repository.ErrNotFound
		}
		// v is only valid for the life of the transaction
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put stores value under key
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return repository.ErrInvalidKey
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
}

// List returns all entries in key order
func (s *Store) List(ctx context.Context) ([]repository.Entry, error) {
	var entries []repository.Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			entries = append(entries, repository.Entry{
				Key:   string(k),
				Value: append([]byte(nil), v...),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
