package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/manakavoo/manakavoo-backend/internal/repository"
)

// MapFileStore keeps every key in a single JSON object on disk. Each call
// re-reads the file; Put rewrites the whole file.
type MapFileStore struct {
	path   string
	logger logrus.FieldLogger
}

// NewMapFileStore creates a store backed by the JSON file at path
func NewMapFileStore(path string, logger logrus.FieldLogger) *MapFileStore {
	return &MapFileStore{
		path:   path,
		logger: logger.WithField("store", "mapfile"),
	}
}

// Path returns the backing file
func (s *MapFileStore) Path() string {
	return s.path
}

// Get loads the file and returns the value for key. A missing file is a
// miss; a corrupt file is an error.
func (s *MapFileStore) Get(ctx context.Context, key string) ([]byte, error) {
	items, err := s.load()
	if err != nil {
		return nil, err
	}

	value, ok := items[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return value, nil
}

// Put merges key into the stored mapping and rewrites the file. A missing or
// corrupt file is replaced by a fresh mapping.
func (s *MapFileStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return repository.ErrInvalidKey
	}
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}

	items, err := s.load()
	if err != nil {
		s.logger.WithError(err).Warn("discarding unreadable mapping before rewrite")
		items = make(map[string]json.RawMessage)
	}
	items[key] = json.RawMessage(value)

	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return writeFileAtomic(s.path, data)
}

// List returns all entries ordered by key
func (s *MapFileStore) List(ctx context.Context) ([]repository.Entry, error) {
	items, err := s.load()
	if err != nil {
		return nil, err
	}

	entries := make([]repository.Entry, 0, len(items))
	for key, value := range items {
		entries = append(entries, repository.Entry{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries, nil
}

func (s *MapFileStore) load() (map[string]json.RawMessage, error) {
	items := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return items, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	if items == nil {
		items = make(map[string]json.RawMessage)
	}
	return items, nil
}
