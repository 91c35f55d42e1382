package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/manakavoo/manakavoo-backend/internal/repository"
)

const fileExt = ".json"

// DirStore keeps one JSON file per key inside a directory
type DirStore struct {
	dir    string
	logger logrus.FieldLogger
}

// NewDirStore creates a store rooted at dir. The directory is created lazily
// on the first Put.
func NewDirStore(dir string, logger logrus.FieldLogger) *DirStore {
	return &DirStore{
		dir:    dir,
		logger: logger.WithField("store", "dir"),
	}
}

// Dir returns the backing directory
func (s *DirStore) Dir() string {
	return s.dir
}

// Get reads the file for key
func (s *DirStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Put overwrites the file for key
func (s *DirStore) Put(ctx context.Context, key string, value []byte) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}
	return writeFileAtomic(path, value)
}

// List reads every *.json file in the directory. Files that cannot be read
// are logged and skipped.
func (s *DirStore) List(ctx context.Context) ([]repository.Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.dir, err)
	}

	entries := make([]repository.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.WithError(err).WithField("file", name).Warn("skipping unreadable file")
			continue
		}
		entries = append(entries, repository.Entry{
			Key:   strings.TrimSuffix(name, fileExt),
			Value: data,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries, nil
}

func (s *DirStore) pathFor(key string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("%w: %q", repository.ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+fileExt), nil
}

// validKey rejects keys that would escape the directory
func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, `/\`) && !strings.ContainsRune(key, 0)
}

// writeFileAtomic writes to a temp file next to path and renames it into place
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}
