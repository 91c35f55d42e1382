package factory

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/manakavoo/manakavoo-backend/internal/config"
	"github.com/manakavoo/manakavoo-backend/internal/database"
	"github.com/manakavoo/manakavoo-backend/internal/repository"
	"github.com/manakavoo/manakavoo-backend/internal/repository/boltstore"
	"github.com/manakavoo/manakavoo-backend/internal/repository/filestore"
	"github.com/manakavoo/manakavoo-backend/internal/repository/memory"
	"github.com/manakavoo/manakavoo-backend/internal/repository/postgres"
)

// Namespaces used by backends that keep both stores in one database
const (
	ConversationsNamespace = "conversations"
	TranscriptsNamespace   = "transcripts"
)

// Stores bundles the two KV stores the services need
type Stores struct {
	Conversations repository.KVStore
	Transcripts   repository.KVStore

	closers []io.Closer
}

// Close releases any underlying database handles
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open creates the stores for the configured storage driver
func Open(cfg config.StorageConfig, logger logrus.FieldLogger) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverFile, "":
		return &Stores{
			Conversations: filestore.NewDirStore(cfg.ConversationsDir, logger),
			Transcripts:   filestore.NewMapFileStore(cfg.TranscriptCacheFile, logger),
		}, nil

	case config.DriverMemory:
		return &Stores{
			Conversations: memory.NewStore(),
			Transcripts:   memory.NewStore(),
		}, nil

	case config.DriverBolt:
		db, err := boltstore.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		convs, err := db.Bucket(ConversationsNamespace)
		if err != nil {
			db.Close()
			return nil, err
		}
		transcripts, err := db.Bucket(TranscriptsNamespace)
		if err != nil {
			db.Close()
			return nil, err
		}
		return &Stores{
			Conversations: convs,
			Transcripts:   transcripts,
			closers:       []io.Closer{db},
		}, nil

	case config.DriverPostgres:
		db, err := database.NewConnection(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(cfg.Database); err != nil {
			db.Close()
			return nil, err
		}
		return &Stores{
			Conversations: postgres.NewKVRepository(db.DB, ConversationsNamespace),
			Transcripts:   postgres.NewKVRepository(db.DB, TranscriptsNamespace),
			closers:       []io.Closer{db},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
