package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manakavoo/manakavoo-backend/internal/config"
	"github.com/manakavoo/manakavoo-backend/internal/repository/boltstore"
	"github.com/manakavoo/manakavoo-backend/internal/repository/filestore"
	"github.com/manakavoo/manakavoo-backend/internal/repository/memory"
)

func TestOpen_Drivers(t *testing.T) {
	dir := t.TempDir()
	logger := logrus.New()

	tests := []struct {
		driver string
		check  func(t *testing.T, s *Stores)
	}{
		{config.DriverFile, func(t *testing.T, s *Stores) {
			assert.IsType(t, &filestore.DirStore{}, s.Conversations)
			assert.IsType(t, &filestore.MapFileStore{}, s.Transcripts)
		}},
		{config.DriverMemory, func(t *testing.T, s *Stores) {
			assert.IsType(t, &memory.Store{}, s.Conversations)
			assert.IsType(t, &memory.Store{}, s.Transcripts)
		}},
		{config.DriverBolt, func(t *testing.T, s *Stores) {
			assert.IsType(t, &boltstore.Store{}, s.Conversations)
			assert.IsType(t, &boltstore.Store{}, s.Transcripts)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			stores, err := Open(config.StorageConfig{
				Driver:              tt.driver,
				ConversationsDir:    filepath.Join(dir, tt.driver, "conversations"),
				TranscriptCacheFile: filepath.Join(dir, tt.driver, "video_transcripts.json"),
				BoltPath:            filepath.Join(dir, tt.driver, "manakavoo.bolt"),
			}, logger)
			require.NoError(t, err)
			defer stores.Close()

			tt.check(t, stores)

			ctx := context.Background()
			require.NoError(t, stores.Conversations.Put(ctx, "conv_1", []byte(`{"id":"conv_1"}`)))
			_, err = stores.Transcripts.Get(ctx, "conv_1")
			assert.Error(t, err, "stores must not share keys")
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.StorageConfig{Driver: "mongo"}, logrus.New())
	assert.Error(t, err)
}
