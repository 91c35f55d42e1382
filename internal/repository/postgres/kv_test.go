package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manakavoo/manakavoo-backend/internal/config"
	"github.com/manakavoo/manakavoo-backend/internal/database"
	"github.com/manakavoo/manakavoo-backend/internal/repository"
)

// Runs against a real server when MANAKAVOO_TEST_POSTGRES_HOST is set
func TestKVRepository(t *testing.T) {
	host := os.Getenv("MANAKAVOO_TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("MANAKAVOO_TEST_POSTGRES_HOST not set")
	}

	cfg := config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "manakavoo",
		Password: os.Getenv("MANAKAVOO_TEST_POSTGRES_PASSWORD"),
		Database: "manakavoo_test",
		SSLMode:  "disable",
	}
	db, err := database.NewConnection(cfg)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.RunMigrations(cfg))

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `DELETE FROM kv_entries WHERE namespace IN ('test_a', 'test_b')`)
	require.NoError(t, err)

	a := NewKVRepository(db.DB, "test_a")
	b := NewKVRepository(db.DB, "test_b")

	_, err = a.Get(ctx, "k1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, a.Put(ctx, "k2", []byte(`{"n":2}`)))
	require.NoError(t, a.Put(ctx, "k1", []byte(`{"n":1}`)))
	require.NoError(t, a.Put(ctx, "k1", []byte(`{"n":11}`)))

	value, err := a.Get(ctx, "k1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":11}`, string(value))

	_, err = b.Get(ctx, "k1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	entries, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "k1", entries[0].Key)
	assert.Equal(t, "k2", entries[1].Key)
}
