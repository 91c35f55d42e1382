package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/manakavoo/manakavoo-backend/internal/repository"
)

// KVRepository implements repository.KVStore over the kv_entries table,
// scoped to one namespace
type KVRepository struct {
	db        *sqlx.DB
	namespace string
}

// NewKVRepository creates a new PostgreSQL key/value repository
func NewKVRepository(db *sqlx.DB, namespace string) *KVRepository {
	return &KVRepository{db: db, namespace: namespace}
}

type kvRow struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}

// Get retrieves the value stored under key
func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	query := `SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`

	err := r.db.GetContext(ctx, &value, query, r.namespace, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", r.namespace, key, err)
	}

	return value, nil
}

// Put inserts or replaces the value stored under key
func (r *KVRepository) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return repository.ErrInvalidKey
	}

	query := `
		INSERT INTO kv_entries (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, r.namespace, key, string(value)); err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", r.namespace, key, err)
	}
	return nil
}

// List retrieves every entry in the namespace ordered by key
func (r *KVRepository) List(ctx context.Context) ([]repository.Entry, error) {
	var rows []kvRow
	query := `
		SELECT key, value
		FROM kv_entries
		WHERE namespace = $1
		ORDER BY key
	`

	if err := r.db.SelectContext(ctx, &rows, query, r.namespace); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.namespace, err)
	}

	entries := make([]repository.Entry, len(rows))
	for i, row := range rows {
		entries[i] = repository.Entry{Key: row.Key, Value: row.Value}
	}
	return entries, nil
}
