package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.KVStore = (*KVStore)(nil)

// KVStore implements driven.KVStore using PostgreSQL
type KVStore struct {
	db        *DB
	namespace string
}

// NewKVStore creates a new KVStore scoped to namespace
func NewKVStore(db *DB, namespace string) *KVStore {
	if namespace == "" {
		namespace = "default"
	}
	return &KVStore{db: db, namespace: namespace}
}

// Get retrieves a value by key
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `
		SELECT value
		FROM console_session_kv
		WHERE namespace = $1 AND key = $2
	`

	var value string
	err := s.db.QueryRowContext(ctx, query, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts a value
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO console_session_kv (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, s.namespace, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove deletes keys; absent keys are ignored
func (s *KVStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query := `
		DELETE FROM console_session_kv
		WHERE namespace = $1 AND key = ANY($2)
	`

	if _, err := s.db.ExecContext(ctx, query, s.namespace, pq.Array(keys)); err != nil {
		return fmt.Errorf("remove keys: %w", err)
	}
	return nil
}

// PurgeStale deletes rows of every namespace not written since before.
// Sessions abandoned without a logout would otherwise stay forever.
func (s *KVStore) PurgeStale(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM console_session_kv WHERE updated_at < $1`

	res, err := s.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("purge stale keys: %w", err)
	}
	return res.RowsAffected()
}
