// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Evermood Labs

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/evermood/syncengine/internal/logger"
)

// sb builds all SQLite queries in this package with "?" placeholders.
var sb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type kvRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewKeyValueRepository constructs the SQLite-backed [KeyValueStore].
func NewKeyValueRepository(db *DB, logger *logger.Logger) KeyValueStore {
	return &kvRepository{db: db, logger: logger}
}

// Get implements [KeyValueStore].
func (r *kvRepository) Get(ctx context.Context, key string) (string, error) {
	query, args, err := sb.
		Select("value").
		From("kv_entries").
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build kv get query: %w", err)
	}

	var value string
	if err = r.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("get kv entry %q: %w", key, err)
	}

	return value, nil
}

// Set implements [KeyValueStore]. The write is an upsert so callers never
// need to distinguish first write from overwrite.
func (r *kvRepository) Set(ctx context.Context, key, value string) error {
	query, args, err := sb.
		Insert("kv_entries").
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build kv set query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set kv entry %q: %w", key, err)
	}

	return nil
}

// Remove implements [KeyValueStore]. Removing an absent key is a no-op.
func (r *kvRepository) Remove(ctx context.Context, key string) error {
	query, args, err := sb.
		Delete("kv_entries").
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build kv remove query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove kv entry %q: %w", key, err)
	}

	return nil
}
