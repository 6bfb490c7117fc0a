// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Evermood Labs

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/evermood/syncengine/internal/logger"
	"github.com/evermood/syncengine/models"
)

var queueColumns = []string{"id", "endpoint", "method", "payload", "priority", "retry_count", "created_at"}

type queueRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewQueueRepository constructs the SQLite-backed [QueueRepository].
func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	return &queueRepository{db: db, logger: logger}
}

// Insert implements [QueueRepository].
func (r *queueRepository) Insert(ctx context.Context, m models.QueuedMutation) error {
	query, args, err := sb.
		Insert("sync_queue").
		Columns("id", "endpoint", "method", "payload", "priority", "retry_count", "status", "created_at").
		Values(m.ID, m.Endpoint, m.Method, string(m.Payload), int(m.Priority), m.RetryCount, models.MutationStatusPending, m.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build queue insert query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert queued mutation %s: %w", m.ID, err)
	}

	r.logger.Debug().Str("id", m.ID).Str("endpoint", m.Endpoint).Msg("mutation queued")
	return nil
}

// ListPending implements [QueueRepository]. Replay order is priority
// descending, then insertion order.
func (r *queueRepository) ListPending(ctx context.Context) ([]models.QueuedMutation, error) {
	query, args, err := sb.
		Select(queueColumns...).
		From("sync_queue").
		Where(squirrel.Eq{"status": models.MutationStatusPending}).
		OrderBy("priority DESC", "created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build queue list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending mutations: %w", err)
	}
	defer rows.Close()

	var items []models.QueuedMutation
	for rows.Next() {
		var (
			m       models.QueuedMutation
			payload string
		)
		if err = rows.Scan(&m.ID, &m.Endpoint, &m.Method, &payload, &m.Priority, &m.RetryCount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan queued mutation: %w", err)
		}
		m.Payload = json.RawMessage(payload)
		items = append(items, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending mutations: %w", err)
	}

	return items, nil
}

// Delete implements [QueueRepository].
func (r *queueRepository) Delete(ctx context.Context, id string) error {
	query, args, err := sb.
		Delete("sync_queue").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build queue delete query: %w", err)
	}

	return r.execExpectingRow(ctx, query, args, id)
}

// IncrementRetry implements [QueueRepository].
func (r *queueRepository) IncrementRetry(ctx context.Context, id string) error {
	query, args, err := sb.
		Update("sync_queue").
		Set("retry_count", squirrel.Expr("retry_count + 1")).
		Where(squirrel.Eq{"id": id, "status": models.MutationStatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build queue retry query: %w", err)
	}

	return r.execExpectingRow(ctx, query, args, id)
}

// MarkDead implements [QueueRepository].
func (r *queueRepository) MarkDead(ctx context.Context, id string) error {
	query, args, err := sb.
		Update("sync_queue").
		Set("status", models.MutationStatusDead).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build queue dead query: %w", err)
	}

	return r.execExpectingRow(ctx, query, args, id)
}

// CountPending implements [QueueRepository].
func (r *queueRepository) CountPending(ctx context.Context) (int, error) {
	query, args, err := sb.
		Select("COUNT(*)").
		From("sync_queue").
		Where(squirrel.Eq{"status": models.MutationStatusPending}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build queue count query: %w", err)
	}

	var n int
	if err = r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending mutations: %w", err)
	}

	return n, nil
}

func (r *queueRepository) execExpectingRow(ctx context.Context, query string, args []any, id string) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("queue exec for %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("queue rows affected for %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrMutationNotFound, id)
	}

	return nil
}
