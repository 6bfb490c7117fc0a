package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/evermood/syncengine/internal/logger"
	"github.com/evermood/syncengine/models"
)

func newTestQueueRepo(t *testing.T) (*queueRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &queueRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func TestQueueInsert_Success(t *testing.T) {
	repo, mock, db := newTestQueueRepo(t)
	defer db.Close()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := models.QueuedMutation{
		ID:        "m1",
		Endpoint:  "/api/emotions",
		Method:    "POST",
		Payload:   json.RawMessage(`{"emotion":"calm"}`),
		Priority:  models.PriorityHigh,
		CreatedAt: created,
	}

	mock.ExpectExec("INSERT INTO sync_queue").
		WithArgs("m1", "/api/emotions", "POST", `{"emotion":"calm"}`, 2, 0, models.MutationStatusPending, created).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Insert(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueueListPending_ReplayOrder(t *testing.T) {
	repo, mock, db := newTestQueueRepo(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.
		NewRows([]string{"id", "endpoint", "method", "payload", "priority", "retry_count", "created_at"}).
		AddRow("m-high", "/api/emotions", "POST", `{}`, 2, 0, now).
		AddRow("m-low", "/api/analytics", "PUT", `{}`, 0, 1, now)

	mock.ExpectQuery("SELECT id, endpoint, method, payload, priority, retry_count, created_at FROM sync_queue").
		WithArgs(models.MutationStatusPending).
		WillReturnRows(rows)

	items, err := repo.ListPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "m-high" || items[0].Priority != models.PriorityHigh {
		t.Errorf("expected high-priority mutation first, got %+v", items[0])
	}
	if items[1].RetryCount != 1 {
		t.Errorf("expected retry count scanned, got %d", items[1].RetryCount)
	}
}

func TestQueueDelete_Missing(t *testing.T) {
	repo, mock, db := newTestQueueRepo(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM sync_queue").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost")
	if !errors.Is(err, ErrMutationNotFound) {
		t.Fatalf("expected ErrMutationNotFound, got: %v", err)
	}
}

func TestQueueIncrementRetry_Success(t *testing.T) {
	repo, mock, db := newTestQueueRepo(t)
	defer db.Close()

	mock.ExpectExec("UPDATE sync_queue SET retry_count = retry_count \\+ 1").
		WithArgs("m1", models.MutationStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.IncrementRetry(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueueMarkDead_Success(t *testing.T) {
	repo, mock, db := newTestQueueRepo(t)
	defer db.Close()

	mock.ExpectExec("UPDATE sync_queue SET status = ?").
		WithArgs(models.MutationStatusDead, "m1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkDead(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueueCountPending(t *testing.T) {
	repo, mock, db := newTestQueueRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM sync_queue").
		WithArgs(models.MutationStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 pending, got %d", n)
	}
}
