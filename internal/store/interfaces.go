package store

import (
	"context"

	"github.com/evermood/syncengine/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// KeyValueStore is the durable namespaced string key→value store the sync
// engine persists merged entities and per-user sync state into. Keys are
// namespaced per user ("emotions_data_<userID>", "sync_state_<userID>");
// the engine never writes a key for any user other than the current one.
type KeyValueStore interface {
	// Get returns the value stored under key, or [ErrKeyNotFound].
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the entry for key. Removing a missing key is a no-op.
	Remove(ctx context.Context, key string) error
}

// QueueRepository is the durable backing collection of the offline mutation
// queue. Entries survive process restarts and are drained in priority order,
// then insertion order.
type QueueRepository interface {
	// Insert appends a new pending mutation.
	Insert(ctx context.Context, m models.QueuedMutation) error

	// ListPending returns all pending mutations ordered by priority
	// descending, then creation time ascending.
	ListPending(ctx context.Context) ([]models.QueuedMutation, error)

	// Delete removes a mutation after a successful replay.
	Delete(ctx context.Context, id string) error

	// IncrementRetry bumps the retry counter of a mutation that failed
	// replay and stays pending.
	IncrementRetry(ctx context.Context, id string) error

	// MarkDead moves a mutation past its replay cap out of the pending set.
	// Dead entries are kept for inspection, never replayed again.
	MarkDead(ctx context.Context, id string) error

	// CountPending returns the number of mutations awaiting replay.
	CountPending(ctx context.Context) (int, error)
}
