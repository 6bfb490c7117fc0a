// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Evermood Labs

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/evermood/syncengine/models"
)

// SyncEngine is the top-level driver of the sync cycle. It owns the per-user
// sync state, enforces the single-flight guard, and composes the queue,
// protocol, and merge layers.
type SyncEngine interface {
	// TriggerSync runs one sync cycle. If a cycle is already in flight it
	// returns immediately with Success=false and the error
	// "Sync already in progress", mutating nothing — not even stats.
	TriggerSync(ctx context.Context, opts models.SyncOptions) models.SyncResult

	// ForceFullSync runs a cursor-resetting sync of every entity kind,
	// draining the offline queue first. Used by pull-to-refresh.
	ForceFullSync(ctx context.Context) models.SyncResult

	// GetSyncStatus returns the current persisted sync state for the
	// signed-in user.
	GetSyncStatus(ctx context.Context) (models.SyncState, error)
}

// MergeService holds the pure conflict-resolution functions, one per entity
// kind. Implementations must be stateless, side-effect free, and idempotent:
// merging the same incoming collection twice equals merging it once. The
// merge layer never touches storage.
type MergeService interface {
	// MergeEmotions combines collections by record ID; for a duplicated ID
	// the strictly later timestamp wins. Result is sorted descending by
	// timestamp (newest-first feed order).
	MergeEmotions(existing, incoming []models.EmotionRecord) []models.EmotionRecord

	// MergeConversations combines conversations by ID, merging message lists
	// ID-deduplicating and first-seen-wins, re-sorted ascending by timestamp.
	// The conversation collection is sorted descending by UpdatedAt.
	MergeConversations(existing, incoming []models.Conversation) []models.Conversation

	// MergeProfile returns incoming when present, otherwise existing.
	// Whole-document replace, no field merge.
	MergeProfile(existing, incoming *models.Profile) *models.Profile

	// MergeAnalytics returns incoming when present, otherwise existing.
	MergeAnalytics(existing, incoming *models.AnalyticsSnapshot) *models.AnalyticsSnapshot
}

// DeltaFetcher is the incremental sync protocol: one delta request with
// retries, returning the normalized change set.
type DeltaFetcher interface {
	// Fetch requests everything changed since the cursor, restricted to
	// dataTypes, retrying transport and server-envelope failures with capped
	// exponential backoff up to maxRetries extra attempts. An empty delta is
	// a successful no-op.
	Fetch(ctx context.Context, since time.Time, dataTypes []models.DataType, maxRetries int) (models.Delta, error)
}

// MutationQueue is the offline write queue service.
type MutationQueue interface {
	// Enqueue durably parks a failed write for replay.
	Enqueue(ctx context.Context, endpoint, method string, payload json.RawMessage, priority models.MutationPriority) error

	// Process replays pending mutations in priority order then insertion
	// order. Returned strings describe replay failures; mutations past the
	// replay cap are reported here and never silently dropped.
	Process(ctx context.Context) []string

	// Pending returns how many mutations await replay.
	Pending(ctx context.Context) (int, error)
}

// SyncJob is the periodic background sync ticker.
type SyncJob interface {
	// Start launches the ticker. Calling Start on a running job restarts it;
	// no timers are leaked.
	Start(ctx context.Context, interval time.Duration)

	// Stop cancels the ticker and blocks until the goroutine exits. Safe to
	// call when the job is not running.
	Stop()
}

// ReconnectWatcher listens for connectivity transitions and triggers a sync
// with queue replay when the device comes back online.
type ReconnectWatcher interface {
	// Start launches the watcher goroutine. Calling Start on a running
	// watcher restarts it.
	Start(ctx context.Context)

	// Stop cancels the watcher and blocks until the goroutine exits.
	Stop()
}

// ConnectivityMonitor is the surface of the host's reachability collaborator.
// The engine only reacts to its events; it never opens sockets itself.
type ConnectivityMonitor interface {
	// Online reports the current connectivity state.
	Online() bool

	// Changes emits the connectivity state on every transition.
	Changes() <-chan bool
}

// Clock abstracts time for testability. Production code uses [SystemClock].
type Clock interface {
	Now() time.Time
}

// SystemClock is the real-time [Clock].
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
