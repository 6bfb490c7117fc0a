package models

import "time"

// SyncState is the per-user sync bookkeeping record. It is persisted under
// a namespaced key ("sync_state_<userID>") and survives restarts. The sync
// orchestrator is its sole writer; everything else reads it through
// GetSyncStatus.
type SyncState struct {
	// LastSync is the monotonic watermark: the server-reported timestamp of
	// the last successfully applied delta. Zero value means "never synced";
	// the next fetch starts from the epoch.
	LastSync time.Time `json:"last_sync"`

	// IsSyncing is the persisted single-flight flag. A stale true value
	// (crash mid-cycle) is reset on load once LastSyncAttempt is older than
	// the configured stale-flag timeout.
	IsSyncing bool `json:"is_syncing"`

	// LastSyncAttempt records when the most recent cycle started, whether or
	// not it succeeded.
	LastSyncAttempt time.Time `json:"last_sync_attempt"`

	// SyncErrors collects the error strings of the most recent cycle.
	// Cleared at the start of every cycle.
	SyncErrors []string `json:"sync_errors,omitempty"`

	// Stats accumulates counters across cycles.
	Stats SyncStats `json:"sync_stats"`
}

// SyncStats holds monotonically increasing sync counters.
type SyncStats struct {
	TotalSyncs      int `json:"total_syncs"`
	SuccessfulSyncs int `json:"successful_syncs"`
	FailedSyncs     int `json:"failed_syncs"`
	DataTypesSynced int `json:"data_types_synced"`
}

// SyncOptions controls a single TriggerSync invocation.
type SyncOptions struct {
	// DataTypes is the set of entity kinds to sync. Empty means all kinds.
	DataTypes []DataType

	// ForceSync, when true, ignores the cursor and fetches everything since
	// the epoch (full resync).
	ForceSync bool

	// IncludeOfflineQueue drains the offline mutation queue before fetching.
	IncludeOfflineQueue bool

	// MaxRetries bounds the delta-fetch retry loop. Zero or negative falls
	// back to the configured default.
	MaxRetries int
}

// SyncResult is the outcome of one sync cycle.
type SyncResult struct {
	// Success is true when the delta was fetched and every requested entity
	// kind was merged and persisted without error. Queue replay failures do
	// not clear it.
	Success bool

	// SyncedData maps each entity kind to the merged payload that was
	// actually written to local storage this cycle.
	SyncedData map[DataType]any

	// Conflicts lists informational descriptions of conflicts the merge
	// functions resolved.
	Conflicts []string

	// Errors lists everything that went wrong, including queue replay
	// failures that did not abort the cycle.
	Errors []string

	// Timestamp is the server-reported time of the delta. The cursor
	// advances to this value, never to the client clock.
	Timestamp time.Time
}
