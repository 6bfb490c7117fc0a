package models

import (
	"encoding/json"
	"time"
)

// MutationPriority orders offline replay: higher values drain first.
type MutationPriority int

const (
	// PriorityLow is for analytics cache refresh writes.
	PriorityLow MutationPriority = 0
	// PriorityNormal is for conversation and profile writes.
	PriorityNormal MutationPriority = 1
	// PriorityHigh is for emotion log writes, which the user expects to
	// land even after long offline stretches.
	PriorityHigh MutationPriority = 2
)

// Mutation statuses as stored in the queue table.
const (
	MutationStatusPending = "pending"
	MutationStatusDead    = "dead"
)

// QueuedMutation is a write that failed against the server (network error or
// explicit offline signal) and was parked for replay. It persists durably and
// survives process restarts.
type QueuedMutation struct {
	// ID is a generated UUID identifying the queue entry.
	ID string `json:"id"`

	// Endpoint is the original request path the write was headed for.
	Endpoint string `json:"endpoint"`

	// Method is the original HTTP method.
	Method string `json:"method"`

	// Payload is the original request body, replayed verbatim.
	Payload json.RawMessage `json:"payload"`

	// Priority orders replay ahead of insertion order.
	Priority MutationPriority `json:"priority"`

	// RetryCount is how many replays have failed so far. Past the configured
	// cap the mutation is marked dead and surfaced via SyncErrors.
	RetryCount int `json:"retry_count"`

	// CreatedAt is when the write was first queued.
	CreatedAt time.Time `json:"created_at"`
}
