package models

import (
	"encoding/json"
	"time"
)

// DeltaResponse is the wire envelope returned by the remote delta endpoint.
// The endpoint has two generations of clients in the field, so the body
// carries the per-type payloads either under "changes" (current) or "data"
// (legacy); normalization into [Delta] happens in exactly one place, the
// incremental sync protocol.
type DeltaResponse struct {
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	Data    *DeltaBody `json:"data,omitempty"`
}

// DeltaBody is the inner payload of a delta response. Exactly one of Changes
// or Data is populated; each entry is either the bare entity payload or the
// wrapped form {"updated": bool, "data": <payload>}.
type DeltaBody struct {
	Timestamp time.Time                  `json:"timestamp"`
	Changes   map[string]json.RawMessage `json:"changes,omitempty"`
	Data      map[string]json.RawMessage `json:"data,omitempty"`
}

// Delta is the normalized, decoded representation of a delta response. A nil
// collection or document means the server reported no change for that kind —
// an empty Delta is a successful no-op, not an error.
type Delta struct {
	Timestamp     time.Time
	Emotions      []EmotionRecord
	Conversations []Conversation
	Profile       *Profile
	Analytics     *AnalyticsSnapshot
}

// Empty reports whether the delta carries no changes at all.
func (d Delta) Empty() bool {
	return d.Emotions == nil && d.Conversations == nil && d.Profile == nil && d.Analytics == nil
}

// Has reports whether the delta carries a change for the given entity kind.
func (d Delta) Has(t DataType) bool {
	switch t {
	case DataTypeEmotions:
		return d.Emotions != nil
	case DataTypeConversations:
		return d.Conversations != nil
	case DataTypeProfile:
		return d.Profile != nil
	case DataTypeAnalytics:
		return d.Analytics != nil
	}
	return false
}
