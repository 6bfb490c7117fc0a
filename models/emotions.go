package models

import "time"

// EmotionRecord is a single emotion log entry. IDs are unique within a
// user's collection; on merge the record with the strictly later timestamp
// wins for a given ID.
type EmotionRecord struct {
	// ID is the client-generated unique identifier of the record.
	ID string `json:"id"`

	// Emotion is the logged emotion label (e.g. "calm", "anxious").
	Emotion string `json:"emotion"`

	// Intensity is the user-reported strength of the emotion, 1–10.
	Intensity int `json:"intensity"`

	// Note is optional free-form text attached to the entry.
	Note string `json:"note,omitempty"`

	// Timestamp is when the emotion was logged. It is both the merge
	// tie-breaker and the feed sort key (descending, newest first).
	Timestamp time.Time `json:"timestamp"`
}
