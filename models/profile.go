package models

import (
	"encoding/json"
	"time"
)

// Profile is the single per-user profile document. There is no field-level
// merge: an incoming profile replaces the stored one wholesale.
type Profile struct {
	UserID      string            `json:"user_id"`
	Name        string            `json:"name,omitempty"`
	Email       string            `json:"email,omitempty"`
	Preferences map[string]string `json:"preferences,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// AnalyticsSnapshot is the server-computed analytics document cached on the
// device. Like Profile it is replaced wholesale on each successful sync;
// Metrics stays raw because the engine never interprets it.
type AnalyticsSnapshot struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Period      string          `json:"period,omitempty"`
	Metrics     json.RawMessage `json:"metrics,omitempty"`
}
