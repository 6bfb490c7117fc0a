package models

import "time"

// Conversation is a chat thread owning an ordered list of messages.
// Conversation IDs are unique per user; message IDs are unique within their
// conversation. Collections are sorted descending by UpdatedAt so the most
// recently active thread renders first.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single chat message. Message merge is ID-deduplicating and
// first-seen wins: an incoming message never replaces an existing one with
// the same ID. Merged lists are re-sorted ascending by timestamp, transcript
// order.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
