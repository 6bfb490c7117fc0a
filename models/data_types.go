package models

// DataType identifies one of the entity kinds the sync engine knows how to
// fetch, merge, and persist. The string values match the `types` query
// parameter of the remote delta endpoint and the local storage key prefixes.
type DataType string

const (
	// DataTypeProfile is the single per-user profile document.
	DataTypeProfile DataType = "profile"

	// DataTypeEmotions is the collection of emotion log records.
	DataTypeEmotions DataType = "emotions"

	// DataTypeConversations is the collection of chat conversations,
	// each owning an ordered list of messages.
	DataTypeConversations DataType = "conversations"

	// DataTypeAnalytics is the single per-user analytics snapshot
	// cached from the server.
	DataTypeAnalytics DataType = "analytics"
)

// AllDataTypes returns every entity kind, in the order a full sync
// processes them.
func AllDataTypes() []DataType {
	return []DataType{DataTypeProfile, DataTypeEmotions, DataTypeConversations, DataTypeAnalytics}
}

// BackgroundDataTypes returns the reduced subset synced by the periodic
// auto-sync job. Profile and analytics change rarely and are refreshed only
// by explicit full syncs.
func BackgroundDataTypes() []DataType {
	return []DataType{DataTypeEmotions, DataTypeConversations}
}

// Valid reports whether the value is one of the known entity kinds.
func (t DataType) Valid() bool {
	switch t {
	case DataTypeProfile, DataTypeEmotions, DataTypeConversations, DataTypeAnalytics:
		return true
	}
	return false
}
