package store

import "errors"

var (
	// ErrKeyNotFound is returned by [KeyValueStore.Get] for absent keys.
	ErrKeyNotFound = errors.New("key not found")

	// ErrMutationNotFound is returned when a queue operation references an
	// id that is no longer in the table.
	ErrMutationNotFound = errors.New("queued mutation not found")
)
