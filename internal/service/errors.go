package service

import "errors"

var (
	// ErrSyncInProgress is returned by TriggerSync when another cycle holds
	// the single-flight guard. The message is part of the engine's contract
	// with host UI code, which matches on it verbatim.
	ErrSyncInProgress = errors.New("Sync already in progress")

	// ErrNoUser is returned when the auth collaborator reports nobody is
	// signed in; syncing without a user namespace would leak data across
	// accounts.
	ErrNoUser = errors.New("no signed-in user")
)
