package config

import "errors"

// Validation errors returned by [EngineConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid transport settings
	// (for example, missing base URL or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an empty DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidSyncConfigs indicates invalid sync cycle settings
	// (for example, a zero interval or a backoff cap below the base).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidQueueConfigs indicates invalid offline queue settings
	// (for example, a non-positive replay cap).
	ErrInvalidQueueConfigs = errors.New("invalid queue configuration")
)
