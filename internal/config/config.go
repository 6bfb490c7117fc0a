// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Evermood Labs

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the sync
// engine. It aggregates all sub-configurations and is populated by merging
// values from environment variables, an optional JSON file, and built-in
// defaults.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Adapter holds the remote endpoint address and timeout settings used by
	// the HTTP transport.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds configuration for the on-device persistence backend.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds cursor, retry, and scheduling settings for the sync cycle.
	Sync Sync `envPrefix:"SYNC_"`

	// Queue holds offline mutation queue settings.
	Queue Queue `envPrefix:"QUEUE_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged below the values already
	// loaded from environment variables.
	// Populated via the CONFIG environment variable.
	JSONFilePath string `env:"CONFIG"`
}

// Adapter holds network settings for the outbound transport layer.
type Adapter struct {
	// HTTPAddress is the base URL of the remote sync API
	// (e.g. "https://api.evermood.dev").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single outbound
	// request before the client cancels it (e.g. "30s", "1m").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration for the on-device storage backend.
type Storage struct {
	// DB holds the local SQLite connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local database.
type DB struct {
	// DSN is the SQLite file path used to open the on-device database
	// (e.g. "/data/evermood/sync.db").
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Sync holds the scheduling and retry settings of the sync cycle.
type Sync struct {
	// Interval defines how often the auto-sync job fires.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// MaxRetries is the default delta-fetch retry budget when SyncOptions
	// does not specify one.
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// BackoffBase is the first retry delay; each subsequent retry doubles it.
	// Env: SYNC_BACKOFF_BASE
	BackoffBase time.Duration `env:"BACKOFF_BASE"`

	// BackoffCap bounds the retry delay growth.
	// Env: SYNC_BACKOFF_CAP
	BackoffCap time.Duration `env:"BACKOFF_CAP"`

	// StaleFlagTimeout is how old a persisted in-flight flag may be before
	// it is considered a crash leftover and reset on state load.
	// Env: SYNC_STALE_FLAG_TIMEOUT
	StaleFlagTimeout time.Duration `env:"STALE_FLAG_TIMEOUT"`
}

// Queue holds offline mutation queue settings.
type Queue struct {
	// MaxReplayAttempts is how many failed replays a queued mutation is
	// allowed before it is marked dead and surfaced through SyncErrors.
	// This is a deliberate configuration value, not an inferred default.
	// Env: QUEUE_MAX_REPLAY_ATTEMPTS
	MaxReplayAttempts int `env:"MAX_REPLAY_ATTEMPTS"`
}

// GetStructuredConfig loads, merges, and validates the engine configuration
// from all available sources in the following priority order (first source
// wins for non-zero fields):
//  1. Environment variables
//  2. JSON file (path resolved from source 1)
//  3. Built-in defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withJSON().
		withDefaults().
		build()
}
