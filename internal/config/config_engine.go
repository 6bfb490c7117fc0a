package config

import (
	"fmt"
	"time"
)

// EngineAdapter holds network settings used by the engine transport layer.
type EngineAdapter struct {
	// HTTPAddress is the base URL of the remote sync API.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound requests.
	RequestTimeout time.Duration
}

// EngineDB contains local database connection settings for the engine.
type EngineDB struct {
	// DSN is the SQLite connection string used by the on-device store.
	DSN string
}

// EngineStorage groups engine storage backend settings.
type EngineStorage struct {
	// DB holds local database settings.
	DB EngineDB
}

// EngineSync contains sync cycle scheduling and retry settings.
type EngineSync struct {
	// Interval defines how often the auto-sync job should run.
	Interval time.Duration
	// MaxRetries is the default delta-fetch retry budget.
	MaxRetries int
	// BackoffBase is the first retry delay.
	BackoffBase time.Duration
	// BackoffCap bounds retry delay growth.
	BackoffCap time.Duration
	// StaleFlagTimeout is the crash-recovery threshold for a persisted
	// in-flight flag.
	StaleFlagTimeout time.Duration
}

// EngineQueue contains offline mutation queue settings.
type EngineQueue struct {
	// MaxReplayAttempts caps replays of a queued mutation before it is
	// declared permanently failed.
	MaxReplayAttempts int
}

// EngineConfig is the top-level engine configuration assembled from
// [StructuredConfig].
type EngineConfig struct {
	// Adapter contains remote endpoint addresses and timeouts.
	Adapter EngineAdapter
	// Storage contains on-device storage settings.
	Storage EngineStorage
	// Sync contains sync cycle settings.
	Sync EngineSync
	// Queue contains offline queue settings.
	Queue EngineQueue
}

// GetEngineConfig builds and validates an engine-specific config view from
// the merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the engine runtime, and validates the resulting [EngineConfig].
func GetEngineConfig() (*EngineConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	engineCfg := &EngineConfig{
		Adapter: EngineAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: EngineStorage{
			DB: EngineDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Sync: EngineSync{
			Interval:         cfg.Sync.Interval,
			MaxRetries:       cfg.Sync.MaxRetries,
			BackoffBase:      cfg.Sync.BackoffBase,
			BackoffCap:       cfg.Sync.BackoffCap,
			StaleFlagTimeout: cfg.Sync.StaleFlagTimeout,
		},
		Queue: EngineQueue{MaxReplayAttempts: cfg.Queue.MaxReplayAttempts},
	}

	return engineCfg, engineCfg.validate()
}
