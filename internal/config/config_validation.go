// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Evermood Labs

package config

// validate checks that the final merged [StructuredConfig] satisfies all
// engine invariants before it is used at startup.
//
// The structured config only needs internally consistent retry settings;
// presence checks for addresses and DSNs happen on the [EngineConfig] view,
// where it is known which components the host actually wires.
func (cfg *StructuredConfig) validate() error {
	if cfg.Sync.BackoffBase > cfg.Sync.BackoffCap && cfg.Sync.BackoffCap > 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}

func (cfg *EngineConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.Interval <= 0 || cfg.Sync.MaxRetries <= 0 ||
		cfg.Sync.BackoffBase <= 0 || cfg.Sync.BackoffCap < cfg.Sync.BackoffBase {
		return ErrInvalidSyncConfigs
	}

	if cfg.Queue.MaxReplayAttempts <= 0 {
		return ErrInvalidQueueConfigs
	}

	return nil
}
