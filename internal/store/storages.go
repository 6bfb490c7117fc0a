package store

import (
	"context"
	"fmt"

	"github.com/evermood/syncengine/internal/config"
	"github.com/evermood/syncengine/internal/logger"
)

// Storages groups the on-device storage repositories into a single value
// that can be passed around the service layer.
type Storages struct {
	// KV is the namespaced key-value store for merged entities and per-user
	// sync state.
	KV KeyValueStore

	// Queue is the durable offline mutation queue.
	Queue QueueRepository

	db *DB
}

// NewStorages initialises the on-device storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs and returns a [Storages] value wired to fresh key-value and
//     queue repositories.
//
// Returns an error if the database connection cannot be established or if
// migration fails.
func NewStorages(cfg config.EngineStorage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		KV:    NewKeyValueRepository(db, logger),
		Queue: NewQueueRepository(db, logger),
		db:    db,
	}, nil
}

// Close releases the underlying database handle.
func (s *Storages) Close() error {
	return s.db.Close()
}
