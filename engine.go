// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Evermood Labs

// Package syncengine is the embeddable client-side synchronization engine:
// incremental delta fetch with capped exponential backoff, per-entity-kind
// conflict resolution, a durable offline mutation queue, and a periodic
// background sync job. The host application supplies authentication and
// connectivity; the engine owns local persistence and the sync protocol.
package syncengine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evermood/syncengine/internal/adapter"
	"github.com/evermood/syncengine/internal/config"
	"github.com/evermood/syncengine/internal/logger"
	"github.com/evermood/syncengine/internal/service"
	"github.com/evermood/syncengine/internal/store"
	"github.com/evermood/syncengine/models"
)

// TokenSource supplies the signed-in user and their bearer token. The host
// application owns authentication; the engine only attaches what it is given.
type TokenSource = adapter.TokenSource

// ConnectivityMonitor reports device reachability. The host bridges its
// platform network APIs into this interface.
type ConnectivityMonitor = service.ConnectivityMonitor

// Engine is the assembled sync engine. Construct it with New, start the
// background workers with Start, and release resources with Close.
type Engine struct {
	cfg      *config.EngineConfig
	log      *logger.Logger
	storages *store.Storages
	services *service.Services
}

// New assembles an Engine from environment and JSON file configuration.
// It opens (and migrates) the local SQLite database, so the returned Engine
// must be Closed when no longer needed.
func New(tokens TokenSource, monitor ConnectivityMonitor) (*Engine, error) {
	cfg, err := config.GetEngineConfig()
	if err != nil {
		return nil, fmt.Errorf("load engine config: %w", err)
	}

	log := logger.NewLogger("syncengine")

	storages, err := store.NewStorages(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}

	transport, err := adapter.NewHTTPSyncTransport(cfg.Adapter, tokens, log)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("create sync transport: %w", err)
	}

	return &Engine{
		cfg:      cfg,
		log:      log,
		storages: storages,
		services: service.NewServices(storages, transport, tokens, monitor, *cfg, log),
	}, nil
}

// TriggerSync runs one sync cycle. A concurrent call while a cycle is in
// flight is rejected with the error "Sync already in progress" and changes
// nothing.
func (e *Engine) TriggerSync(ctx context.Context, opts models.SyncOptions) models.SyncResult {
	return e.services.Engine.TriggerSync(ctx, opts)
}

// ForceFullSync re-fetches every entity kind from the epoch, draining the
// offline queue first. Wire this to pull-to-refresh.
func (e *Engine) ForceFullSync(ctx context.Context) models.SyncResult {
	return e.services.Engine.ForceFullSync(ctx)
}

// GetSyncStatus returns the persisted sync state of the signed-in user.
func (e *Engine) GetSyncStatus(ctx context.Context) (models.SyncState, error) {
	return e.services.Engine.GetSyncStatus(ctx)
}

// EnqueueMutation durably parks a write that could not reach the server; it
// is replayed on the next cycle that includes the offline queue.
func (e *Engine) EnqueueMutation(ctx context.Context, endpoint, method string, payload json.RawMessage, priority models.MutationPriority) error {
	return e.services.Queue.Enqueue(ctx, endpoint, method, payload, priority)
}

// ProcessQueue replays pending offline mutations immediately, outside a sync
// cycle. Returned strings describe replay failures.
func (e *Engine) ProcessQueue(ctx context.Context) []string {
	return e.services.Queue.Process(ctx)
}

// PendingMutations reports how many offline mutations await replay.
func (e *Engine) PendingMutations(ctx context.Context) (int, error) {
	return e.services.Queue.Pending(ctx)
}

// Start launches the background workers: the periodic sync job on the
// configured interval and the reconnect watcher. Both run until Stop or
// until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	e.services.Job.Start(ctx, e.cfg.Sync.Interval)
	e.services.Reconnect.Start(ctx)
}

// StartWithInterval is Start with an explicit sync interval, overriding the
// configured one.
func (e *Engine) StartWithInterval(ctx context.Context, interval time.Duration) {
	e.services.Job.Start(ctx, interval)
	e.services.Reconnect.Start(ctx)
}

// StartAutoSync launches only the periodic sync job, without the reconnect
// watcher. A non-positive interval uses the configured one.
func (e *Engine) StartAutoSync(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = e.cfg.Sync.Interval
	}
	e.services.Job.Start(ctx, interval)
}

// StopAutoSync stops the periodic sync job.
func (e *Engine) StopAutoSync() {
	e.services.Job.Stop()
}

// Stop halts the background workers and blocks until their goroutines exit.
// An in-flight sync cycle is not interrupted.
func (e *Engine) Stop() {
	e.services.Job.Stop()
	e.services.Reconnect.Stop()
}

// Close stops the background workers and closes the local database.
func (e *Engine) Close() error {
	e.Stop()
	return e.storages.Close()
}
