package service

import (
	"github.com/evermood/syncengine/internal/adapter"
	"github.com/evermood/syncengine/internal/config"
	"github.com/evermood/syncengine/internal/logger"
	"github.com/evermood/syncengine/internal/store"
)

type Services struct {
	Engine   SyncEngine
	Merge    MergeService
	Fetcher  DeltaFetcher
	Queue    MutationQueue
	Job      SyncJob
	Reconnect ReconnectWatcher
}

func NewServices(
	storages *store.Storages,
	transport adapter.SyncTransport,
	tokens adapter.TokenSource,
	monitor ConnectivityMonitor,
	cfg config.EngineConfig,
	log *logger.Logger,
) *Services {
	clock := SystemClock{}

	merge := NewMergeService()
	fetcher := NewDeltaFetcher(transport, cfg.Sync.BackoffBase, cfg.Sync.BackoffCap, cfg.Sync.MaxRetries, log)
	queue := NewMutationQueue(storages.Queue, transport, clock, cfg.Queue.MaxReplayAttempts, log)
	engine := NewSyncService(storages.KV, fetcher, merge, queue, tokens, clock, cfg.Sync.StaleFlagTimeout, log)

	return &Services{
		Engine:   engine,
		Merge:    merge,
		Fetcher:  fetcher,
		Queue:    queue,
		Job:      NewAutoSyncJob(engine, clock),
		Reconnect: NewReconnectWatcher(engine, monitor, log),
	}
}
