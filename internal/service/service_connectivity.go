package service

import (
	"context"
	"sync"

	"github.com/evermood/syncengine/internal/logger"
	"github.com/evermood/syncengine/models"
)

type reconnectWatcher struct {
	engine  SyncEngine
	monitor ConnectivityMonitor
	logger  *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReconnectWatcher creates a reconnectWatcher over the host's connectivity
// monitor. The watcher is idle until Start is called.
func NewReconnectWatcher(engine SyncEngine, monitor ConnectivityMonitor, logger *logger.Logger) ReconnectWatcher {
	return &reconnectWatcher{engine: engine, monitor: monitor, logger: logger}
}

// Start implements ReconnectWatcher. Each offline-to-online transition
// triggers one sync cycle with the offline queue included; going offline is
// only recorded. The goroutine exits when ctx is cancelled, Stop is called,
// or the monitor closes its channel.
func (w *reconnectWatcher) Start(ctx context.Context) {
	w.Stop()

	w.mu.Lock()
	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		online := w.monitor.Online()

		for {
			select {
			case <-watchCtx.Done():
				return
			case next, ok := <-w.monitor.Changes():
				if !ok {
					return
				}
				if next && !online {
					w.logger.Info().Msg("connectivity restored, replaying offline queue")
					_ = w.engine.TriggerSync(watchCtx, models.SyncOptions{
						DataTypes:           models.AllDataTypes(),
						IncludeOfflineQueue: true,
					})
				}
				online = next
			}
		}
	}()
}

// Stop implements ReconnectWatcher.
func (w *reconnectWatcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}
