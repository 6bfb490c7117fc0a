package service

import (
	"context"
	"sync"
	"time"

	"github.com/evermood/syncengine/models"
)

type autoSyncJob struct {
	engine SyncEngine
	clock  Clock

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAutoSyncJob creates an autoSyncJob that triggers a background sync on a
// ticker. The job is idle until Start is called.
func NewAutoSyncJob(engine SyncEngine, clock Clock) SyncJob {
	return &autoSyncJob{engine: engine, clock: clock}
}

// Start implements SyncJob. It stops any previously running job, then launches
// a background goroutine that syncs the background kinds every interval. If
// interval is zero or negative it defaults to 5 minutes. A tick is skipped
// when the cursor already moved within the last interval, so a recent manual
// sync resets the effective timer. The goroutine exits when ctx is cancelled
// or Stop is called.
func (j *autoSyncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.tick(jobCtx, interval)
			}
		}
	}()
}

func (j *autoSyncJob) tick(ctx context.Context, interval time.Duration) {
	if st, err := j.engine.GetSyncStatus(ctx); err == nil {
		if j.clock.Now().Sub(st.LastSync) < interval {
			return
		}
	}

	_ = j.engine.TriggerSync(ctx, models.SyncOptions{
		DataTypes:           models.BackgroundDataTypes(),
		IncludeOfflineQueue: true,
	})
}

// Stop implements SyncJob. It cancels the background goroutine's context and
// blocks until the goroutine has fully exited. Safe to call when the job is
// not running (no-op in that case).
func (j *autoSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
