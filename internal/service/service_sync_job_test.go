package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evermood/syncengine/models"
)

// spyEngine counts TriggerSync calls and captures the last options.
type spyEngine struct {
	calls atomic.Int64

	mu       sync.Mutex
	lastOpts models.SyncOptions
	status   models.SyncState
	result   models.SyncResult
}

func (s *spyEngine) TriggerSync(_ context.Context, opts models.SyncOptions) models.SyncResult {
	s.calls.Add(1)
	s.mu.Lock()
	s.lastOpts = opts
	s.mu.Unlock()
	return s.result
}

func (s *spyEngine) ForceFullSync(ctx context.Context) models.SyncResult {
	return s.TriggerSync(ctx, models.SyncOptions{ForceSync: true})
}

func (s *spyEngine) GetSyncStatus(context.Context) (models.SyncState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, nil
}

func (s *spyEngine) opts() models.SyncOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOpts
}

// ── NewAutoSyncJob ───────────────────────────────────────────────────────────

func TestNewAutoSyncJob_ReturnsInterface(t *testing.T) {
	job := NewAutoSyncJob(&spyEngine{}, SystemClock{})
	require.NotNil(t, job)

	var _ SyncJob = job
}

// ── Start / Stop ─────────────────────────────────────────────────────────────

func TestAutoSyncJob_Start_TriggersBackgroundSync(t *testing.T) {
	spy := &spyEngine{}
	job := NewAutoSyncJob(spy, SystemClock{})

	// 10ms interval, ~5 ticks in 55ms
	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	got := spy.calls.Load()
	assert.GreaterOrEqual(t, got, int64(3), "TriggerSync should fire on each tick, fired: %d", got)

	opts := spy.opts()
	assert.Equal(t, models.BackgroundDataTypes(), opts.DataTypes, "background ticks sync the frequently changing kinds only")
	assert.True(t, opts.IncludeOfflineQueue)
}

func TestAutoSyncJob_SkipsTickAfterRecentSync(t *testing.T) {
	spy := &spyEngine{}
	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	// cursor moved "just now": every tick falls inside the interval window
	spy.status = models.SyncState{LastSync: clock.now}

	job := NewAutoSyncJob(spy, clock)
	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	assert.Zero(t, spy.calls.Load(), "a tick right after a manual sync is skipped")
}

func TestAutoSyncJob_Stop_StopsGoroutine(t *testing.T) {
	spy := &spyEngine{}
	job := NewAutoSyncJob(spy, SystemClock{})

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	callsAfterStop := spy.calls.Load()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, callsAfterStop, spy.calls.Load(), "no new calls after Stop")
}

func TestAutoSyncJob_Stop_BeforeStart_NoPanic(t *testing.T) {
	job := NewAutoSyncJob(&spyEngine{}, SystemClock{})

	assert.NotPanics(t, func() { job.Stop() })
}

func TestAutoSyncJob_DoubleStop_NoPanic(t *testing.T) {
	job := NewAutoSyncJob(&spyEngine{}, SystemClock{})

	job.Start(context.Background(), 10*time.Millisecond)
	job.Stop()

	assert.NotPanics(t, func() { job.Stop() })
}

func TestAutoSyncJob_Start_DefaultInterval(t *testing.T) {
	spy := &spyEngine{}
	job := NewAutoSyncJob(spy, SystemClock{})
	ctx, cancel := context.WithCancel(context.Background())

	// interval <= 0 falls back to 5 minutes: no calls within 20ms
	job.Start(ctx, 0)
	time.Sleep(20 * time.Millisecond)
	cancel()
	job.Stop()

	assert.Zero(t, spy.calls.Load())
}

func TestAutoSyncJob_Restart_StopsPrevious(t *testing.T) {
	spy := &spyEngine{}
	job := NewAutoSyncJob(spy, SystemClock{})

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	callsBefore := spy.calls.Load()
	assert.Greater(t, callsBefore, int64(0))

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	assert.Greater(t, spy.calls.Load(), callsBefore, "the restarted job keeps ticking")
}

func TestAutoSyncJob_ContextCancel_StopsJob(t *testing.T) {
	spy := &spyEngine{}
	job := NewAutoSyncJob(spy, SystemClock{})
	ctx, cancel := context.WithCancel(context.Background())

	job.Start(ctx, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop hung after context cancellation")
	}
}

func TestAutoSyncJob_SyncFailure_DoesNotStopJob(t *testing.T) {
	spy := &spyEngine{result: models.SyncResult{Success: false, Errors: []string{"network down"}}}
	job := NewAutoSyncJob(spy, SystemClock{})

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	got := spy.calls.Load()
	assert.GreaterOrEqual(t, got, int64(3), "failed cycles must not kill the ticker: %d", got)
}
