package syncengine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evermood/syncengine/models"
)

type staticTokens struct{ userID, token string }

func (s staticTokens) UserID() string { return s.userID }
func (s staticTokens) Token() string  { return s.token }

type staticMonitor struct{ ch chan bool }

func (m *staticMonitor) Online() bool         { return true }
func (m *staticMonitor) Changes() <-chan bool { return m.ch }

// syncServer is a minimal fake backend: one delta endpoint plus a recorder
// for replayed writes.
type syncServer struct {
	mu     sync.Mutex
	writes []string
	delta  string
}

func (s *syncServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		if r.Method == http.MethodGet && r.URL.Path == "/api/sync/changes" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, s.delta)
			return
		}

		s.mu.Lock()
		s.writes = append(s.writes, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
}

func newTestEngine(t *testing.T, server *syncServer) *Engine {
	t.Helper()

	srv := httptest.NewServer(server.handler(t))
	t.Cleanup(srv.Close)

	t.Setenv("ADAPTER_ADDRESS", srv.URL)
	t.Setenv("STORAGE_DB_DSN", filepath.Join(t.TempDir(), "sync.db"))
	t.Setenv("SYNC_BACKOFF_BASE", "1ms")
	t.Setenv("SYNC_BACKOFF_CAP", "5ms")

	engine, err := New(staticTokens{userID: "u1", token: "test-token"}, &staticMonitor{ch: make(chan bool)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	return engine
}

func TestEngine_TriggerSync_EndToEnd(t *testing.T) {
	server := &syncServer{delta: `{
		"success": true,
		"data": {
			"timestamp": "2026-03-01T12:00:00Z",
			"changes": {
				"emotions": [{"id":"e1","emotion":"calm","intensity":2,"timestamp":"2026-03-01T11:00:00Z"}]
			}
		}
	}`}
	engine := newTestEngine(t, server)

	res := engine.TriggerSync(context.Background(), models.SyncOptions{})

	require.True(t, res.Success, "sync errors: %v", res.Errors)
	require.Contains(t, res.SyncedData, models.DataTypeEmotions)

	st, err := engine.GetSyncStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), st.LastSync)
	assert.False(t, st.IsSyncing)
	assert.Equal(t, 1, st.Stats.SuccessfulSyncs)
}

func TestEngine_SyncedDataSurvivesRestart(t *testing.T) {
	server := &syncServer{delta: `{
		"success": true,
		"data": {
			"timestamp": "2026-03-01T12:00:00Z",
			"changes": {"emotions": [{"id":"e1","emotion":"calm","timestamp":"2026-03-01T11:00:00Z"}]}
		}
	}`}

	srv := httptest.NewServer(server.handler(t))
	t.Cleanup(srv.Close)

	dsn := filepath.Join(t.TempDir(), "sync.db")
	t.Setenv("ADAPTER_ADDRESS", srv.URL)
	t.Setenv("STORAGE_DB_DSN", dsn)

	tokens := staticTokens{userID: "u1", token: "test-token"}

	first, err := New(tokens, &staticMonitor{ch: make(chan bool)})
	require.NoError(t, err)
	res := first.TriggerSync(context.Background(), models.SyncOptions{})
	require.True(t, res.Success, "sync errors: %v", res.Errors)
	require.NoError(t, first.Close())

	// a fresh engine over the same database sees the advanced cursor
	second, err := New(tokens, &staticMonitor{ch: make(chan bool)})
	require.NoError(t, err)
	defer second.Close()

	st, err := second.GetSyncStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), st.LastSync)
}

func TestEngine_OfflineQueueReplay(t *testing.T) {
	server := &syncServer{delta: `{"success":true,"data":{"timestamp":"2026-03-01T12:00:00Z"}}`}
	engine := newTestEngine(t, server)
	ctx := context.Background()

	payload := json.RawMessage(`{"emotion":"calm","intensity":2}`)
	require.NoError(t, engine.EnqueueMutation(ctx, "/api/emotions", http.MethodPost, payload, models.PriorityHigh))
	require.NoError(t, engine.EnqueueMutation(ctx, "/api/profile", http.MethodPut, nil, models.PriorityNormal))

	n, err := engine.PendingMutations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res := engine.TriggerSync(ctx, models.SyncOptions{IncludeOfflineQueue: true})
	require.True(t, res.Success, "sync errors: %v", res.Errors)

	server.mu.Lock()
	writes := append([]string(nil), server.writes...)
	server.mu.Unlock()
	assert.Equal(t, []string{"POST /api/emotions", "PUT /api/profile"}, writes, "high priority replays first")

	n, err = engine.PendingMutations(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEngine_StartStop(t *testing.T) {
	server := &syncServer{delta: `{"success":true,"data":{"timestamp":"2026-03-01T12:00:00Z"}}`}
	engine := newTestEngine(t, server)

	engine.StartWithInterval(context.Background(), time.Hour)
	engine.Stop()

	// Stop is idempotent
	assert.NotPanics(t, func() { engine.Stop() })
}
