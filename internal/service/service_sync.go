// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Evermood Labs

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/evermood/syncengine/internal/adapter"
	"github.com/evermood/syncengine/internal/logger"
	"github.com/evermood/syncengine/internal/store"
	"github.com/evermood/syncengine/models"
)

type syncService struct {
	kv      store.KeyValueStore
	fetcher DeltaFetcher
	merger  MergeService
	queue   MutationQueue
	tokens  adapter.TokenSource
	clock   Clock

	staleFlagTimeout time.Duration

	logger *logger.Logger

	// mu is the single-flight guard. TryLock instead of Lock: a concurrent
	// trigger is rejected, never queued.
	mu sync.Mutex
}

// NewSyncService constructs the sync orchestrator. It is the sole writer of
// the per-user [models.SyncState]; every collaborator is injected so tests
// can substitute clock, transport, and storage.
func NewSyncService(
	kv store.KeyValueStore,
	fetcher DeltaFetcher,
	merger MergeService,
	queue MutationQueue,
	tokens adapter.TokenSource,
	clock Clock,
	staleFlagTimeout time.Duration,
	logger *logger.Logger,
) SyncEngine {
	return &syncService{
		kv:               kv,
		fetcher:          fetcher,
		merger:           merger,
		queue:            queue,
		tokens:           tokens,
		clock:            clock,
		staleFlagTimeout: staleFlagTimeout,
		logger:           logger,
	}
}

func stateKey(userID string) string {
	return "sync_state_" + userID
}

func dataKey(t models.DataType, userID string) string {
	return fmt.Sprintf("%s_data_%s", t, userID)
}

// epoch is the cursor value forcing a full resync.
func epoch() time.Time {
	return time.Unix(0, 0).UTC()
}

// TriggerSync implements SyncEngine.
//
// The cycle: mark in-flight, record the attempt, clear previous errors,
// optionally drain the offline queue (drain failures are recorded, never
// abort), fetch the delta since the cursor, merge per entity kind, persist
// merged collections, then advance the cursor to the server-reported
// timestamp. The in-flight flag is cleared on every path.
func (s *syncService) TriggerSync(ctx context.Context, opts models.SyncOptions) models.SyncResult {
	if !s.mu.TryLock() {
		return models.SyncResult{Success: false, Errors: []string{ErrSyncInProgress.Error()}}
	}
	defer s.mu.Unlock()

	userID := s.tokens.UserID()
	if userID == "" {
		return models.SyncResult{Success: false, Errors: []string{ErrNoUser.Error()}}
	}

	if len(opts.DataTypes) == 0 {
		opts.DataTypes = models.AllDataTypes()
	}

	st := s.loadState(ctx, userID)
	st.IsSyncing = true
	st.LastSyncAttempt = s.clock.Now().UTC()
	st.SyncErrors = nil
	s.saveState(ctx, userID, st)

	result := models.SyncResult{SyncedData: make(map[models.DataType]any)}

	defer func() {
		st.IsSyncing = false
		st.SyncErrors = append(st.SyncErrors, result.Errors...)
		st.Stats.TotalSyncs++
		if result.Success {
			st.Stats.SuccessfulSyncs++
			st.Stats.DataTypesSynced += len(result.SyncedData)
			if result.Timestamp.After(st.LastSync) {
				st.LastSync = result.Timestamp
			}
		} else {
			st.Stats.FailedSyncs++
		}
		s.saveState(ctx, userID, st)

		s.logger.Info().
			Bool("success", result.Success).
			Int("kinds", len(result.SyncedData)).
			Int("errors", len(result.Errors)).
			Time("cursor", st.LastSync).
			Msg("sync cycle finished")
	}()

	s.runCycle(ctx, userID, opts, st.LastSync, &result)
	return result
}

func (s *syncService) runCycle(ctx context.Context, userID string, opts models.SyncOptions, lastSync time.Time, result *models.SyncResult) {
	if opts.IncludeOfflineQueue {
		if failures := s.queue.Process(ctx); len(failures) > 0 {
			s.logger.Warn().Strs("failures", failures).Msg("offline queue drain reported failures")
			result.Errors = append(result.Errors, failures...)
		}
	}

	since := lastSync
	if opts.ForceSync || since.IsZero() {
		since = epoch()
	}

	delta, err := s.fetcher.Fetch(ctx, since, opts.DataTypes, opts.MaxRetries)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	// The fetch succeeded; an empty delta is a successful no-op.
	result.Success = true
	result.Timestamp = delta.Timestamp

	if delta.Empty() {
		return
	}

	for _, t := range opts.DataTypes {
		if !delta.Has(t) {
			continue
		}
		if err = s.applyKind(ctx, userID, t, delta, result); err != nil {
			result.Success = false
			result.Errors = append(result.Errors, err.Error())
		}
	}
}

// applyKind merges and persists one entity kind of the delta.
func (s *syncService) applyKind(ctx context.Context, userID string, t models.DataType, delta models.Delta, result *models.SyncResult) error {
	key := dataKey(t, userID)

	switch t {
	case models.DataTypeEmotions:
		var existing []models.EmotionRecord
		s.loadEntity(ctx, key, &existing)
		for _, rec := range delta.Emotions {
			for _, cur := range existing {
				if cur.ID == rec.ID && !cur.Timestamp.Equal(rec.Timestamp) {
					result.Conflicts = append(result.Conflicts, fmt.Sprintf("emotion %s resolved by last-write-wins", rec.ID))
				}
			}
		}
		merged := s.merger.MergeEmotions(existing, delta.Emotions)
		if err := s.saveEntity(ctx, key, merged); err != nil {
			return err
		}
		result.SyncedData[t] = merged

	case models.DataTypeConversations:
		var existing []models.Conversation
		s.loadEntity(ctx, key, &existing)
		merged := s.merger.MergeConversations(existing, delta.Conversations)
		if err := s.saveEntity(ctx, key, merged); err != nil {
			return err
		}
		result.SyncedData[t] = merged

	case models.DataTypeProfile:
		var existing *models.Profile
		s.loadEntity(ctx, key, &existing)
		merged := s.merger.MergeProfile(existing, delta.Profile)
		if err := s.saveEntity(ctx, key, merged); err != nil {
			return err
		}
		result.SyncedData[t] = merged

	case models.DataTypeAnalytics:
		var existing *models.AnalyticsSnapshot
		s.loadEntity(ctx, key, &existing)
		merged := s.merger.MergeAnalytics(existing, delta.Analytics)
		if err := s.saveEntity(ctx, key, merged); err != nil {
			return err
		}
		result.SyncedData[t] = merged
	}

	return nil
}

// ForceFullSync implements SyncEngine: epoch cursor, all kinds, queue drain.
func (s *syncService) ForceFullSync(ctx context.Context) models.SyncResult {
	return s.TriggerSync(ctx, models.SyncOptions{
		DataTypes:           models.AllDataTypes(),
		ForceSync:           true,
		IncludeOfflineQueue: true,
	})
}

// GetSyncStatus implements SyncEngine. Stale-flag recovery is applied to the
// returned value but only TriggerSync persists state.
func (s *syncService) GetSyncStatus(ctx context.Context) (models.SyncState, error) {
	userID := s.tokens.UserID()
	if userID == "" {
		return models.SyncState{}, ErrNoUser
	}
	return s.loadState(ctx, userID), nil
}

// loadState reads the persisted per-user state, falling back to zero-value
// defaults for first use or a corrupted record. A persisted in-flight flag
// older than staleFlagTimeout is a crash leftover and is reset so the
// engine does not deadlock itself after an unclean shutdown.
func (s *syncService) loadState(ctx context.Context, userID string) models.SyncState {
	var st models.SyncState

	raw, err := s.kv.Get(ctx, stateKey(userID))
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			s.logger.Warn().Err(err).Str("user", userID).Msg("failed to load sync state, starting fresh")
		}
		return st
	}

	if err = json.Unmarshal([]byte(raw), &st); err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("corrupted sync state, starting fresh")
		return models.SyncState{}
	}

	if st.IsSyncing && s.clock.Now().Sub(st.LastSyncAttempt) > s.staleFlagTimeout {
		s.logger.Warn().Time("last_attempt", st.LastSyncAttempt).Msg("resetting stale in-flight flag")
		st.IsSyncing = false
	}

	return st
}

func (s *syncService) saveState(ctx context.Context, userID string, st models.SyncState) {
	raw, err := json.Marshal(st)
	if err != nil {
		s.logger.Error().Err(err).Str("user", userID).Msg("failed to encode sync state")
		return
	}
	if err = s.kv.Set(ctx, stateKey(userID), string(raw)); err != nil {
		s.logger.Error().Err(err).Str("user", userID).Msg("failed to persist sync state")
	}
}

// loadEntity decodes a stored collection into out. Absent and undecodable
// values both leave out untouched: an unexpected local shape must degrade to
// "nothing stored yet", never abort the cycle.
func (s *syncService) loadEntity(ctx context.Context, key string, out any) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to load stored entity")
		}
		return
	}

	if err = json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("corrupted stored entity, treating as empty")
	}
}

func (s *syncService) saveEntity(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode entity for %s: %w", key, err)
	}
	if err = s.kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("persist entity for %s: %w", key, err)
	}
	return nil
}
