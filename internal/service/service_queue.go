package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/evermood/syncengine/internal/adapter"
	"github.com/evermood/syncengine/internal/logger"
	"github.com/evermood/syncengine/internal/store"
	"github.com/evermood/syncengine/models"
)

type mutationQueue struct {
	repo      store.QueueRepository
	transport adapter.SyncTransport
	clock     Clock

	maxReplayAttempts int

	logger *logger.Logger
}

// NewMutationQueue constructs the offline mutation queue service.
// maxReplayAttempts is the deliberate cap on replays of a single mutation;
// past it the mutation is marked dead and surfaced through the returned
// error strings, never silently dropped.
func NewMutationQueue(repo store.QueueRepository, transport adapter.SyncTransport, clock Clock, maxReplayAttempts int, logger *logger.Logger) MutationQueue {
	return &mutationQueue{
		repo:              repo,
		transport:         transport,
		clock:             clock,
		maxReplayAttempts: maxReplayAttempts,
		logger:            logger,
	}
}

// Enqueue implements MutationQueue. Called whenever a direct write failed on
// a network error or the host signalled the device offline; the write is
// stored verbatim so replay needs no entity-specific knowledge.
func (q *mutationQueue) Enqueue(ctx context.Context, endpoint, method string, payload json.RawMessage, priority models.MutationPriority) error {
	m := models.QueuedMutation{
		ID:        uuid.NewString(),
		Endpoint:  endpoint,
		Method:    method,
		Payload:   payload,
		Priority:  priority,
		CreatedAt: q.clock.Now().UTC(),
	}

	if err := q.repo.Insert(ctx, m); err != nil {
		return fmt.Errorf("enqueue mutation for %s %s: %w", method, endpoint, err)
	}

	q.logger.Info().Str("id", m.ID).Str("endpoint", endpoint).Int("priority", int(priority)).Msg("write queued for offline replay")
	return nil
}

// Process implements MutationQueue. Replays every pending mutation once, in
// priority order then insertion order. A successful replay removes the item;
// a failed one increments its retry count and leaves it queued, until the
// replay cap moves it to the dead state. Every failure is reported back so
// the orchestrator can surface it via SyncErrors.
func (q *mutationQueue) Process(ctx context.Context) []string {
	items, err := q.repo.ListPending(ctx)
	if err != nil {
		return []string{fmt.Sprintf("list queued mutations: %v", err)}
	}
	if len(items) == 0 {
		return nil
	}

	q.logger.Debug().Int("pending", len(items)).Msg("draining offline mutation queue")

	var failures []string
	for _, m := range items {
		if err = ctx.Err(); err != nil {
			failures = append(failures, fmt.Sprintf("queue drain aborted: %v", err))
			break
		}

		err = q.transport.Execute(ctx, m.Method, m.Endpoint, m.Payload)
		if err == nil {
			if delErr := q.repo.Delete(ctx, m.ID); delErr != nil {
				failures = append(failures, fmt.Sprintf("remove replayed mutation %s: %v", m.ID, delErr))
			}
			continue
		}

		if m.RetryCount+1 >= q.maxReplayAttempts {
			if deadErr := q.repo.MarkDead(ctx, m.ID); deadErr != nil {
				failures = append(failures, fmt.Sprintf("mark mutation %s dead: %v", m.ID, deadErr))
			}
			failures = append(failures, fmt.Sprintf("mutation %s (%s %s) permanently failed after %d attempts: %v",
				m.ID, m.Method, m.Endpoint, m.RetryCount+1, err))
			q.logger.Error().Err(err).Str("id", m.ID).Msg("queued mutation exceeded replay cap")
			continue
		}

		if retryErr := q.repo.IncrementRetry(ctx, m.ID); retryErr != nil {
			failures = append(failures, fmt.Sprintf("record retry for mutation %s: %v", m.ID, retryErr))
		}
		failures = append(failures, fmt.Sprintf("replay mutation %s (%s %s): %v", m.ID, m.Method, m.Endpoint, err))
	}

	return failures
}

// Pending implements MutationQueue.
func (q *mutationQueue) Pending(ctx context.Context) (int, error) {
	return q.repo.CountPending(ctx)
}
