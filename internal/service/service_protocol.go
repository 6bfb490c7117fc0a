package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/evermood/syncengine/internal/adapter"
	"github.com/evermood/syncengine/internal/logger"
	"github.com/evermood/syncengine/models"
)

type deltaFetcher struct {
	transport adapter.SyncTransport

	backoffBase       time.Duration
	backoffCap        time.Duration
	defaultMaxRetries int

	logger *logger.Logger
}

// NewDeltaFetcher constructs the incremental sync protocol on top of a
// transport. backoffBase is the first retry delay, doubled on every retry up
// to backoffCap; defaultMaxRetries is used when the caller passes a
// non-positive budget.
func NewDeltaFetcher(transport adapter.SyncTransport, backoffBase, backoffCap time.Duration, defaultMaxRetries int, logger *logger.Logger) DeltaFetcher {
	return &deltaFetcher{
		transport:         transport,
		backoffBase:       backoffBase,
		backoffCap:        backoffCap,
		defaultMaxRetries: defaultMaxRetries,
		logger:            logger,
	}
}

// newBackoff returns the retry schedule: delay before retry n is
// min(base * 2^n, cap).
func newBackoff(base, cap time.Duration) retry.Backoff {
	return retry.WithCappedDuration(cap, retry.NewExponential(base))
}

// Fetch implements DeltaFetcher. Transport failures and success=false
// envelopes are retried on the backoff schedule; a malformed 2xx body is a
// soft success with no data. The number of requests is at most
// maxRetries+1.
func (f *deltaFetcher) Fetch(ctx context.Context, since time.Time, dataTypes []models.DataType, maxRetries int) (models.Delta, error) {
	if maxRetries <= 0 {
		maxRetries = f.defaultMaxRetries
	}
	if len(dataTypes) == 0 {
		dataTypes = models.AllDataTypes()
	}

	var resp *models.DeltaResponse
	backoff := retry.WithMaxRetries(uint64(maxRetries), newBackoff(f.backoffBase, f.backoffCap))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := f.transport.FetchChanges(ctx, since, dataTypes)
		if err != nil {
			if errors.Is(err, adapter.ErrMalformedResponse) {
				f.logger.Warn().Err(err).Msg("delta body undecodable, treating as empty")
				resp = &models.DeltaResponse{Success: true}
				return nil
			}
			f.logger.Debug().Err(err).Time("since", since).Msg("delta request failed, will retry")
			return retry.RetryableError(err)
		}
		if !r.Success {
			err = fmt.Errorf("server rejected delta request: %s", r.Error)
			f.logger.Debug().Err(err).Msg("delta envelope failure, will retry")
			return retry.RetryableError(err)
		}

		resp = r
		return nil
	})
	if err != nil {
		return models.Delta{}, fmt.Errorf("fetch changes since %s: %w", since.UTC().Format(time.RFC3339), err)
	}

	return f.normalize(resp), nil
}

// normalize is the single place wire shape differences are resolved: the
// data-vs-changes envelope split and the bare-vs-{updated,data} per-entity
// wrapper both collapse into one models.Delta here, before any merge logic
// runs. An undecodable sub-payload drops that kind only.
func (f *deltaFetcher) normalize(resp *models.DeltaResponse) models.Delta {
	var delta models.Delta
	if resp == nil || resp.Data == nil {
		return delta
	}

	delta.Timestamp = resp.Data.Timestamp

	payloads := resp.Data.Changes
	if len(payloads) == 0 {
		payloads = resp.Data.Data
	}

	for kind, raw := range payloads {
		body, changed := unwrapPayload(raw)
		if !changed {
			continue
		}

		switch models.DataType(kind) {
		case models.DataTypeEmotions:
			var records []models.EmotionRecord
			if err := json.Unmarshal(body, &records); err != nil {
				f.logger.Warn().Err(err).Str("kind", kind).Msg("skipping undecodable delta payload")
				continue
			}
			delta.Emotions = records

		case models.DataTypeConversations:
			var conversations []models.Conversation
			if err := json.Unmarshal(body, &conversations); err != nil {
				f.logger.Warn().Err(err).Str("kind", kind).Msg("skipping undecodable delta payload")
				continue
			}
			delta.Conversations = conversations

		case models.DataTypeProfile:
			var profile models.Profile
			if err := json.Unmarshal(body, &profile); err != nil {
				f.logger.Warn().Err(err).Str("kind", kind).Msg("skipping undecodable delta payload")
				continue
			}
			delta.Profile = &profile

		case models.DataTypeAnalytics:
			var snapshot models.AnalyticsSnapshot
			if err := json.Unmarshal(body, &snapshot); err != nil {
				f.logger.Warn().Err(err).Str("kind", kind).Msg("skipping undecodable delta payload")
				continue
			}
			delta.Analytics = &snapshot

		default:
			f.logger.Debug().Str("kind", kind).Msg("ignoring unknown delta kind")
		}
	}

	return delta
}

// unwrapPayload peels the legacy {"updated": bool, "data": <payload>}
// wrapper. A payload that does not decode as the wrapper is treated as the
// bare entity payload; updated=false means "no change for this kind".
func unwrapPayload(raw json.RawMessage) (json.RawMessage, bool) {
	var probe struct {
		Updated *bool           `json:"updated"`
		Data    json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(raw, &probe); err == nil && probe.Updated != nil {
		if !*probe.Updated {
			return nil, false
		}
		return probe.Data, true
	}

	return raw, true
}
