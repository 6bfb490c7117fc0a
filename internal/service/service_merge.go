package service

import (
	"sort"

	"github.com/evermood/syncengine/models"
)

// mergeService is the concrete implementation of MergeService.
// Every function is a pure in-memory combination of two collections; no
// storage layer or logger is required because the operations are stateless
// and produce no side effects. Idempotence is what makes the crash window
// between persisting merged entities and advancing the cursor safe: the
// same delta can be re-fetched and re-merged without duplicating records.
type mergeService struct{}

// NewMergeService constructs a MergeService ready for use.
// Because the merge functions are stateless, in-memory operations,
// no dependencies (storage, config, logger) are needed.
func NewMergeService() MergeService {
	return &mergeService{}
}

// MergeEmotions implements MergeService.
//
// Records are keyed by ID; when both sides carry the same ID, the record
// with the strictly later timestamp wins, so re-applying an older incoming
// copy never regresses local state. The merged collection is sorted
// descending by timestamp — the emotion log renders as a newest-first feed.
func (m *mergeService) MergeEmotions(existing, incoming []models.EmotionRecord) []models.EmotionRecord {
	index := make(map[string]models.EmotionRecord, len(existing)+len(incoming))
	for _, rec := range existing {
		index[rec.ID] = rec
	}

	for _, rec := range incoming {
		current, ok := index[rec.ID]
		if !ok || rec.Timestamp.After(current.Timestamp) {
			index[rec.ID] = rec
		}
	}

	merged := make([]models.EmotionRecord, 0, len(index))
	for _, rec := range index {
		merged = append(merged, rec)
	}

	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].Timestamp.Equal(merged[j].Timestamp) {
			return merged[i].Timestamp.After(merged[j].Timestamp)
		}
		return merged[i].ID < merged[j].ID
	})

	return merged
}

// MergeConversations implements MergeService.
//
// Conversations are keyed by ID. For a conversation present on both sides
// the message lists are merged (see mergeMessages) and the more recently
// updated metadata wins. The collection is sorted descending by UpdatedAt so
// the most recently active thread renders first.
func (m *mergeService) MergeConversations(existing, incoming []models.Conversation) []models.Conversation {
	index := make(map[string]models.Conversation, len(existing)+len(incoming))
	order := make([]string, 0, len(existing)+len(incoming))

	for _, conv := range existing {
		index[conv.ID] = conv
		order = append(order, conv.ID)
	}

	for _, conv := range incoming {
		current, ok := index[conv.ID]
		if !ok {
			conv.Messages = mergeMessages(nil, conv.Messages)
			index[conv.ID] = conv
			order = append(order, conv.ID)
			continue
		}

		merged := current
		merged.Messages = mergeMessages(current.Messages, conv.Messages)
		if conv.UpdatedAt.After(current.UpdatedAt) {
			merged.Title = conv.Title
			merged.UpdatedAt = conv.UpdatedAt
		}
		index[conv.ID] = merged
	}

	result := make([]models.Conversation, 0, len(order))
	for _, id := range order {
		result = append(result, index[id])
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	return result
}

// mergeMessages deduplicates by message ID with first-seen wins: an incoming
// message never replaces an existing one carrying the same ID, so a merge
// can never drop or rewrite a message the user already has. The merged list
// is re-sorted ascending by timestamp, transcript order.
func mergeMessages(existing, incoming []models.Message) []models.Message {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]models.Message, 0, len(existing)+len(incoming))

	for _, msg := range existing {
		if _, ok := seen[msg.ID]; ok {
			continue
		}
		seen[msg.ID] = struct{}{}
		merged = append(merged, msg)
	}

	for _, msg := range incoming {
		if _, ok := seen[msg.ID]; ok {
			continue
		}
		seen[msg.ID] = struct{}{}
		merged = append(merged, msg)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})

	return merged
}

// MergeProfile implements MergeService. Whole-document replace: an incoming
// profile supersedes the stored one, absence keeps it.
func (m *mergeService) MergeProfile(existing, incoming *models.Profile) *models.Profile {
	if incoming != nil {
		return incoming
	}
	return existing
}

// MergeAnalytics implements MergeService. Same replace semantics as
// MergeProfile.
func (m *mergeService) MergeAnalytics(existing, incoming *models.AnalyticsSnapshot) *models.AnalyticsSnapshot {
	if incoming != nil {
		return incoming
	}
	return existing
}
