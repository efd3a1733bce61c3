// README: Accepted-batch event bus backed by Redis pub/sub with a TTL'd idempotency marker.
package batching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	AcceptedChannel      = "batching:accepted"
	resolvedKeyPrefix    = "batching:suggestion:%s:resolved"
	sessionBatchesPrefix = "batching:session:%s:accepted"
	// Markers only need to outlive a courier shift.
	keyTTL = 24 * time.Hour
)

// AcceptedEvent is the payload published on AcceptedChannel.
type AcceptedEvent struct {
	Session       string    `json:"session"`
	SuggestionID  string    `json:"suggestion_id"`
	AnchorID      string    `json:"anchor_id"`
	OrderIDs      []string  `json:"order_ids"`
	TotalWeightKg float64   `json:"total_weight_kg"`
	Direction     string    `json:"direction"`
	AcceptedAt    time.Time `json:"accepted_at"`
}

type Store struct {
	redis *redis.Client
	now   func() time.Time
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis, now: time.Now}
}

// PublishAccepted announces sug once. A second call for the same suggestion id
// is a no-op.
func (s *Store) PublishAccepted(ctx context.Context, session string, sug BatchSuggestion) error {
	ok, err := s.redis.SetNX(ctx, resolvedKey(sug.ID), session, keyTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	ev := AcceptedEvent{
		Session:       session,
		SuggestionID:  sug.ID,
		AnchorID:      string(sug.AnchorID),
		OrderIDs:      make([]string, len(sug.Orders)),
		TotalWeightKg: sug.TotalWeightKg,
		Direction:     string(sug.Direction),
		AcceptedAt:    s.now().UTC(),
	}
	for i, o := range sug.Orders {
		ev.OrderIDs[i] = string(o.ID)
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pipe := s.redis.Pipeline()
	batchesKey := sessionBatchesKey(session)
	pipe.SAdd(ctx, batchesKey, sug.ID)
	pipe.Expire(ctx, batchesKey, keyTTL)
	pipe.Publish(ctx, AcceptedChannel, payload)
	_, err = pipe.Exec(ctx)
	return err
}

// AcceptedBatches lists the suggestion ids accepted in a session.
func (s *Store) AcceptedBatches(ctx context.Context, session string) ([]string, error) {
	return s.redis.SMembers(ctx, sessionBatchesKey(session)).Result()
}

// IsResolved reports whether an accepted event was already published for suggestionID.
func (s *Store) IsResolved(ctx context.Context, suggestionID string) (bool, error) {
	_, err := s.redis.Get(ctx, resolvedKey(suggestionID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func resolvedKey(suggestionID string) string {
	return fmt.Sprintf(resolvedKeyPrefix, suggestionID)
}

func sessionBatchesKey(session string) string {
	return fmt.Sprintf(sessionBatchesPrefix, session)
}
