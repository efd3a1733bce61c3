// README: Last-known user locations backed by a Redis GEO set plus a TTL'd freshness key.
package location

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wastagram/internal/types"
)

const (
	userGeoKey      = "location:users"
	seenAtKeyPrefix = "location:user:%s:seen_at"
	// A fix older than this is not trusted as the user's position.
	keyTTL = 24 * time.Hour
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func (s *Store) SetLastKnown(ctx context.Context, fix Fix) error {
	pipe := s.redis.Pipeline()
	pipe.GeoAdd(ctx, userGeoKey, &redis.GeoLocation{
		Name:      string(fix.UserID),
		Longitude: fix.Point.Lng,
		Latitude:  fix.Point.Lat,
	})
	pipe.Set(ctx, seenAtKey(fix.UserID), fix.RecordedAt.UTC().Format(time.RFC3339), keyTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// LastKnown returns the user's fix and whether a fresh one exists.
func (s *Store) LastKnown(ctx context.Context, userID types.ID) (Fix, bool, error) {
	seen, err := s.redis.Get(ctx, seenAtKey(userID)).Result()
	if err == redis.Nil {
		return Fix{}, false, nil
	}
	if err != nil {
		return Fix{}, false, err
	}
	recordedAt, err := time.Parse(time.RFC3339, seen)
	if err != nil {
		return Fix{}, false, err
	}

	pos, err := s.redis.GeoPos(ctx, userGeoKey, string(userID)).Result()
	if err != nil {
		return Fix{}, false, err
	}
	if len(pos) == 0 || pos[0] == nil {
		return Fix{}, false, nil
	}
	return Fix{
		UserID:     userID,
		Point:      types.Point{Lat: pos[0].Latitude, Lng: pos[0].Longitude},
		RecordedAt: recordedAt,
	}, true, nil
}

func seenAtKey(userID types.ID) string {
	return fmt.Sprintf(seenAtKeyPrefix, string(userID))
}
