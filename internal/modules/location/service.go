// README: Location resolver walks explicit coordinate, geocoded address, last known fix, then the configured fallback.
package location

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"wastagram/internal/types"
)

// Geocoder turns a free-form address into a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}

// MaxGeoLatitude is the polar limit of Redis GEO (Web Mercator) indexes.
const MaxGeoLatitude = 85.05112878

// FixStore keeps the last reported position per user.
type FixStore interface {
	SetLastKnown(ctx context.Context, fix Fix) error
	LastKnown(ctx context.Context, userID types.ID) (Fix, bool, error)
}

type Service struct {
	store    FixStore
	geocoder Geocoder
	fallback types.Point
	now      func() time.Time
}

// NewService builds a resolver. store and geocoder may be nil; the fallback
// point is always available.
func NewService(store FixStore, geocoder Geocoder, fallback types.Point) *Service {
	return &Service{store: store, geocoder: geocoder, fallback: fallback, now: time.Now}
}

// Update records a user's reported position.
func (s *Service) Update(ctx context.Context, userID types.ID, p types.Point) (Fix, error) {
	if strings.TrimSpace(string(userID)) == "" {
		return Fix{}, fmt.Errorf("%w: user id is required", types.ErrInvalidInput)
	}
	if err := p.Validate(); err != nil {
		return Fix{}, err
	}
	if math.Abs(p.Lat) > MaxGeoLatitude {
		return Fix{}, fmt.Errorf("%w: latitude %f beyond the %.8f limit of the location index", types.ErrInvalidInput, p.Lat, MaxGeoLatitude)
	}
	fix := Fix{UserID: userID, Point: p, RecordedAt: s.now()}
	if s.store == nil {
		return fix, nil
	}
	if err := s.store.SetLastKnown(ctx, fix); err != nil {
		return Fix{}, fmt.Errorf("store location for %s: %w", userID, err)
	}
	return fix, nil
}

// Resolve never fails on a lookup miss: each unavailable step falls through to
// the next one. An explicit but invalid coordinate is an input error.
func (s *Service) Resolve(ctx context.Context, q Query) (Resolved, error) {
	if q.Point != nil {
		if err := q.Point.Validate(); err != nil {
			return Resolved{}, err
		}
		return Resolved{Point: *q.Point, Source: SourceExplicit}, nil
	}

	if addr := strings.TrimSpace(q.Address); addr != "" && s.geocoder != nil {
		p, err := s.geocoder.Geocode(ctx, addr)
		switch {
		case err != nil:
			log.Printf("location: geocode %q: %v", addr, err)
		case p.Validate() != nil:
			log.Printf("location: geocode %q returned invalid point %v", addr, p)
		default:
			return Resolved{Point: p, Source: SourceGeocoded}, nil
		}
	}

	if q.UserID != "" && s.store != nil {
		fix, ok, err := s.store.LastKnown(ctx, q.UserID)
		switch {
		case err != nil:
			log.Printf("location: last known for %s: %v", q.UserID, err)
		case ok:
			return Resolved{Point: fix.Point, Source: SourceLastKnown}, nil
		}
	}

	return Resolved{Point: s.fallback, Source: SourceFallback}, nil
}
