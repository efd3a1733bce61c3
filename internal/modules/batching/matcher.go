// README: Batch matcher: finds pending requests near and on the way from an anchor.
package batching

import (
	"time"

	"github.com/google/uuid"

	"wastagram/internal/geo"
	"wastagram/internal/types"
)

type candidateDistance struct {
	req  PickupRequest
	dist float64
}

// FindCompatible returns the requests in pool that can be batched with anchor,
// in pool order. The anchor itself and any id in accepted are never returned.
// An empty (nil) slice means no match.
//
// Under StrictDirection the batch heading is the bearing from the anchor to the
// nearest eligible candidate, independent of MaxDistanceMeters, so widening the
// radius never drops a candidate that was already included.
func FindCompatible(anchor PickupRequest, pool []PickupRequest, accepted map[types.ID]struct{}, p MatchParams) []PickupRequest {
	eligible := make([]candidateDistance, 0, len(pool))
	seen := make(map[types.ID]struct{}, len(pool))
	for _, candidate := range pool {
		if candidate.ID == anchor.ID {
			continue
		}
		if _, ok := accepted[candidate.ID]; ok {
			continue
		}
		if _, dup := seen[candidate.ID]; dup {
			continue
		}
		seen[candidate.ID] = struct{}{}
		eligible = append(eligible, candidateDistance{
			req:  candidate,
			dist: geo.DistanceMeters(anchor.Location, candidate.Location),
		})
	}

	var heading float64
	haveHeading := false
	if p.Policy == StrictDirection {
		heading, haveHeading = nearestHeading(anchor, eligible)
	}

	var result []PickupRequest
	for _, c := range eligible {
		if c.dist > p.MaxDistanceMeters {
			continue
		}
		// Co-located requests are on the way whatever the heading.
		if haveHeading && c.dist > 0 {
			if geo.AngleDelta(heading, geo.Bearing(anchor.Location, c.req.Location)) > p.MaxAngleDeltaDegrees {
				continue
			}
		}
		result = append(result, c.req)
	}
	return result
}

// nearestHeading returns the bearing to the closest candidate that is not
// co-located with the anchor. Ties keep pool order.
func nearestHeading(anchor PickupRequest, eligible []candidateDistance) (float64, bool) {
	best := -1
	for i, c := range eligible {
		if c.dist <= 0 {
			continue
		}
		if best < 0 || c.dist < eligible[best].dist {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return geo.Bearing(anchor.Location, eligible[best].req.Location), true
}

// BuildSuggestion derives a suggestion from a non-empty compatible list. The
// direction is the bucket of the bearing from anchor to the first compatible order.
func BuildSuggestion(anchor PickupRequest, compatible []PickupRequest, now time.Time) (BatchSuggestion, bool) {
	if len(compatible) == 0 {
		return BatchSuggestion{}, false
	}
	orders := make([]PickupRequest, len(compatible))
	copy(orders, compatible)

	var total float64
	for _, o := range orders {
		total += o.WeightKg
	}

	return BatchSuggestion{
		ID:            uuid.NewString(),
		AnchorID:      anchor.ID,
		Orders:        orders,
		TotalWeightKg: total,
		Direction:     geo.CompassBucket(geo.Bearing(anchor.Location, orders[0].Location)),
		CreatedAt:     now,
	}, true
}
