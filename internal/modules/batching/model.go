// README: Pickup requests, batch suggestions and the direction policy used to group them.
package batching

import (
	"fmt"
	"math"
	"strings"
	"time"

	"wastagram/internal/geo"
	"wastagram/internal/types"
)

// PickupRequest is a requester's order for a courier to collect waste. Immutable.
type PickupRequest struct {
	ID        types.ID            `json:"id"`
	Location  types.Point         `json:"location"`
	Address   string              `json:"address"`
	WeightKg  float64             `json:"weight_kg"`
	Category  types.WasteCategory `json:"waste_category"`
	CreatedAt time.Time           `json:"created_at"`
	Requester string              `json:"requester"`
}

func (r PickupRequest) Validate() error {
	if strings.TrimSpace(string(r.ID)) == "" {
		return fmt.Errorf("%w: request id is required", types.ErrInvalidInput)
	}
	if err := r.Location.Validate(); err != nil {
		return err
	}
	if math.IsNaN(r.WeightKg) || math.IsInf(r.WeightKg, 0) || r.WeightKg < 0 {
		return fmt.Errorf("%w: weight must be a non-negative number of kg", types.ErrInvalidInput)
	}
	if _, err := types.ParseWasteCategory(string(r.Category)); err != nil {
		return err
	}
	return nil
}

// BatchSuggestion proposes adding Orders to the courier route that starts at AnchorID.
// It is derived from the pending pool and never mutated after creation.
type BatchSuggestion struct {
	ID            string          `json:"id"`
	AnchorID      types.ID        `json:"anchor_id"`
	Orders        []PickupRequest `json:"orders"`
	TotalWeightKg float64         `json:"total_weight_kg"`
	Direction     geo.Direction   `json:"direction"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (s BatchSuggestion) OrderCount() int {
	return len(s.Orders)
}

func (s BatchSuggestion) contains(id types.ID) bool {
	for _, o := range s.Orders {
		if o.ID == id {
			return true
		}
	}
	return false
}

// DirectionPolicy decides whether a nearby candidate lies on the anchor's way.
type DirectionPolicy string

const (
	// PermissiveDirection treats every candidate within range as compatible.
	PermissiveDirection DirectionPolicy = "permissive"
	// StrictDirection bounds the bearing deviation to MaxAngleDeltaDegrees.
	StrictDirection DirectionPolicy = "strict"
)

func ParseDirectionPolicy(v string) (DirectionPolicy, error) {
	switch DirectionPolicy(strings.ToLower(strings.TrimSpace(v))) {
	case "", PermissiveDirection:
		return PermissiveDirection, nil
	case StrictDirection:
		return StrictDirection, nil
	default:
		return "", fmt.Errorf("unknown direction policy %q", v)
	}
}

// MatchParams bounds which pending requests can join an anchor's batch.
type MatchParams struct {
	MaxDistanceMeters    float64
	MaxAngleDeltaDegrees float64
	Policy               DirectionPolicy
}

const (
	// defaultMaxDistanceMeters is the batching radius used by the mobile client.
	defaultMaxDistanceMeters = 5000
	// defaultMaxAngleDeltaDegrees is the strict-policy bearing tolerance.
	defaultMaxAngleDeltaDegrees = 45
)

// DefaultMatchParams returns the production thresholds with the permissive policy.
func DefaultMatchParams() MatchParams {
	return MatchParams{
		MaxDistanceMeters:    defaultMaxDistanceMeters,
		MaxAngleDeltaDegrees: defaultMaxAngleDeltaDegrees,
		Policy:               PermissiveDirection,
	}
}
