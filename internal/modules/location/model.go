// README: Location query and resolution result for callers that may not know their coordinate.
package location

import (
	"time"

	"wastagram/internal/types"
)

// Source records which step of the resolution chain produced a coordinate.
type Source string

const (
	SourceExplicit  Source = "explicit"
	SourceGeocoded  Source = "geocoded"
	SourceLastKnown Source = "last_known"
	SourceFallback  Source = "fallback"
)

// Query carries whatever the caller knows about where it is. Any field may be empty.
type Query struct {
	Point   *types.Point
	Address string
	UserID  types.ID
}

type Resolved struct {
	Point  types.Point `json:"point"`
	Source Source      `json:"source"`
}

// Fix is a user's last reported position.
type Fix struct {
	UserID     types.ID    `json:"user_id"`
	Point      types.Point `json:"point"`
	RecordedAt time.Time   `json:"recorded_at"`
}
