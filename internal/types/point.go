// README: Shared value objects (ids, coordinates) validated at the API boundary.
package types

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput marks malformed caller input. It never reaches matching or scoring.
var ErrInvalidInput = errors.New("invalid input")

type ID string

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return fmt.Errorf("%w: coordinate is not a number", ErrInvalidInput)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range [-90, 90]", ErrInvalidInput, p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: longitude %f out of range [-180, 180]", ErrInvalidInput, p.Lng)
	}
	return nil
}

// IsZero reports whether p is the zero value, which callers use for "no coordinate".
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}
