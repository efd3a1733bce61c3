// README: Compass buckets, angle deltas and Indonesian direction labels.
package geo

import "math"

// Direction is one of the eight 45°-wide compass buckets.
type Direction string

const (
	North     Direction = "N"
	NorthEast Direction = "NE"
	East      Direction = "E"
	SouthEast Direction = "SE"
	South     Direction = "S"
	SouthWest Direction = "SW"
	West      Direction = "W"
	NorthWest Direction = "NW"
)

// compassOrder lists buckets clockwise starting at north; index i is centred on i*45°.
var compassOrder = [8]Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

var directionLabels = map[Direction]string{
	North:     "Utara",
	NorthEast: "Timur Laut",
	East:      "Timur",
	SouthEast: "Tenggara",
	South:     "Selatan",
	SouthWest: "Barat Daya",
	West:      "Barat",
	NorthWest: "Barat Laut",
}

// CompassBucket maps a bearing to its compass bucket. North covers
// [337.5, 360) and [0, 22.5); every other bucket is half-open on the right.
func CompassBucket(bearing float64) Direction {
	b := NormalizeDegrees(bearing)
	idx := int(math.Floor((b+22.5)/45.0)) % len(compassOrder)
	return compassOrder[idx]
}

// Label is the user-facing (Indonesian) name shown in courier prompts.
func (d Direction) Label() string {
	if l, ok := directionLabels[d]; ok {
		return l
	}
	return string(d)
}
