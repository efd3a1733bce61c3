// README: Pure geographic helpers: great-circle distance and initial bearing.
package geo

import (
	"math"

	"wastagram/internal/types"
)

const earthRadiusMeters = 6371000.0

// DistanceMeters returns the haversine great-circle distance between a and b.
func DistanceMeters(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h a hair past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// DistanceKm is DistanceMeters in kilometres.
func DistanceKm(a, b types.Point) float64 {
	return DistanceMeters(a, b) / 1000.0
}

// Bearing returns the initial great-circle bearing from a to b in degrees,
// clockwise from north, in [0, 360). Identical points yield 0.
func Bearing(a, b types.Point) float64 {
	if a == b {
		return 0
	}
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	return NormalizeDegrees(radiansToDegrees(math.Atan2(y, x)))
}

// NormalizeDegrees maps any finite angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// AngleDelta returns the smallest absolute difference between two bearings, in [0, 180].
func AngleDelta(a, b float64) float64 {
	d := math.Abs(NormalizeDegrees(a) - NormalizeDegrees(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
