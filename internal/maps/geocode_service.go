// README: Google Maps geocoding for free-form pickup addresses.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"wastagram/internal/types"
)

// GeocodeService handles address lookups against the Google Geocoding API.
type GeocodeService struct {
	client *maps.Client
}

// NewGeocodeService creates a new GeocodeService with the given API Key.
func NewGeocodeService(apiKey string) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client}, nil
}

// Geocode returns the coordinate of the best match for address.
func (s *GeocodeService) Geocode(ctx context.Context, address string) (types.Point, error) {
	r := &maps.GeocodingRequest{
		Address:  address,
		Language: "id", // Indonesian, matching the app's addresses
		Region:   "id", // Bias results to Indonesia
	}

	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		return types.Point{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 {
		return types.Point{}, fmt.Errorf("no geocoding result for %q", address)
	}

	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
