package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Municipality     string
}

// Geocoder resolves coordinates to human-readable place details. It labels
// SOS posts and picks the town page for a visitor's position; ranking and
// lifecycle logic never depend on it.
type Geocoder interface {
	// ReverseGeocode converts coordinates to place details.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}
