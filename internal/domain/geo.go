package domain

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// GeoPoint is a WGS-84 latitude/longitude coordinate pair. Once assigned to a
// record it is never mutated.
type GeoPoint struct {
	Latitude  float64 `firestore:"latitude" json:"latitude"`
	Longitude float64 `firestore:"longitude" json:"longitude"`
}

// Distance returns the great-circle surface distance between two points in
// kilometers. Symmetric, and zero (within floating-point tolerance) for
// identical points. Invalid coordinates propagate NaN; callers are expected
// to pass real coordinates.
func Distance(a, b GeoPoint) float64 {
	dLat := deg2rad(b.Latitude - a.Latitude)
	dLon := deg2rad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Latitude))*math.Cos(deg2rad(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// townCoordinates maps the towns the app serves to their default map centers.
// Used as the ranking reference point when no live user position is available.
var townCoordinates = map[string]GeoPoint{
	"montalban": {Latitude: 14.7739, Longitude: 121.1390},
	"sanmateo":  {Latitude: 14.6939, Longitude: 121.1169},
}

// DefaultTown is the fallback when a visitor's town is unknown.
const DefaultTown = "montalban"

// TownCenter returns the default coordinates for a town slug, falling back to
// DefaultTown for unknown slugs.
func TownCenter(town string) GeoPoint {
	if p, ok := townCoordinates[town]; ok {
		return p
	}
	return townCoordinates[DefaultTown]
}

// KnownTown reports whether the slug names a town the app serves.
func KnownTown(town string) bool {
	_, ok := townCoordinates[town]
	return ok
}
