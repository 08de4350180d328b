package domain

import "math"

const (
	earthRadiusKm = 6371.0

	// DefaultRadiusKm is the radius given to locations learned from a
	// successful login.
	DefaultRadiusKm = 5.0
	// NearbyThresholdKm is the looser match distance, and the match distance
	// for stored locations that carry no radius.
	NearbyThresholdKm = 2.0
)

// Location is a point given in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that the coordinates are finite and within range.
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || math.IsNaN(l.Longitude) ||
		l.Latitude < -90 || l.Latitude > 90 ||
		l.Longitude < -180 || l.Longitude > 180 {
		return ErrInvalidLocation
	}
	return nil
}

// KnownLocation is a location the user has logged in from, with the radius
// inside which later attempts count as the same place. RadiusKm <= 0 means
// no radius was recorded.
type KnownLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radiusKm"`
}

// Point returns the center of the known location.
func (k KnownLocation) Point() Location {
	return Location{Latitude: k.Latitude, Longitude: k.Longitude}
}

// Covers reports whether loc counts as this known location. Entries without a
// radius fall back to nearbyKm. The boundary is inclusive.
func (k KnownLocation) Covers(loc Location, nearbyKm float64) bool {
	limit := k.RadiusKm
	if limit <= 0 {
		limit = nearbyKm
	}
	return DistanceKm(k.Point(), loc) <= limit
}

// IsNear reports whether loc is within nearbyKm of this location regardless
// of the stored radius.
func (k KnownLocation) IsNear(loc Location, nearbyKm float64) bool {
	return DistanceKm(k.Point(), loc) <= nearbyKm
}

// DistanceKm returns the great-circle distance between a and b using the
// haversine formula.
func DistanceKm(a, b Location) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
