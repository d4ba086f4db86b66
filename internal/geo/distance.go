package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// HaversineKm returns the great-circle distance between two coordinates in
// kilometers. Symmetric, and zero for identical points.
func HaversineKm(a, b Coordinate) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// arcAngle returns the central angle in radians of the great-circle arc
// between two coordinates, via the spherical law of cosines.
func arcAngle(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	c := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLon)
	// Floating-point error can push the cosine slightly outside [-1, 1].
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c)
}
