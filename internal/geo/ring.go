// Package geo provides spherical-earth geometry for ground areas: great-circle
// distance, polygon and rectangle area, and bounded random point sampling.
// All functions are pure and assume WGS-84 degree coordinates on a sphere of
// radius 6371 km.
package geo

import "math"

// Earth radius constants shared by all area and distance math.
const (
	EarthRadiusKm     = 6371.0
	EarthRadiusMeters = 6371000.0

	// kmPerDegreeLat is the meridian arc length of one degree of latitude.
	kmPerDegreeLat = EarthRadiusKm * math.Pi / 180
)

// Coordinate is a WGS-84 latitude/longitude pair in degrees.
// Latitude is in [-90, 90], longitude in [-180, 180].
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Ring is an ordered closed polygon boundary. The first and last coordinate
// must be equal; Closed returns a copy with the closing point appended if the
// caller omitted it. Rings are assumed simple (non-self-intersecting) because
// they come from a drawing tool; this is not validated, and a self-intersecting
// ring yields a numerically meaningless but finite area.
type Ring []Coordinate

// Closed returns the ring with its closing point appended if missing.
// Rings with fewer than 3 points are returned unchanged.
func (r Ring) Closed() Ring {
	if len(r) < 3 {
		return r
	}
	if r[0] == r[len(r)-1] {
		return r
	}
	out := make(Ring, len(r)+1)
	copy(out, r)
	out[len(r)] = r[0]
	return out
}

// Vertices returns the ring's corner points with the closing duplicate removed.
func (r Ring) Vertices() []Coordinate {
	if len(r) > 1 && r[0] == r[len(r)-1] {
		return r[:len(r)-1]
	}
	return r
}

// Centroid returns the arithmetic center of the ring's vertices.
// Adequate for the small drawn areas this service handles; not a true
// spherical centroid.
func (r Ring) Centroid() Coordinate {
	verts := r.Vertices()
	if len(verts) == 0 {
		return Coordinate{}
	}
	var sumLat, sumLon float64
	for _, v := range verts {
		sumLat += v.Lat
		sumLon += v.Lon
	}
	n := float64(len(verts))
	return Coordinate{Lat: sumLat / n, Lon: sumLon / n}
}

// BoundingArea is a sampling domain: a disk of RadiusKm around Center.
type BoundingArea struct {
	Center   Coordinate `json:"center"`
	RadiusKm float64    `json:"radius_km"`
}

func clampLat(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

func clampLon(lon float64) float64 {
	return math.Max(-180, math.Min(180, lon))
}
