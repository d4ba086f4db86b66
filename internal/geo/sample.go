package geo

import (
	"math"
	"math/rand/v2"
)

// SampleRandomPoint draws a point uniformly over the disk described by area.
// Uniformity over the disk comes from distance = radius*sqrt(U) and a uniform
// angle; the longitude offset is stretched by 1/cos(centerLat) to account for
// meridian convergence. Results are clamped into valid coordinate ranges.
func SampleRandomPoint(area BoundingArea, rng *rand.Rand) Coordinate {
	distKm := area.RadiusKm * math.Sqrt(rng.Float64())
	angle := 2 * math.Pi * rng.Float64()

	latRad := area.Center.Lat * math.Pi / 180
	dLat := distKm * math.Cos(angle) / kmPerDegreeLat
	dLon := distKm * math.Sin(angle) / (kmPerDegreeLat * math.Cos(latRad))

	return Coordinate{
		Lat: clampLat(area.Center.Lat + dLat),
		Lon: clampLon(area.Center.Lon + dLon),
	}
}

// SampleNonOverlappingPoints draws count points from area, rejecting any
// candidate closer than minSeparationKm to an already-accepted point. After
// maxAttemptsPerPoint rejected candidates the last candidate is accepted
// anyway, which guarantees termination but not separation when the disk is
// too small for the requested count. That trade-off is deliberate: a crowded
// comparison set is more useful than a request that never completes.
func SampleNonOverlappingPoints(area BoundingArea, count int, minSeparationKm float64, maxAttemptsPerPoint int, rng *rand.Rand) []Coordinate {
	if count <= 0 {
		return nil
	}
	if maxAttemptsPerPoint < 1 {
		maxAttemptsPerPoint = 1
	}

	points := make([]Coordinate, 0, count)
	for len(points) < count {
		var candidate Coordinate
		for attempt := 0; attempt < maxAttemptsPerPoint; attempt++ {
			candidate = SampleRandomPoint(area, rng)
			if separated(candidate, points, minSeparationKm) {
				break
			}
		}
		points = append(points, candidate)
	}
	return points
}

func separated(candidate Coordinate, accepted []Coordinate, minSeparationKm float64) bool {
	for _, p := range accepted {
		if HaversineKm(candidate, p) < minSeparationKm {
			return false
		}
	}
	return true
}

// SquareRingAroundCenter builds a closed axis-aligned square ring of the
// requested area in square meters, centered at center. The half-side longitude
// offset uses the same 1/cos(lat) correction as point sampling.
func SquareRingAroundCenter(center Coordinate, areaM2 float64) Ring {
	sideKm := math.Sqrt(areaM2) / 1000
	halfLat := sideKm / 2 / kmPerDegreeLat
	halfLon := halfLat / math.Cos(center.Lat*math.Pi/180)

	ring := Ring{
		{Lat: clampLat(center.Lat - halfLat), Lon: clampLon(center.Lon - halfLon)},
		{Lat: clampLat(center.Lat - halfLat), Lon: clampLon(center.Lon + halfLon)},
		{Lat: clampLat(center.Lat + halfLat), Lon: clampLon(center.Lon + halfLon)},
		{Lat: clampLat(center.Lat + halfLat), Lon: clampLon(center.Lon - halfLon)},
	}
	return ring.Closed()
}
