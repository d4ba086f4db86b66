package geo

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(7, 13))
}

func TestSampleRandomPoint(t *testing.T) {
	t.Run("stays within the disk", func(t *testing.T) {
		area := BoundingArea{Center: Coordinate{Lat: 0, Lon: 0}, RadiusKm: 50}
		rng := testRNG()
		for i := 0; i < 10000; i++ {
			p := SampleRandomPoint(area, rng)
			require.False(t, math.IsNaN(p.Lat), "lat must not be NaN")
			require.False(t, math.IsNaN(p.Lon), "lon must not be NaN")
			// Small slack for the flat-disk approximation.
			require.LessOrEqual(t, HaversineKm(area.Center, p), area.RadiusKm*1.01)
		}
	})

	t.Run("clamps near the pole", func(t *testing.T) {
		area := BoundingArea{Center: Coordinate{Lat: 89.9, Lon: 0}, RadiusKm: 100}
		rng := testRNG()
		for i := 0; i < 1000; i++ {
			p := SampleRandomPoint(area, rng)
			require.False(t, math.IsNaN(p.Lat))
			require.False(t, math.IsNaN(p.Lon))
			require.GreaterOrEqual(t, p.Lat, -90.0)
			require.LessOrEqual(t, p.Lat, 90.0)
			require.GreaterOrEqual(t, p.Lon, -180.0)
			require.LessOrEqual(t, p.Lon, 180.0)
		}
	})

	t.Run("covers both halves of the disk", func(t *testing.T) {
		area := BoundingArea{Center: Coordinate{Lat: 10, Lon: 10}, RadiusKm: 20}
		rng := testRNG()
		var north, south int
		for i := 0; i < 1000; i++ {
			if SampleRandomPoint(area, rng).Lat >= area.Center.Lat {
				north++
			} else {
				south++
			}
		}
		assert.Greater(t, north, 300)
		assert.Greater(t, south, 300)
	})
}

func TestSampleNonOverlappingPoints(t *testing.T) {
	t.Run("respects separation when the disk has room", func(t *testing.T) {
		area := BoundingArea{Center: Coordinate{Lat: 45, Lon: 7}, RadiusKm: 50}
		points := SampleNonOverlappingPoints(area, 4, 5, 25, testRNG())
		require.Len(t, points, 4)
		for i := 0; i < len(points); i++ {
			for j := i + 1; j < len(points); j++ {
				assert.GreaterOrEqual(t, HaversineKm(points[i], points[j]), 5.0)
			}
		}
	})

	t.Run("terminates when separation is impossible", func(t *testing.T) {
		// A 1 km disk cannot hold 4 points 100 km apart; attempts are bounded
		// and the last candidate is accepted anyway.
		area := BoundingArea{Center: Coordinate{Lat: 45, Lon: 7}, RadiusKm: 1}
		points := SampleNonOverlappingPoints(area, 4, 100, 25, testRNG())
		assert.Len(t, points, 4)
	})

	t.Run("zero count", func(t *testing.T) {
		area := BoundingArea{Center: Coordinate{Lat: 45, Lon: 7}, RadiusKm: 10}
		assert.Empty(t, SampleNonOverlappingPoints(area, 0, 1, 25, testRNG()))
	})
}

func TestSquareRingAroundCenter(t *testing.T) {
	t.Run("closed ring of four corners", func(t *testing.T) {
		ring := SquareRingAroundCenter(Coordinate{Lat: 44, Lon: 11}, 30000)
		require.Len(t, ring, 5)
		assert.Equal(t, ring[0], ring[4])
		assert.Len(t, ring.Vertices(), 4)
	})

	t.Run("centered on the requested point", func(t *testing.T) {
		center := Coordinate{Lat: 44, Lon: 11}
		ring := SquareRingAroundCenter(center, 30000)
		c := ring.Centroid()
		assert.InDelta(t, center.Lat, c.Lat, 1e-9)
		assert.InDelta(t, center.Lon, c.Lon, 1e-9)
	})

	t.Run("sides span the right arc length", func(t *testing.T) {
		ring := SquareRingAroundCenter(Coordinate{Lat: 44, Lon: 11}, 30000)
		sideKm := math.Sqrt(30000) / 1000
		corners := ring.Vertices()
		assert.InEpsilon(t, sideKm, HaversineKm(corners[0], corners[1]), 0.01)
		assert.InEpsilon(t, sideKm, HaversineKm(corners[1], corners[2]), 0.01)
	})
}
