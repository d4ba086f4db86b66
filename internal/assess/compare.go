package assess

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/fieldscope/land-quality-service/internal/domain"
	"github.com/fieldscope/land-quality-service/internal/geo"
	"github.com/fieldscope/land-quality-service/internal/observability"
)

const (
	// comparisonCount is the number of nearby areas sampled per request.
	comparisonCount = 4

	// comparisonAreaM2 is the fixed size of each comparison square: 3 hectares.
	comparisonAreaM2 = 30000

	// maxSeparationKm caps the minimum spacing between sampled points.
	maxSeparationKm = 5

	// maxSampleAttempts bounds rejection sampling per point.
	maxSampleAttempts = 25
)

// ErrNoComparisons is returned when every sampled area's analysis failed.
var ErrNoComparisons = errors.New("no comparison areas could be produced")

// phase tracks the comparison request state machine.
type phase string

const (
	phaseSampling      phase = "sampling"
	phaseCreatingAreas phase = "creating_areas"
	phaseScoring       phase = "scoring"
	phaseRanked        phase = "ranked"
	phaseFailed        phase = "failed"
)

// Comparer samples nearby areas around an origin and ranks their quality.
type Comparer struct {
	analyzer domain.AreaAnalyzer
	logger   *slog.Logger
	metrics  *observability.Metrics
	newRNG   func() *rand.Rand
}

// NewComparer wires a comparison sampler around an area analyzer.
func NewComparer(analyzer domain.AreaAnalyzer, logger *slog.Logger, metrics *observability.Metrics) *Comparer {
	return &Comparer{
		analyzer: analyzer,
		logger:   logger,
		metrics:  metrics,
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

// CompareNearby samples comparison points within the origin disk, builds a
// fixed-size square ring around each, analyzes all rings concurrently, and
// returns the successful results ranked by descending score (ties keep
// sampling order). Individual analysis failures are dropped; the request
// fails only when every area failed.
func (c *Comparer) CompareNearby(ctx context.Context, origin geo.BoundingArea) ([]domain.ComparisonArea, error) {
	start := time.Now()
	state := phaseSampling
	c.logger.Debug("comparison started", "phase", state,
		"center_lat", origin.Center.Lat, "center_lon", origin.Center.Lon, "radius_km", origin.RadiusKm)

	minSeparation := min(maxSeparationKm, 0.1*origin.RadiusKm)
	points := geo.SampleNonOverlappingPoints(origin, comparisonCount, minSeparation, maxSampleAttempts, c.newRNG())

	state = phaseCreatingAreas
	c.logger.Debug("comparison areas sampled", "phase", state, "points", len(points))

	// Each point's analysis runs independently; a failure produces a nil slot
	// and never cancels or delays its siblings.
	results := make([]*domain.ComparisonArea, len(points))
	var wg sync.WaitGroup
	for i, point := range points {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.analyzeOne(ctx, origin.Center, point)
		}()
	}
	wg.Wait()

	state = phaseScoring
	areas := make([]domain.ComparisonArea, 0, len(results))
	for _, r := range results {
		if r != nil {
			areas = append(areas, *r)
		}
	}
	c.metrics.ComparisonAreas.Observe(float64(len(areas)))
	c.metrics.ComparisonDuration.Observe(time.Since(start).Seconds())

	if len(areas) == 0 {
		state = phaseFailed
		c.logger.Error("comparison failed", "phase", state, "sampled", len(points))
		return nil, ErrNoComparisons
	}

	sort.SliceStable(areas, func(i, j int) bool {
		return areas[i].Result.Score > areas[j].Result.Score
	})

	state = phaseRanked
	c.logger.Info("comparison ranked", "phase", state,
		"areas", len(areas), "sampled", len(points), "top_score", areas[0].Result.Score)
	return areas, nil
}

// analyzeOne builds and analyzes a single comparison square. Returns nil on
// failure; the caller filters.
func (c *Comparer) analyzeOne(ctx context.Context, originCenter, point geo.Coordinate) *domain.ComparisonArea {
	ring := geo.SquareRingAroundCenter(point, comparisonAreaM2)
	result, err := c.analyzer.AnalyzeArea(ctx, ring)
	if err != nil {
		c.logger.Warn("comparison area analysis failed",
			"lat", point.Lat, "lon", point.Lon, "error", err)
		return nil
	}
	return &domain.ComparisonArea{
		Ring:       ring,
		Center:     point,
		DistanceKm: geo.HaversineKm(originCenter, point),
		Result:     result,
	}
}
