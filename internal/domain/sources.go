package domain

import (
	"context"
	"time"

	"github.com/fieldscope/land-quality-service/internal/geo"
)

// SoilSource returns the current raw soil payload for a registered polygon.
type SoilSource interface {
	FetchSoil(ctx context.Context, polygonID string) (SoilReading, error)
}

// VegetationSource returns NDVI history entries for a registered polygon
// within a time window. An empty slice is a valid response (no captures).
type VegetationSource interface {
	FetchNDVIHistory(ctx context.Context, polygonID string, start, end time.Time) ([]NDVIEntry, error)
}

// PolygonCreator registers a drawn ring with the satellite API and returns
// the polygon handle used by subsequent soil and vegetation queries.
type PolygonCreator interface {
	CreatePolygon(ctx context.Context, name string, ring geo.Ring) (PolygonInfo, error)
}

// AreaAnalyzer produces a complete quality assessment for a ring. The
// comparison sampler consumes this interface; the assess service implements it.
type AreaAnalyzer interface {
	AnalyzeArea(ctx context.Context, ring geo.Ring) (AnalysisResult, error)
}

// Advisor is the opaque generative scoring collaborator. Implementations may
// fail or return partial assessments; callers fall back to heuristic scoring.
type Advisor interface {
	Assess(ctx context.Context, input AdvisorInput) (AdvisorAssessment, error)
}
