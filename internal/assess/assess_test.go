package assess

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fieldscope/land-quality-service/internal/domain"
	"github.com/fieldscope/land-quality-service/internal/geo"
)

// Shared test doubles for the assess package.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fptr(v float64) *float64 { return &v }

func testRing() geo.Ring {
	return geo.Ring{
		{Lat: 44.0, Lon: 11.0},
		{Lat: 44.0, Lon: 11.01},
		{Lat: 44.01, Lon: 11.01},
		{Lat: 44.01, Lon: 11.0},
	}
}

type stubPolygonCreator struct {
	info  domain.PolygonInfo
	err   error
	calls int
}

func (s *stubPolygonCreator) CreatePolygon(_ context.Context, _ string, _ geo.Ring) (domain.PolygonInfo, error) {
	s.calls++
	return s.info, s.err
}

type stubSoilSource struct {
	reading domain.SoilReading
	err     error
}

func (s *stubSoilSource) FetchSoil(_ context.Context, _ string) (domain.SoilReading, error) {
	return s.reading, s.err
}

// stubVegetationSource replays canned responses per call, repeating the last
// one once exhausted.
type stubVegetationSource struct {
	responses []vegResponse
	windows   []time.Duration
}

type vegResponse struct {
	entries []domain.NDVIEntry
	err     error
}

func (s *stubVegetationSource) FetchNDVIHistory(_ context.Context, _ string, start, end time.Time) ([]domain.NDVIEntry, error) {
	s.windows = append(s.windows, end.Sub(start))
	i := len(s.windows) - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	if i < 0 {
		return nil, nil
	}
	r := s.responses[i]
	return r.entries, r.err
}

type stubAdvisor struct {
	assessment domain.AdvisorAssessment
	err        error
	calls      int
}

func (s *stubAdvisor) Assess(_ context.Context, _ domain.AdvisorInput) (domain.AdvisorAssessment, error) {
	s.calls++
	return s.assessment, s.err
}

type stubPublisher struct {
	published []domain.AnalysisResult
	err       error
}

func (s *stubPublisher) PublishAssessment(_ context.Context, result domain.AnalysisResult) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, result)
	return nil
}
