// Package assess orchestrates collaborators into complete area assessments:
// single-area analysis (soil + vegetation + scoring) and multi-area
// comparison sampling.
package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fieldscope/land-quality-service/internal/domain"
	"github.com/fieldscope/land-quality-service/internal/geo"
	"github.com/fieldscope/land-quality-service/internal/observability"
)

// ResultPublisher forwards completed assessments to an event stream.
type ResultPublisher interface {
	PublishAssessment(ctx context.Context, result domain.AnalysisResult) error
}

// Service produces quality assessments for drawn ground areas. It implements
// domain.AreaAnalyzer. Advisor and publisher are optional; a nil advisor
// falls back to heuristic scoring, a nil publisher skips event publishing.
type Service struct {
	polygons   domain.PolygonCreator
	soil       domain.SoilSource
	vegetation domain.VegetationSource
	advisor    domain.Advisor
	publisher  ResultPublisher
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewService wires an assessment service. Pass nil advisor and/or publisher
// to disable those collaborators.
func NewService(polygons domain.PolygonCreator, soil domain.SoilSource, vegetation domain.VegetationSource, advisor domain.Advisor, publisher ResultPublisher, clk clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Service{
		polygons:   polygons,
		soil:       soil,
		vegetation: vegetation,
		advisor:    advisor,
		publisher:  publisher,
		clock:      clk,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness reports whether the service can serve analysis requests.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.polygons == nil || s.soil == nil || s.vegetation == nil {
		return errors.New("satellite data sources not configured")
	}
	return nil
}

// AnalyzeArea runs a complete assessment of one drawn ring: register the
// polygon, fetch soil and vegetation data, normalize, score, and assemble the
// result. Missing soil or vegetation data degrades to unknown conditions; the
// only hard failure is polygon registration, without which no data can be
// queried at all.
func (s *Service) AnalyzeArea(ctx context.Context, ring geo.Ring) (domain.AnalysisResult, error) {
	start := time.Now()
	ring = ring.Closed()
	id := domain.GenerateAreaID(ring)

	polygon, err := s.polygons.CreatePolygon(ctx, id, ring)
	if err != nil {
		s.metrics.AnalysesFailed.Inc()
		return domain.AnalysisResult{}, fmt.Errorf("register polygon: %w", err)
	}

	areaHa := polygon.AreaHa
	if areaHa <= 0 {
		areaHa = geo.PolygonAreaM2(ring) / 10000
	}

	sample := s.fetchSoil(ctx, id, polygon.ID)
	veg := s.fetchVegetation(ctx, polygon.ID)
	verdict := s.consultAdvisor(ctx, id, domain.AdvisorInput{
		Sample:     sample,
		Vegetation: veg,
		AreaHa:     &areaHa,
	})

	result := domain.BuildResult(id, sample, veg, &areaHa, verdict)

	s.publish(ctx, result)
	s.metrics.AnalysesCompleted.Inc()
	s.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("area analyzed",
		"area_id", id,
		"score", result.Score,
		"level", result.Level,
		"confidence", result.Confidence,
	)
	return result, nil
}

// fetchSoil retrieves and normalizes the soil payload, degrading to an empty
// sample when the source fails.
func (s *Service) fetchSoil(ctx context.Context, areaID, polygonID string) domain.SoilSample {
	reading, err := s.soil.FetchSoil(ctx, polygonID)
	if err != nil {
		s.logger.Warn("soil data unavailable", "area_id", areaID, "error", err)
		s.metrics.SoilRequests.WithLabelValues("error").Inc()
		return domain.SoilSample{}
	}
	s.metrics.SoilRequests.WithLabelValues("success").Inc()
	return domain.NormalizeSoil(reading)
}

// consultAdvisor asks the generative collaborator for a verdict. Returns nil
// when the advisor is disabled or fails, which switches scoring to the
// deterministic heuristic.
func (s *Service) consultAdvisor(ctx context.Context, areaID string, input domain.AdvisorInput) *domain.AdvisorAssessment {
	if s.advisor == nil {
		return nil
	}
	verdict, err := s.advisor.Assess(ctx, input)
	if err != nil {
		s.logger.Warn("advisor unavailable, using heuristic score", "area_id", areaID, "error", err)
		s.metrics.AdvisorRequests.WithLabelValues("error").Inc()
		return nil
	}
	s.metrics.AdvisorRequests.WithLabelValues("success").Inc()
	return &verdict
}

// publish forwards the result to the event stream, best-effort.
func (s *Service) publish(ctx context.Context, result domain.AnalysisResult) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAssessment(ctx, result); err != nil {
		s.logger.Warn("assessment publish failed", "area_id", result.ID, "error", err)
		s.metrics.PublishErrors.Inc()
		return
	}
	s.metrics.AssessmentsPublished.Inc()
}
