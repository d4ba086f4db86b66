// Package httpapi exposes the service over HTTP: health, readiness, metrics,
// and the analyze/compare endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldscope/land-quality-service/internal/assess"
	"github.com/fieldscope/land-quality-service/internal/domain"
	"github.com/fieldscope/land-quality-service/internal/geo"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Comparer produces ranked nearby comparison areas.
type Comparer interface {
	CompareNearby(ctx context.Context, origin geo.BoundingArea) ([]domain.ComparisonArea, error)
}

// Server exposes the assessment endpoints plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	analyzer   domain.AreaAnalyzer
	comparer   Comparer
	logger     *slog.Logger
}

// NewServer creates the HTTP server and routes.
func NewServer(addr string, analyzer domain.AreaAnalyzer, comparer Comparer, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 120 * time.Second, // analysis fans out to slow upstreams
			IdleTimeout:  60 * time.Second,
		},
		analyzer: analyzer,
		comparer: comparer,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/areas/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /v1/areas/compare", s.handleCompare)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type analyzeRequest struct {
	Ring geo.Ring `json:"ring"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Ring.Vertices()) < 3 {
		writeError(w, http.StatusBadRequest, "ring requires at least 3 points")
		return
	}
	if !validCoordinates(req.Ring) {
		writeError(w, http.StatusBadRequest, "ring coordinates out of range")
		return
	}

	result, err := s.analyzer.AnalyzeArea(r.Context(), req.Ring)
	if err != nil {
		s.logger.Error("analysis failed", "error", err)
		writeError(w, http.StatusBadGateway, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type compareRequest struct {
	Center   geo.Coordinate `json:"center"`
	RadiusKm float64        `json:"radius_km"`
}

type compareResponse struct {
	Areas []domain.ComparisonArea `json:"areas"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.RadiusKm <= 0 {
		writeError(w, http.StatusBadRequest, "radius_km must be positive")
		return
	}
	if !validCoordinates(geo.Ring{req.Center}) {
		writeError(w, http.StatusBadRequest, "center coordinates out of range")
		return
	}

	areas, err := s.comparer.CompareNearby(r.Context(), geo.BoundingArea{Center: req.Center, RadiusKm: req.RadiusKm})
	if err != nil {
		if errors.Is(err, assess.ErrNoComparisons) {
			writeError(w, http.StatusBadGateway, "no comparison areas could be produced")
			return
		}
		s.logger.Error("comparison failed", "error", err)
		writeError(w, http.StatusBadGateway, "comparison failed")
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{Areas: areas})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func validCoordinates(points []geo.Coordinate) bool {
	for _, p := range points {
		if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
