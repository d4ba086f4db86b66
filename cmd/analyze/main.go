// Command analyze runs a one-shot area assessment from the command line,
// without the HTTP server. It reads a ring from a JSON file (an array of
// {"lat","lon"} points), analyzes it against the live satellite API, and
// prints the result as JSON.
//
// Usage:
//
//	AGRO_API_KEY=... go run ./cmd/analyze -ring field.json
//	AGRO_API_KEY=... go run ./cmd/analyze -ring field.json -compare -radius-km 25
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fieldscope/land-quality-service/internal/adapter/advisor"
	"github.com/fieldscope/land-quality-service/internal/adapter/agro"
	"github.com/fieldscope/land-quality-service/internal/assess"
	"github.com/fieldscope/land-quality-service/internal/config"
	"github.com/fieldscope/land-quality-service/internal/domain"
	"github.com/fieldscope/land-quality-service/internal/geo"
	"github.com/fieldscope/land-quality-service/internal/observability"
)

func main() {
	ringPath := flag.String("ring", "", "path to a JSON file holding the area ring as [{\"lat\":..,\"lon\":..},...]")
	compare := flag.Bool("compare", false, "also sample and rank nearby comparison areas")
	radiusKm := flag.Float64("radius-km", 25, "comparison sampling radius in kilometers")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall run timeout")
	flag.Parse()

	if *ringPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*ringPath, *compare, *radiusKm, *timeout); code != 0 {
		os.Exit(code)
	}
}

func run(ringPath string, compare bool, radiusKm float64, timeout time.Duration) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	data, err := os.ReadFile(ringPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read ring:", err)
		return 1
	}
	var ring geo.Ring
	if err := json.Unmarshal(data, &ring); err != nil {
		fmt.Fprintln(os.Stderr, "parse ring:", err)
		return 1
	}
	if len(ring.Vertices()) < 3 {
		fmt.Fprintln(os.Stderr, "ring requires at least 3 points")
		return 1
	}

	logger := observability.NewLogger(cfg.LogLevel, "text")
	metrics := observability.NewMetrics()

	agroClient := agro.NewClient(cfg.AgroAPIKey, cfg.AgroBaseURL, cfg.AgroTimeout, metrics, logger)
	polygons := agro.NewCachedPolygonCreator(agroClient, cfg.PolygonCacheSize, metrics)

	var adv domain.Advisor
	if cfg.AdvisorEnabled {
		adv = advisor.NewClient(cfg.AdvisorAPIKey, cfg.AdvisorBaseURL, cfg.AdvisorModel, cfg.AdvisorTimeout, logger)
	}

	service := assess.NewService(polygons, agroClient, agroClient, adv, nil, nil, logger, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := service.AnalyzeArea(ctx, ring)
	if err != nil {
		fmt.Fprintln(os.Stderr, "analyze:", err)
		return 1
	}

	out := struct {
		Result      domain.AnalysisResult   `json:"result"`
		Comparisons []domain.ComparisonArea `json:"comparisons,omitempty"`
	}{Result: result}

	if compare {
		comparer := assess.NewComparer(service, logger, metrics)
		origin := geo.BoundingArea{Center: ring.Centroid(), RadiusKm: radiusKm}
		areas, err := comparer.CompareNearby(ctx, origin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "compare:", err)
			return 1
		}
		out.Comparisons = areas
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, "encode result:", err)
		return 1
	}
	return 0
}
