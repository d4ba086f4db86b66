package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/fieldscope/land-quality-service/internal/geo"
)

// SoilReading is the raw soil payload as delivered by the satellite API.
// Temperatures are in Kelvin, moisture is a volumetric fraction (usually).
type SoilReading struct {
	Dt       int64    `json:"dt"`
	T0       *float64 `json:"t0"`
	T10      *float64 `json:"t10"`
	Moisture *float64 `json:"moisture"`
}

// SoilSample is the normalized form: Celsius temperatures and
// percentage-scaled moisture. Absent or unparseable inputs are nil.
type SoilSample struct {
	TimestampUnix int64    `json:"timestamp_unix"`
	SurfaceTempC  *float64 `json:"surface_temp_c,omitempty"`
	Depth10TempC  *float64 `json:"depth_10cm_temp_c,omitempty"`
	MoisturePct   *float64 `json:"moisture_pct,omitempty"`
}

// NDVIData is the nested per-capture statistics object some NDVI history
// shapes carry. Either the aggregate fields or Value may be present.
type NDVIData struct {
	Mean   *float64 `json:"mean,omitempty"`
	Median *float64 `json:"median,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Std    *float64 `json:"std,omitempty"`
	Value  *float64 `json:"value,omitempty"`
}

// NDVIEntry is one time-stamped NDVI history entry in any of the tolerated
// wire shapes (see package doc).
type NDVIEntry struct {
	Dt    int64     `json:"dt"`
	Data  *NDVIData `json:"data,omitempty"`
	Value *float64  `json:"value,omitempty"`
}

// VegetationStats holds aggregate NDVI statistics. Each field is nil when the
// source data could not provide it; an all-nil value means vegetation data is
// unavailable for the area.
type VegetationStats struct {
	Mean   *float64 `json:"mean,omitempty"`
	Median *float64 `json:"median,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Std    *float64 `json:"std,omitempty"`
}

// Available reports whether any statistic is present.
func (v VegetationStats) Available() bool {
	return v.Mean != nil || v.Median != nil || v.Min != nil || v.Max != nil || v.Std != nil
}

// QualityLevel is the categorical land quality classification.
type QualityLevel string

const (
	LevelHigh     QualityLevel = "High"
	LevelModerate QualityLevel = "Moderate"
	LevelLow      QualityLevel = "Low"
)

// Condition status labels.
const (
	StatusUnknown = "unknown"

	TempCold    = "cold"
	TempOptimal = "optimal"
	TempWarm    = "warm"

	MoistureLow        = "low"
	MoistureModerate   = "moderate"
	MoistureSufficient = "sufficient"
	MoistureExcessive  = "excessive"

	VegetationVeryPoor  = "very_poor"
	VegetationPoor      = "poor"
	VegetationModerate  = "moderate"
	VegetationGood      = "good"
	VegetationExcellent = "excellent"
)

// TemperatureCondition pairs raw Celsius values with a status label.
type TemperatureCondition struct {
	SurfaceC *float64 `json:"surface_c,omitempty"`
	Depth10C *float64 `json:"depth_10cm_c,omitempty"`
	Status   string   `json:"status"`
}

// MoistureCondition carries the moisture percentage as a display string
// (e.g. "18.9%") plus its status label.
type MoistureCondition struct {
	Percent string `json:"percent,omitempty"`
	Status  string `json:"status"`
}

// VegetationCondition carries NDVI statistics formatted to 4 decimal places
// plus the status derived from the mean.
type VegetationCondition struct {
	NDVIMean   string `json:"ndvi_mean,omitempty"`
	NDVIMedian string `json:"ndvi_median,omitempty"`
	NDVIMin    string `json:"ndvi_min,omitempty"`
	NDVIMax    string `json:"ndvi_max,omitempty"`
	NDVIStd    string `json:"ndvi_std,omitempty"`
	Status     string `json:"status"`
}

// Conditions groups the three classified ground conditions.
type Conditions struct {
	Temperature TemperatureCondition `json:"temperature"`
	Moisture    MoistureCondition    `json:"moisture"`
	Vegetation  VegetationCondition  `json:"vegetation"`
}

// AnalysisResult is the fixed-shape assessment record for one area.
type AnalysisResult struct {
	ID              string       `json:"id"`
	Score           float64      `json:"score"`      // 0-100
	Confidence      float64      `json:"confidence"` // 0-1
	Level           QualityLevel `json:"level"`
	Summary         string       `json:"summary"`
	Recommendations []string     `json:"recommendations"`
	Conditions      Conditions   `json:"conditions"`
	AreaHa          *float64     `json:"area_ha,omitempty"`
	ProcessedAt     time.Time    `json:"processed_at"`
}

// ComparisonArea is one nearby area analyzed for comparison against an origin
// area, with its distance from the origin center.
type ComparisonArea struct {
	Ring       geo.Ring       `json:"ring"`
	Center     geo.Coordinate `json:"center"`
	DistanceKm float64        `json:"distance_km"`
	Result     AnalysisResult `json:"result"`
}

// PolygonInfo describes an area registered with the satellite API.
type PolygonInfo struct {
	ID     string         `json:"id"`
	Center geo.Coordinate `json:"center"`
	AreaHa float64        `json:"area_ha"`
}

// AdvisorInput is the normalized measurement set handed to the generative
// scoring collaborator.
type AdvisorInput struct {
	Sample     SoilSample      `json:"sample"`
	Vegetation VegetationStats `json:"vegetation"`
	AreaHa     *float64        `json:"area_ha,omitempty"`
}

// AdvisorAssessment is the loosely-typed verdict returned by the advisor.
// Confidence is kept as a raw string because the collaborator variously
// returns decimals, out-of-range decimals, and percentage strings; the
// scoring engine normalizes it. Any field may be absent.
type AdvisorAssessment struct {
	Score           *float64     `json:"score,omitempty"`
	Level           QualityLevel `json:"level,omitempty"`
	Confidence      string       `json:"confidence,omitempty"`
	Summary         string       `json:"summary,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
}

// GenerateAreaID produces a deterministic ID from a ring's vertices, so
// re-analyzing the same drawn area yields the same assessment ID.
func GenerateAreaID(ring geo.Ring) string {
	var b strings.Builder
	for _, v := range ring.Vertices() {
		fmt.Fprintf(&b, "%.6f,%.6f|", v.Lat, v.Lon)
	}
	hash := sha256.Sum256([]byte(b.String()))
	return "area-" + hex.EncodeToString(hash[:8])
}
