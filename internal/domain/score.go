package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ClassifyTemperature maps a surface temperature in Celsius to a status label.
func ClassifyTemperature(surfaceC *float64) string {
	if surfaceC == nil {
		return StatusUnknown
	}
	switch {
	case *surfaceC < 5:
		return TempCold
	case *surfaceC > 25:
		return TempWarm
	default:
		return TempOptimal
	}
}

// ClassifyMoisture maps a moisture percentage to a status label.
func ClassifyMoisture(pct *float64) string {
	if pct == nil {
		return StatusUnknown
	}
	switch {
	case *pct < 20:
		return MoistureLow
	case *pct > 70:
		return MoistureExcessive
	case *pct <= 30:
		return MoistureModerate
	default:
		return MoistureSufficient
	}
}

// ClassifyVegetation maps an NDVI mean to a status label.
func ClassifyVegetation(ndviMean *float64) string {
	if ndviMean == nil {
		return StatusUnknown
	}
	switch {
	case *ndviMean < 0.1:
		return VegetationVeryPoor
	case *ndviMean < 0.3:
		return VegetationPoor
	case *ndviMean < 0.5:
		return VegetationModerate
	case *ndviMean < 0.7:
		return VegetationGood
	default:
		return VegetationExcellent
	}
}

// CompletenessConfidence derives a confidence value from which measurements
// are actually present: surface temp 0.15, depth temp 0.15, moisture 0.25,
// NDVI mean 0.25, known polygon area 0.20. Used whenever the advisor supplies
// no usable confidence of its own.
func CompletenessConfidence(sample SoilSample, veg VegetationStats, areaKnown bool) float64 {
	c := 0.0
	if sample.SurfaceTempC != nil {
		c += 0.15
	}
	if sample.Depth10TempC != nil {
		c += 0.15
	}
	if sample.MoisturePct != nil {
		c += 0.25
	}
	if veg.Mean != nil {
		c += 0.25
	}
	if areaKnown {
		c += 0.20
	}
	return c
}

// NormalizeConfidence parses a collaborator-supplied confidence that may be a
// decimal, an out-of-range decimal, or a percentage string ("85%"). Values
// above 1 are treated as percentages and divided by 100. Unparseable input
// falls back to the given completeness-based confidence; NaN never escapes.
func NormalizeConfidence(raw string, fallback float64) float64 {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return fallback
	}
	if v > 1 {
		v /= 100
	}
	if v < 0 || v > 1 {
		return fallback
	}
	return v
}

// ScoreFromLevel maps a categorical quality level to a representative numeric
// score, so downstream consumers always receive a number in [0, 100].
func ScoreFromLevel(level QualityLevel) float64 {
	switch level {
	case LevelHigh:
		return 80
	case LevelModerate:
		return 60
	default:
		return 30
	}
}

// LevelFromScore is the reverse mapping, chosen so the ScoreFromLevel values
// map back to their own level.
func LevelFromScore(score float64) QualityLevel {
	switch {
	case score >= 75:
		return LevelHigh
	case score >= 50:
		return LevelModerate
	default:
		return LevelLow
	}
}

// statusScores are the heuristic sub-scores used when no advisor verdict is
// available. Unknown statuses sit at a neutral 50.
var statusScores = map[string]float64{
	StatusUnknown: 50,

	TempCold:    60,
	TempOptimal: 100,
	TempWarm:    60,

	MoistureLow:        40,
	MoistureSufficient: 100,
	MoistureExcessive:  40,

	VegetationVeryPoor:  15,
	VegetationPoor:      35,
	VegetationModerate:  60,
	VegetationGood:      80,
	VegetationExcellent: 95,
}

// HeuristicScore derives a numeric score from the three condition statuses
// (temperature 0.25, moisture 0.35, vegetation 0.40).
func HeuristicScore(tempStatus, moistureStatus, vegetationStatus string) float64 {
	return 0.25*statusScores[tempStatus] + 0.35*statusScores[moistureStatus] + 0.40*statusScores[vegetationStatus]
}

// defaultRecommendation is the sentinel emitted when no recommendations exist
// at all; short lists are otherwise passed through untouched.
const defaultRecommendation = "No specific recommendations available for this area."

// BuildResult assembles the fixed-shape assessment record from normalized
// measurements and an optional advisor verdict. Score resolution order:
// advisor numeric score, advisor level fallback (High→80/Moderate→60/Low→30),
// then the deterministic heuristic. Confidence resolution: advisor confidence
// normalized, else data completeness.
func BuildResult(id string, sample SoilSample, veg VegetationStats, areaHa *float64, advisor *AdvisorAssessment) AnalysisResult {
	tempStatus := ClassifyTemperature(sample.SurfaceTempC)
	moistureStatus := ClassifyMoisture(sample.MoisturePct)
	vegStatus := ClassifyVegetation(veg.Mean)

	completeness := CompletenessConfidence(sample, veg, areaHa != nil)

	var (
		score           float64
		level           QualityLevel
		confidence      = completeness
		summary         string
		recommendations []string
	)

	switch {
	case advisor != nil && advisor.Score != nil:
		score = math.Max(0, math.Min(100, *advisor.Score))
		level = advisor.Level
		if level == "" {
			level = LevelFromScore(score)
		}
	case advisor != nil && advisor.Level != "":
		level = advisor.Level
		score = ScoreFromLevel(level)
	default:
		score = HeuristicScore(tempStatus, moistureStatus, vegStatus)
		level = LevelFromScore(score)
	}

	if advisor != nil {
		confidence = NormalizeConfidence(advisor.Confidence, completeness)
		summary = advisor.Summary
		recommendations = advisor.Recommendations
	}

	if summary == "" {
		summary = fmt.Sprintf("Overall %s land quality (score %.1f): temperature %s, moisture %s, vegetation %s.",
			strings.ToLower(string(level)), score, tempStatus, moistureStatus, vegStatus)
	}
	if len(recommendations) == 0 {
		recommendations = []string{defaultRecommendation}
	}

	return AnalysisResult{
		ID:         id,
		Score:      score,
		Confidence: confidence,
		Level:      level,
		Summary:    summary,
		Conditions: Conditions{
			Temperature: TemperatureCondition{
				SurfaceC: sample.SurfaceTempC,
				Depth10C: sample.Depth10TempC,
				Status:   tempStatus,
			},
			Moisture: MoistureCondition{
				Percent: formatPercent(sample.MoisturePct),
				Status:  moistureStatus,
			},
			Vegetation: VegetationCondition{
				NDVIMean:   formatNDVI(veg.Mean),
				NDVIMedian: formatNDVI(veg.Median),
				NDVIMin:    formatNDVI(veg.Min),
				NDVIMax:    formatNDVI(veg.Max),
				NDVIStd:    formatNDVI(veg.Std),
				Status:     vegStatus,
			},
		},
		Recommendations: recommendations,
		AreaHa:          areaHa,
		ProcessedAt:     clock.Now(),
	}
}

func formatPercent(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f%%", *v)
}

func formatNDVI(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}
