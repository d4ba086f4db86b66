package domain

import (
	"math"
	"sort"
)

const kelvinZeroCelsius = 273.15

// NormalizeSoil converts a raw soil payload into a SoilSample: Kelvin to
// Celsius, moisture fraction to percentage. Absent or NaN inputs become nil
// fields; this function never fails.
func NormalizeSoil(raw SoilReading) SoilSample {
	return SoilSample{
		TimestampUnix: raw.Dt,
		SurfaceTempC:  kelvinToCelsius(raw.T0),
		Depth10TempC:  kelvinToCelsius(raw.T10),
		MoisturePct:   normalizeMoisture(raw.Moisture),
	}
}

func kelvinToCelsius(k *float64) *float64 {
	if k == nil || math.IsNaN(*k) {
		return nil
	}
	c := *k - kelvinZeroCelsius
	return &c
}

// normalizeMoisture scales a volumetric fraction to a percentage. Values >= 1
// are assumed to already be percentages and pass through unchanged. The < 1
// threshold is ambiguous for a genuinely sub-1% reading; that ambiguity comes
// from the upstream API and is preserved as documented.
func normalizeMoisture(m *float64) *float64 {
	if m == nil || math.IsNaN(*m) {
		return nil
	}
	v := *m
	if v < 1 {
		v *= 100
	}
	return &v
}

// ndviExtractor attempts to derive aggregate statistics from one payload
// shape. The boolean reports whether the shape matched with usable data.
type ndviExtractor func(entries []NDVIEntry) (VegetationStats, bool)

// ndviExtractors is the fixed-priority shape dispatch. First match wins.
var ndviExtractors = []ndviExtractor{
	extractPreAggregated,
	extractNestedValues,
	extractFlatValues,
}

// ExtractVegetationStats normalizes NDVI history entries of any tolerated
// shape into aggregate statistics. Unrecognizable payloads degrade to all-nil
// stats rather than an error.
func ExtractVegetationStats(entries []NDVIEntry) VegetationStats {
	for _, extract := range ndviExtractors {
		if stats, ok := extract(entries); ok {
			return stats
		}
	}
	return VegetationStats{}
}

// HasUsableNDVI reports whether at least one entry carries a non-nil numeric
// field in any recognized position. Used as the early-exit predicate for the
// shrinking time-window retry.
func HasUsableNDVI(entries []NDVIEntry) bool {
	for _, e := range entries {
		if e.Value != nil {
			return true
		}
		if e.Data != nil && (e.Data.Mean != nil || e.Data.Median != nil ||
			e.Data.Min != nil || e.Data.Max != nil || e.Data.Std != nil || e.Data.Value != nil) {
			return true
		}
	}
	return false
}

// extractPreAggregated handles entries carrying per-capture statistics under
// data.mean. A single capture contributes its own statistics directly; with
// multiple captures the statistics are recomputed across all captures' means
// (uniform weight per capture), which is preferred over any one capture's
// internal spread.
func extractPreAggregated(entries []NDVIEntry) (VegetationStats, bool) {
	var captures []NDVIEntry
	for _, e := range entries {
		if e.Data != nil && validNDVI(e.Data.Mean) {
			captures = append(captures, e)
		}
	}
	if len(captures) == 0 {
		return VegetationStats{}, false
	}

	if len(captures) == 1 {
		d := captures[0].Data
		return VegetationStats{
			Mean:   boundedOrNil(d.Mean),
			Median: boundedOrNil(d.Median),
			Min:    boundedOrNil(d.Min),
			Max:    boundedOrNil(d.Max),
			Std:    d.Std,
		}, true
	}

	// Latest-entry baseline is superseded by the multi-capture aggregate.
	means := make([]float64, 0, len(captures))
	for _, c := range captures {
		means = append(means, *c.Data.Mean)
	}
	return aggregateNDVI(means), true
}

// extractNestedValues handles entries carrying a single scalar under data.value.
func extractNestedValues(entries []NDVIEntry) (VegetationStats, bool) {
	var values []float64
	for _, e := range entries {
		if e.Data != nil && validNDVI(e.Data.Value) {
			values = append(values, *e.Data.Value)
		}
	}
	if len(values) == 0 {
		return VegetationStats{}, false
	}
	return aggregateNDVI(values), true
}

// extractFlatValues handles entries carrying a top-level value with no nested
// data object.
func extractFlatValues(entries []NDVIEntry) (VegetationStats, bool) {
	var values []float64
	for _, e := range entries {
		if validNDVI(e.Value) {
			values = append(values, *e.Value)
		}
	}
	if len(values) == 0 {
		return VegetationStats{}, false
	}
	return aggregateNDVI(values), true
}

// validNDVI reports whether v is a present, finite NDVI value in [-1, 1].
func validNDVI(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && *v >= -1 && *v <= 1
}

// boundedOrNil drops out-of-range pass-through statistics.
func boundedOrNil(v *float64) *float64 {
	if !validNDVI(v) {
		return nil
	}
	return v
}

// aggregateNDVI computes mean, median, min, max, and population standard
// deviation over a non-empty value set. A single-element set has std 0.
func aggregateNDVI(values []float64) VegetationStats {
	mean := meanOf(values)
	median := medianOf(values)
	min := values[0]
	max := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	std := populationStd(values, mean)
	return VegetationStats{Mean: &mean, Median: &median, Min: &min, Max: &max, Std: &std}
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

func populationStd(values []float64, mean float64) float64 {
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
