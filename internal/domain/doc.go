// Package domain models satellite soil and vegetation measurements for drawn
// ground areas and turns them into agronomic quality assessments.
//
// # Data Source
//
// Measurements come from an agro-monitoring satellite API. A drawn area is
// first registered as a polygon; the polygon ID is then used to query current
// soil data and NDVI history. Both payloads are best-effort and frequently
// partial, so every extraction in this package degrades to nil fields rather
// than failing.
//
// # Soil Data Conventions
//
// The soil endpoint returns:
//
//	{ "dt": <unix seconds>, "t0": <kelvin>, "t10": <kelvin>, "moisture": <fraction> }
//
// t0 is surface temperature, t10 is temperature at 10 cm depth, both in
// Kelvin. Moisture is a volumetric fraction, usually in [0, 1), but some
// responses deliver it pre-scaled as a percentage. The heuristic: values < 1
// are fractions and are multiplied by 100; values >= 1 are assumed to already
// be percentages. This is ambiguous for a genuinely sub-1% reading, a known
// upstream data quirk that is preserved, not guessed around.
//
// # NDVI Payload Shapes
//
// NDVI history entries arrive in one of three shapes, tried in order by the
// normalizer, first match wins:
//
//  1. {"dt": ..., "data": {"mean": ..., "median": ..., "min": ..., "max": ..., "std": ...}}
//     per-capture pre-aggregated statistics
//  2. {"dt": ..., "data": {"value": ...}} single scalar per capture
//  3. {"dt": ..., "value": ...} flat scalar, no nested object
//
// Anything else yields all-nil statistics ("vegetation data unavailable").
// NDVI is mathematically bounded to [-1, 1]; values outside that range are
// discarded before aggregation.
//
// # Quality Classification
//
// Condition statuses use fixed agronomic thresholds:
//
//	Temperature (surface): <5°C cold | 5-25°C optimal | >25°C warm
//	Moisture (percent):    <20 low | 20-30 moderate | 30-70 sufficient | >70 excessive
//	Vegetation (NDVI mean): <0.1 very_poor | <0.3 poor | <0.5 moderate | <0.7 good | ≥0.7 excellent
//
// Missing inputs classify as "unknown". The overall quality level is
// High | Moderate | Low, with the fallback numeric mapping High→80,
// Moderate→60, Low→30 so consumers always receive a score in [0, 100].
//
// # ID Generation
//
// Assessment IDs are deterministic SHA-256 hashes of the ring's vertices, so
// re-analyzing the same drawn area produces the same ID. See [GenerateAreaID].
package domain
