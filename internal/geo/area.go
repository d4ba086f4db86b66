package geo

import "math"

// RectangleAreaM2 computes the area in square meters of an axis-aligned
// rectangle given as a 4-5 point ring (closing point optional). Width and
// height are measured as great-circle distances from a shared corner, so the
// result is a planar approximation valid for the field-sized rectangles this
// service handles.
func RectangleAreaM2(ring Ring) float64 {
	corners := ring.Vertices()
	if len(corners) < 4 {
		return 0
	}
	widthKm := HaversineKm(corners[0], corners[1])
	heightKm := HaversineKm(corners[0], corners[len(corners)-1])
	return widthKm * heightKm * 1e6
}

// PolygonAreaM2 computes the area in square meters of a simple polygon on the
// sphere by fan triangulation from the first vertex: each consecutive triangle
// contributes its spherical excess (L'Huilier's formula), and the excess sum
// times R^2 gives the area. Returns 0 for fewer than 3 distinct points.
//
// Winding and simplicity are not validated; a self-intersecting ring produces
// a meaningless but finite result.
func PolygonAreaM2(ring Ring) float64 {
	verts := distinctVertices(ring)
	if len(verts) < 3 {
		return 0
	}

	var totalExcess float64
	for i := 1; i < len(verts)-1; i++ {
		totalExcess += sphericalExcess(verts[0], verts[i], verts[i+1])
	}
	return totalExcess * EarthRadiusMeters * EarthRadiusMeters
}

// sphericalExcess returns the spherical excess of the triangle a-b-c via
// L'Huilier's formula. The radicand is clamped to zero: near-collinear
// triangles can drive it slightly negative through floating-point error.
func sphericalExcess(a, b, c Coordinate) float64 {
	ab := arcAngle(a, b)
	bc := arcAngle(b, c)
	ca := arcAngle(c, a)
	s := (ab + bc + ca) / 2

	radicand := math.Tan(s/2) * math.Tan((s-ab)/2) * math.Tan((s-bc)/2) * math.Tan((s-ca)/2)
	if radicand < 0 {
		radicand = 0
	}
	return 4 * math.Atan(math.Sqrt(radicand))
}

// distinctVertices drops the closing point and any consecutive duplicates.
func distinctVertices(ring Ring) []Coordinate {
	verts := ring.Vertices()
	out := make([]Coordinate, 0, len(verts))
	for _, v := range verts {
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	return out
}
