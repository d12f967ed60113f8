package geo

// GeoPoint represents a geographic coordinate in degrees
type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// PlanarPoint represents a projected coordinate in meters
type PlanarPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon is an ordered ring of planar vertices.
// Vertices are expected counter-clockwise with no closing duplicate;
// the last edge wraps back to the first vertex.
type Polygon []PlanarPoint

// Ring is an ordered sequence of geographic vertices, no closing duplicate
type Ring []GeoPoint

// Edge returns the i-th edge, wrapping around on the last one
func (p Polygon) Edge(i int) (PlanarPoint, PlanarPoint) {
	n := len(p)
	return p[i%n], p[(i+1)%n]
}

// Rotate returns a copy of the polygon starting at vertex offset
func (p Polygon) Rotate(offset int) Polygon {
	n := len(p)
	if n == 0 {
		return Polygon{}
	}
	offset = ((offset % n) + n) % n

	rotated := make(Polygon, 0, n)
	rotated = append(rotated, p[offset:]...)
	rotated = append(rotated, p[:offset]...)
	return rotated
}
