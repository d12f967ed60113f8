package geo

import (
	"fmt"
)

// MinVertices is the smallest vertex count that encloses an area
const MinVertices = 3

// WindingError reports a polygon that is not counter-clockwise
type WindingError struct {
	Vertices   int
	SignedArea float64
}

func (e *WindingError) Error() string {
	if e.Vertices < MinVertices {
		return fmt.Sprintf("polygon has %d vertices, need at least %d", e.Vertices, MinVertices)
	}
	return fmt.Sprintf("polygon is not counter-clockwise (signed area %.3f)", e.SignedArea)
}

// Cross returns twice the signed area of the triangle (a, b, p).
// Positive when p lies to the left of the directed edge a->b.
func Cross(a, b, p PlanarPoint) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// IsInside reports whether point lies inside a convex counter-clockwise polygon.
//
// Each edge must have the point on its left side; epsilon is the slack allowed
// on the cross product, so it is an area (squared meters under a metric CRS),
// not a distance. A point on an edge is inside. Polygons with fewer than three
// vertices contain nothing.
func IsInside(point PlanarPoint, polygon Polygon, epsilon float64) bool {
	n := len(polygon)
	if n < MinVertices {
		return false
	}

	for i := 0; i < n; i++ {
		a := polygon[i]
		b := polygon[(i+1)%n]

		if Cross(a, b, point) < -epsilon {
			return false
		}
	}

	return true
}

// EdgeMargins returns the cross product of point against every edge, in edge order.
// A negative margin is the amount by which the point is outside that edge.
func EdgeMargins(point PlanarPoint, polygon Polygon) []float64 {
	n := len(polygon)
	margins := make([]float64, n)
	for i := 0; i < n; i++ {
		a, b := polygon.Edge(i)
		margins[i] = Cross(a, b, point)
	}
	return margins
}

// SignedArea returns the shoelace area of the polygon.
// Positive for counter-clockwise winding, negative for clockwise.
func SignedArea(polygon Polygon) float64 {
	n := len(polygon)
	if n < MinVertices {
		return 0
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		a, b := polygon.Edge(i)
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// CheckWinding returns a *WindingError unless the polygon is counter-clockwise
// with a positive area.
func CheckWinding(polygon Polygon) error {
	if len(polygon) < MinVertices {
		return &WindingError{Vertices: len(polygon)}
	}

	area := SignedArea(polygon)
	if !(area > 0) {
		return &WindingError{Vertices: len(polygon), SignedArea: area}
	}
	return nil
}
