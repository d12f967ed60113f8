// Package projection converts geographic coordinates into a planar CRS using PROJ.
package projection

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/pebbe/proj/v5"

	"github.com/lorta04/h3-point-in-cell/internal/lib/geo"
)

// Default CRS pair: WGS84 degrees to Web Mercator meters
const (
	DefaultSourceCRS = "EPSG:4326"
	DefaultTargetCRS = "EPSG:3857"
)

// TestPointIndex marks a ConversionError raised for the test point rather than a ring vertex
const TestPointIndex = -1

// TransformError reports a CRS pair that PROJ cannot turn into a transform
type TransformError struct {
	Source string
	Target string
	Err    error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("failed to create PROJ transformer from %s to %s: %v", e.Source, e.Target, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// ConversionError reports a single coordinate that failed to convert
type ConversionError struct {
	Index int
	Point geo.GeoPoint
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Index == TestPointIndex {
		return fmt.Sprintf("project test point (%v, %v): %v", e.Point.Latitude, e.Point.Longitude, e.Err)
	}
	return fmt.Sprintf("project vertex %d (%v, %v): %v", e.Index, e.Point.Latitude, e.Point.Longitude, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ErrNonFinite is wrapped when PROJ returns an infinite or NaN coordinate
var ErrNonFinite = errors.New("result is not finite")

// Options configures a Projector
type Options struct {
	Source string
	Target string

	// SourceLatFirst passes geographic input as (lat, lon), the EPSG:4326 authority order
	SourceLatFirst bool
}

// DefaultOptions returns EPSG:4326 -> EPSG:3857 in authority axis order
func DefaultOptions() Options {
	return Options{
		Source:         DefaultSourceCRS,
		Target:         DefaultTargetCRS,
		SourceLatFirst: true,
	}
}

// Projector maps geographic points into a planar CRS and back
type Projector interface {
	Forward(p geo.GeoPoint) (geo.PlanarPoint, error)
	Inverse(p geo.PlanarPoint) (geo.GeoPoint, error)
	Source() string
	Target() string
}

// Transformer is a Projector backed by a PROJ CRS-to-CRS transform.
// PROJ contexts are not goroutine safe, so every call holds mu.
type Transformer struct {
	opts Options

	mu  sync.Mutex
	ctx *proj.Context
	pj  *proj.PJ
}

// New creates a Transformer for the source and target CRS
func New(opts Options) (*Transformer, error) {
	if strings.TrimSpace(opts.Source) == "" || strings.TrimSpace(opts.Target) == "" {
		return nil, &TransformError{Source: opts.Source, Target: opts.Target, Err: errors.New("empty CRS identifier")}
	}

	ctx := proj.NewContext()
	pj, err := ctx.CreateCRS2CRS(opts.Source, opts.Target)
	if err != nil {
		ctx.Close()
		return nil, &TransformError{Source: opts.Source, Target: opts.Target, Err: err}
	}

	return &Transformer{opts: opts, ctx: ctx, pj: pj}, nil
}

// Source returns the source CRS identifier
func (t *Transformer) Source() string { return t.opts.Source }

// Target returns the target CRS identifier
func (t *Transformer) Target() string { return t.opts.Target }

// Forward projects a geographic point
func (t *Transformer) Forward(p geo.GeoPoint) (geo.PlanarPoint, error) {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) || math.IsInf(p.Latitude, 0) || math.IsInf(p.Longitude, 0) {
		return geo.PlanarPoint{}, ErrNonFinite
	}

	a, b := p.Longitude, p.Latitude
	if t.opts.SourceLatFirst {
		a, b = p.Latitude, p.Longitude
	}

	x, y, err := t.trans(proj.Fwd, a, b)
	if err != nil {
		return geo.PlanarPoint{}, err
	}
	return geo.PlanarPoint{X: x, Y: y}, nil
}

// Inverse maps a planar point back to geographic coordinates
func (t *Transformer) Inverse(p geo.PlanarPoint) (geo.GeoPoint, error) {
	a, b, err := t.trans(proj.Inv, p.X, p.Y)
	if err != nil {
		return geo.GeoPoint{}, err
	}

	if t.opts.SourceLatFirst {
		return geo.GeoPoint{Latitude: a, Longitude: b}, nil
	}
	return geo.GeoPoint{Latitude: b, Longitude: a}, nil
}

// trans runs one 2D transform in the given direction
func (t *Transformer) trans(direction proj.Direction, u, v float64) (float64, float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pj == nil {
		return 0, 0, errors.New("transformer is closed")
	}

	u2, v2, _, _, err := t.pj.Trans(direction, u, v, 0, 0)
	if err != nil {
		return 0, 0, err
	}
	if math.IsNaN(u2) || math.IsNaN(v2) || math.IsInf(u2, 0) || math.IsInf(v2, 0) {
		return 0, 0, ErrNonFinite
	}
	return u2, v2, nil
}

// Close releases the PROJ objects. Safe to call more than once.
func (t *Transformer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pj != nil {
		t.pj.Close()
		t.pj = nil
	}
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}
}

// ProjectPoint projects the test point, tagging failures with TestPointIndex
func ProjectPoint(p Projector, point geo.GeoPoint) (geo.PlanarPoint, error) {
	planar, err := p.Forward(point)
	if err != nil {
		return geo.PlanarPoint{}, &ConversionError{Index: TestPointIndex, Point: point, Err: err}
	}
	return planar, nil
}

// ProjectRing projects every vertex of ring.
//
// All vertices are attempted. The returned polygon holds the vertices that
// converted, in ring order; err joins one *ConversionError per failed vertex.
func ProjectRing(p Projector, ring geo.Ring) (geo.Polygon, error) {
	polygon := make(geo.Polygon, 0, len(ring))
	var errs []error

	for i, vertex := range ring {
		planar, err := p.Forward(vertex)
		if err != nil {
			errs = append(errs, &ConversionError{Index: i, Point: vertex, Err: err})
			continue
		}
		polygon = append(polygon, planar)
	}

	return polygon, errors.Join(errs...)
}

// FailedVertices extracts the ConversionErrors joined into err
func FailedVertices(err error) []*ConversionError {
	if err == nil {
		return nil
	}

	var failed []*ConversionError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			failed = append(failed, FailedVertices(e)...)
		}
		return failed
	}

	var convErr *ConversionError
	if errors.As(err, &convErr) {
		failed = append(failed, convErr)
	}
	return failed
}
