// Package pipeline resolves a cell boundary, projects it with the test point
// and runs the containment test.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lorta04/h3-point-in-cell/internal/cache"
	"github.com/lorta04/h3-point-in-cell/internal/lib/cell"
	"github.com/lorta04/h3-point-in-cell/internal/lib/geo"
	"github.com/lorta04/h3-point-in-cell/internal/lib/projection"
)

// ErrInvalidTolerance is returned for a negative or non-finite epsilon
var ErrInvalidTolerance = errors.New("tolerance must be a finite, non-negative number")

// ErrNoPolygon is returned when a request names neither a cell nor a ring
var ErrNoPolygon = errors.New("request needs a cell id or a ring")

// Request is a single containment check
type Request struct {
	// CellID names an H3 cell. Ignored when Ring is set.
	CellID string
	// Ring is an explicit geographic polygon, counter-clockwise
	Ring geo.Ring

	Point   geo.GeoPoint
	Epsilon float64
}

func (r Request) label() string {
	if len(r.Ring) > 0 {
		return fmt.Sprintf("ring of %d vertices", len(r.Ring))
	}
	return "cell " + r.CellID
}

// Result holds every intermediate value of a check
type Result struct {
	CellID  string
	Point   geo.GeoPoint
	Epsilon float64

	Boundary       geo.Ring
	ProjectedPoint geo.PlanarPoint
	Polygon        geo.Polygon
	SignedArea     float64
	EdgeMargins    []float64

	// VertexErrors lists vertices dropped in partial-ring mode
	VertexErrors []*projection.ConversionError

	SourceCRS string
	TargetCRS string

	Inside bool
}

// ProjectedCell is the cached form of a resolved and projected cell
type ProjectedCell struct {
	boundary geo.Ring
	polygon  geo.Polygon
	dropped  []*projection.ConversionError
}

// Pipeline runs containment checks
type Pipeline struct {
	resolver  cell.Resolver
	projector projection.Projector

	logger       *zap.Logger
	polygons     *cache.Cache[ProjectedCell]
	checkWinding bool
	partialRing  bool
	concurrency  int
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger (default no-op)
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithWindingCheck enables the counter-clockwise check on projected polygons
func WithWindingCheck(enabled bool) Option {
	return func(p *Pipeline) { p.checkWinding = enabled }
}

// WithPartialRing drops vertices that fail to project instead of failing the check
func WithPartialRing(enabled bool) Option {
	return func(p *Pipeline) { p.partialRing = enabled }
}

// WithCache shares a projected-cell cache between pipelines using the same
// resolver and projector
func WithCache(c *cache.Cache[ProjectedCell]) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.polygons = c
		}
	}
}

// WithConcurrency bounds the number of checks CheckBatch runs at once; 0 means GOMAXPROCS
func WithConcurrency(n int) Option {
	return func(p *Pipeline) { p.concurrency = n }
}

// New creates a Pipeline
func New(resolver cell.Resolver, projector projection.Projector, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver:     resolver,
		projector:    projector,
		logger:       zap.NewNop(),
		polygons:     cache.New[ProjectedCell](),
		checkWinding: true,
		concurrency:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.concurrency < 1 {
		p.concurrency = runtime.GOMAXPROCS(0)
	}
	return p
}

// CacheStats reports projected-cell cache usage
func (p *Pipeline) CacheStats() cache.Stats {
	return p.polygons.Stats()
}

// Check runs one containment check
func (p *Pipeline) Check(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if math.IsNaN(req.Epsilon) || math.IsInf(req.Epsilon, 0) || req.Epsilon < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTolerance, req.Epsilon)
	}
	if err := req.Point.Validate(); err != nil {
		return nil, err
	}

	ring, err := p.projectPolygon(req)
	if err != nil {
		return nil, err
	}

	projected, err := projection.ProjectPoint(p.projector, req.Point)
	if err != nil {
		return nil, err
	}

	if p.checkWinding {
		if err := geo.CheckWinding(ring.polygon); err != nil {
			return nil, fmt.Errorf("%s: %w", req.label(), err)
		}
	}

	inside := geo.IsInside(projected, ring.polygon, req.Epsilon)

	p.logger.Debug("Containment check",
		zap.String("polygon", req.label()),
		zap.Float64("lat", req.Point.Latitude),
		zap.Float64("lon", req.Point.Longitude),
		zap.Float64("epsilon", req.Epsilon),
		zap.Int("vertices", len(ring.polygon)),
		zap.Bool("inside", inside),
	)

	return &Result{
		CellID:         req.CellID,
		Point:          req.Point,
		Epsilon:        req.Epsilon,
		Boundary:       ring.boundary,
		ProjectedPoint: projected,
		Polygon:        ring.polygon,
		SignedArea:     geo.SignedArea(ring.polygon),
		EdgeMargins:    geo.EdgeMargins(projected, ring.polygon),
		VertexErrors:   ring.dropped,
		SourceCRS:      p.projector.Source(),
		TargetCRS:      p.projector.Target(),
		Inside:         inside,
	}, nil
}

// projectPolygon resolves and projects the request polygon.
// Cell polygons are cached by id and vertex failure mode; explicit rings are
// projected every time.
func (p *Pipeline) projectPolygon(req Request) (ProjectedCell, error) {
	if len(req.Ring) > 0 {
		return p.project(req.Ring)
	}
	if req.CellID == "" {
		return ProjectedCell{}, ErrNoPolygon
	}

	return p.polygons.GetOrCreate(p.cacheKey(req.CellID), func() (ProjectedCell, error) {
		boundary, err := p.resolver.Boundary(req.CellID)
		if err != nil {
			return ProjectedCell{}, err
		}
		return p.project(boundary)
	})
}

// cacheKey separates partial-ring entries so a strict pipeline sharing the
// cache never sees a polygon with dropped vertices
func (p *Pipeline) cacheKey(cellID string) string {
	if p.partialRing {
		return cellID + "/partial"
	}
	return cellID
}

func (p *Pipeline) project(boundary geo.Ring) (ProjectedCell, error) {
	polygon, err := projection.ProjectRing(p.projector, boundary)
	if err == nil {
		return ProjectedCell{boundary: boundary, polygon: polygon}, nil
	}

	failed := projection.FailedVertices(err)
	if !p.partialRing || len(polygon) < geo.MinVertices {
		return ProjectedCell{}, err
	}

	for _, f := range failed {
		p.logger.Warn("Dropping vertex that failed to project",
			zap.Int("index", f.Index),
			zap.Float64("lat", f.Point.Latitude),
			zap.Float64("lon", f.Point.Longitude),
			zap.Error(f.Err),
		)
	}

	kept := make(geo.Ring, 0, len(polygon))
	dropped := make(map[int]bool, len(failed))
	for _, f := range failed {
		dropped[f.Index] = true
	}
	for i, v := range boundary {
		if !dropped[i] {
			kept = append(kept, v)
		}
	}

	return ProjectedCell{boundary: kept, polygon: polygon, dropped: failed}, nil
}

// BatchResult pairs a request with its outcome
type BatchResult struct {
	Index   int
	Request Request
	Result  *Result
	Err     error
}

// CheckBatch runs independent checks in parallel.
// Every request gets a BatchResult in input order; a failed check does not
// stop the others. Cancelling ctx marks unstarted checks with ctx.Err().
func (p *Pipeline) CheckBatch(ctx context.Context, reqs []Request) []BatchResult {
	results := make([]BatchResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, req := range reqs {
		results[i] = BatchResult{Index: i, Request: req}
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			res, err := p.Check(gctx, req)
			results[i].Result = res
			results[i].Err = err
			return nil
		})
	}

	_ = g.Wait()

	p.logger.Debug("Batch complete", zap.Int("checks", len(reqs)))
	return results
}
