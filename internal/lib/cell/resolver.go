// Package cell resolves H3 cell identifiers into geographic boundaries.
package cell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	h3 "github.com/uber/h3-go/v4"

	"github.com/lorta04/h3-point-in-cell/internal/lib/geo"
)

// maxResolution is the finest H3 resolution
const maxResolution = 15

// ErrInvalidCell is wrapped by every ParseError
var ErrInvalidCell = errors.New("invalid H3 cell index")

// ErrEmptyBoundary is returned when H3 yields no vertices for a valid cell
var ErrEmptyBoundary = errors.New("empty cell boundary")

// ParseError reports a cell identifier that does not name a valid H3 cell
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil && !errors.Is(e.Err, ErrInvalidCell) {
		return fmt.Sprintf("%s %q: %v", ErrInvalidCell, e.Input, e.Err)
	}
	return fmt.Sprintf("%s %q", ErrInvalidCell, e.Input)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil || errors.Is(e.Err, ErrInvalidCell) {
		return []error{ErrInvalidCell}
	}
	return []error{ErrInvalidCell, e.Err}
}

// Info describes a cell for reporting
type Info struct {
	ID         string
	Resolution int
	BaseCell   int
	Center     geo.GeoPoint
}

// Resolver turns cell identifiers into boundaries.
type Resolver interface {
	// Boundary returns the cell's vertices in counter-clockwise order, no closing duplicate
	Boundary(cellID string) (geo.Ring, error)

	// Info returns resolution, base cell and center of the cell
	Info(cellID string) (Info, error)

	// CellForPoint returns the id of the cell containing p at the given resolution
	CellForPoint(p geo.GeoPoint, resolution int) (string, error)
}

// h3Resolver implements Resolver on top of uber/h3-go
type h3Resolver struct{}

// NewResolver creates an H3 backed Resolver
func NewResolver() Resolver {
	return h3Resolver{}
}

// Parse converts a hexadecimal cell identifier into an H3 cell
func Parse(cellID string) (h3.Cell, error) {
	trimmed := strings.TrimSpace(cellID)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if trimmed == "" {
		return 0, &ParseError{Input: cellID}
	}

	value, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, &ParseError{Input: cellID, Err: err}
	}

	c := h3.Cell(value)
	if !c.IsValid() {
		return 0, &ParseError{Input: cellID}
	}
	return c, nil
}

func (h3Resolver) Boundary(cellID string) (geo.Ring, error) {
	c, err := Parse(cellID)
	if err != nil {
		return nil, err
	}

	boundary, err := c.Boundary()
	return toRing(cellID, boundary, err)
}

// toRing converts an H3 boundary of an already parsed cell.
// Failures here are computation errors, not ParseErrors.
func toRing(cellID string, boundary h3.CellBoundary, err error) (geo.Ring, error) {
	if err != nil {
		return nil, fmt.Errorf("compute boundary of %s: %w", cellID, err)
	}
	if len(boundary) == 0 {
		return nil, fmt.Errorf("compute boundary of %s: %w", cellID, ErrEmptyBoundary)
	}

	ring := make(geo.Ring, 0, len(boundary))
	for _, vertex := range boundary {
		ring = append(ring, geo.GeoPoint{Latitude: vertex.Lat, Longitude: vertex.Lng})
	}
	return ring, nil
}

func (h3Resolver) Info(cellID string) (Info, error) {
	c, err := Parse(cellID)
	if err != nil {
		return Info{}, err
	}

	center, err := c.LatLng()
	if err != nil {
		return Info{}, fmt.Errorf("compute center of %s: %w", cellID, err)
	}

	return Info{
		ID:         c.String(),
		Resolution: c.Resolution(),
		BaseCell:   c.BaseCellNumber(),
		Center:     geo.GeoPoint{Latitude: center.Lat, Longitude: center.Lng},
	}, nil
}

func (h3Resolver) CellForPoint(p geo.GeoPoint, resolution int) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if resolution < 0 || resolution > maxResolution {
		return "", fmt.Errorf("resolution %d out of range [0, %d]", resolution, maxResolution)
	}

	c, err := h3.LatLngToCell(h3.NewLatLng(p.Latitude, p.Longitude), resolution)
	if err != nil {
		return "", fmt.Errorf("locate cell: %w", err)
	}
	return c.String(), nil
}
