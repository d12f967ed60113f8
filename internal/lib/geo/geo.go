package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/twpayne/go-polyline"
)

// ErrInvalidCoordinate is returned for points outside the valid lat/lng range
var ErrInvalidCoordinate = errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")

// NewGeoPoint creates a GeoPoint from latitude and longitude values with validation
func NewGeoPoint(latitude, longitude float64) (GeoPoint, error) {
	point := GeoPoint{Latitude: latitude, Longitude: longitude}
	if err := point.Validate(); err != nil {
		return GeoPoint{}, err
	}
	return point, nil
}

// Validate checks that the point is finite and inside the lat/lng range
func (p GeoPoint) Validate() error {
	if !isValidCoordinate(p) {
		return fmt.Errorf("%w: got (%v, %v)", ErrInvalidCoordinate, p.Latitude, p.Longitude)
	}
	return nil
}

// DecodeRing decodes a Google encoded polyline into a ring.
// A trailing vertex equal to the first one is dropped.
func DecodeRing(encoded string) (Ring, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("failed to decode polyline: %d trailing bytes", len(rest))
	}

	ring := make(Ring, 0, len(coords))
	for _, coord := range coords {
		point := GeoPoint{Latitude: coord[0], Longitude: coord[1]}
		if !isValidCoordinate(point) {
			return nil, errors.New("decoded polyline contains invalid coordinates")
		}
		ring = append(ring, point)
	}

	if n := len(ring); n > 1 && ring[0] == ring[n-1] {
		ring = ring[:n-1]
	}

	return ring, nil
}

// EncodeRing encodes a ring as a Google encoded polyline
func EncodeRing(ring Ring) string {
	coords := make([][]float64, len(ring))
	for i, p := range ring {
		coords[i] = []float64{p.Latitude, p.Longitude}
	}
	return string(polyline.EncodeCoords(coords))
}

// isValidCoordinate validates latitude and longitude values
func isValidCoordinate(point GeoPoint) bool {
	if math.IsNaN(point.Latitude) || math.IsNaN(point.Longitude) {
		return false
	}
	return point.Latitude >= -90 && point.Latitude <= 90 &&
		point.Longitude >= -180 && point.Longitude <= 180
}
