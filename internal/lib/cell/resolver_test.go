package cell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	h3 "github.com/uber/h3-go/v4"

	"github.com/lorta04/h3-point-in-cell/internal/lib/geo"
)

// Statue of Liberty, resolution 10
const libertyCell = "8a2a1072b59ffff"

func TestResolver_Boundary(t *testing.T) {
	resolver := NewResolver()

	ring, err := resolver.Boundary(libertyCell)
	require.NoError(t, err)
	require.Len(t, ring, 6, "Resolution 10 non-pentagon cell should be a hexagon")

	for _, v := range ring {
		assert.InDelta(t, 40.689, v.Latitude, 0.01)
		assert.InDelta(t, -74.045, v.Longitude, 0.01)
	}
	assert.NotEqual(t, ring[0], ring[len(ring)-1], "Boundary should not repeat the first vertex")

	// Treat lng/lat as planar x/y: the ring should wind counter-clockwise
	planar := make(geo.Polygon, len(ring))
	for i, v := range ring {
		planar[i] = geo.PlanarPoint{X: v.Longitude, Y: v.Latitude}
	}
	assert.Greater(t, geo.SignedArea(planar), 0.0)
}

func TestResolver_BoundaryInvalid(t *testing.T) {
	resolver := NewResolver()

	for _, input := range []string{"", "not-a-cell", "zzzz", "0", "ffffffffffffffff"} {
		_, err := resolver.Boundary(input)
		require.Error(t, err, "input %q", input)
		assert.ErrorIs(t, err, ErrInvalidCell)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, input, parseErr.Input)
	}
}

func TestToRing_ComputationErrors(t *testing.T) {
	h3Err := errors.New("h3 failure")

	_, err := toRing(libertyCell, nil, h3Err)
	require.ErrorIs(t, err, h3Err)
	assert.NotErrorIs(t, err, ErrInvalidCell)
	var parseErr *ParseError
	assert.False(t, errors.As(err, &parseErr))

	_, err = toRing(libertyCell, h3.CellBoundary{}, nil)
	require.ErrorIs(t, err, ErrEmptyBoundary)
	assert.NotErrorIs(t, err, ErrInvalidCell)

	ring, err := toRing(libertyCell, h3.CellBoundary{{Lat: 1, Lng: 2}}, nil)
	require.NoError(t, err)
	assert.Equal(t, geo.Ring{{Latitude: 1, Longitude: 2}}, ring)
}

func TestParse_AcceptsPrefixAndWhitespace(t *testing.T) {
	a, err := Parse(libertyCell)
	require.NoError(t, err)

	b, err := Parse("  0x" + libertyCell + "\n")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolver_Info(t *testing.T) {
	info, err := NewResolver().Info(libertyCell)
	require.NoError(t, err)

	assert.Equal(t, libertyCell, info.ID)
	assert.Equal(t, 10, info.Resolution)
	assert.InDelta(t, 40.689, info.Center.Latitude, 0.01)
	assert.InDelta(t, -74.045, info.Center.Longitude, 0.01)
}

func TestResolver_CellForPoint(t *testing.T) {
	resolver := NewResolver()

	info, err := resolver.Info(libertyCell)
	require.NoError(t, err)

	id, err := resolver.CellForPoint(info.Center, info.Resolution)
	require.NoError(t, err)
	assert.Equal(t, libertyCell, id)

	_, err = resolver.CellForPoint(info.Center, 16)
	assert.Error(t, err)

	_, err = resolver.CellForPoint(geo.GeoPoint{Latitude: 95}, 10)
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}
