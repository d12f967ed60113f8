package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	// Just in front of the Statue of Liberty
	p, err := NewGeoPoint(40.689704593753824, -74.04495563970343)
	require.NoError(t, err)
	assert.Equal(t, 40.689704593753824, p.Latitude)

	_, err = NewGeoPoint(200, -300)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = NewGeoPoint(math.NaN(), 0)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = NewGeoPoint(0, math.Inf(-1))
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestDecodeRing(t *testing.T) {
	// Example polyline from the Google encoding docs
	ring, err := DecodeRing("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	require.NoError(t, err)
	require.Len(t, ring, 3)

	assert.InDelta(t, 38.5, ring[0].Latitude, 1e-5)
	assert.InDelta(t, -120.2, ring[0].Longitude, 1e-5)
	assert.InDelta(t, 43.252, ring[2].Latitude, 1e-5)
	assert.InDelta(t, -126.453, ring[2].Longitude, 1e-5)

	_, err = DecodeRing("")
	assert.Error(t, err, "Should return error for empty polyline")

	_, err = DecodeRing("invalid_polyline_data")
	assert.Error(t, err, "Should return error for invalid polyline")
}

func TestEncodeRing_RoundTrip(t *testing.T) {
	ring := Ring{
		{Latitude: 40.6890, Longitude: -74.0450},
		{Latitude: 40.6895, Longitude: -74.0445},
		{Latitude: 40.6900, Longitude: -74.0450},
		{Latitude: 40.6895, Longitude: -74.0455},
	}

	decoded, err := DecodeRing(EncodeRing(ring))
	require.NoError(t, err)
	require.Len(t, decoded, len(ring))
	for i := range ring {
		assert.InDelta(t, ring[i].Latitude, decoded[i].Latitude, 1e-5)
		assert.InDelta(t, ring[i].Longitude, decoded[i].Longitude, 1e-5)
	}
}

func TestDecodeRing_DropsClosingVertex(t *testing.T) {
	closed := Ring{
		{Latitude: 1, Longitude: 1},
		{Latitude: 1, Longitude: 2},
		{Latitude: 2, Longitude: 2},
		{Latitude: 1, Longitude: 1},
	}

	decoded, err := DecodeRing(EncodeRing(closed))
	require.NoError(t, err)
	assert.Len(t, decoded, 3)
}
