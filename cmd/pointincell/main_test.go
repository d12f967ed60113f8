package main

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorta04/h3-point-in-cell/internal/lib/cell"
	"github.com/lorta04/h3-point-in-cell/internal/lib/geo"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestParseCoordinatePairs(t *testing.T) {
	points, err := parseCoordinatePairs("40.6897,-74.0449; 40.69 , -74.05 ;")
	require.NoError(t, err)
	assert.Equal(t, []geo.GeoPoint{
		{Latitude: 40.6897, Longitude: -74.0449},
		{Latitude: 40.69, Longitude: -74.05},
	}, points)

	for _, bad := range []string{"", "40.6897", "north,-74", "40,west", "1,2,3"} {
		_, err := parseCoordinatePairs(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestReadPoints(t *testing.T) {
	input := "# lat,lon\n40.6897,-74.0449\n\n1,2;3,4\n"
	points, err := readPoints(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, points, 3)

	_, err = readPoints(strings.NewReader("1,2\nbroken\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestCLI_CheckDefaults(t *testing.T) {
	out, err := run(t, "")
	require.NoError(t, err)

	assert.Contains(t, out, "Input H3 Cell Index: 8a2a1072b59ffff")
	assert.Contains(t, out, "Epsilon: 1.5 m^2")
	assert.Contains(t, out, "Projected Test Point (EPSG:3857):")
	assert.Contains(t, out, "Is test point inside H3 cell: ")
	assert.Contains(t, out, "H3 cell containing the point: ")
}

func TestCLI_CheckCellCenter(t *testing.T) {
	info, err := cell.NewResolver().Info("8a2a1072b59ffff")
	require.NoError(t, err)

	out, err := run(t, "", "check",
		"--lat", formatFloat(info.Center.Latitude),
		"--lon", formatFloat(info.Center.Longitude),
		"--epsilon", "0",
		"--verbose",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Is test point inside H3 cell: true")
	assert.Contains(t, out, "Edge Margins")
	assert.Contains(t, out, "H3 cell containing the point: 8a2a1072b59ffff")
}

func TestCLI_CheckGeoJSON(t *testing.T) {
	out, err := run(t, "", "check", "--format", "geojson")
	require.NoError(t, err)
	assert.Contains(t, out, `"type":"FeatureCollection"`)
	assert.Contains(t, out, `"cell":"8a2a1072b59ffff"`)
}

func TestCLI_CheckPolyline(t *testing.T) {
	ring := geo.Ring{
		{Latitude: 40.6890, Longitude: -74.0460},
		{Latitude: 40.6890, Longitude: -74.0440},
		{Latitude: 40.6905, Longitude: -74.0440},
		{Latitude: 40.6905, Longitude: -74.0460},
	}

	out, err := run(t, "", "check", "--polyline", geo.EncodeRing(ring), "--lat", "40.6897", "--lon", "-74.0450")
	require.NoError(t, err)
	assert.Contains(t, out, "Input Polygon: 4 vertices")
	assert.Contains(t, out, "Is test point inside H3 cell: true")
}

func TestCLI_Errors(t *testing.T) {
	_, err := run(t, "", "check", "--cell", "not-a-cell")
	assert.ErrorIs(t, err, cell.ErrInvalidCell)

	_, err = run(t, "", "check", "--format", "svg")
	assert.Error(t, err)

	_, err = run(t, "", "check", "--epsilon=-1")
	assert.Error(t, err)

	_, err = run(t, "", "check", "--target-crs", "EPSG:99999999")
	assert.Error(t, err)
}

func TestCLI_Boundary(t *testing.T) {
	out, err := run(t, "", "boundary", "--cell", "8a2a1072b59ffff", "--projected")
	require.NoError(t, err)

	assert.Contains(t, out, "Cell: 8a2a1072b59ffff")
	assert.Contains(t, out, "Resolution: 10")
	assert.Contains(t, out, "Vertices: 6")
	assert.Contains(t, out, "Encoded: ")
	assert.Contains(t, out, "Projected (EPSG:3857):")
}

func TestCLI_Project(t *testing.T) {
	out, err := run(t, "", "project", "--lat", "0", "--lon", "0")
	require.NoError(t, err)
	assert.Regexp(t, `X: -?0\.000 m, Y: -?0\.000 m`, out)

	out, err = run(t, "", "project", "--inverse", "--x", "0", "--y", "0")
	require.NoError(t, err)
	assert.Regexp(t, `Lat=-?0\.000000000, Lon=-?0\.000000000`, out)

	_, err = run(t, "", "project", "--inverse")
	assert.Error(t, err)
}

func TestCLI_Batch(t *testing.T) {
	info, err := cell.NewResolver().Info("8a2a1072b59ffff")
	require.NoError(t, err)

	stdin := formatFloat(info.Center.Latitude) + "," + formatFloat(info.Center.Longitude) + "\n" +
		"0,0\n"

	out, err := run(t, stdin, "batch", "--cell", "8a2a1072b59ffff", "--concurrency", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "\ttrue\t")
	assert.Contains(t, lines[1], "\tfalse\t")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
