package report

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-kml"

	"github.com/lorta04/h3-point-in-cell/internal/lib/geo"
	"github.com/lorta04/h3-point-in-cell/internal/pipeline"
)

// WriteKML writes the cell polygon and the test point as a KML document
func WriteKML(w io.Writer, res *pipeline.Result) error {
	coords := make([]kml.Coordinate, 0, len(res.Boundary)+1)
	for _, v := range res.Boundary {
		coords = append(coords, kml.Coordinate{Lon: v.Longitude, Lat: v.Latitude})
	}
	if len(coords) > 0 {
		coords = append(coords, coords[0])
	}

	name := polygonName(res)
	doc := kml.KML(
		kml.Document(
			kml.Name(name),
			kml.Placemark(
				kml.Name(name),
				kml.Description(fmt.Sprintf("epsilon %v m^2, %s -> %s", res.Epsilon, res.SourceCRS, res.TargetCRS)),
				kml.Polygon(
					kml.OuterBoundaryIs(
						kml.LinearRing(
							kml.Coordinates(coords...),
						),
					),
				),
			),
			kml.Placemark(
				kml.Name(fmt.Sprintf("Test point (inside: %t)", res.Inside)),
				kml.Point(
					kml.Coordinates(kml.Coordinate{Lon: res.Point.Longitude, Lat: res.Point.Latitude}),
				),
			),
		),
	)

	return doc.WriteIndent(w, "", "  ")
}

// WriteGeoJSON writes the cell polygon and the test point as a FeatureCollection
func WriteGeoJSON(w io.Writer, res *pipeline.Result) error {
	fc := geojson.NewFeatureCollection()

	cellFeature := geojson.NewFeature(orb.Polygon{toOrbRing(res.Boundary)})
	cellFeature.Properties["name"] = polygonName(res)
	if res.CellID != "" {
		cellFeature.Properties["cell"] = res.CellID
	}
	cellFeature.Properties["signed_area_m2"] = res.SignedArea
	fc.Append(cellFeature)

	pointFeature := geojson.NewFeature(orb.Point{res.Point.Longitude, res.Point.Latitude})
	pointFeature.Properties["name"] = "test point"
	pointFeature.Properties["inside"] = res.Inside
	pointFeature.Properties["epsilon_m2"] = res.Epsilon
	pointFeature.Properties["projected"] = []float64{res.ProjectedPoint.X, res.ProjectedPoint.Y}
	pointFeature.Properties["crs"] = res.TargetCRS
	fc.Append(pointFeature)

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal GeoJSON: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// toOrbRing closes the ring in GeoJSON (lng, lat) order
func toOrbRing(ring geo.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(ring)+1)
	for _, v := range ring {
		out = append(out, orb.Point{v.Longitude, v.Latitude})
	}
	if len(out) > 0 {
		out = append(out, out[0])
	}
	return out
}

func polygonName(res *pipeline.Result) string {
	if res.CellID != "" {
		return "H3 cell " + res.CellID
	}
	return fmt.Sprintf("Polygon (%d vertices)", len(res.Boundary))
}
