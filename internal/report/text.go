// Package report renders containment results as text, KML and GeoJSON.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/lorta04/h3-point-in-cell/internal/lib/geo"
	"github.com/lorta04/h3-point-in-cell/internal/pipeline"
)

// Options tunes the text report
type Options struct {
	// Verbose adds per-edge margins, signed area and the encoded boundary
	Verbose bool
	// OwnerCell is the cell H3 itself assigns the point to, if known
	OwnerCell string
}

// WriteText writes a human readable report of a check.
// The layout is for people and is not a stable format.
func WriteText(w io.Writer, res *pipeline.Result, opts Options) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Input Test Point: Lat=%.6f, Lon=%.6f\n", res.Point.Latitude, res.Point.Longitude)
	if res.CellID != "" {
		fmt.Fprintf(&b, "Input H3 Cell Index: %s\n", res.CellID)
	} else {
		fmt.Fprintf(&b, "Input Polygon: %d vertices\n", len(res.Boundary))
	}
	fmt.Fprintf(&b, "Epsilon: %v m^2\n", res.Epsilon)

	fmt.Fprintf(&b, "\nCell Geographic Boundary (Lat, Lon degrees):\n")
	for i, v := range res.Boundary {
		fmt.Fprintf(&b, "  Vertex %d: (%.6f, %.6f)\n", i, v.Latitude, v.Longitude)
	}

	fmt.Fprintf(&b, "\nProjected Test Point (%s):\n", res.TargetCRS)
	fmt.Fprintf(&b, "  X: %.3f m, Y: %.3f m\n", res.ProjectedPoint.X, res.ProjectedPoint.Y)

	fmt.Fprintf(&b, "\nProjected Cell Vertices (%s):\n", res.TargetCRS)
	for i, v := range res.Polygon {
		fmt.Fprintf(&b, "  Vertex %d: (%.3f, %.3f) meters\n", i, v.X, v.Y)
	}

	if len(res.VertexErrors) > 0 {
		fmt.Fprintf(&b, "\nDropped Vertices:\n")
		for _, e := range res.VertexErrors {
			fmt.Fprintf(&b, "  %v\n", e)
		}
	}

	if opts.Verbose {
		fmt.Fprintf(&b, "\nEncoded Boundary: %s\n", geo.EncodeRing(res.Boundary))
		fmt.Fprintf(&b, "Signed Area: %.3f m^2\n", res.SignedArea)
		fmt.Fprintf(&b, "Edge Margins (twice the signed triangle area, m^2):\n")
		for i, m := range res.EdgeMargins {
			marker := ""
			if m < -res.Epsilon {
				marker = "  <- outside"
			}
			fmt.Fprintf(&b, "  Edge %d: %.3f%s\n", i, m, marker)
		}
	}

	fmt.Fprintf(&b, "\n--- Result ---\n")
	fmt.Fprintf(&b, "Is test point inside H3 cell: %t\n", res.Inside)
	if opts.OwnerCell != "" {
		fmt.Fprintf(&b, "H3 cell containing the point: %s\n", opts.OwnerCell)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteBatchLine writes a one-line summary of a batch item
func WriteBatchLine(w io.Writer, r pipeline.BatchResult) error {
	p := r.Request.Point
	if r.Err != nil {
		_, err := fmt.Fprintf(w, "%d\t%.6f,%.6f\terror\t%v\n", r.Index, p.Latitude, p.Longitude, r.Err)
		return err
	}

	_, err := fmt.Fprintf(w, "%d\t%.6f,%.6f\t%t\t%.3f,%.3f\n", r.Index, p.Latitude, p.Longitude,
		r.Result.Inside, r.Result.ProjectedPoint.X, r.Result.ProjectedPoint.Y)
	return err
}
