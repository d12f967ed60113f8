package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lorta04/h3-point-in-cell/internal/lib/cell"
	"github.com/lorta04/h3-point-in-cell/internal/lib/geo"
	"github.com/lorta04/h3-point-in-cell/internal/lib/projection"
)

func newBoundaryCmd(a *app) *cobra.Command {
	var cellID string
	var projected bool

	cmd := &cobra.Command{
		Use:   "boundary",
		Short: "Print a cell's boundary vertices and encoded polyline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cellID == "" {
				cellID = a.cfg.Check.Cell
			}

			resolver := cell.NewResolver()
			info, err := resolver.Info(cellID)
			if err != nil {
				return err
			}
			ring, err := resolver.Boundary(cellID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cell: %s\n", info.ID)
			fmt.Fprintf(out, "  Resolution: %d\n", info.Resolution)
			fmt.Fprintf(out, "  Base cell: %d\n", info.BaseCell)
			fmt.Fprintf(out, "  Center: (%.6f, %.6f)\n", info.Center.Latitude, info.Center.Longitude)
			fmt.Fprintf(out, "  Vertices: %d\n", len(ring))
			for i, v := range ring {
				fmt.Fprintf(out, "    %d: (%.6f, %.6f)\n", i, v.Latitude, v.Longitude)
			}
			fmt.Fprintf(out, "  Encoded: %s\n", geo.EncodeRing(ring))

			if !projected {
				return nil
			}

			tr, err := a.projector()
			if err != nil {
				return err
			}
			polygon, err := projection.ProjectRing(tr, ring)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "  Projected (%s):\n", tr.Target())
			for i, v := range polygon {
				fmt.Fprintf(out, "    %d: (%.3f, %.3f) meters\n", i, v.X, v.Y)
			}
			fmt.Fprintf(out, "  Area: %.3f m^2\n", geo.SignedArea(polygon))
			return nil
		},
	}

	cmd.Flags().StringVar(&cellID, "cell", "", "H3 cell index (hex), defaults to the configured cell")
	cmd.Flags().BoolVarP(&projected, "projected", "p", false, "Also print projected vertices and area")

	return cmd
}
