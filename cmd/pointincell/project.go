package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lorta04/h3-point-in-cell/internal/lib/geo"
)

func newProjectCmd(a *app) *cobra.Command {
	var lat, lon, x, y float64
	var inverse bool

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project a point between the source and target CRS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := a.projector()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if inverse {
				if !cmd.Flags().Changed("x") || !cmd.Flags().Changed("y") {
					return errors.New("--inverse needs --x and --y")
				}
				p, err := tr.Inverse(geo.PlanarPoint{X: x, Y: y})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s (%.3f, %.3f) -> %s Lat=%.9f, Lon=%.9f\n", tr.Target(), x, y, tr.Source(), p.Latitude, p.Longitude)
				return nil
			}

			point := a.cfg.Check.Point()
			if cmd.Flags().Changed("lat") {
				point.Latitude = lat
			}
			if cmd.Flags().Changed("lon") {
				point.Longitude = lon
			}
			if err := point.Validate(); err != nil {
				return err
			}

			p, err := tr.Forward(point)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Lat=%.6f, Lon=%.6f -> %s X: %.3f m, Y: %.3f m\n", tr.Source(), point.Latitude, point.Longitude, tr.Target(), p.X, p.Y)
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude to project")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude to project")
	cmd.Flags().BoolVar(&inverse, "inverse", false, "Map a planar point back to geographic coordinates")
	cmd.Flags().Float64Var(&x, "x", 0, "Planar x in meters (with --inverse)")
	cmd.Flags().Float64Var(&y, "y", 0, "Planar y in meters (with --inverse)")

	return cmd
}
