package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lorta04/h3-point-in-cell/internal/lib/cell"
	"github.com/lorta04/h3-point-in-cell/internal/pipeline"
	"github.com/lorta04/h3-point-in-cell/internal/report"
)

type checkFlags struct {
	cell     string
	polyline string
	lat      float64
	lon      float64
	epsilon  float64
	format   string
	verbose  bool
	partial  bool
	noWind   bool
}

func newCheckCmd(a *app) *cobra.Command {
	f := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Test one point against one cell (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd, a)
			return a.runCheck(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.cell, "cell", "", "H3 cell index (hex)")
	cmd.Flags().StringVar(&f.polyline, "polyline", "", "Encoded polyline ring to use instead of a cell")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "Latitude of the test point")
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "Longitude of the test point")
	cmd.Flags().Float64Var(&f.epsilon, "epsilon", 0, "Tolerance in squared meters")
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "Output format: text, kml or geojson")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Show edge margins, signed area and encoded boundary")
	cmd.Flags().BoolVar(&f.partial, "partial", false, "Drop vertices that fail to project instead of failing")
	cmd.Flags().BoolVar(&f.noWind, "no-winding-check", false, "Skip the counter-clockwise check")

	return cmd
}

// apply copies explicitly set flags over the loaded config
func (f *checkFlags) apply(cmd *cobra.Command, a *app) {
	flags := cmd.Flags()
	c := &a.cfg.Check

	if flags.Changed("cell") {
		c.Cell = f.cell
		c.Polyline = ""
	}
	if flags.Changed("polyline") {
		c.Polyline = f.polyline
	}
	if flags.Changed("lat") {
		c.Latitude = f.lat
	}
	if flags.Changed("lon") {
		c.Longitude = f.lon
	}
	if flags.Changed("epsilon") {
		c.Epsilon = f.epsilon
	}
	if flags.Changed("partial") {
		a.cfg.Pipeline.PartialRing = f.partial
	}
	if flags.Changed("no-winding-check") {
		a.cfg.Pipeline.CheckWinding = !f.noWind
	}
}

func (a *app) runCheck(cmd *cobra.Command, f *checkFlags) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	p, err := a.pipeline()
	if err != nil {
		return err
	}

	req, err := a.polygonRequest()
	if err != nil {
		return err
	}
	req.Point = a.cfg.Check.Point()

	res, err := p.Check(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch f.format {
	case "text", "":
		return report.WriteText(out, res, report.Options{
			Verbose:   f.verbose,
			OwnerCell: a.ownerCell(req, res),
		})
	case "kml":
		return report.WriteKML(out, res)
	case "geojson", "json":
		return report.WriteGeoJSON(out, res)
	default:
		return fmt.Errorf("unknown format %q (want text, kml or geojson)", f.format)
	}
}

// ownerCell asks H3 which cell holds the point, as a cross-check for cell requests
func (a *app) ownerCell(req pipeline.Request, res *pipeline.Result) string {
	if req.CellID == "" || len(req.Ring) > 0 {
		return ""
	}

	resolver := cell.NewResolver()
	info, err := resolver.Info(req.CellID)
	if err != nil {
		return ""
	}

	owner, err := resolver.CellForPoint(res.Point, info.Resolution)
	if err != nil {
		a.logger.Debug("H3 point lookup failed", zap.Error(err))
		return ""
	}
	return owner
}
