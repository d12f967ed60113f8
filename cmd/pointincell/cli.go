package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lorta04/h3-point-in-cell/internal/config"
	"github.com/lorta04/h3-point-in-cell/internal/lib/cell"
	"github.com/lorta04/h3-point-in-cell/internal/lib/geo"
	"github.com/lorta04/h3-point-in-cell/internal/lib/projection"
	"github.com/lorta04/h3-point-in-cell/internal/logging"
	"github.com/lorta04/h3-point-in-cell/internal/pipeline"
)

// app holds what every subcommand needs once flags are parsed
type app struct {
	configPath string
	sourceCRS  string
	targetCRS  string
	logLevel   string

	cfg      *config.Config
	logger   *zap.Logger
	registry *projection.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pointincell",
		Short: "Check whether a point lies inside an H3 cell after projecting both to a planar CRS",
		Long: `pointincell resolves an H3 cell boundary, projects it and a test point into a
planar coordinate system (EPSG:3857 by default) and tests containment with a
half-plane test. The tolerance is an area in squared meters.

EXAMPLES:
    # Statue of Liberty defaults
    pointincell check

    # A point against a resolution 10 cell with a looser tolerance
    pointincell check --cell 8a2a1072b59ffff --lat 40.6897 --lon -74.0449 --epsilon 25

    # Export the cell and point for a map viewer
    pointincell check --format kml > liberty.kml

    # Many points against one cell
    printf '40.6897,-74.0449\n40.6900,-74.0460\n' | pointincell batch --cell 8a2a1072b59ffff`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&a.sourceCRS, "source-crs", "", "Geographic source CRS (default from config, EPSG:4326)")
	root.PersistentFlags().StringVar(&a.targetCRS, "target-crs", "", "Planar target CRS (default from config, EPSG:3857)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	check := newCheckCmd(a)
	root.RunE = check.RunE
	root.Flags().AddFlagSet(check.Flags())

	root.AddCommand(
		check,
		newBoundaryCmd(a),
		newProjectCmd(a),
		newBatchCmd(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if a.sourceCRS != "" {
		cfg.Projection.Source = a.sourceCRS
	}
	if a.targetCRS != "" {
		cfg.Projection.Target = a.targetCRS
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.registry = projection.NewRegistry()

	logger.Debug("Configuration loaded",
		zap.String("config", a.configPath),
		zap.String("command", cmd.Name()),
		zap.String("source_crs", cfg.Projection.Source),
		zap.String("target_crs", cfg.Projection.Target),
	)
	return nil
}

func (a *app) teardown() {
	if a.registry != nil {
		if a.logger != nil {
			a.logger.Debug("Closing projections", zap.Int("transformers", a.registry.Len()))
		}
		a.registry.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) projector() (*projection.Transformer, error) {
	return a.registry.Get(a.cfg.Projection.Options())
}

func (a *app) pipeline() (*pipeline.Pipeline, error) {
	tr, err := a.projector()
	if err != nil {
		return nil, err
	}

	return pipeline.New(cell.NewResolver(), tr,
		pipeline.WithLogger(a.logger),
		pipeline.WithWindingCheck(a.cfg.Pipeline.CheckWinding),
		pipeline.WithPartialRing(a.cfg.Pipeline.PartialRing),
		pipeline.WithConcurrency(a.cfg.Pipeline.Concurrency),
	), nil
}

// polygonRequest builds the polygon half of a request from the check config
func (a *app) polygonRequest() (pipeline.Request, error) {
	c := a.cfg.Check
	if c.Polyline != "" {
		ring, err := geo.DecodeRing(c.Polyline)
		if err != nil {
			return pipeline.Request{}, fmt.Errorf("polyline: %w", err)
		}
		return pipeline.Request{Ring: ring, Epsilon: c.Epsilon}, nil
	}
	return pipeline.Request{CellID: c.Cell, Epsilon: c.Epsilon}, nil
}
