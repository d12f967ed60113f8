package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lorta04/h3-point-in-cell/internal/lib/geo"
	"github.com/lorta04/h3-point-in-cell/internal/pipeline"
	"github.com/lorta04/h3-point-in-cell/internal/report"
)

func newBatchCmd(a *app) *cobra.Command {
	var cellID, path string
	var epsilon float64
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Test many points against one cell",
		Long: `Reads points as "lat,lon" lines (or ";" separated pairs) from --file or stdin
and prints one tab separated line per point: index, point, inside, projected x,y.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("cell") {
				a.cfg.Check.Cell = cellID
				a.cfg.Check.Polyline = ""
			}
			if cmd.Flags().Changed("epsilon") {
				a.cfg.Check.Epsilon = epsilon
			}
			if cmd.Flags().Changed("concurrency") {
				a.cfg.Pipeline.Concurrency = concurrency
			}

			var in io.Reader = cmd.InOrStdin()
			if path != "" && path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open points file: %w", err)
				}
				defer f.Close()
				in = f
			}

			points, err := readPoints(in)
			if err != nil {
				return err
			}

			base, err := a.polygonRequest()
			if err != nil {
				return err
			}
			p, err := a.pipeline()
			if err != nil {
				return err
			}

			reqs := make([]pipeline.Request, len(points))
			for i, pt := range points {
				reqs[i] = base
				reqs[i].Point = pt
			}

			results := p.CheckBatch(cmd.Context(), reqs)

			failed := 0
			out := cmd.OutOrStdout()
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
				if err := report.WriteBatchLine(out, r); err != nil {
					return err
				}
			}

			stats := p.CacheStats()
			a.logger.Info("Batch finished",
				zap.Int("points", len(points)),
				zap.Int("failed", failed),
				zap.Uint64("cache_hits", stats.Hits),
			)

			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(points))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cellID, "cell", "", "H3 cell index (hex), defaults to the configured cell")
	cmd.Flags().StringVar(&path, "file", "", "Points file, stdin when empty or -")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0, "Tolerance in squared meters")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel checks, 0 for GOMAXPROCS")

	return cmd
}

// readPoints parses every non-empty, non-comment line of r
func readPoints(r io.Reader) ([]geo.GeoPoint, error) {
	var points []geo.GeoPoint

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		pairs, err := parseCoordinatePairs(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		points = append(points, pairs...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read points: %w", err)
	}

	return points, nil
}

// parseCoordinatePairs parses "lat,lon;lat,lon" strings
func parseCoordinatePairs(coordStr string) ([]geo.GeoPoint, error) {
	if coordStr == "" {
		return nil, fmt.Errorf("empty coordinate string")
	}

	pairs := strings.Split(coordStr, ";")
	points := make([]geo.GeoPoint, 0, len(pairs))

	for _, pair := range pairs {
		if strings.TrimSpace(pair) == "" {
			continue
		}

		coords := strings.Split(strings.TrimSpace(pair), ",")
		if len(coords) != 2 {
			return nil, fmt.Errorf("invalid coordinate pair: %s", pair)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude: %s", coords[0])
		}

		lng, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude: %s", coords[1])
		}

		points = append(points, geo.GeoPoint{Latitude: lat, Longitude: lng})
	}

	return points, nil
}
