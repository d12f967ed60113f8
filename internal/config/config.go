package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/lorta04/h3-point-in-cell/internal/lib/geo"
	"github.com/lorta04/h3-point-in-cell/internal/lib/projection"
)

// EnvPrefix is the prefix of environment overrides, e.g. PIC_CHECK__EPSILON=2
const EnvPrefix = "PIC_"

// Config represents the complete tool configuration
type Config struct {
	Check      CheckConfig      `koanf:"check"`
	Projection ProjectionConfig `koanf:"projection"`
	Pipeline   PipelineConfig   `koanf:"pipeline"`
	Log        LogConfig        `koanf:"log"`
}

// CheckConfig holds the inputs of a containment check
type CheckConfig struct {
	Cell      string  `koanf:"cell"`
	Polyline  string  `koanf:"polyline"`
	Latitude  float64 `koanf:"latitude"`
	Longitude float64 `koanf:"longitude"`
	// Epsilon is an area tolerance in squared meters
	Epsilon float64 `koanf:"epsilon"`
}

// ProjectionConfig holds the CRS pair
type ProjectionConfig struct {
	Source         string `koanf:"source"`
	Target         string `koanf:"target"`
	SourceLatFirst bool   `koanf:"source_lat_first"`
}

// PipelineConfig holds pipeline behaviour switches
type PipelineConfig struct {
	CheckWinding bool `koanf:"check_winding"`
	PartialRing  bool `koanf:"partial_ring"`
	Concurrency  int  `koanf:"concurrency"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Point returns the configured test point
func (c CheckConfig) Point() geo.GeoPoint {
	return geo.GeoPoint{Latitude: c.Latitude, Longitude: c.Longitude}
}

// Options converts the projection section into projector options
func (p ProjectionConfig) Options() projection.Options {
	return projection.Options{
		Source:         p.Source,
		Target:         p.Target,
		SourceLatFirst: p.SourceLatFirst,
	}
}

// defaults mirrors DefaultConfig as flat koanf keys
func defaults() map[string]interface{} {
	d := DefaultConfig()
	return map[string]interface{}{
		"check.cell":                  d.Check.Cell,
		"check.polyline":              d.Check.Polyline,
		"check.latitude":              d.Check.Latitude,
		"check.longitude":             d.Check.Longitude,
		"check.epsilon":               d.Check.Epsilon,
		"projection.source":           d.Projection.Source,
		"projection.target":           d.Projection.Target,
		"projection.source_lat_first": d.Projection.SourceLatFirst,
		"pipeline.check_winding":      d.Pipeline.CheckWinding,
		"pipeline.partial_ring":       d.Pipeline.PartialRing,
		"pipeline.concurrency":        d.Pipeline.Concurrency,
		"log.level":                   d.Log.Level,
		"log.format":                  d.Log.Format,
	}
}

// DefaultConfig returns a default configuration.
// The check inputs point just in front of the Statue of Liberty.
func DefaultConfig() *Config {
	return &Config{
		Check: CheckConfig{
			Cell:      "8a2a1072b59ffff", // Statue of Liberty, resolution 10
			Latitude:  40.689704593753824,
			Longitude: -74.04495563970343,
			Epsilon:   1.5,
		},
		Projection: ProjectionConfig{
			Source:         projection.DefaultSourceCRS,
			Target:         projection.DefaultTargetCRS,
			SourceLatFirst: true,
		},
		Pipeline: PipelineConfig{
			CheckWinding: true,
			PartialRing:  false,
			Concurrency:  0,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load builds a Config from defaults, an optional YAML file and PIC_ environment
// variables, in that order of precedence (later wins).
// Nested keys use a double underscore: PIC_PROJECTION__TARGET=EPSG:32618.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate checks the configuration for values the pipeline would reject
func (c *Config) Validate() error {
	var errs []error

	if c.Check.Cell == "" && c.Check.Polyline == "" {
		errs = append(errs, errors.New("check: either cell or polyline is required"))
	}
	if err := c.Check.Point().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("check: %w", err))
	}
	if math.IsNaN(c.Check.Epsilon) || math.IsInf(c.Check.Epsilon, 0) || c.Check.Epsilon < 0 {
		errs = append(errs, fmt.Errorf("check: epsilon must be finite and non-negative, got %v", c.Check.Epsilon))
	}
	if strings.TrimSpace(c.Projection.Source) == "" || strings.TrimSpace(c.Projection.Target) == "" {
		errs = append(errs, errors.New("projection: source and target CRS are required"))
	}
	if c.Pipeline.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("pipeline: concurrency must be >= 0, got %d", c.Pipeline.Concurrency))
	}

	return errors.Join(errs...)
}
