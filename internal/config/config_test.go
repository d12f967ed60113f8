package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "8a2a1072b59ffff", cfg.Check.Cell)
	assert.Equal(t, 1.5, cfg.Check.Epsilon)
	assert.Equal(t, "EPSG:4326", cfg.Projection.Source)
	assert.Equal(t, "EPSG:3857", cfg.Projection.Target)
	assert.True(t, cfg.Pipeline.CheckWinding)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pointincell.yaml")
	yaml := `
check:
  cell: 8a2a1072b5affff
  epsilon: 4
projection:
  target: EPSG:32618
pipeline:
  partial_ring: true
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("PIC_CHECK__EPSILON", "2.5")
	t.Setenv("PIC_PIPELINE__CONCURRENCY", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8a2a1072b5affff", cfg.Check.Cell)
	assert.Equal(t, 2.5, cfg.Check.Epsilon, "Environment should override the file")
	assert.Equal(t, "EPSG:32618", cfg.Projection.Target)
	assert.Equal(t, "EPSG:4326", cfg.Projection.Source, "Unset keys keep their defaults")
	assert.True(t, cfg.Pipeline.PartialRing)
	assert.Equal(t, 8, cfg.Pipeline.Concurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 40.689704593753824, cfg.Check.Latitude)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Check.Cell = ""
	cfg.Check.Latitude = 120
	cfg.Check.Epsilon = -1
	cfg.Projection.Target = " "
	cfg.Pipeline.Concurrency = -2

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"cell or polyline", "invalid coordinates", "epsilon", "source and target", "concurrency"} {
		assert.Contains(t, err.Error(), want)
	}

	cfg = DefaultConfig()
	cfg.Check.Cell = ""
	cfg.Check.Polyline = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	assert.NoError(t, cfg.Validate())
}
