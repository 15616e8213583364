package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 200*time.Millisecond, cfg.Timing.TickPeriod)
	assert.Equal(t, 50*time.Millisecond, cfg.Motion.Interval)
	assert.EqualValues(t, 9, cfg.Timing.SquareOffset)
	assert.EqualValues(t, 19, cfg.Timing.CircleOffset)
	assert.True(t, cfg.Timing.DistinctOnly)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensorviz.yaml")
	data := []byte(`
timing:
  tick_period: 100ms
graph:
  max_points: 0
  span: 5s
face:
  source: none
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, cfg.Timing.TickPeriod)
	assert.Equal(t, 0, cfg.Graph.MaxPoints)
	assert.Equal(t, 5*time.Second, cfg.Graph.Span)
	assert.Equal(t, SourceNone, cfg.Face.Source)
	// untouched sections keep their defaults
	assert.Equal(t, SourceSimulated, cfg.Motion.Source)
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timing: ["), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Graph.MaxPoints = 42
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Graph.MaxPoints)
	assert.Equal(t, cfg.Timing.TickPeriod, loaded.Timing.TickPeriod)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("recording switches to replay", func(t *testing.T) {
		t.Setenv("SENSORVIZ_RECORDING", "walk.csv")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, SourceReplay, cfg.Motion.Source)
		assert.Equal(t, "walk.csv", cfg.Motion.RecordingPath)
	})

	t.Run("max points parsed", func(t *testing.T) {
		t.Setenv("SENSORVIZ_MAX_POINTS", "0")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, 0, cfg.Graph.MaxPoints)
	})

	t.Run("garbage max points ignored", func(t *testing.T) {
		t.Setenv("SENSORVIZ_MAX_POINTS", "lots")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, DefaultMaxGraphPoints, cfg.Graph.MaxPoints)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"zero tick", func(c *Config) { c.Timing.TickPeriod = 0 }, "tick_period"},
		{"offset out of range", func(c *Config) { c.Timing.SquareOffset = 20 }, "square_offset"},
		{"negative offset", func(c *Config) { c.Timing.CircleOffset = -1 }, "circle_offset"},
		{"zero interval", func(c *Config) { c.Motion.Interval = 0 }, "motion.interval"},
		{"replay without path", func(c *Config) { c.Motion.Source = SourceReplay }, "recording_path"},
		{"unknown motion", func(c *Config) { c.Motion.Source = "gyro" }, "motion.source"},
		{"unknown face", func(c *Config) { c.Face.Source = "lidar" }, "face.source"},
		{"negative cap", func(c *Config) { c.Graph.MaxPoints = -1 }, "max_points"},
		{"zero span", func(c *Config) { c.Graph.Span = 0 }, "graph.span"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.errMsg)
		})
	}
}
