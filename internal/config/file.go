package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Motion and face source kinds.
const (
	SourceSimulated = "sim"
	SourceReplay    = "replay"
	SourceRemote    = "remote"
	SourceCamera    = "camera"
	SourceNone      = "none"
)

// Config holds the runtime settings of the overlay.
type Config struct {
	Timing  TimingConfig  `yaml:"timing"`
	Motion  MotionConfig  `yaml:"motion"`
	Face    FaceConfig    `yaml:"face"`
	Graph   GraphConfig   `yaml:"graph"`
	Display DisplayConfig `yaml:"display"`
	Logging LoggingConfig `yaml:"logging"`
}

// TimingConfig configures the base tick and the visibility schedule.
type TimingConfig struct {
	TickPeriod   time.Duration `yaml:"tick_period"`
	SquareOffset int64         `yaml:"square_offset"`
	CircleOffset int64         `yaml:"circle_offset"`
	DistinctOnly bool          `yaml:"distinct_only"` // emit only visibility changes
}

// MotionConfig selects and tunes the accelerometer source.
type MotionConfig struct {
	Source        string        `yaml:"source"` // sim, replay, remote
	Interval      time.Duration `yaml:"interval"`
	RecordingPath string        `yaml:"recording_path"`
	Listen        string        `yaml:"listen"`
	Seed          int64         `yaml:"seed"`
}

// FaceConfig selects the face tracking session.
type FaceConfig struct {
	Source     string  `yaml:"source"` // sim, camera, none
	DeviceID   int     `yaml:"device_id"`
	ModelPath  string  `yaml:"model_path"`
	Confidence float64 `yaml:"confidence"`
}

// GraphConfig configures the point buffer and graph scale.
type GraphConfig struct {
	// MaxPoints caps the buffer; 0 keeps every sample.
	MaxPoints    int           `yaml:"max_points"`
	Span         time.Duration `yaml:"span"`
	MaxMagnitude float64       `yaml:"max_magnitude"`
}

// DisplayConfig toggles optional presentation features.
type DisplayConfig struct {
	Labels    bool `yaml:"labels"`
	AudioCues bool `yaml:"audio_cues"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// Default returns the settings the demo ships with.
func Default() *Config {
	return &Config{
		Timing: TimingConfig{
			TickPeriod:   BaseTickPeriod,
			SquareOffset: SquareHiddenOffset,
			CircleOffset: CircleHiddenOffset,
			DistinctOnly: true,
		},
		Motion: MotionConfig{
			Source:   SourceSimulated,
			Interval: AccelerometerInterval,
			Listen:   DefaultRemoteListen,
			Seed:     1,
		},
		Face: FaceConfig{
			Source:     SourceSimulated,
			ModelPath:  DefaultYuNetModelPath,
			Confidence: 0.5,
		},
		Graph: GraphConfig{
			MaxPoints:    DefaultMaxGraphPoints,
			Span:         DefaultGraphSpan,
			MaxMagnitude: DefaultGraphMagnitude,
		},
		Display: DisplayConfig{
			Labels: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML config on top of the defaults. A missing file is not an
// error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SENSORVIZ_MOTION_SOURCE"); v != "" {
		c.Motion.Source = v
	}
	if v := os.Getenv("SENSORVIZ_RECORDING"); v != "" {
		c.Motion.RecordingPath = v
		c.Motion.Source = SourceReplay
	}
	if v := os.Getenv("SENSORVIZ_LISTEN"); v != "" {
		c.Motion.Listen = v
	}
	if v := os.Getenv("SENSORVIZ_FACE_SOURCE"); v != "" {
		c.Face.Source = v
	}
	if v := os.Getenv("SENSORVIZ_MAX_POINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Graph.MaxPoints = n
		}
	}
	if v := os.Getenv("SENSORVIZ_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Timing.TickPeriod <= 0 {
		return fmt.Errorf("timing.tick_period must be positive, got %s", c.Timing.TickPeriod)
	}
	for name, off := range map[string]int64{"square_offset": c.Timing.SquareOffset, "circle_offset": c.Timing.CircleOffset} {
		if off < 0 || off >= VisibilityModulus {
			return fmt.Errorf("timing.%s must be in [0,%d), got %d", name, VisibilityModulus, off)
		}
	}
	if c.Motion.Interval <= 0 {
		return fmt.Errorf("motion.interval must be positive, got %s", c.Motion.Interval)
	}
	switch c.Motion.Source {
	case SourceSimulated, SourceRemote:
	case SourceReplay:
		if c.Motion.RecordingPath == "" {
			return errors.New("motion.recording_path is required for the replay source")
		}
	default:
		return fmt.Errorf("unknown motion.source %q", c.Motion.Source)
	}
	switch c.Face.Source {
	case SourceSimulated, SourceCamera, SourceNone:
	default:
		return fmt.Errorf("unknown face.source %q", c.Face.Source)
	}
	if c.Graph.MaxPoints < 0 {
		return fmt.Errorf("graph.max_points must not be negative, got %d", c.Graph.MaxPoints)
	}
	if c.Graph.Span <= 0 || c.Graph.MaxMagnitude <= 0 {
		return errors.New("graph.span and graph.max_magnitude must be positive")
	}
	return nil
}
