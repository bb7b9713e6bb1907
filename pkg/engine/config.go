package engine

import (
	"time"

	"github.com/teslashibe/vocalpath/pkg/detection"
	"github.com/teslashibe/vocalpath/pkg/guidance"
	"github.com/teslashibe/vocalpath/pkg/interaction"
	"github.com/teslashibe/vocalpath/pkg/spatial"
)

// Config holds engine settings.
type Config struct {
	PollInterval     time.Duration // Minimum time between two guidance cycles
	ConfidenceFloor  float64       // Initial user confidence floor
	InferenceTimeout time.Duration // Upper bound for one Detect call
	SideTaskTimeout  time.Duration // Upper bound for a side task, frame wait included
	FrameWait        time.Duration // How often a side task polls for a frame

	Decoder     detection.Config
	Spatial     spatial.Config
	Guidance    guidance.Config
	Interaction interaction.Config
}

// DefaultConfig returns the standard engine settings.
func DefaultConfig() Config {
	return Config{
		PollInterval:     150 * time.Millisecond,
		ConfidenceFloor:  0.5,
		InferenceTimeout: 2 * time.Second,
		SideTaskTimeout:  8 * time.Second,
		FrameWait:        50 * time.Millisecond,
		Decoder:          detection.DefaultConfig(),
		Spatial:          spatial.DefaultConfig(),
		Guidance:         guidance.DefaultConfig(),
		Interaction:      interaction.DefaultConfig(),
	}
}

func (c *Config) fill() {
	def := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.InferenceTimeout <= 0 {
		c.InferenceTimeout = def.InferenceTimeout
	}
	if c.SideTaskTimeout <= 0 {
		c.SideTaskTimeout = def.SideTaskTimeout
	}
	if c.FrameWait <= 0 {
		c.FrameWait = def.FrameWait
	}
}
