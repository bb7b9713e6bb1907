// Package capture provides a camera.Source backed by a local webcam.
package capture

import "fmt"

// Config holds webcam capture parameters.
type Config struct {
	Device    int `json:"device" yaml:"device"`       // V4L/AVFoundation device index
	Width     int `json:"width" yaml:"width"`         // Requested frame width in pixels
	Height    int `json:"height" yaml:"height"`       // Requested frame height in pixels
	Framerate int `json:"framerate" yaml:"framerate"` // Target FPS
	Quality   int `json:"quality" yaml:"quality"`     // JPEG quality 1-100
}

// DefaultConfig returns settings that suit a handheld or chest-mounted camera.
func DefaultConfig() Config {
	return Config{
		Device:    0,
		Width:     640,
		Height:    480,
		Framerate: 15,
		Quality:   80,
	}
}

// Validate checks the configuration and returns a list of problems.
func (c Config) Validate() []string {
	var errs []string
	if c.Device < 0 {
		errs = append(errs, fmt.Sprintf("device must be >= 0, got %d", c.Device))
	}
	if c.Width < 160 || c.Width > 3840 {
		errs = append(errs, fmt.Sprintf("width must be 160-3840, got %d", c.Width))
	}
	if c.Height < 120 || c.Height > 2160 {
		errs = append(errs, fmt.Sprintf("height must be 120-2160, got %d", c.Height))
	}
	if c.Framerate < 1 || c.Framerate > 60 {
		errs = append(errs, fmt.Sprintf("framerate must be 1-60, got %d", c.Framerate))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errs = append(errs, fmt.Sprintf("quality must be 1-100, got %d", c.Quality))
	}
	return errs
}
