// Package spatial maps a detection box to a horizontal zone, a coarse
// proximity band and an approximate walking-step count.
package spatial

import (
	"math"

	"github.com/teslashibe/vocalpath/pkg/detection"
)

// Zone is the horizontal position of an object in the frame.
type Zone string

const (
	Left   Zone = "left"
	Center Zone = "center"
	Right  Zone = "right"
)

// Band is a coarse proximity bucket derived from box area.
type Band string

const (
	Far      Band = "far"
	Near     Band = "near"
	VeryNear Band = "very_near"
)

// Descriptor is the spatial reading of one detection. Steps is only
// meaningful when HasSteps is set.
type Descriptor struct {
	Zone     Zone
	Band     Band
	Steps    float64
	HasSteps bool
}

// Config holds estimator parameters.
type Config struct {
	// Zone split as fractions of frame width; the boundaries are center
	LeftEdge  float64
	RightEdge float64

	// Band thresholds as fractions of frame area
	NearArea     float64
	VeryNearArea float64

	// Step heuristic
	MinBoxHeightPx float64 // Boxes shorter than this give no estimate
	StepScale      float64 // steps = (frameH / boxH) * StepScale
	MinSteps       float64
	MaxSteps       float64
}

// DefaultConfig returns the tuned defaults. The left/right zones are wider
// than thirds so guidance is more decisive.
func DefaultConfig() Config {
	return Config{
		LeftEdge:       0.4,
		RightEdge:      0.6,
		NearArea:       0.10,
		VeryNearArea:   0.25,
		MinBoxHeightPx: 20,
		StepScale:      1.8,
		MinSteps:       1,
		MaxSteps:       20,
	}
}

// Estimator derives Descriptors. It holds no state.
type Estimator struct {
	config Config
}

// NewEstimator creates an estimator.
func NewEstimator(cfg Config) *Estimator {
	return &Estimator{config: cfg}
}

// Describe computes the descriptor for det in a frameW x frameH frame.
func (e *Estimator) Describe(det detection.Detection, frameW, frameH int) Descriptor {
	d := Descriptor{
		Zone: e.Zone(det.Box, frameW),
		Band: e.Band(det.Box, frameW, frameH),
	}
	d.Steps, d.HasSteps = e.Steps(det.Box, frameH)
	return d
}

// Zone classifies the box center against the frame width.
func (e *Estimator) Zone(box detection.Rect, frameW int) Zone {
	if frameW <= 0 {
		return Center
	}
	cx, _ := box.Center()
	x := cx / float64(frameW)
	switch {
	case x < e.config.LeftEdge:
		return Left
	case x > e.config.RightEdge:
		return Right
	default:
		return Center
	}
}

// Band classifies box area relative to frame area.
func (e *Estimator) Band(box detection.Rect, frameW, frameH int) Band {
	frameArea := float64(frameW) * float64(frameH)
	if frameArea <= 0 {
		return Far
	}
	ratio := box.Area() / frameArea
	switch {
	case ratio > e.config.VeryNearArea:
		return VeryNear
	case ratio > e.config.NearArea:
		return Near
	default:
		return Far
	}
}

// Steps estimates paces to the object from its height relative to the frame.
// It is an uncalibrated heuristic that assumes a fixed field of view and an
// average stride; the per-class metric model in metric.go is not consulted.
func (e *Estimator) Steps(box detection.Rect, frameH int) (float64, bool) {
	if box.H < e.config.MinBoxHeightPx || frameH <= 0 {
		return 0, false
	}
	rel := box.H / float64(frameH)
	if rel <= 0 {
		return 0, false
	}
	steps := (1 / rel) * e.config.StepScale
	if math.IsNaN(steps) || math.IsInf(steps, 0) || steps <= 0 {
		return 0, false
	}
	return clamp(steps, e.config.MinSteps, e.config.MaxSteps), true
}

// RoundSteps rounds an estimate to the nearest whole step, never below 1.
func RoundSteps(steps float64) int {
	n := int(math.Round(steps))
	if n < 1 {
		return 1
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
