package spatial

// Pinhole-model constants for a typical phone rear camera. They are only used
// by MetricSteps; live guidance uses the relative-height heuristic.
const (
	FocalLengthPx = 900.0 // Rough focal length in pixels
	StrideMeters  = 0.7   // Average user stride
)

// ClassHeights holds approximate real-world heights in meters for common
// classes.
var ClassHeights = map[string]float64{
	"person":       1.7,
	"chair":        0.9,
	"dining table": 0.75,
	"couch":        0.9,
	"bed":          0.9,
	"car":          1.4,
	"bus":          3.0,
	"truck":        3.0,
	"bicycle":      1.1,
	"motorcycle":   1.2,
	"cell phone":   0.15,
	"laptop":       0.02,
	"bottle":       0.25,
	"door":         2.0,
	"stop sign":    2.1,
}

// MetricSteps estimates steps with a pinhole model from a class's known
// height and the box height in pixels. It reports false for classes without
// a known height or for degenerate boxes.
//
// This model is uncalibrated per device and is kept off the guidance path;
// Estimator.Steps is what drives announcements.
func MetricSteps(class string, boxHeightPx float64) (float64, bool) {
	h, ok := ClassHeights[class]
	if !ok || boxHeightPx <= 0 {
		return 0, false
	}
	meters := h * FocalLengthPx / boxHeightPx
	return meters / StrideMeters, true
}
