// Package detection turns raw object-detector output into pixel-space
// detections.
//
// Detector adapters return a RawOutput: either an already decoded list or a
// YOLO-style tensor with its dimension layout. Decoder normalizes both into
// []Detection, applying confidence gating and greedy non-max suppression.
package detection

// Rect is an axis-aligned box in display pixels, anchored at its top-left
// corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns the box area, zero for degenerate boxes.
func (r Rect) Area() float64 {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Center returns the box center point.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Detection is one candidate object. Detections are produced fresh per cycle
// and treated as immutable.
type Detection struct {
	Box   Rect    `json:"box"`
	Score float64 `json:"score"`
	Class string  `json:"class"`
}
