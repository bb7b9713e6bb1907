// Package currency identifies banknote denominations in a single frame. It
// backs the guidance side task triggered by "detect currency".
package currency

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/teslashibe/vocalpath/pkg/camera"
)

// ErrModelMissing is returned when the classifier model is not installed.
var ErrModelMissing = errors.New("currency: model not found")

// DefaultLabels are the output classes of the bundled rupee classifier, in
// model output order.
var DefaultLabels = []string{
	"10 Rupees",
	"20 Rupees",
	"50 Rupees",
	"100 Rupees",
	"200 Rupees",
	"500 Rupees",
	"2000 Rupees",
	"Not a currency",
}

// DefaultMinConfidence is the probability below which a note is reported as
// unidentified.
const DefaultMinConfidence = 0.5

const (
	msgUnidentified = "Could not identify currency. Please hold the note closer."
	msgFailed       = "Currency detection failed. Please try again."
	msgNoModel      = "Currency model not found. Check models folder."
)

// Classifier identifies the note in a frame.
type Classifier interface {
	Classify(ctx context.Context, frame camera.Frame) (Result, error)
	Close() error
}

// Result is one classification.
type Result struct {
	Label      string  `json:"label"`
	Index      int     `json:"index"`
	Confidence float64 `json:"confidence"`
	Identified bool    `json:"identified"`
}

// Announcement is the sentence spoken for the result.
func (r Result) Announcement() string {
	if !r.Identified {
		return msgUnidentified
	}
	return fmt.Sprintf("Detected: %s (%d%% confidence)", r.Label, int(math.Round(r.Confidence*100)))
}

// FailureAnnouncement is spoken when classification returned an error.
func FailureAnnouncement(err error) string {
	if errors.Is(err, ErrModelMissing) {
		return msgNoModel
	}
	return msgFailed
}

// Interpret picks the most probable class from probs. A maximum below
// minConfidence, or an empty vector, is unidentified. Indices beyond labels
// are named "Class N".
func Interpret(probs []float32, labels []string, minConfidence float64) Result {
	if len(probs) == 0 {
		return Result{Index: -1}
	}
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}

	res := Result{Index: best, Confidence: float64(probs[best])}
	if best < len(labels) {
		res.Label = labels[best]
	} else {
		res.Label = fmt.Sprintf("Class %d", best)
	}
	res.Identified = res.Confidence >= minConfidence
	return res
}
