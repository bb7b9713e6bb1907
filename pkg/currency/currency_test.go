package currency

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		name       string
		probs      []float32
		wantLabel  string
		wantIndex  int
		identified bool
	}{
		{"confident", []float32{0.01, 0.02, 0.05, 0.9, 0.01, 0.01, 0, 0}, "100 Rupees", 3, true},
		{"at threshold", []float32{0.5, 0.25, 0.25}, "10 Rupees", 0, true},
		{"unsure", []float32{0.3, 0.2, 0.2, 0.3}, "10 Rupees", 0, false},
		{"not a currency", []float32{0, 0, 0, 0, 0, 0, 0.1, 0.9}, "Not a currency", 7, true},
		{"beyond labels", []float32{0, 0, 0, 0, 0, 0, 0, 0, 0.95}, "Class 8", 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpret(tt.probs, DefaultLabels, DefaultMinConfidence)
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Equal(t, tt.wantIndex, got.Index)
			assert.Equal(t, tt.identified, got.Identified)
		})
	}
}

func TestInterpretEmpty(t *testing.T) {
	got := Interpret(nil, DefaultLabels, DefaultMinConfidence)
	assert.False(t, got.Identified)
	assert.Equal(t, -1, got.Index)
}

func TestAnnouncement(t *testing.T) {
	r := Result{Label: "500 Rupees", Confidence: 0.874, Identified: true}
	assert.Equal(t, "Detected: 500 Rupees (87% confidence)", r.Announcement())

	r.Identified = false
	assert.Equal(t, "Could not identify currency. Please hold the note closer.", r.Announcement())
}

func TestFailureAnnouncement(t *testing.T) {
	assert.Equal(t, msgNoModel, FailureAnnouncement(fmt.Errorf("load: %w", ErrModelMissing)))
	assert.Equal(t, msgFailed, FailureAnnouncement(errors.New("forward failed")))
}
