package guidance

import (
	"testing"

	"github.com/teslashibe/vocalpath/pkg/spatial"
)

func TestFallbackPhrase(t *testing.T) {
	tests := []struct {
		class    string
		zone     spatial.Zone
		band     spatial.Band
		targeted bool
		want     string
	}{
		{"person", spatial.Center, spatial.VeryNear, false, "Person in front, very close."},
		{"dining table", spatial.Left, spatial.Near, false, "Dining table on the left, near."},
		{"cup", spatial.Right, spatial.Far, true, "Target Cup on the right, far."},
	}
	for _, tt := range tests {
		if got := FallbackPhrase(tt.class, tt.zone, tt.band, tt.targeted); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestStepPhrase(t *testing.T) {
	tests := []struct {
		steps    int
		zone     spatial.Zone
		trend    Trend
		targeted bool
		want     string
	}{
		{1, spatial.Center, TrendNone, false, "Cup, about 1 step ahead."},
		{3, spatial.Right, TrendCloser, false, "Cup, about 3 steps to your right, getting closer."},
		{9, spatial.Left, TrendFarther, true, "Target cup, about 9 steps to your left, getting farther."},
	}
	for _, tt := range tests {
		if got := StepPhrase("cup", tt.steps, tt.zone, tt.trend, tt.targeted); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
