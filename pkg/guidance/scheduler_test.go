package guidance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/vocalpath/pkg/detection"
	"github.com/teslashibe/vocalpath/pkg/spatial"
)

const (
	frameW = 640
	frameH = 720
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// det builds a detection centered at cx whose height gives the wanted step
// count in a 640x720 frame.
func det(class string, cx float64, steps float64, score float64) detection.Detection {
	h := frameH * 1.8 / steps
	return detection.Detection{
		Box:   detection.Rect{X: cx - 50, Y: 0, W: 100, H: h},
		Score: score,
		Class: class,
	}
}

func newScheduler() *Scheduler {
	return NewScheduler(DefaultConfig(), spatial.NewEstimator(spatial.DefaultConfig()))
}

func input(at time.Duration) Input {
	return Input{Now: t0.Add(at), FrameWidth: frameW, FrameHeight: frameH, Floor: 0.5}
}

func TestStepPhraseAndTrend(t *testing.T) {
	s := newScheduler()

	out := s.OnDetections([]detection.Detection{det("chair", 320, 5, 0.9)}, input(0))
	require.Equal(t, KindSteps, out.Kind)
	assert.Equal(t, "Chair, about 5 steps ahead.", out.Text)
	assert.Nil(t, out.Haptic)

	out = s.OnDetections([]detection.Detection{det("chair", 320, 5, 0.9)}, input(2*time.Second))
	assert.False(t, out.Speaks(), "unchanged step count must stay silent")

	out = s.OnDetections([]detection.Detection{det("chair", 320, 4, 0.9)}, input(4*time.Second))
	require.Equal(t, KindSteps, out.Kind)
	assert.Equal(t, "Chair, about 4 steps ahead, getting closer.", out.Text)

	out = s.OnDetections([]detection.Detection{det("chair", 320, 6, 0.9)}, input(6*time.Second))
	require.Equal(t, KindSteps, out.Kind)
	assert.Equal(t, "Chair, about 6 steps ahead, getting farther.", out.Text)
}

func TestTargetedPhraseAndHaptic(t *testing.T) {
	s := newScheduler()
	in := input(0)
	in.Target = "chair"

	dets := []detection.Detection{
		det("person", 320, 5, 0.99),
		det("chair", 100, 7, 0.8),
	}
	out := s.OnDetections(dets, in)
	require.Equal(t, KindSteps, out.Kind)
	assert.Equal(t, "Target chair, about 7 steps to your left.", out.Text)
	assert.Equal(t, TargetPattern, out.Haptic)
}

func TestGlobalInterval(t *testing.T) {
	s := newScheduler()

	var spoken []time.Time
	// Every cycle shows a different object so only the global gate applies.
	classes := []string{"person", "chair", "cup", "dog", "car", "bottle"}
	for i := 0; i < 200; i++ {
		at := time.Duration(i) * 150 * time.Millisecond
		d := det(classes[i%len(classes)], float64(40+i%9*70), float64(3+i%15), 0.9)
		if out := s.OnDetections([]detection.Detection{d}, input(at)); out.Speaks() {
			spoken = append(spoken, t0.Add(at))
		}
	}

	require.NotEmpty(t, spoken)
	for i := 1; i < len(spoken); i++ {
		gap := spoken[i].Sub(spoken[i-1])
		assert.GreaterOrEqual(t, gap, 1500*time.Millisecond, "phrases %d and %d too close", i-1, i)
	}
}

func TestFoundOnce(t *testing.T) {
	s := newScheduler()
	in := input(0)
	in.Target = "bottle"

	out := s.OnDetections([]detection.Detection{det("bottle", 320, 2, 0.9)}, in)
	require.Equal(t, KindFound, out.Kind)
	assert.True(t, out.Found)
	assert.Equal(t, "Target bottle found. It is within 2 steps. Stopping guidance.", out.Text)
	assert.Equal(t, FoundPattern, out.Haptic)

	for i := 1; i <= 20; i++ {
		in.Now = t0.Add(time.Duration(i) * 2 * time.Second)
		out := s.OnDetections([]detection.Detection{det("bottle", 320, 1, 0.9)}, in)
		assert.False(t, out.Speaks(), "no phrase after found (cycle %d)", i)
	}

	s.Reset()
	out = s.OnDetections([]detection.Detection{det("bottle", 320, 1, 0.9)}, in)
	assert.Equal(t, KindFound, out.Kind, "reset re-arms the scheduler")
}

func TestFoundWithoutTarget(t *testing.T) {
	s := newScheduler()
	out := s.OnDetections([]detection.Detection{det("dog", 320, 1, 0.9)}, input(0))
	require.True(t, out.Found)
	assert.Equal(t, "Object dog found. It is within 1 step. Stopping guidance.", out.Text)
}

func TestFallbackCooldown(t *testing.T) {
	s := newScheduler()
	small := detection.Detection{Box: detection.Rect{X: 300, Y: 10, W: 15, H: 15}, Score: 0.9, Class: "cup"}

	out := s.OnDetections([]detection.Detection{small}, input(0))
	require.Equal(t, KindFallback, out.Kind)
	assert.Equal(t, "Cup in front, far.", out.Text)

	out = s.OnDetections([]detection.Detection{small}, input(2*time.Second))
	assert.False(t, out.Speaks(), "same key inside cooldown")

	other := small
	other.Box.X = 10
	out = s.OnDetections([]detection.Detection{other}, input(2*time.Second))
	require.Equal(t, KindFallback, out.Kind)
	assert.Equal(t, "Cup on the left, far.", out.Text)

	out = s.OnDetections([]detection.Detection{small}, input(4*time.Second))
	assert.True(t, out.Speaks(), "cooldown elapsed")
}

func TestSuppressedAndFiltered(t *testing.T) {
	s := newScheduler()

	in := input(0)
	in.Suppressed = true
	assert.False(t, s.OnDetections([]detection.Detection{det("chair", 320, 5, 0.9)}, in).Speaks())

	in = input(0)
	assert.False(t, s.OnDetections([]detection.Detection{det("chair", 320, 5, 0.4)}, in).Speaks(), "under floor")

	in.Target = "cup"
	assert.False(t, s.OnDetections([]detection.Detection{det("chair", 320, 5, 0.9)}, in).Speaks(), "not the target")

	assert.False(t, s.OnDetections(nil, input(0)).Speaks())

	_, trends := s.State().Keys()
	assert.Zero(t, trends, "silent cycles must not touch state")
}

func TestEviction(t *testing.T) {
	s := newScheduler()
	for i, class := range []string{"person", "chair", "cup", "dog"} {
		s.OnDetections([]detection.Detection{det(class, 320, 8, 0.9)}, input(time.Duration(i)*2*time.Second))
	}
	cool, trends := s.State().Keys()
	require.Equal(t, 4, cool)
	require.Equal(t, 4, trends)

	s.OnDetections([]detection.Detection{det("car", 320, 8, 0.9)}, input(time.Minute))
	cool, trends = s.State().Keys()
	assert.Equal(t, 1, cool)
	assert.Equal(t, 1, trends)
}

func TestBestIsHighestScore(t *testing.T) {
	best, ok := pickBest([]detection.Detection{
		{Class: "a", Score: 0.6},
		{Class: "b", Score: 0.9},
		{Class: "c", Score: 0.9},
	}, 0.5, "")
	require.True(t, ok)
	assert.Equal(t, "b", best.Class)
}
