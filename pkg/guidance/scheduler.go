// Package guidance decides, once per detection cycle, whether to speak,
// what to say and when to declare the target found.
package guidance

import (
	"fmt"
	"math"
	"time"

	"github.com/teslashibe/vocalpath/pkg/detection"
	"github.com/teslashibe/vocalpath/pkg/spatial"
)

// Haptic patterns in milliseconds (vibrate, pause, vibrate).
var (
	FoundPattern  = []int{100, 60, 100}
	TargetPattern = []int{80, 40, 80}
)

// Config holds scheduler timing.
type Config struct {
	GlobalInterval      time.Duration // Minimum gap between any two phrases
	KeyCooldown         time.Duration // Minimum gap before repeating the same phrase key
	FoundMaxSteps       int           // At or under this many steps the object is found
	StepChangeThreshold int           // Step delta needed to announce again
	EvictAfter          time.Duration // Forget keys older than this
}

// DefaultConfig returns the standard guidance timing.
func DefaultConfig() Config {
	return Config{
		GlobalInterval:      1500 * time.Millisecond,
		KeyCooldown:         4000 * time.Millisecond,
		FoundMaxSteps:       2,
		StepChangeThreshold: 1,
		EvictAfter:          12 * time.Second,
	}
}

// Kind tells what an Outcome announces.
type Kind int

const (
	KindNone Kind = iota
	KindFallback
	KindSteps
	KindFound
)

func (k Kind) String() string {
	switch k {
	case KindFallback:
		return "fallback"
	case KindSteps:
		return "steps"
	case KindFound:
		return "found"
	default:
		return "none"
	}
}

// Input is the per-cycle context for OnDetections.
type Input struct {
	Now         time.Time
	FrameWidth  int
	FrameHeight int
	Floor       float64 // Detections under this score are ignored
	Target      string  // Locked class, "" for any
	Suppressed  bool    // Speaking is not allowed this cycle
}

// Outcome is the scheduler's decision for one cycle. A zero Outcome means
// stay silent.
type Outcome struct {
	Kind   Kind
	Text   string
	Haptic []int
	Found  bool
	Best   detection.Detection
	Where  spatial.Descriptor
}

// Speaks reports whether the outcome carries a phrase.
func (o Outcome) Speaks() bool {
	return o.Kind != KindNone
}

type stepMark struct {
	steps int
	at    time.Time
}

// SpeechState is the scheduler's memory of what it has said.
type SpeechState struct {
	LastGlobal time.Time
	keyLast    map[string]time.Time
	zoneSteps  map[string]stepMark
}

func newSpeechState() SpeechState {
	return SpeechState{
		keyLast:   make(map[string]time.Time),
		zoneSteps: make(map[string]stepMark),
	}
}

// Keys returns how many cooldown and trend entries are held.
func (s *SpeechState) Keys() (cooldowns, trends int) {
	return len(s.keyLast), len(s.zoneSteps)
}

// Scheduler owns the speech state for one session. It is not safe for
// concurrent use; the cycle driver serializes calls.
type Scheduler struct {
	config    Config
	estimator *spatial.Estimator
	state     SpeechState
	found     bool
}

// NewScheduler creates a scheduler using est for spatial readings.
func NewScheduler(cfg Config, est *spatial.Estimator) *Scheduler {
	if cfg.EvictAfter <= 0 {
		cfg.EvictAfter = 3 * cfg.KeyCooldown
	}
	return &Scheduler{
		config:    cfg,
		estimator: est,
		state:     newSpeechState(),
	}
}

// Reset clears all speech memory and the found latch. Called on session stop.
func (s *Scheduler) Reset() {
	s.state = newSpeechState()
	s.found = false
}

// State exposes the speech memory for inspection.
func (s *Scheduler) State() *SpeechState {
	return &s.state
}

// OnDetections runs one scheduling cycle.
func (s *Scheduler) OnDetections(dets []detection.Detection, in Input) Outcome {
	if in.Suppressed || s.found {
		return Outcome{}
	}

	best, ok := pickBest(dets, in.Floor, in.Target)
	if !ok {
		return Outcome{}
	}

	if !s.state.LastGlobal.IsZero() && in.Now.Sub(s.state.LastGlobal) < s.config.GlobalInterval {
		return Outcome{}
	}

	where := s.estimator.Describe(best, in.FrameWidth, in.FrameHeight)
	targeted := in.Target != ""

	if !where.HasSteps {
		key := fmt.Sprintf("%s|%s|%s", best.Class, where.Zone, where.Band)
		if !s.cooledDown(key, in.Now) {
			return Outcome{}
		}
		s.mark(key, in.Now)
		return Outcome{
			Kind:  KindFallback,
			Text:  FallbackPhrase(best.Class, where.Zone, where.Band, targeted),
			Best:  best,
			Where: where,
		}
	}

	steps := spatial.RoundSteps(where.Steps)

	if steps <= s.config.FoundMaxSteps {
		s.found = true
		s.state.LastGlobal = in.Now
		return Outcome{
			Kind:   KindFound,
			Text:   FoundPhrase(best.Class, steps, targeted),
			Haptic: FoundPattern,
			Found:  true,
			Best:   best,
			Where:  where,
		}
	}

	zoneKey := fmt.Sprintf("%s|%s", best.Class, where.Zone)
	prev, seen := s.state.zoneSteps[zoneKey]
	if seen && absInt(steps-prev.steps) < s.config.StepChangeThreshold {
		return Outcome{}
	}

	key := fmt.Sprintf("%s|%d", zoneKey, steps)
	if !s.cooledDown(key, in.Now) {
		return Outcome{}
	}

	trend := TrendNone
	if seen {
		trend = trendBetween(prev.steps, steps)
	}

	s.state.zoneSteps[zoneKey] = stepMark{steps: steps, at: in.Now}
	s.mark(key, in.Now)

	out := Outcome{
		Kind:  KindSteps,
		Text:  StepPhrase(best.Class, steps, where.Zone, trend, targeted),
		Best:  best,
		Where: where,
	}
	if targeted && best.Class == in.Target {
		out.Haptic = TargetPattern
	}
	return out
}

func (s *Scheduler) cooledDown(key string, now time.Time) bool {
	last, ok := s.state.keyLast[key]
	return !ok || now.Sub(last) >= s.config.KeyCooldown
}

// mark records a spoken phrase and drops stale entries.
func (s *Scheduler) mark(key string, now time.Time) {
	s.state.keyLast[key] = now
	s.state.LastGlobal = now
	s.evict(now)
}

func (s *Scheduler) evict(now time.Time) {
	for k, at := range s.state.keyLast {
		if now.Sub(at) > s.config.EvictAfter {
			delete(s.state.keyLast, k)
		}
	}
	for k, m := range s.state.zoneSteps {
		if now.Sub(m.at) > s.config.EvictAfter {
			delete(s.state.zoneSteps, k)
		}
	}
}

// pickBest returns the highest-scoring detection that clears the floor and
// matches target. Ties keep the earlier detection.
func pickBest(dets []detection.Detection, floor float64, target string) (detection.Detection, bool) {
	var best detection.Detection
	found := false
	for _, d := range dets {
		if d.Score < floor || math.IsNaN(d.Score) {
			continue
		}
		if target != "" && d.Class != target {
			continue
		}
		if !found || d.Score > best.Score {
			best, found = d, true
		}
	}
	return best, found
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
