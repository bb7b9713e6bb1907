package speech

import "sync"

// Event is one call recorded by Recorder.
type Event struct {
	Kind    string // "speak", "silence" or "vibrate"
	Text    string
	Pattern []int
}

// Recorder implements Speaker and Haptics by recording calls. It is meant
// for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	muted  bool
}

// Speak records the phrase unless muted.
func (r *Recorder) Speak(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.muted {
		return
	}
	r.events = append(r.events, Event{Kind: "speak", Text: text})
}

// Silence records a silence.
func (r *Recorder) Silence() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: "silence"})
}

// SetMuted mutes or unmutes.
func (r *Recorder) SetMuted(muted bool) {
	r.mu.Lock()
	r.muted = muted
	r.mu.Unlock()
}

// Muted reports whether output is muted.
func (r *Recorder) Muted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.muted
}

// Vibrate records the pattern.
func (r *Recorder) Vibrate(pattern []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: "vibrate", Pattern: append([]int(nil), pattern...)})
}

// Events returns a copy of everything recorded.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Spoken returns the recorded phrases in order.
func (r *Recorder) Spoken() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Kind == "speak" {
			out = append(out, e.Text)
		}
	}
	return out
}

// Reset clears the recording.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

var (
	_ Speaker = (*Recorder)(nil)
	_ Haptics = (*Recorder)(nil)
)
