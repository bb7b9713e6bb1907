package speech

import (
	"fmt"
	"io"
	"sync"
)

// Console prints phrases and vibrations to a writer. It stands in for a
// device when running against a local webcam.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	muted bool
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Speak prints the phrase.
func (c *Console) Speak(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.muted || text == "" {
		return
	}
	fmt.Fprintf(c.w, "🔊 %s\n", text)
}

// Silence prints nothing; console output cannot be interrupted.
func (c *Console) Silence() {}

// SetMuted mutes or unmutes.
func (c *Console) SetMuted(muted bool) {
	c.mu.Lock()
	c.muted = muted
	c.mu.Unlock()
}

// Muted reports whether output is muted.
func (c *Console) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Vibrate prints the pattern.
func (c *Console) Vibrate(pattern []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "📳 %v\n", pattern)
}

var (
	_ Speaker = (*Console)(nil)
	_ Haptics = (*Console)(nil)
)
