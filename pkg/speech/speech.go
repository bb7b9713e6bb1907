// Package speech delivers guidance phrases and vibration patterns to the user.
//
// Speaking is fire-and-forget: Speak returns at once and a new phrase cuts
// off the one still playing. Silence cuts speech without replacing it.
package speech

import (
	"github.com/teslashibe/vocalpath/pkg/protocol"
)

// Speaker speaks phrases.
type Speaker interface {
	// Speak says text, interrupting any phrase in progress. Muted speakers
	// drop the phrase.
	Speak(text string)

	// Silence stops the current phrase.
	Silence()

	SetMuted(muted bool)
	Muted() bool
}

// Haptics plays vibration patterns, in milliseconds alternating on and off.
type Haptics interface {
	Vibrate(pattern []int)
}

// Sender delivers a message to the device. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(msg *protocol.Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(msg *protocol.Message) error

// Send calls f.
func (f SenderFunc) Send(msg *protocol.Message) error { return f(msg) }
