package speech

import (
	"log/slog"
	"sync/atomic"

	"github.com/teslashibe/vocalpath/pkg/protocol"
)

// Remote speaks through the device's own speech engine by sending it text.
// It also implements Haptics.
type Remote struct {
	sender Sender
	logger *slog.Logger
	muted  atomic.Bool
}

// NewRemote creates a Remote sending through s.
func NewRemote(s Sender, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{sender: s, logger: logger.With("component", "speech.remote")}
}

// Speak sends text to the device.
func (r *Remote) Speak(text string) {
	if r.muted.Load() || text == "" {
		return
	}
	msg, err := protocol.NewSpeakMessage(text)
	if err == nil {
		err = r.sender.Send(msg)
	}
	if err != nil {
		r.logger.Warn("speak failed", "error", err)
	}
}

// Silence tells the device to stop speaking.
func (r *Remote) Silence() {
	msg, err := protocol.NewMessage(protocol.TypeSilence, nil)
	if err == nil {
		err = r.sender.Send(msg)
	}
	if err != nil {
		r.logger.Warn("silence failed", "error", err)
	}
}

// SetMuted turns spoken output off or on. Muting also silences.
func (r *Remote) SetMuted(muted bool) {
	if r.muted.Swap(muted) != muted && muted {
		r.Silence()
	}
}

// Muted reports whether output is muted.
func (r *Remote) Muted() bool { return r.muted.Load() }

// Vibrate sends a vibration pattern.
func (r *Remote) Vibrate(pattern []int) {
	if len(pattern) == 0 {
		return
	}
	msg, err := protocol.NewHapticMessage(pattern)
	if err == nil {
		err = r.sender.Send(msg)
	}
	if err != nil {
		r.logger.Warn("vibrate failed", "error", err)
	}
}

var (
	_ Speaker = (*Remote)(nil)
	_ Haptics = (*Remote)(nil)
)
