package speech

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/vocalpath/pkg/protocol"
	"github.com/teslashibe/vocalpath/pkg/tts"
)

// Synth synthesizes phrases on the server and sends the audio clip to the
// device. A new phrase cancels the synthesis of the previous one. When
// synthesis fails the text is sent alone so the device can speak it itself.
type Synth struct {
	provider tts.Provider
	sender   Sender
	logger   *slog.Logger
	muted    atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
	wg     sync.WaitGroup
}

// NewSynth creates a Synth.
func NewSynth(p tts.Provider, s Sender, logger *slog.Logger) *Synth {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synth{provider: p, sender: s, logger: logger.With("component", "speech.synth")}
}

// Speak starts synthesizing text in the background.
func (s *Synth) Speak(text string) {
	if s.muted.Load() || text == "" {
		return
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()
		s.deliver(ctx, gen, text)
	}()
}

func (s *Synth) deliver(ctx context.Context, gen uint64, text string) {
	var msg *protocol.Message
	clip, err := s.provider.Synthesize(ctx, text)
	switch {
	case ctx.Err() != nil:
		return
	case err != nil:
		s.logger.Warn("synthesis failed, sending text", "error", err)
		msg, err = protocol.NewSpeakMessage(text)
	default:
		msg, err = protocol.NewSpeakAudioMessage(text, clip.Audio, clip.Format.MIME())
	}
	if err != nil {
		s.logger.Warn("build speak message", "error", err)
		return
	}

	// A newer phrase or a silence may have arrived while synthesizing.
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || ctx.Err() != nil {
		return
	}
	if err := s.sender.Send(msg); err != nil {
		s.logger.Warn("speak failed", "error", err)
	}
}

// Silence cancels pending synthesis and tells the device to stop.
func (s *Synth) Silence() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.mu.Unlock()

	msg, err := protocol.NewMessage(protocol.TypeSilence, nil)
	if err == nil {
		err = s.sender.Send(msg)
	}
	if err != nil {
		s.logger.Warn("silence failed", "error", err)
	}
}

// SetMuted turns spoken output off or on. Muting also silences.
func (s *Synth) SetMuted(muted bool) {
	if s.muted.Swap(muted) != muted && muted {
		s.Silence()
	}
}

// Muted reports whether output is muted.
func (s *Synth) Muted() bool { return s.muted.Load() }

// Wait blocks until background synthesis has finished.
func (s *Synth) Wait() { s.wg.Wait() }

var _ Speaker = (*Synth)(nil)
