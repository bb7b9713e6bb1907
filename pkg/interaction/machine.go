// Package interaction serializes gesture and voice events into a single
// guidance mode and the side effects that go with each transition.
//
// The Machine never performs I/O. Every event method returns a Transition
// whose Effects the host executes in order.
package interaction

import (
	"sync"
	"time"

	"github.com/teslashibe/vocalpath/pkg/voicetarget"
)

// Benign recognizer error codes. They never reach the user.
const (
	RecognizerNoSpeech = "no-speech"
	RecognizerAborted  = "aborted"
)

// Config holds interaction timing and policy.
type Config struct {
	DoubleTapWindow  time.Duration // Max gap between the taps of a double-tap
	AskTimeout       time.Duration // How long to wait for a spoken target
	AskRetries       int           // Automatic re-prompts before giving up
	CurrencyCooldown time.Duration // Min gap between currency commands
	AskTargetOnStart bool          // Prompt for a target once the session is ready
}

// DefaultConfig returns the standard interaction policy.
func DefaultConfig() Config {
	return Config{
		DoubleTapWindow:  300 * time.Millisecond,
		AskTimeout:       10 * time.Second,
		AskRetries:       1,
		CurrencyCooldown: 5000 * time.Millisecond,
		AskTargetOnStart: true,
	}
}

// Machine is the interaction state machine. It is safe for concurrent use.
type Machine struct {
	config   Config
	resolver *voicetarget.Resolver

	mu           sync.Mutex
	mode         Mode
	target       string
	ask          AskMode
	askDeadline  time.Time
	askRetries   int
	lastRunStop  bool // the last Running double-tap stopped the session
	lastTap      time.Time
	lastCurrency time.Time
	epoch        uint64
	recognizer   Recognizer
	starting     bool
}

// New creates a machine in Stopped.
func New(cfg Config, resolver *voicetarget.Resolver) *Machine {
	if resolver == nil {
		resolver = voicetarget.New()
	}
	return &Machine{config: cfg, resolver: resolver}
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Mode:        m.mode,
		Target:      m.target,
		Ask:         m.ask,
		AskDeadline: m.askDeadline,
		AskRetries:  m.askRetries,
		Epoch:       m.epoch,
		Recognizer:  m.recognizer,
		Starting:    m.starting,
	}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Epoch returns the session generation. It changes on every start and stop,
// so results tagged with an older epoch belong to a finished session.
func (m *Machine) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// SpeakingAllowed reports whether guidance phrases may be emitted for a
// result produced under epoch.
func (m *Machine) SpeakingAllowed(epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode == Running && !m.starting && epoch == m.epoch
}

// Target returns the locked class, "" for any.
func (m *Machine) Target() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}

// AcquireRecognizer claims the single recognizer slot for r. Re-acquiring
// the held kind succeeds.
func (m *Machine) AcquireRecognizer(r Recognizer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recognizer != RecognizerNone && m.recognizer != r {
		return ErrRecognizerBusy
	}
	m.recognizer = r
	return nil
}

// ReleaseRecognizer frees the slot if r holds it.
func (m *Machine) ReleaseRecognizer(r Recognizer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recognizer == r {
		m.recognizer = RecognizerNone
	}
}

// Tap records a single tap and turns it into a double-tap when it follows
// the previous tap within the window.
func (m *Machine) Tap(now time.Time) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.lastTap.IsZero() && now.Sub(m.lastTap) <= m.config.DoubleTapWindow {
		m.lastTap = time.Time{}
		return m.doubleTap(now)
	}
	m.lastTap = now
	return m.stay()
}

// DoubleTap handles a double-tap gesture.
func (m *Machine) DoubleTap(now time.Time) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTap = time.Time{}
	return m.doubleTap(now)
}

func (m *Machine) doubleTap(now time.Time) Transition {
	switch m.mode {
	case Stopped:
		return m.start()

	case Running:
		if m.lastRunStop {
			m.lastRunStop = false
			return m.openAsk(now, AskWhileRunning)
		}
		m.lastRunStop = true
		return m.stop(true)

	case AwaitingTarget:
		if m.ask == AskWhileRunning {
			t := m.begin()
			m.closeAsk(&t)
			m.mode = Running
			t.Effects = append(t.Effects,
				Effect{Kind: EffectStatus, Text: runningStatus(m.target)},
				Effect{Kind: EffectSpeak, Text: msgResuming},
			)
			return m.finish(t)
		}
		m.lastRunStop = false
		return m.stop(true)

	case SideTask:
		m.lastRunStop = true
		return m.stop(true)
	}
	return m.stay()
}

// SessionReady reports that the camera and detector for epoch are up.
func (m *Machine) SessionReady(now time.Time, epoch uint64) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch || m.mode != Running || !m.starting {
		return m.stay()
	}
	m.starting = false
	if m.config.AskTargetOnStart {
		return m.openAsk(now, AskInitial)
	}
	t := m.begin()
	m.listen(&t, RecognizerCommand)
	t.Effects = append(t.Effects, Effect{Kind: EffectStatus, Text: runningStatus(m.target)})
	return m.finish(t)
}

// SessionFailed reports that acquiring the session for epoch failed.
func (m *Machine) SessionFailed(epoch uint64, reason string) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch || m.mode == Stopped {
		return m.stay()
	}
	t := m.stop(true)
	msg := startFailedMessage(reason)
	t.Effects = append(t.Effects,
		Effect{Kind: EffectStatus, Text: msg},
		Effect{Kind: EffectSpeak, Text: msg},
	)
	return t
}

// HandleTranscript consumes a final speech transcript from either
// recognizer.
func (m *Machine) HandleTranscript(now time.Time, transcript string) Transition {
	if voicetarget.IsCurrencyCommand(transcript) {
		return m.CurrencyCommand(now)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != AwaitingTarget {
		return m.stay()
	}

	class, ok := m.resolver.Resolve(transcript)
	if !ok {
		return m.retryOrGiveUp(now, false)
	}

	initial := m.ask == AskInitial
	t := m.begin()
	m.closeAsk(&t)
	m.mode = Running
	m.lastRunStop = false

	var msg string
	if class == voicetarget.Any {
		m.target = ""
		msg = msgTargetAny
	} else {
		m.target = class
		msg = targetSetMessage(class, initial)
	}
	t.Effects = append(t.Effects,
		Effect{Kind: EffectStatus, Text: runningStatus(m.target)},
		Effect{Kind: EffectSpeak, Text: msg},
	)
	return m.finish(t)
}

// RecognizerError handles a recognizer failure code. No-speech counts as an
// unanswered prompt and aborted is ignored; anything else is surfaced and
// ends the prompt.
func (m *Machine) RecognizerError(now time.Time, code string) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch code {
	case RecognizerAborted:
		return m.stay()
	case RecognizerNoSpeech:
		if m.mode == AwaitingTarget {
			return m.retryOrGiveUp(now, true)
		}
		return m.stay()
	}

	t := m.begin()
	t.Effects = append(t.Effects, Effect{Kind: EffectStatus, Text: voiceErrorMessage(code)})
	if m.mode == AwaitingTarget {
		t = m.giveUp(t)
	}
	return m.finish(t)
}

// Tick fires time-based transitions; the host calls it on every poll.
func (m *Machine) Tick(now time.Time) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != AwaitingTarget || m.askDeadline.IsZero() || now.Before(m.askDeadline) {
		return m.stay()
	}
	return m.retryOrGiveUp(now, true)
}

// CurrencyCommand handles a "detect currency" request.
func (m *Machine) CurrencyCommand(now time.Time) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.lastCurrency.IsZero() && now.Sub(m.lastCurrency) < m.config.CurrencyCooldown {
		return m.stay()
	}
	m.lastCurrency = now

	switch m.mode {
	case SideTask:
		return m.stay()
	case Running:
		if m.starting {
			break
		}
		t := m.begin()
		m.mode = SideTask
		t.Effects = append(t.Effects,
			Effect{Kind: EffectStatus, Text: "Detecting currency…"},
			Effect{Kind: EffectSpeak, Text: msgCurrencyStart},
			Effect{Kind: EffectRunSideTask, Epoch: m.epoch},
		)
		return m.finish(t)
	}

	t := m.begin()
	t.Effects = append(t.Effects, Effect{Kind: EffectSpeak, Text: msgCurrencyOnlyMode})
	return m.finish(t)
}

// SideTaskDone delivers the side task's announcement. Results from an older
// epoch, or arriving after the side task was left, are dropped.
func (m *Machine) SideTaskDone(epoch uint64, text string) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch || m.mode != SideTask {
		return m.stay()
	}
	t := m.begin()
	m.mode = Running
	t.Effects = append(t.Effects,
		Effect{Kind: EffectStatus, Text: text},
		Effect{Kind: EffectSpeak, Text: text},
	)
	return m.finish(t)
}

// TargetFound stops the session after the scheduler announced the target.
// The found phrase keeps playing.
func (m *Machine) TargetFound(epoch uint64) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch || m.mode != Running {
		return m.stay()
	}
	return m.stop(false)
}

// SelectTarget locks a class chosen explicitly by the user. "" or Any
// clears it.
func (m *Machine) SelectTarget(class string) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	if class == voicetarget.Any {
		class = ""
	}
	m.target = class
	t := m.begin()
	if m.mode == Running {
		t.Effects = append(t.Effects, Effect{Kind: EffectStatus, Text: runningStatus(m.target)})
	}
	return m.finish(t)
}

// Stop ends the session from any mode. Stopping a stopped machine does
// nothing.
func (m *Machine) Stop() Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == Stopped {
		return m.stay()
	}
	return m.stop(true)
}

// --- internal transitions; callers hold m.mu ---

func (m *Machine) begin() Transition {
	return Transition{From: m.mode}
}

func (m *Machine) finish(t Transition) Transition {
	t.To = m.mode
	return t
}

func (m *Machine) stay() Transition {
	return Transition{From: m.mode, To: m.mode}
}

func (m *Machine) start() Transition {
	t := m.begin()
	m.epoch++
	m.mode = Running
	m.starting = true
	m.ask = AskNone
	t.Effects = append(t.Effects,
		Effect{Kind: EffectStatus, Text: msgStarting},
		Effect{Kind: EffectSpeak, Text: msgStarting},
		Effect{Kind: EffectStartSession, Epoch: m.epoch},
	)
	return m.finish(t)
}

func (m *Machine) stop(silence bool) Transition {
	t := m.begin()
	if m.recognizer != RecognizerNone {
		t.Effects = append(t.Effects, Effect{Kind: EffectStopListening, Recognizer: m.recognizer})
		m.recognizer = RecognizerNone
	}
	m.epoch++
	m.mode = Stopped
	m.starting = false
	m.ask = AskNone
	m.askDeadline = time.Time{}
	m.askRetries = 0
	t.Effects = append(t.Effects,
		Effect{Kind: EffectStopSession, Silence: silence},
		Effect{Kind: EffectStatus, Text: msgStopped},
	)
	return m.finish(t)
}

func (m *Machine) openAsk(now time.Time, mode AskMode) Transition {
	t := m.begin()
	m.mode = AwaitingTarget
	m.ask = mode
	m.askRetries = 0
	m.askDeadline = now.Add(m.config.AskTimeout)

	prompt := msgAskWhileRunning
	if mode == AskInitial {
		prompt = msgAskInitial
	}
	t.Effects = append(t.Effects,
		Effect{Kind: EffectStatus, Text: "Listening for target object…"},
		Effect{Kind: EffectSpeak, Text: prompt},
	)
	m.listen(&t, RecognizerTarget)
	return m.finish(t)
}

// closeAsk leaves AwaitingTarget bookkeeping and hands the recognizer back to
// command listening. The caller sets the next mode.
func (m *Machine) closeAsk(t *Transition) {
	m.ask = AskNone
	m.askDeadline = time.Time{}
	m.askRetries = 0
	m.listen(t, RecognizerCommand)
}

func (m *Machine) retryOrGiveUp(now time.Time, silent bool) Transition {
	t := m.begin()
	if m.askRetries < m.config.AskRetries {
		m.askRetries++
		m.askDeadline = now.Add(m.config.AskTimeout)
		msg := msgRetryWhile
		if m.ask == AskInitial {
			msg = msgRetryInitial
		}
		if silent && m.ask == AskInitial {
			msg = "I didn't catch that. Please say an object name like person, chair, bottle, or any."
		}
		t.Effects = append(t.Effects, Effect{Kind: EffectSpeak, Text: msg})
		m.listen(&t, RecognizerTarget)
		return m.finish(t)
	}
	return m.finish(m.giveUp(t))
}

func (m *Machine) giveUp(t Transition) Transition {
	m.closeAsk(&t)
	m.mode = Running
	m.target = ""
	m.lastRunStop = false
	t.Effects = append(t.Effects,
		Effect{Kind: EffectStatus, Text: runningStatus(m.target)},
		Effect{Kind: EffectSpeak, Text: msgGiveUp},
	)
	return t
}

// listen switches the recognizer slot to r, stopping whichever recognizer
// held it. Listening on an already held slot restarts it.
func (m *Machine) listen(t *Transition, r Recognizer) {
	if m.recognizer != RecognizerNone && m.recognizer != r {
		t.Effects = append(t.Effects, Effect{Kind: EffectStopListening, Recognizer: m.recognizer})
	}
	m.recognizer = r
	t.Effects = append(t.Effects, Effect{Kind: EffectListen, Recognizer: r})
}
