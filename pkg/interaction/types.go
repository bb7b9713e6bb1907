package interaction

import (
	"errors"
	"time"
)

// ErrRecognizerBusy is returned when a recognizer is acquired while one is
// already held.
var ErrRecognizerBusy = errors.New("interaction: recognizer busy")

// Mode is the top-level interaction state.
type Mode int

const (
	Stopped Mode = iota
	Running
	AwaitingTarget
	SideTask
)

func (m Mode) String() string {
	switch m {
	case Running:
		return "running"
	case AwaitingTarget:
		return "awaiting_target"
	case SideTask:
		return "side_task"
	default:
		return "stopped"
	}
}

// AskMode records why AwaitingTarget was entered, which decides where a
// cancel goes.
type AskMode int

const (
	AskNone AskMode = iota
	AskInitial
	AskWhileRunning
)

func (a AskMode) String() string {
	switch a {
	case AskInitial:
		return "initial"
	case AskWhileRunning:
		return "while_running"
	default:
		return "none"
	}
}

// Recognizer identifies which speech recognizer is listening. At most one is
// held at a time.
type Recognizer int

const (
	RecognizerNone Recognizer = iota
	RecognizerTarget
	RecognizerCommand
)

func (r Recognizer) String() string {
	switch r {
	case RecognizerTarget:
		return "target"
	case RecognizerCommand:
		return "command"
	default:
		return "none"
	}
}

// EffectKind names a side effect the machine asks its host to perform.
type EffectKind int

const (
	EffectStartSession EffectKind = iota
	EffectStopSession
	EffectSpeak
	EffectStatus
	EffectListen
	EffectStopListening
	EffectRunSideTask
)

func (k EffectKind) String() string {
	switch k {
	case EffectStartSession:
		return "start_session"
	case EffectStopSession:
		return "stop_session"
	case EffectSpeak:
		return "speak"
	case EffectStatus:
		return "status"
	case EffectListen:
		return "listen"
	case EffectStopListening:
		return "stop_listening"
	case EffectRunSideTask:
		return "run_side_task"
	default:
		return "unknown"
	}
}

// Effect is one side effect. Fields are set according to Kind.
type Effect struct {
	Kind       EffectKind
	Text       string     // Speak, Status
	Recognizer Recognizer // Listen, StopListening
	Epoch      uint64     // StartSession, RunSideTask
	Silence    bool       // StopSession: cut the current utterance
}

// Transition is the result of feeding one event to the machine.
type Transition struct {
	From    Mode
	To      Mode
	Effects []Effect
}

// Changed reports whether the mode changed.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Snapshot is a read-only view of the machine.
type Snapshot struct {
	Mode        Mode
	Target      string
	Ask         AskMode
	AskDeadline time.Time
	AskRetries  int
	Epoch       uint64
	Recognizer  Recognizer
	Starting    bool
}
