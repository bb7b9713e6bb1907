package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/teslashibe/vocalpath/pkg/camera"
	"github.com/teslashibe/vocalpath/pkg/currency"
	"github.com/teslashibe/vocalpath/pkg/detection"
	"github.com/teslashibe/vocalpath/pkg/interaction"
	"github.com/teslashibe/vocalpath/pkg/speech"
	"github.com/teslashibe/vocalpath/pkg/voicetarget"
)

// Control receives the non-speech effects of the interaction machine.
type Control interface {
	// Status shows a status line together with the machine state it
	// belongs to.
	Status(snap interaction.Snapshot, text string)

	// Listen starts the given recognizer on the device.
	Listen(r interaction.Recognizer)

	// StopListening stops the given recognizer.
	StopListening(r interaction.Recognizer)
}

// Recorder receives engine metrics. *observe.Metrics implements it.
type Recorder interface {
	RecordCycle(ctx context.Context, d time.Duration, detections int)
	RecordInferenceError(ctx context.Context, adapter string)
	RecordPhrase(ctx context.Context, kind string)
	RecordTransition(ctx context.Context, from, to string)
	RecordSideTask(ctx context.Context, outcome string)
	RecordFramesDropped(ctx context.Context, n int64)
	AddActiveSessions(ctx context.Context, delta int64)
}

// Deps are the collaborators of an Engine. Camera, Detector and Speaker are
// required.
type Deps struct {
	// Camera returns the frame source for a new session. The engine starts
	// it and closes it when the session ends.
	Camera func(ctx context.Context) (camera.Source, error)

	// Detector is shared between engines and is not closed by them.
	Detector detection.Adapter

	// Currency identifies notes for the currency side task. Optional.
	Currency currency.Classifier

	// Resolver maps transcripts to classes. Defaults to voicetarget.New().
	Resolver *voicetarget.Resolver

	Speaker speech.Speaker
	Haptics speech.Haptics // Optional
	Control Control        // Optional
	Metrics Recorder       // Optional

	// OnDetections is called with every decoded frame. Optional.
	OnDetections func(frame camera.Frame, dets []detection.Detection)

	Logger *slog.Logger
	Now    func() time.Time
}

type nopControl struct{}

func (nopControl) Status(interaction.Snapshot, string)  {}
func (nopControl) Listen(interaction.Recognizer)        {}
func (nopControl) StopListening(interaction.Recognizer) {}

type nopHaptics struct{}

func (nopHaptics) Vibrate([]int) {}

type nopRecorder struct{}

func (nopRecorder) RecordCycle(context.Context, time.Duration, int)  {}
func (nopRecorder) RecordInferenceError(context.Context, string)     {}
func (nopRecorder) RecordPhrase(context.Context, string)             {}
func (nopRecorder) RecordTransition(context.Context, string, string) {}
func (nopRecorder) RecordSideTask(context.Context, string)           {}
func (nopRecorder) RecordFramesDropped(context.Context, int64)       {}
func (nopRecorder) AddActiveSessions(context.Context, int64)         {}
