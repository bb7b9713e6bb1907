// Package engine runs one guidance session host: it feeds gesture and voice
// events to the interaction machine, executes the machine's effects and
// drives the detection cycle while guidance is running.
//
// Lock order is evMu then mu. evMu serializes machine events with the
// execution of their effects; mu guards the session, the scheduler and the
// confidence floor. Inference runs with neither held.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/teslashibe/vocalpath/pkg/camera"
	"github.com/teslashibe/vocalpath/pkg/currency"
	"github.com/teslashibe/vocalpath/pkg/detection"
	"github.com/teslashibe/vocalpath/pkg/guidance"
	"github.com/teslashibe/vocalpath/pkg/interaction"
	"github.com/teslashibe/vocalpath/pkg/spatial"
	"github.com/teslashibe/vocalpath/pkg/voicetarget"
)

var errNoFrame = errors.New("engine: no frame available")

const msgCurrencyUnavailable = "Currency detection is not configured."

const decodeWarnEvery = 10 * time.Second

// session is the runtime of one Running stretch, keyed by machine epoch.
type session struct {
	epoch  uint64
	ctx    context.Context
	cancel context.CancelFunc
	source camera.Source
}

// Engine hosts one interaction machine and its guidance loop.
type Engine struct {
	config  Config
	deps    Deps
	logger  *slog.Logger
	metrics Recorder

	machine *interaction.Machine
	decoder *detection.Decoder

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	evMu   sync.Mutex
	closed bool // guarded by evMu

	mu             sync.Mutex
	sess           *session
	scheduler      *guidance.Scheduler
	floor          float64
	lastDecodeWarn time.Time
}

// New creates an engine. It panics if a required dependency is missing.
func New(cfg Config, deps Deps) *Engine {
	if deps.Camera == nil || deps.Detector == nil || deps.Speaker == nil {
		panic("engine: Camera, Detector and Speaker are required")
	}
	cfg.fill()
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Control == nil {
		deps.Control = nopControl{}
	}
	if deps.Haptics == nil {
		deps.Haptics = nopHaptics{}
	}
	if deps.Metrics == nil {
		deps.Metrics = nopRecorder{}
	}
	if deps.Resolver == nil {
		deps.Resolver = voicetarget.New()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		config:    cfg,
		deps:      deps,
		logger:    deps.Logger.With("component", "engine"),
		metrics:   deps.Metrics,
		machine:   interaction.New(cfg.Interaction, deps.Resolver),
		decoder:   detection.NewDecoder(cfg.Decoder),
		ctx:       ctx,
		cancel:    cancel,
		scheduler: guidance.NewScheduler(cfg.Guidance, spatial.NewEstimator(cfg.Spatial)),
		floor:     clampFloor(cfg.ConfidenceFloor),
	}
}

// Snapshot returns the interaction state.
func (e *Engine) Snapshot() interaction.Snapshot {
	return e.machine.Snapshot()
}

// Floor returns the current confidence floor.
func (e *Engine) Floor() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.floor
}

// --- events ---

// Tap records a single screen tap; two close taps toggle guidance.
func (e *Engine) Tap() {
	e.event(func(now time.Time) interaction.Transition { return e.machine.Tap(now) })
}

// DoubleTap handles a double tap detected by the device.
func (e *Engine) DoubleTap() {
	e.event(func(now time.Time) interaction.Transition { return e.machine.DoubleTap(now) })
}

// Transcript handles a final speech recognition result.
func (e *Engine) Transcript(text string) {
	e.event(func(now time.Time) interaction.Transition { return e.machine.HandleTranscript(now, text) })
}

// RecognizerError handles a speech recognition failure code.
func (e *Engine) RecognizerError(code string) {
	e.event(func(now time.Time) interaction.Transition { return e.machine.RecognizerError(now, code) })
}

// SelectTarget locks the target class directly. "" or "any" clears it.
func (e *Engine) SelectTarget(class string) {
	e.event(func(time.Time) interaction.Transition { return e.machine.SelectTarget(class) })
}

// CameraFailed reports that the device could not open its camera. name is
// the browser error name.
func (e *Engine) CameraFailed(name string) {
	reason := camera.ParseFailure(name).Reason()
	e.event(func(time.Time) interaction.Transition {
		return e.machine.SessionFailed(e.machine.Epoch(), reason)
	})
}

// Stop ends guidance. It is idempotent.
func (e *Engine) Stop() {
	e.event(func(time.Time) interaction.Transition { return e.machine.Stop() })
}

// SetMuted turns spoken output off or on.
func (e *Engine) SetMuted(muted bool) {
	e.deps.Speaker.SetMuted(muted)
}

// SetConfidence changes the confidence floor for subsequent cycles.
func (e *Engine) SetConfidence(v float64) {
	e.mu.Lock()
	e.floor = clampFloor(v)
	e.mu.Unlock()
}

// Close stops guidance and waits for background work to finish. Events
// received after Close are ignored.
func (e *Engine) Close() error {
	e.evMu.Lock()
	if e.closed {
		e.evMu.Unlock()
		return nil
	}
	e.apply(e.machine.Stop())
	e.closed = true
	e.evMu.Unlock()

	e.cancel()
	e.wg.Wait()
	return nil
}

func (e *Engine) event(fn func(now time.Time) interaction.Transition) {
	e.evMu.Lock()
	defer e.evMu.Unlock()
	if e.closed {
		return
	}
	e.apply(fn(e.deps.Now()))
}

// apply executes a transition's effects in order. Callers hold evMu.
func (e *Engine) apply(t interaction.Transition) {
	if t.Changed() {
		e.logger.Info("mode changed", "from", t.From, "to", t.To)
		e.metrics.RecordTransition(e.ctx, t.From.String(), t.To.String())
	}
	for _, ef := range t.Effects {
		switch ef.Kind {
		case interaction.EffectStartSession:
			e.startSession(ef.Epoch)
		case interaction.EffectStopSession:
			e.stopSession(ef.Silence)
		case interaction.EffectSpeak:
			e.deps.Speaker.Speak(ef.Text)
		case interaction.EffectStatus:
			e.deps.Control.Status(e.machine.Snapshot(), ef.Text)
		case interaction.EffectListen:
			e.deps.Control.Listen(ef.Recognizer)
		case interaction.EffectStopListening:
			e.deps.Control.StopListening(ef.Recognizer)
		case interaction.EffectRunSideTask:
			e.runSideTask(ef.Epoch)
		}
	}
}

// --- session lifecycle ---

func (e *Engine) startSession(epoch uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess != nil {
		e.endLocked()
	}
	ctx, cancel := context.WithCancel(e.ctx)
	e.sess = &session{epoch: epoch, ctx: ctx, cancel: cancel}
	e.wg.Add(1)
	go e.run(ctx, epoch)
}

func (e *Engine) stopSession(silence bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess != nil {
		e.endLocked()
	}
	e.scheduler.Reset()
	if silence {
		e.deps.Speaker.Silence()
	}
}

// endLocked cancels the session and releases its camera. Callers hold mu.
func (e *Engine) endLocked() {
	s := e.sess
	e.sess = nil
	s.cancel()
	if s.source == nil {
		return
	}
	if d, ok := s.source.(interface{ Drops() uint64 }); ok {
		e.metrics.RecordFramesDropped(e.ctx, int64(d.Drops()))
	}
	if err := s.source.Close(); err != nil {
		e.logger.Warn("close camera", "error", err)
	}
	e.metrics.AddActiveSessions(e.ctx, -1)
}

// run acquires the camera for epoch and then drives guidance cycles until
// the session ends.
func (e *Engine) run(ctx context.Context, epoch uint64) {
	defer e.wg.Done()

	src, err := e.deps.Camera(ctx)
	if err == nil {
		err = src.Start(ctx)
		if err != nil {
			src.Close()
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		e.logger.Warn("camera acquisition failed", "epoch", epoch, "error", err)
		reason := camera.ReasonFor(err)
		e.event(func(time.Time) interaction.Transition { return e.machine.SessionFailed(epoch, reason) })
		return
	}

	e.mu.Lock()
	if e.sess == nil || e.sess.epoch != epoch {
		e.mu.Unlock()
		src.Close()
		return
	}
	e.sess.source = src
	e.metrics.AddActiveSessions(ctx, 1)
	e.mu.Unlock()

	e.logger.Info("session ready", "epoch", epoch, "detector", e.deps.Detector.Name())
	e.event(func(now time.Time) interaction.Transition { return e.machine.SessionReady(now, epoch) })

	e.poll(ctx, epoch)
}

// poll runs at most one cycle per tick. A tick that arrives while a cycle
// is running is dropped.
func (e *Engine) poll(ctx context.Context, epoch uint64) {
	ticker := time.NewTicker(e.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		e.event(func(now time.Time) interaction.Transition { return e.machine.Tick(now) })
		if e.machine.SpeakingAllowed(epoch) {
			e.cycle(ctx, epoch)
		}

		select {
		case <-ticker.C:
		default:
		}
	}
}

// latest takes the newest frame of the epoch's session.
func (e *Engine) latest(epoch uint64) (camera.Frame, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil || e.sess.epoch != epoch || e.sess.source == nil {
		return camera.Frame{}, false
	}
	f, ok := e.sess.source.Latest()
	if !ok || f.Empty() {
		return camera.Frame{}, false
	}
	return f, true
}

// cycle runs one detect, decode and schedule pass.
func (e *Engine) cycle(ctx context.Context, epoch uint64) {
	frame, ok := e.latest(epoch)
	if !ok {
		return
	}
	start := time.Now()

	ictx, cancel := context.WithTimeout(ctx, e.config.InferenceTimeout)
	raw, err := e.deps.Detector.Detect(ictx, frame)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		e.logger.Warn("inference failed", "detector", e.deps.Detector.Name(), "error", err)
		e.metrics.RecordInferenceError(ctx, e.deps.Detector.Name())
		return
	}

	// Everything from here to the found transition runs as one event, so a
	// gesture cannot change the mode between the check and the phrase.
	e.evMu.Lock()
	if e.closed {
		e.evMu.Unlock()
		return
	}
	e.mu.Lock()
	floor := e.decoder.Floor(e.floor)
	dets, err := e.decoder.Decode(raw, frame.Width, frame.Height, floor)
	if err != nil {
		e.decodeFailed(err)
		dets = nil
	}

	// The session may have stopped or paused while the detector ran.
	if !e.machine.SpeakingAllowed(epoch) {
		e.mu.Unlock()
		e.evMu.Unlock()
		return
	}

	out := e.scheduler.OnDetections(dets, guidance.Input{
		Now:         e.deps.Now(),
		FrameWidth:  frame.Width,
		FrameHeight: frame.Height,
		Floor:       floor,
		Target:      e.machine.Target(),
	})
	if out.Speaks() {
		e.deps.Speaker.Speak(out.Text)
		e.metrics.RecordPhrase(ctx, out.Kind.String())
	}
	if len(out.Haptic) > 0 {
		e.deps.Haptics.Vibrate(out.Haptic)
	}
	e.mu.Unlock()

	if out.Found {
		e.logger.Info("target found", "class", out.Best.Class, "steps", spatial.RoundSteps(out.Where.Steps))
		e.apply(e.machine.TargetFound(epoch))
	}
	e.evMu.Unlock()

	e.metrics.RecordCycle(ctx, time.Since(start), len(dets))
	if e.deps.OnDetections != nil {
		e.deps.OnDetections(frame, dets)
	}
}

// decodeFailed logs a decode error at most once per decodeWarnEvery at
// warn level. Callers hold mu.
func (e *Engine) decodeFailed(err error) {
	now := time.Now()
	if now.Sub(e.lastDecodeWarn) < decodeWarnEvery {
		e.logger.Debug("decode failed", "error", err)
		return
	}
	e.lastDecodeWarn = now
	e.logger.Warn("decode failed", "detector", e.deps.Detector.Name(), "error", err)
}

// --- side task ---

func (e *Engine) runSideTask(epoch uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil || e.sess.epoch != epoch {
		return
	}
	ctx := e.sess.ctx
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		text, outcome := e.identifyCurrency(ctx, epoch)
		if ctx.Err() != nil {
			return
		}
		e.metrics.RecordSideTask(ctx, outcome)
		e.event(func(time.Time) interaction.Transition { return e.machine.SideTaskDone(epoch, text) })
	}()
}

func (e *Engine) identifyCurrency(ctx context.Context, epoch uint64) (text, outcome string) {
	if e.deps.Currency == nil {
		return msgCurrencyUnavailable, "unavailable"
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.SideTaskTimeout)
	defer cancel()

	frame, err := e.waitFrame(ctx, epoch)
	if err == nil {
		var res currency.Result
		res, err = e.deps.Currency.Classify(ctx, frame)
		if err == nil {
			e.logger.Info("currency classified", "label", res.Label, "confidence", res.Confidence)
			if res.Identified {
				return res.Announcement(), "identified"
			}
			return res.Announcement(), "unidentified"
		}
	}
	e.logger.Warn("currency detection failed", "error", err)
	return currency.FailureAnnouncement(err), "error"
}

func (e *Engine) waitFrame(ctx context.Context, epoch uint64) (camera.Frame, error) {
	ticker := time.NewTicker(e.config.FrameWait)
	defer ticker.Stop()
	for {
		if f, ok := e.latest(epoch); ok {
			return f, nil
		}
		select {
		case <-ctx.Done():
			return camera.Frame{}, errNoFrame
		case <-ticker.C:
		}
	}
}

func clampFloor(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultConfig().ConfidenceFloor
	}
	return math.Min(1, math.Max(0, v))
}
