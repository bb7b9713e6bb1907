package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/vocalpath/internal/store"
	"github.com/teslashibe/vocalpath/pkg/camera"
	"github.com/teslashibe/vocalpath/pkg/detection"
	"github.com/teslashibe/vocalpath/pkg/engine"
	"github.com/teslashibe/vocalpath/pkg/hub"
	"github.com/teslashibe/vocalpath/pkg/interaction"
	"github.com/teslashibe/vocalpath/pkg/protocol"
	"github.com/teslashibe/vocalpath/pkg/speech"
)

// maxFrameSize bounds one device message; frames are base64 JPEG.
const maxFrameSize = 2 * 1024 * 1024

// DeviceInfo describes a connected device for the dashboard.
type DeviceInfo struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id,omitempty"`
	Connected        time.Time `json:"connected"`
	LastSeen         time.Time `json:"last_seen"`
	Mode             string    `json:"mode"`
	Target           string    `json:"target,omitempty"`
	MessagesReceived uint64    `json:"messages_received"`
	MessagesSent     uint64    `json:"messages_sent"`
	FramesReceived   uint64    `json:"frames_received"`
}

// device is one guidance connection with its own engine.
type device struct {
	id        string
	sessionID string
	connected time.Time
	logger    *slog.Logger
	server    *Server

	writeMu sync.Mutex
	write   func(data []byte) error

	mu       sync.Mutex
	box      *camera.Mailbox // frames for the running session, nil when stopped
	lastSeen time.Time

	eng *engine.Engine

	received atomic.Uint64
	sent     atomic.Uint64
	frames   atomic.Uint64
}

// newDevice creates a device under a fresh id. Several connections may share
// one bookkeeping session.
func (s *Server) newDevice(sessionID string, write func([]byte) error) *device {
	id := uuid.NewString()
	now := time.Now()
	d := &device{
		id:        id,
		sessionID: sessionID,
		connected: now,
		lastSeen:  now,
		logger:    s.logger.With("device", id),
		server:    s,
		write:     write,
	}

	var speaker speech.Speaker = speech.NewRemote(d, d.logger)
	if s.deps.TTS != nil {
		speaker = speech.NewSynth(s.deps.TTS, d, d.logger)
	}
	d.eng = engine.New(s.config.Engine, engine.Deps{
		Camera:       d.openCamera,
		Detector:     s.deps.Detector,
		Currency:     s.deps.Currency,
		Resolver:     s.deps.Resolver,
		Speaker:      speaker,
		Haptics:      speech.NewRemote(d, d.logger),
		Control:      d,
		Metrics:      s.deps.Metrics,
		OnDetections: d.publishDetections,
		Logger:       d.logger,
	})
	return d
}

// handleGuide serves one device. ?session=<id> links the connection to a
// bookkeeping session that is ended on disconnect.
func (s *Server) handleGuide(c *websocket.Conn) {
	sessionID := c.Query("session")
	d := s.newDevice(sessionID, func(data []byte) error {
		return c.WriteMessage(websocket.TextMessage, data)
	})

	n := s.addDevice(d)
	d.logger.Info("device connected", "devices", n)
	defer func() {
		d.close()
		n := s.removeDevice(d)
		d.logger.Info("device disconnected", "devices", n)
		d.endSession()
	}()

	c.SetReadLimit(maxFrameSize)
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				d.logger.Warn("read failed", "error", err)
			}
			return
		}
		d.handle(data)
	}
}

func (s *Server) handleEvents(c *websocket.Conn) {
	hub.NewClient(s.events, c).Run()
}

// DashboardEvent is what /ws/events clients receive: a copy of a message
// sent to a device.
type DashboardEvent struct {
	Device  string          `json:"device"`
	Message json.RawMessage `json:"message"`
}

func dashboardMessage(deviceID string, data []byte) hub.Message {
	b, err := json.Marshal(DashboardEvent{Device: deviceID, Message: data})
	if err != nil {
		return hub.NewJSONMessage(data)
	}
	return hub.NewJSONMessage(b)
}

// Send writes msg to the device. It is safe for concurrent use.
func (d *device) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	d.writeMu.Lock()
	err = d.write(data)
	d.writeMu.Unlock()
	if err != nil {
		return err
	}
	d.sent.Add(1)

	switch msg.Type {
	case protocol.TypeStatus, protocol.TypeSpeak, protocol.TypeHaptic, protocol.TypeDetections:
		d.server.events.Broadcast(dashboardMessage(d.id, data))
	}
	return nil
}

// handle dispatches one device message.
func (d *device) handle(data []byte) {
	d.received.Add(1)
	d.mu.Lock()
	d.lastSeen = time.Now()
	d.mu.Unlock()

	msg, err := protocol.ParseMessage(data)
	if err != nil {
		d.logger.Debug("bad message", "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypeFrame:
		d.handleFrame(msg)
	case protocol.TypeTap:
		d.eng.Tap()
	case protocol.TypeDoubleTap:
		d.eng.DoubleTap()
	case protocol.TypeStop:
		d.eng.Stop()
	case protocol.TypeTranscript:
		var t protocol.TranscriptData
		if d.parse(msg, &t) {
			d.eng.Transcript(t.Text)
		}
	case protocol.TypeRecognizerError:
		var r protocol.RecognizerErrorData
		if d.parse(msg, &r) {
			d.eng.RecognizerError(r.Code)
		}
	case protocol.TypeCameraError:
		var ce protocol.CameraErrorData
		if d.parse(msg, &ce) {
			d.logger.Warn("device camera failed", "name", ce.Name, "message", ce.Message)
			d.eng.CameraFailed(ce.Name)
		}
	case protocol.TypeSelectTarget:
		var st protocol.SelectTargetData
		if d.parse(msg, &st) {
			d.eng.SelectTarget(st.Class)
		}
	case protocol.TypeVoice:
		var v protocol.VoiceData
		if d.parse(msg, &v) {
			d.eng.SetMuted(!v.Enabled)
		}
	case protocol.TypeConfidence:
		var cd protocol.ConfidenceData
		if d.parse(msg, &cd) {
			d.eng.SetConfidence(cd.Value)
		}
	case protocol.TypePing:
		var p protocol.PingData
		_ = msg.ParseData(&p)
		pingTS := p.Timestamp
		if pingTS == 0 {
			pingTS = msg.Timestamp
		}
		if pong, err := protocol.NewPongMessage(p.ID, pingTS, time.Now().UnixMilli()); err == nil {
			d.Send(pong)
		}
	default:
		d.logger.Debug("unhandled message", "type", msg.Type)
	}
}

func (d *device) parse(msg *protocol.Message, v any) bool {
	if err := msg.ParseData(v); err != nil {
		d.logger.Debug("bad payload", "type", msg.Type, "error", err)
		return false
	}
	return true
}

func (d *device) handleFrame(msg *protocol.Message) {
	var fd protocol.FrameData
	if !d.parse(msg, &fd) {
		return
	}
	jpeg, err := fd.DecodeFrameData()
	if err != nil {
		d.logger.Debug("bad frame data", "error", err)
		return
	}
	d.frames.Add(1)

	d.mu.Lock()
	box := d.box
	d.mu.Unlock()
	if box == nil {
		return
	}
	box.Publish(camera.Frame{
		Data:       jpeg,
		Width:      fd.Width,
		Height:     fd.Height,
		Seq:        fd.FrameID,
		CapturedAt: time.UnixMilli(msg.Timestamp),
	})
}

// openCamera asks the device to stream frames into a fresh mailbox.
func (d *device) openCamera(context.Context) (camera.Source, error) {
	cfg := d.server.config
	msg, err := protocol.NewCameraMessage(protocol.CameraData{
		Action:    "start",
		Width:     cfg.FrameWidth,
		Height:    cfg.FrameHeight,
		Framerate: cfg.FrameRate,
	})
	if err != nil {
		return nil, err
	}

	box := camera.NewMailbox()
	d.mu.Lock()
	d.box = box
	d.mu.Unlock()
	src := &deviceCamera{Mailbox: box, dev: d}

	if err := d.Send(msg); err != nil {
		src.Close()
		return nil, &camera.AcquireError{Kind: camera.DeviceAbsent, Err: err}
	}
	return src, nil
}

// deviceCamera is a Mailbox whose Close also stops streaming on the device.
type deviceCamera struct {
	*camera.Mailbox
	dev *device
}

func (c *deviceCamera) Close() error {
	c.dev.mu.Lock()
	if c.dev.box == c.Mailbox {
		c.dev.box = nil
	}
	c.dev.mu.Unlock()

	if msg, err := protocol.NewCameraMessage(protocol.CameraData{Action: "stop"}); err == nil {
		c.dev.Send(msg)
	}
	return c.Mailbox.Close()
}

// Status implements engine.Control.
func (d *device) Status(snap interaction.Snapshot, text string) {
	msg, err := protocol.NewStatusMessage(text, snap.Mode.String(), snap.Target)
	if err == nil {
		err = d.Send(msg)
	}
	if err != nil {
		d.logger.Debug("send status", "error", err)
	}
}

// Listen implements engine.Control.
func (d *device) Listen(r interaction.Recognizer) {
	d.sendListen(protocol.TypeListen, r)
}

// StopListening implements engine.Control.
func (d *device) StopListening(r interaction.Recognizer) {
	d.sendListen(protocol.TypeStopListening, r)
}

func (d *device) sendListen(t protocol.MessageType, r interaction.Recognizer) {
	msg, err := protocol.NewListenMessage(t, r.String())
	if err == nil {
		err = d.Send(msg)
	}
	if err != nil {
		d.logger.Debug("send listen", "error", err)
	}
}

func (d *device) publishDetections(frame camera.Frame, dets []detection.Detection) {
	msg, err := protocol.NewDetectionsMessage(frame.Seq, frame.Width, frame.Height, dets)
	if err == nil {
		err = d.Send(msg)
	}
	if err != nil {
		d.logger.Debug("send detections", "error", err)
	}
}

func (d *device) info() DeviceInfo {
	snap := d.eng.Snapshot()
	d.mu.Lock()
	last := d.lastSeen
	d.mu.Unlock()
	return DeviceInfo{
		ID:               d.id,
		SessionID:        d.sessionID,
		Connected:        d.connected,
		LastSeen:         last,
		Mode:             snap.Mode.String(),
		Target:           snap.Target,
		MessagesReceived: d.received.Load(),
		MessagesSent:     d.sent.Load(),
		FramesReceived:   d.frames.Load(),
	}
}

func (d *device) close() {
	if err := d.eng.Close(); err != nil {
		d.logger.Warn("close engine", "error", err)
	}
}

func (d *device) endSession() {
	if d.sessionID == "" || d.server.deps.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := d.server.deps.Store.EndSession(ctx, d.sessionID)
	if err != nil && !errors.Is(err, store.ErrSessionEnded) && !errors.Is(err, store.ErrSessionNotFound) {
		d.logger.Warn("end session", "session_id", d.sessionID, "error", err)
	}
}
