// Package protocol defines the WebSocket messages exchanged between a guidance
// device (phone browser or simulator) and the vocalpath server.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teslashibe/vocalpath/pkg/detection"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Device → server
	TypeFrame           MessageType = "frame"            // Camera frame
	TypeTap             MessageType = "tap"              // Single screen tap
	TypeDoubleTap       MessageType = "double_tap"       // Device-detected double tap
	TypeTranscript      MessageType = "transcript"       // Final speech recognition result
	TypeRecognizerError MessageType = "recognizer_error" // Speech recognition failure
	TypeCameraError     MessageType = "camera_error"     // getUserMedia failure
	TypeSelectTarget    MessageType = "select_target"    // Target picked from a list
	TypeVoice           MessageType = "voice"            // Voice output toggle
	TypeConfidence      MessageType = "confidence"       // Confidence floor change
	TypeStop            MessageType = "stop"             // Explicit stop

	// Server → device
	TypeSpeak         MessageType = "speak"          // Phrase to say, optionally with audio
	TypeSilence       MessageType = "silence"        // Cut current speech
	TypeStatus        MessageType = "status"         // Status line and mode
	TypeHaptic        MessageType = "haptic"         // Vibration pattern
	TypeListen        MessageType = "listen"         // Start a recognizer
	TypeStopListening MessageType = "stop_listening" // Stop a recognizer
	TypeCamera        MessageType = "camera"         // Start or stop streaming frames
	TypeDetections    MessageType = "detections"     // Boxes for the overlay

	// Bidirectional
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

// Message is the envelope of every WebSocket message
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a message stamped with the current time
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into v. Empty data leaves v as is.
func (m *Message) ParseData(v any) error {
	if len(m.Data) == 0 {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Device → server payloads
// =============================================================================

// FrameData contains one camera frame
type FrameData struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Format  string `json:"format"` // "jpeg"
	Data    string `json:"data"`   // base64 encoded
	FrameID uint64 `json:"frame_id,omitempty"`
}

// TranscriptData is a final recognition result
type TranscriptData struct {
	Text       string `json:"text"`
	Recognizer string `json:"recognizer,omitempty"` // "target" or "command"
}

// RecognizerErrorData reports a recognizer failure by its browser error code
type RecognizerErrorData struct {
	Code       string `json:"code"` // "no-speech", "aborted", "network", ...
	Recognizer string `json:"recognizer,omitempty"`
}

// CameraErrorData reports a camera acquisition failure
type CameraErrorData struct {
	Name    string `json:"name"` // DOMException name, e.g. "NotAllowedError"
	Message string `json:"message,omitempty"`
}

// SelectTargetData picks a target class; "" or "any" clears it
type SelectTargetData struct {
	Class string `json:"class"`
}

// VoiceData toggles spoken output
type VoiceData struct {
	Enabled bool `json:"enabled"`
}

// ConfidenceData sets the detection confidence floor
type ConfidenceData struct {
	Value float64 `json:"value"`
}

// =============================================================================
// Server → device payloads
// =============================================================================

// SpeakData is a phrase to say. When Audio is set the device plays it
// instead of using its own speech engine.
type SpeakData struct {
	Text   string `json:"text"`
	Format string `json:"format,omitempty"` // MIME type of Audio
	Audio  string `json:"audio,omitempty"`  // base64 encoded
}

// StatusData is the on-screen status
type StatusData struct {
	Text   string `json:"text"`
	Mode   string `json:"mode,omitempty"`
	Target string `json:"target,omitempty"`
}

// HapticData is a vibration pattern in milliseconds, alternating on and off
type HapticData struct {
	Pattern []int `json:"pattern"`
}

// ListenData names a recognizer
type ListenData struct {
	Recognizer string `json:"recognizer"`
}

// CameraData starts or stops frame streaming
type CameraData struct {
	Action    string `json:"action"` // "start" or "stop"
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Framerate int    `json:"framerate,omitempty"`
}

// DetectionsData carries one cycle's detections in frame pixels
type DetectionsData struct {
	FrameID    uint64                `json:"frame_id"`
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Detections []detection.Detection `json:"detections"`
}

// =============================================================================
// Bidirectional payloads
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
