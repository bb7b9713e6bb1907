package protocol

import (
	"encoding/base64"

	"github.com/teslashibe/vocalpath/pkg/detection"
)

// NewFrameMessage creates a frame message from raw JPEG data
func NewFrameMessage(width, height int, jpegData []byte, frameID uint64) (*Message, error) {
	return NewMessage(TypeFrame, FrameData{
		Width:   width,
		Height:  height,
		Format:  "jpeg",
		Data:    base64.StdEncoding.EncodeToString(jpegData),
		FrameID: frameID,
	})
}

// NewSpeakMessage creates a text-only speak message
func NewSpeakMessage(text string) (*Message, error) {
	return NewMessage(TypeSpeak, SpeakData{Text: text})
}

// NewSpeakAudioMessage creates a speak message carrying a synthesized clip
func NewSpeakAudioMessage(text string, audio []byte, mime string) (*Message, error) {
	return NewMessage(TypeSpeak, SpeakData{
		Text:   text,
		Format: mime,
		Audio:  base64.StdEncoding.EncodeToString(audio),
	})
}

// NewStatusMessage creates a status message
func NewStatusMessage(text, mode, target string) (*Message, error) {
	return NewMessage(TypeStatus, StatusData{Text: text, Mode: mode, Target: target})
}

// NewHapticMessage creates a vibration message
func NewHapticMessage(pattern []int) (*Message, error) {
	return NewMessage(TypeHaptic, HapticData{Pattern: pattern})
}

// NewListenMessage creates a listen or stop_listening message
func NewListenMessage(msgType MessageType, recognizer string) (*Message, error) {
	return NewMessage(msgType, ListenData{Recognizer: recognizer})
}

// NewCameraMessage creates a camera start/stop message
func NewCameraMessage(data CameraData) (*Message, error) {
	return NewMessage(TypeCamera, data)
}

// NewDetectionsMessage creates an overlay message
func NewDetectionsMessage(frameID uint64, width, height int, dets []detection.Detection) (*Message, error) {
	if dets == nil {
		dets = []detection.Detection{}
	}
	return NewMessage(TypeDetections, DetectionsData{
		FrameID:    frameID,
		Width:      width,
		Height:     height,
		Detections: dets,
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// DecodeFrameData decodes the base64 image data
func (f *FrameData) DecodeFrameData() ([]byte, error) {
	return base64.StdEncoding.DecodeString(f.Data)
}

// DecodeAudio decodes the base64 audio clip
func (s *SpeakData) DecodeAudio() ([]byte, error) {
	return base64.StdEncoding.DecodeString(s.Audio)
}
