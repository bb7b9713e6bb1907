// Package hub fans out guidance events to dashboard WebSocket clients.
// One goroutine owns the client set; slow clients are dropped instead of
// stalling the guidance loop.
package hub

// MessageType selects the WebSocket frame type.
type MessageType int

const (
	JSONMessage   MessageType = iota // Text frame holding a protocol message
	BinaryMessage                    // Binary frame holding a JPEG
)

// Message is one broadcast payload.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps binary data.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
