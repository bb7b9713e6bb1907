package detection

import (
	"context"
	"sync"

	"github.com/teslashibe/vocalpath/pkg/camera"
)

// Mock implements Adapter for tests.
type Mock struct {
	// DetectFunc is called by Detect. If nil, Detect returns an empty list.
	DetectFunc func(ctx context.Context, frame camera.Frame) (RawOutput, error)

	mu     sync.Mutex
	calls  int
	closed bool
}

// Name returns "mock".
func (m *Mock) Name() string { return "mock" }

// Detect calls DetectFunc and counts the call.
func (m *Mock) Detect(ctx context.Context, frame camera.Frame) (RawOutput, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, frame)
	}
	return ListOutput{}, nil
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Calls returns the number of Detect calls.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Adapter = (*Mock)(nil)
