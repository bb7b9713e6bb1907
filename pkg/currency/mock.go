package currency

import (
	"context"
	"sync"

	"github.com/teslashibe/vocalpath/pkg/camera"
)

// Mock implements Classifier for tests.
type Mock struct {
	// ClassifyFunc is called by Classify. If nil, Classify returns an
	// unidentified result.
	ClassifyFunc func(ctx context.Context, frame camera.Frame) (Result, error)

	mu    sync.Mutex
	calls int
}

// Classify calls ClassifyFunc and counts the call.
func (m *Mock) Classify(ctx context.Context, frame camera.Frame) (Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, frame)
	}
	return Result{Index: -1}, nil
}

// Close does nothing.
func (m *Mock) Close() error { return nil }

// Calls returns the number of Classify calls.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ Classifier = (*Mock)(nil)
