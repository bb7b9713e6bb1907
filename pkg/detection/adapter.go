package detection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teslashibe/vocalpath/pkg/camera"
)

// ErrNoAdapter is returned when no detector could be loaded.
var ErrNoAdapter = errors.New("detection: no detector available")

// Adapter runs an object detector on one frame.
type Adapter interface {
	// Name identifies the detector in logs and status messages.
	Name() string

	// Detect runs inference. It is the only blocking step of a guidance cycle.
	Detect(ctx context.Context, frame camera.Frame) (RawOutput, error)

	// Close releases the model.
	Close() error
}

// Loader opens one detector variant.
type Loader struct {
	Name string
	Open func(ctx context.Context) (Adapter, error)
}

// LoadError aggregates the failures of every loader that was tried.
type LoadError struct {
	Errors []error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("detection: all %d detectors failed to load: %v", len(e.Errors), errors.Join(e.Errors...))
}

func (e *LoadError) Unwrap() []error {
	return append([]error{ErrNoAdapter}, e.Errors...)
}

// Load opens the first detector that loads successfully, trying loaders in
// order. A failed primary falls back to the next loader instead of aborting.
func Load(ctx context.Context, logger *slog.Logger, loaders ...Loader) (Adapter, error) {
	if len(loaders) == 0 {
		return nil, ErrNoAdapter
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "detection.load")

	var errs []error
	for i, l := range loaders {
		a, err := l.Open(ctx)
		if err == nil {
			if i > 0 {
				logger.Info("fallback detector loaded", "detector", l.Name, "index", i)
			} else {
				logger.Info("detector loaded", "detector", l.Name)
			}
			return a, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", l.Name, err))
		logger.Warn("detector failed to load, trying next", "detector", l.Name, "error", err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, &LoadError{Errors: errs}
}
