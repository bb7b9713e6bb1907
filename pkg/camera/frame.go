// Package camera defines the frame source contract used by the guidance
// engine: a single-owner device that yields the most recent JPEG frame and
// fails acquisition with a classified reason.
package camera

import (
	"context"
	"time"
)

// Frame is one captured image, JPEG encoded.
type Frame struct {
	Data       []byte
	Width      int
	Height     int
	Seq        uint64
	CapturedAt time.Time
}

// Empty reports whether the frame carries no image.
func (f Frame) Empty() bool {
	return len(f.Data) == 0 || f.Width <= 0 || f.Height <= 0
}

// Source is an exclusively-owned frame producer.
//
// Start acquires the device and returns an *AcquireError on failure.
// Latest hands out the newest frame not yet taken; a frame is returned at
// most once and older frames are dropped, never queued.
type Source interface {
	Start(ctx context.Context) error
	Latest() (Frame, bool)
	Close() error
}
