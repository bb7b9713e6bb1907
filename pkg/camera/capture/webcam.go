package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/teslashibe/vocalpath/pkg/camera"
	"gocv.io/x/gocv"
)

// Webcam grabs frames from a local capture device into a latest-only mailbox.
type Webcam struct {
	config Config
	logger *slog.Logger
	box    *camera.Mailbox

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewWebcam creates a webcam source. The device is not opened until Start.
func NewWebcam(cfg Config, logger *slog.Logger) (*Webcam, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("capture: invalid config: %s", strings.Join(errs, "; "))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Webcam{
		config: cfg,
		logger: logger.With("component", "camera.capture", "device", cfg.Device),
		box:    camera.NewMailbox(),
	}, nil
}

// Start opens the device and begins grabbing frames in the background.
func (w *Webcam) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return &camera.AcquireError{Kind: camera.DeviceBusy, Err: errors.New("already started")}
	}

	dev, err := gocv.OpenVideoCapture(w.config.Device)
	if err != nil {
		return &camera.AcquireError{Kind: camera.DeviceAbsent, Err: err}
	}
	if !dev.IsOpened() {
		dev.Close()
		return &camera.AcquireError{Kind: camera.DeviceBusy, Err: fmt.Errorf("device %d did not open", w.config.Device)}
	}
	dev.Set(gocv.VideoCaptureFrameWidth, float64(w.config.Width))
	dev.Set(gocv.VideoCaptureFrameHeight, float64(w.config.Height))
	dev.Set(gocv.VideoCaptureFPS, float64(w.config.Framerate))

	w.box.Reopen()
	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.started = true

	go w.grab(loopCtx, dev, w.done)
	w.logger.Info("webcam started", "width", w.config.Width, "height", w.config.Height)
	return nil
}

func (w *Webcam) grab(ctx context.Context, dev *gocv.VideoCapture, done chan struct{}) {
	defer close(done)
	defer dev.Close()

	img := gocv.NewMat()
	defer img.Close()

	interval := time.Second / time.Duration(w.config.Framerate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	params := []int{gocv.IMWriteJpegQuality, w.config.Quality}
	misses := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if ok := dev.Read(&img); !ok || img.Empty() {
			misses++
			if misses%30 == 1 {
				w.logger.Warn("webcam read failed", "misses", misses)
			}
			continue
		}
		misses = 0

		buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, params)
		if err != nil {
			w.logger.Warn("jpeg encode failed", "error", err)
			continue
		}
		data := append([]byte(nil), buf.GetBytes()...)
		buf.Close()

		w.box.Publish(camera.Frame{
			Data:       data,
			Width:      img.Cols(),
			Height:     img.Rows(),
			CapturedAt: time.Now(),
		})
	}
}

// Latest returns the newest grabbed frame.
func (w *Webcam) Latest() (camera.Frame, bool) {
	return w.box.Latest()
}

// Drops reports frames overwritten before the engine took them.
func (w *Webcam) Drops() uint64 {
	return w.box.Drops()
}

// Close stops grabbing and releases the device. Close is idempotent.
func (w *Webcam) Close() error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.started = false
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		w.logger.Info("webcam stopped")
	}
	return w.box.Close()
}

var _ camera.Source = (*Webcam)(nil)
