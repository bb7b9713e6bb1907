package onnx

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/teslashibe/vocalpath/pkg/camera"
	"github.com/teslashibe/vocalpath/pkg/detection"
	"gocv.io/x/gocv"
)

// SSDConfig holds configuration for the SSD MobileNet fallback detector.
type SSDConfig struct {
	ModelPath      string   // Frozen TensorFlow graph
	ConfigPath     string   // Matching .pbtxt
	InputSize      int      // 300 for the stock COCO model
	ScoreThreshold float32  // Rows under this are not reported
	Classes        []string // Indexed by COCO category id
}

// DefaultSSDConfig returns defaults for ssd_mobilenet_v2_coco.
func DefaultSSDConfig() SSDConfig {
	return SSDConfig{
		ModelPath:      "models/ssd_mobilenet_v2_coco.pb",
		ConfigPath:     "models/ssd_mobilenet_v2_coco.pbtxt",
		InputSize:      300,
		ScoreThreshold: 0.3,
		Classes:        detection.COCO91Classes(),
	}
}

// SSD runs an SSD detector whose output is already decoded, so it returns a
// detection.ListOutput in frame pixels.
type SSD struct {
	net    gocv.Net
	config SSDConfig
	mu     sync.Mutex
}

// NewSSD loads the model.
func NewSSD(cfg SSDConfig) (*SSD, error) {
	if cfg.InputSize <= 0 {
		cfg.InputSize = 300
	}
	if cfg.Classes == nil {
		cfg.Classes = detection.COCO91Classes()
	}
	for _, p := range []string{cfg.ModelPath, cfg.ConfigPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("ssd model: %w", err)
		}
	}

	net := gocv.ReadNet(cfg.ModelPath, cfg.ConfigPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load SSD model from %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &SSD{net: net, config: cfg}, nil
}

// Name returns "ssd".
func (s *SSD) Name() string { return "ssd" }

// Detect runs one forward pass and converts each output row
// [batch, class, score, x1, y1, x2, y2] into a detection.
func (s *SSD) Detect(ctx context.Context, frame camera.Frame) (detection.RawOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := decodeFrame(frame)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	w, h := float64(frame.Width), float64(frame.Height)
	if w <= 0 || h <= 0 {
		w, h = float64(img.Cols()), float64(img.Rows())
	}

	size := image.Pt(s.config.InputSize, s.config.InputSize)
	blob := gocv.BlobFromImage(img, 1.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.net.SetInput(blob, "")
	out := s.net.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("ssd output: %w", err)
	}

	return ParseSSD(data, s.config.ScoreThreshold, s.config.Classes, w, h), nil
}

// ParseSSD converts flat SSD rows into a detection list scaled to w x h.
func ParseSSD(data []float32, threshold float32, classes []string, w, h float64) detection.ListOutput {
	var items []detection.Detection
	for i := 0; i+7 <= len(data); i += 7 {
		score := data[i+2]
		if score < threshold {
			continue
		}
		x1, y1 := float64(data[i+3])*w, float64(data[i+4])*h
		x2, y2 := float64(data[i+5])*w, float64(data[i+6])*h
		items = append(items, detection.Detection{
			Box:   detection.Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1},
			Score: float64(score),
			Class: detection.ClassName(classes, int(data[i+1])),
		})
	}
	return detection.ListOutput{Items: items}
}

// Close releases the network.
func (s *SSD) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.Close()
}

var _ detection.Adapter = (*SSD)(nil)
