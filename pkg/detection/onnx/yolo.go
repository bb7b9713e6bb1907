// Package onnx provides detection.Adapter implementations backed by OpenCV's
// DNN module: a YOLO ONNX model returning raw tensors and a TensorFlow SSD
// MobileNet model returning decoded lists.
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

// YOLOConfig holds YOLO adapter configuration.
type YOLOConfig struct {
	ModelPath string
	InputSize int              // Square input side, 640 for the stock exports
	Layout    detection.Layout // Leave unknown to let the decoder infer it
}

// DefaultYOLOConfig returns defaults for a YOLOv8n ONNX export.
func DefaultYOLOConfig() YOLOConfig {
	return YOLOConfig{
		ModelPath: "models/yolov8n.onnx",
		InputSize: 640,
	}
}

// YOLO runs a YOLO ONNX model and returns its raw output tensor.
type YOLO struct {
	net    gocv.Net
	config YOLOConfig
	mu     sync.Mutex
}

// NewYOLO loads the model.
func NewYOLO(cfg YOLOConfig) (*YOLO, error) {
	if cfg.InputSize <= 0 {
		cfg.InputSize = 640
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("yolo model: %w", err)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load YOLO model from %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLO{net: net, config: cfg}, nil
}

// Name returns "yolo".
func (y *YOLO) Name() string { return "yolo" }

// Detect runs one forward pass on the frame.
func (y *YOLO) Detect(ctx context.Context, frame camera.Frame) (detection.RawOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := decodeFrame(frame)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	size := image.Pt(y.config.InputSize, y.config.InputSize)
	blob := gocv.BlobFromImage(img, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	y.mu.Lock()
	defer y.mu.Unlock()

	y.net.SetInput(blob, "")
	out := y.net.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("yolo output: %w", err)
	}

	// data aliases the Mat, which is closed on return.
	tensor := detection.TensorOutput{
		Data:   append([]float32(nil), data...),
		Dims:   out.Size(),
		Layout: y.config.Layout,
	}
	return tensor, nil
}

// Close releases the network.
func (y *YOLO) Close() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.net.Close()
}

func decodeFrame(frame camera.Frame) (gocv.Mat, error) {
	img, err := gocv.IMDecode(frame.Data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("decode image: %w", err)
	}
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("decode image: empty frame %d", frame.Seq)
	}
	return img, nil
}

var _ detection.Adapter = (*YOLO)(nil)
