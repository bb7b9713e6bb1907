// Package onnx runs the currency classifier through OpenCV's DNN module.
package onnx

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/teslashibe/vocalpath/pkg/camera"
	"github.com/teslashibe/vocalpath/pkg/currency"
	"gocv.io/x/gocv"
)

// Config holds classifier configuration.
type Config struct {
	ModelPath     string
	InputSize     int // Square input side
	Labels        []string
	MinConfidence float64
}

// DefaultConfig returns defaults for the bundled rupee model.
func DefaultConfig() Config {
	return Config{
		ModelPath:     "models/currency_model.onnx",
		InputSize:     150,
		Labels:        currency.DefaultLabels,
		MinConfidence: currency.DefaultMinConfidence,
	}
}

// Classifier is a currency.Classifier over an ONNX model taking a
// [1, H, W, 3] RGB tensor scaled to [0,1].
type Classifier struct {
	net    gocv.Net
	config Config
	mu     sync.Mutex
}

// New loads the model. A missing file wraps currency.ErrModelMissing.
func New(cfg Config) (*Classifier, error) {
	if cfg.InputSize <= 0 {
		cfg.InputSize = 150
	}
	if cfg.Labels == nil {
		cfg.Labels = currency.DefaultLabels
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = currency.DefaultMinConfidence
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", currency.ErrModelMissing, cfg.ModelPath)
		}
		return nil, fmt.Errorf("currency model: %w", err)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load currency model from %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &Classifier{net: net, config: cfg}, nil
}

// Classify runs the model on one frame.
func (c *Classifier) Classify(ctx context.Context, frame camera.Frame) (currency.Result, error) {
	if err := ctx.Err(); err != nil {
		return currency.Result{}, err
	}

	input, err := c.prepare(frame)
	if err != nil {
		return currency.Result{}, err
	}
	defer input.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.net.SetInput(input, "")
	out := c.net.Forward("")
	defer out.Close()

	probs, err := out.DataPtrFloat32()
	if err != nil {
		return currency.Result{}, fmt.Errorf("currency output: %w", err)
	}
	return currency.Interpret(probs, c.config.Labels, c.config.MinConfidence), nil
}

// prepare builds the NHWC input. A float RGB Mat is already laid out as HWC,
// so its bytes are reinterpreted with a leading batch dimension.
func (c *Classifier) prepare(frame camera.Frame) (gocv.Mat, error) {
	img, err := gocv.IMDecode(frame.Data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return gocv.Mat{}, fmt.Errorf("decode image: empty frame %d", frame.Seq)
	}

	size := c.config.InputSize
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, image.Pt(size, size), 0, 0, gocv.InterpolationLinear)

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(resized, &rgb, gocv.ColorBGRToRGB)

	scaled := gocv.NewMat()
	defer scaled.Close()
	rgb.ConvertToWithParams(&scaled, gocv.MatTypeCV32FC3, 1.0/255.0, 0)

	return gocv.NewMatWithSizesFromBytes([]int{1, size, size, 3}, gocv.MatTypeCV32F, scaled.ToBytes())
}

// Close releases the network.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.net.Close()
}

var _ currency.Classifier = (*Classifier)(nil)
