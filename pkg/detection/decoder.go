package detection

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnsupportedLayout is returned when tensor dims match neither the
	// channels-first nor the channels-last layout.
	ErrUnsupportedLayout = errors.New("detection: unsupported tensor layout")

	// ErrShortTensor is returned when a tensor holds fewer values than its
	// dims describe.
	ErrShortTensor = errors.New("detection: tensor shorter than dims")

	// ErrUnknownOutput is returned for a nil or foreign RawOutput.
	ErrUnknownOutput = errors.New("detection: unknown raw output")
)

// Config holds decoder parameters.
type Config struct {
	Classes      []string // Class names indexed by model class id
	NumClasses   int      // Class score count in the tensor; 0 means len(Classes)
	InputSize    int      // Square model input side in pixels
	Objectness   bool     // Tensor carries an objectness field before class scores
	MinFloor     float64  // Lower bound applied to any caller-supplied confidence floor
	IoUThreshold float64  // NMS duplicate threshold
}

// DefaultConfig returns the decoder settings for a COCO YOLO model with an
// objectness head at 640x640.
func DefaultConfig() Config {
	return Config{
		Classes:      COCOClasses,
		InputSize:    640,
		Objectness:   true,
		MinFloor:     0.3,
		IoUThreshold: 0.45,
	}
}

// Decoder turns RawOutput into detections. A Decoder is stateless and safe
// for concurrent use.
type Decoder struct {
	config Config
}

// NewDecoder creates a decoder. Zero fields fall back to DefaultConfig values.
func NewDecoder(cfg Config) *Decoder {
	def := DefaultConfig()
	if cfg.Classes == nil {
		cfg.Classes = def.Classes
	}
	if cfg.InputSize <= 0 {
		cfg.InputSize = def.InputSize
	}
	if cfg.IoUThreshold <= 0 {
		cfg.IoUThreshold = def.IoUThreshold
	}
	return &Decoder{config: cfg}
}

// Config returns the decoder configuration.
func (d *Decoder) Config() Config {
	return d.config
}

// Fields returns the per-detection field count F the decoder expects.
func (d *Decoder) Fields() int {
	n := d.config.NumClasses
	if n <= 0 {
		n = len(d.config.Classes)
	}
	if d.config.Objectness {
		return 5 + n
	}
	return 4 + n
}

// Floor returns the effective confidence floor for a requested one.
func (d *Decoder) Floor(requested float64) float64 {
	return math.Max(requested, d.config.MinFloor)
}

// Decode converts raw detector output into detections in display pixels,
// highest score first. List outputs are gated at the effective floor and
// otherwise kept as given. Tensor outputs are also deduplicated with NMS.
//
// Malformed tensors yield an empty result and an error; callers log it and
// carry on with no detections.
func (d *Decoder) Decode(raw RawOutput, frameW, frameH int, floor float64) ([]Detection, error) {
	switch out := raw.(type) {
	case ListOutput:
		gate := d.Floor(floor)
		dets := make([]Detection, 0, len(out.Items))
		for _, det := range out.Items {
			if det.Score >= gate {
				dets = append(dets, det)
			}
		}
		return dets, nil
	case *ListOutput:
		if out == nil {
			return nil, ErrUnknownOutput
		}
		return d.Decode(*out, frameW, frameH, floor)
	case TensorOutput:
		return d.decodeTensor(out, frameW, frameH, floor)
	case *TensorOutput:
		if out == nil {
			return nil, ErrUnknownOutput
		}
		return d.decodeTensor(*out, frameW, frameH, floor)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownOutput, raw)
	}
}

// ResolveLayout determines the effective layout and detection count for
// dims. An explicit layout is used when it agrees with dims; otherwise the
// layout is inferred from dims, preferring channels-first when both axes
// match.
func (d *Decoder) ResolveLayout(dims []int, hint Layout) (Layout, int, error) {
	if len(dims) != 3 || dims[0] != 1 {
		return LayoutUnknown, 0, fmt.Errorf("%w: dims %v", ErrUnsupportedLayout, dims)
	}
	f := d.Fields()
	first := dims[1] == f
	last := dims[2] == f

	switch {
	case hint == LayoutChannelsFirst && first:
		return LayoutChannelsFirst, dims[2], nil
	case hint == LayoutChannelsLast && last:
		return LayoutChannelsLast, dims[1], nil
	case first:
		return LayoutChannelsFirst, dims[2], nil
	case last:
		return LayoutChannelsLast, dims[1], nil
	}
	return LayoutUnknown, 0, fmt.Errorf("%w: dims %v, layout %s, want %d fields", ErrUnsupportedLayout, dims, hint, f)
}

func (d *Decoder) decodeTensor(t TensorOutput, frameW, frameH int, floor float64) ([]Detection, error) {
	layout, n, err := d.ResolveLayout(t.Dims, t.Layout)
	if err != nil {
		return nil, err
	}
	f := d.Fields()
	if len(t.Data) < n*f {
		return nil, fmt.Errorf("%w: have %d values, dims need %d", ErrShortTensor, len(t.Data), n*f)
	}

	// at(field, i) reads one field of detection i.
	var at func(field, i int) float64
	if layout == LayoutChannelsFirst {
		at = func(field, i int) float64 { return float64(t.Data[field*n+i]) }
	} else {
		at = func(field, i int) float64 { return float64(t.Data[i*f+field]) }
	}

	gate := d.Floor(floor)
	classStart := 4
	if d.config.Objectness {
		classStart = 5
	}
	numClasses := f - classStart
	scale := float64(d.config.InputSize)
	sx := float64(frameW) / scale
	sy := float64(frameH) / scale

	var dets []Detection
	for i := 0; i < n; i++ {
		obj := 1.0
		if d.config.Objectness {
			obj = at(4, i)
			if obj < gate {
				continue
			}
		}

		best, bestScore := -1, 0.0
		for c := 0; c < numClasses; c++ {
			if s := at(classStart+c, i); s > bestScore {
				best, bestScore = c, s
			}
		}
		if best < 0 {
			continue
		}
		score := obj * bestScore
		if score < gate {
			continue
		}

		cx, cy, w, h := at(0, i), at(1, i), at(2, i), at(3, i)
		dets = append(dets, Detection{
			Box: Rect{
				X: (cx - w/2) * sx,
				Y: (cy - h/2) * sy,
				W: w * sx,
				H: h * sy,
			},
			Score: score,
			Class: ClassName(d.config.Classes, best),
		})
	}

	return NMS(dets, d.config.IoUThreshold), nil
}
