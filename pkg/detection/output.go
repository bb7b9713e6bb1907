package detection

// Layout describes how per-detection fields are stored in a tensor.
type Layout int

const (
	// LayoutUnknown asks the decoder to infer the layout from the dims.
	LayoutUnknown Layout = iota
	// LayoutChannelsFirst is [1, F, N]: all x, then all y, then all w...
	LayoutChannelsFirst
	// LayoutChannelsLast is [1, N, F]: one detection's fields per row.
	LayoutChannelsLast
)

func (l Layout) String() string {
	switch l {
	case LayoutChannelsFirst:
		return "channels_first"
	case LayoutChannelsLast:
		return "channels_last"
	default:
		return "unknown"
	}
}

// RawOutput is what a detector adapter produces for one frame. It is either a
// ListOutput or a TensorOutput.
type RawOutput interface {
	rawOutput()
}

// ListOutput carries detections already decoded by the detector, in display
// pixels.
type ListOutput struct {
	Items []Detection
}

// TensorOutput carries a raw detection head output.
//
// Box fields are (cx, cy, w, h) in model input pixels, followed by an
// objectness score when the model has one, followed by per-class scores.
type TensorOutput struct {
	Data   []float32
	Dims   []int
	Layout Layout
}

func (ListOutput) rawOutput()   {}
func (TensorOutput) rawOutput() {}
