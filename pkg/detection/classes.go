package detection

import "fmt"

// COCOClasses contains the 80 COCO class names in YOLO index order.
var COCOClasses = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator",
	"book", "clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}

// COCO category ids that the 2017 label map leaves unused.
var coco91Gaps = map[int]bool{
	12: true, 26: true, 29: true, 30: true, 45: true,
	66: true, 68: true, 69: true, 71: true, 83: true,
}

// COCO91Classes returns the class table indexed by original COCO category id
// (1-90), as emitted by TensorFlow SSD detectors. Unused ids are empty.
func COCO91Classes() []string {
	out := make([]string, 91)
	i := 0
	for id := 1; id <= 90; id++ {
		if coco91Gaps[id] {
			continue
		}
		out[id] = COCOClasses[i]
		i++
	}
	return out
}

// ClassName resolves a class index against labels. Indices without a label
// get a synthetic "class_<idx>" name.
func ClassName(labels []string, idx int) string {
	if idx >= 0 && idx < len(labels) && labels[idx] != "" {
		return labels[idx]
	}
	return fmt.Sprintf("class_%d", idx)
}

// IsCOCOClass reports whether name is one of the 80 COCO classes.
func IsCOCOClass(name string) bool {
	for _, c := range COCOClasses {
		if c == name {
			return true
		}
	}
	return false
}
