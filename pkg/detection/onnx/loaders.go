package onnx

import (
	"context"

	"github.com/teslashibe/vocalpath/pkg/detection"
)

// Loaders returns the standard detector fallback order: YOLO first, SSD
// second.
func Loaders(yolo YOLOConfig, ssd SSDConfig) []detection.Loader {
	return []detection.Loader{
		{Name: "yolo", Open: func(context.Context) (detection.Adapter, error) { return NewYOLO(yolo) }},
		{Name: "ssd", Open: func(context.Context) (detection.Adapter, error) { return NewSSD(ssd) }},
	}
}
