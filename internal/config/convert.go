package config

import (
	"fmt"

	"github.com/teslashibe/vocalpath/pkg/camera/capture"
	currencyonnx "github.com/teslashibe/vocalpath/pkg/currency/onnx"
	"github.com/teslashibe/vocalpath/pkg/detection"
	detonnx "github.com/teslashibe/vocalpath/pkg/detection/onnx"
	"github.com/teslashibe/vocalpath/pkg/engine"
	"github.com/teslashibe/vocalpath/pkg/guidance"
	"github.com/teslashibe/vocalpath/pkg/interaction"
	"github.com/teslashibe/vocalpath/pkg/spatial"
	"github.com/teslashibe/vocalpath/pkg/tts"
	"github.com/teslashibe/vocalpath/pkg/voicetarget"
	"github.com/teslashibe/vocalpath/pkg/web"
)

func parseLayout(s string) (detection.Layout, error) {
	switch s {
	case "", "auto":
		return detection.LayoutUnknown, nil
	case "channels_first":
		return detection.LayoutChannelsFirst, nil
	case "channels_last":
		return detection.LayoutChannelsLast, nil
	}
	return detection.LayoutUnknown, fmt.Errorf("detector.layout %q is invalid; valid values: channels_first, channels_last", s)
}

// CaptureConfig returns the webcam settings.
func (c *Config) CaptureConfig() capture.Config {
	return capture.Config{
		Device:    c.Camera.Device,
		Width:     c.Camera.Width,
		Height:    c.Camera.Height,
		Framerate: c.Camera.Framerate,
		Quality:   c.Camera.Quality,
	}
}

// YOLOConfig returns the YOLO adapter settings.
func (c *Config) YOLOConfig() detonnx.YOLOConfig {
	layout, _ := parseLayout(c.Detector.Layout)
	return detonnx.YOLOConfig{
		ModelPath: c.Detector.YOLOModel,
		InputSize: c.Detector.YOLOInputSize,
		Layout:    layout,
	}
}

// SSDConfig returns the SSD adapter settings.
func (c *Config) SSDConfig() detonnx.SSDConfig {
	ssd := detonnx.DefaultSSDConfig()
	ssd.ModelPath = c.Detector.SSDModel
	ssd.ConfigPath = c.Detector.SSDConfig
	ssd.ScoreThreshold = float32(c.Detector.SSDThreshold)
	return ssd
}

// DecoderConfig returns the tensor decoder settings.
func (c *Config) DecoderConfig() detection.Config {
	dc := detection.DefaultConfig()
	dc.InputSize = c.Detector.YOLOInputSize
	dc.MinFloor = c.Decoder.MinFloor
	dc.IoUThreshold = c.Decoder.IoUThreshold
	dc.NumClasses = c.Decoder.NumClasses
	if c.Decoder.Objectness != nil {
		dc.Objectness = *c.Decoder.Objectness
	}
	return dc
}

// SpatialConfig returns the estimator settings.
func (c *Config) SpatialConfig() spatial.Config {
	sc := spatial.DefaultConfig()
	sc.LeftEdge = c.Spatial.LeftEdge
	sc.RightEdge = c.Spatial.RightEdge
	sc.NearArea = c.Spatial.NearArea
	sc.VeryNearArea = c.Spatial.VeryNearArea
	sc.MinBoxHeightPx = c.Spatial.MinBoxHeightPx
	sc.StepScale = c.Spatial.StepScale
	sc.MaxSteps = c.Spatial.MaxSteps
	return sc
}

// GuidanceConfig returns the scheduler settings. Keys are forgotten after
// three cooldowns.
func (c *Config) GuidanceConfig() guidance.Config {
	return guidance.Config{
		GlobalInterval:      c.Guidance.GlobalInterval,
		KeyCooldown:         c.Guidance.KeyCooldown,
		FoundMaxSteps:       c.Guidance.FoundMaxSteps,
		StepChangeThreshold: c.Guidance.StepChange,
		EvictAfter:          3 * c.Guidance.KeyCooldown,
	}
}

// InteractionConfig returns the state machine settings.
func (c *Config) InteractionConfig() interaction.Config {
	ic := interaction.DefaultConfig()
	ic.DoubleTapWindow = c.Interaction.DoubleTapWindow
	ic.AskTimeout = c.Interaction.AskTimeout
	ic.CurrencyCooldown = c.Interaction.CurrencyCooldown
	if c.Interaction.AskRetries != nil {
		ic.AskRetries = *c.Interaction.AskRetries
	}
	if c.Interaction.AskTargetOnStart != nil {
		ic.AskTargetOnStart = *c.Interaction.AskTargetOnStart
	}
	return ic
}

// CurrencyConfig returns the currency classifier settings.
func (c *Config) CurrencyConfig() currencyonnx.Config {
	cc := currencyonnx.DefaultConfig()
	cc.ModelPath = c.Currency.Model
	cc.InputSize = c.Currency.InputSize
	cc.MinConfidence = c.Currency.MinConfidence
	return cc
}

// EngineConfig returns the per-connection engine settings.
func (c *Config) EngineConfig() engine.Config {
	ec := engine.DefaultConfig()
	ec.PollInterval = c.Guidance.PollInterval
	ec.ConfidenceFloor = c.Decoder.ConfidenceFloor
	ec.Decoder = c.DecoderConfig()
	ec.Spatial = c.SpatialConfig()
	ec.Guidance = c.GuidanceConfig()
	ec.Interaction = c.InteractionConfig()
	return ec
}

// WebConfig returns the server settings. Devices are asked to stream at the
// camera section's resolution.
func (c *Config) WebConfig() web.Config {
	wc := web.DefaultConfig()
	wc.Addr = c.Server.Addr
	wc.ModelsDir = c.Server.ModelsDir
	wc.FrameWidth = c.Camera.Width
	wc.FrameHeight = c.Camera.Height
	wc.FrameRate = c.Camera.Framerate
	wc.MetricsPath = ""
	if c.Metrics.Enabled {
		wc.MetricsPath = c.Metrics.Path
	}
	wc.Engine = c.EngineConfig()
	return wc
}

// Resolver builds the spoken target resolver.
func (c *Config) Resolver() *voicetarget.Resolver {
	if !c.Voice.Phonetic {
		return voicetarget.New()
	}
	return voicetarget.New(voicetarget.WithPhonetic(c.Voice.PhoneticThreshold))
}

// TTSOptions returns provider options for the configured synthesis service.
func (c *Config) TTSOptions() []tts.Option {
	opts := []tts.Option{
		tts.WithAPIKey(c.TTS.APIKey),
		tts.WithVoice(c.TTS.VoiceID),
		tts.WithTimeout(c.TTS.Timeout),
	}
	if c.TTS.ModelID != "" {
		opts = append(opts, tts.WithModel(c.TTS.ModelID))
	}
	if c.TTS.Format != "" {
		opts = append(opts, tts.WithOutputFormat(tts.Encoding(c.TTS.Format)))
	}
	return opts
}
