// Package config loads the vocalpath server configuration from YAML with
// environment overrides, and converts each section into the settings type of
// the package it configures.
package config

import (
	"time"

	"github.com/teslashibe/vocalpath/pkg/camera/capture"
	"github.com/teslashibe/vocalpath/pkg/currency"
	currencyonnx "github.com/teslashibe/vocalpath/pkg/currency/onnx"
	"github.com/teslashibe/vocalpath/pkg/detection"
	detonnx "github.com/teslashibe/vocalpath/pkg/detection/onnx"
	"github.com/teslashibe/vocalpath/pkg/engine"
	"github.com/teslashibe/vocalpath/pkg/guidance"
	"github.com/teslashibe/vocalpath/pkg/interaction"
	"github.com/teslashibe/vocalpath/pkg/spatial"
)

// Config is the root configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Store       StoreConfig       `yaml:"store"`
	Camera      CameraConfig      `yaml:"camera"`
	Detector    DetectorConfig    `yaml:"detector"`
	Decoder     DecoderConfig     `yaml:"decoder"`
	Spatial     SpatialConfig     `yaml:"spatial"`
	Guidance    GuidanceConfig    `yaml:"guidance"`
	Interaction InteractionConfig `yaml:"interaction"`
	Voice       VoiceConfig       `yaml:"voice"`
	Currency    CurrencyConfig    `yaml:"currency"`
	TTS         TTSConfig         `yaml:"tts"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr      string   `yaml:"addr"`
	LogLevel  LogLevel `yaml:"log_level"`
	ModelsDir string   `yaml:"models_dir"` // Served at /models
}

// LogLevel is a slog level name.
type LogLevel string

// IsValid reports whether l is a known level.
func (l LogLevel) IsValid() bool {
	switch l {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// StoreConfig selects the session database.
type StoreConfig struct {
	Path string `yaml:"path"` // sqlite file; ":memory:" for an ephemeral store
}

// CameraConfig configures local webcam capture.
type CameraConfig struct {
	Device    int `yaml:"device"`
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	Framerate int `yaml:"framerate"`
	Quality   int `yaml:"quality"`
}

// DetectorConfig selects the object detection models, tried in order:
// YOLO first, SSD as fallback.
type DetectorConfig struct {
	YOLOModel     string  `yaml:"yolo_model"`
	YOLOInputSize int     `yaml:"yolo_input_size"`
	Layout        string  `yaml:"layout"` // "", "channels_first" or "channels_last"
	SSDModel      string  `yaml:"ssd_model"`
	SSDConfig     string  `yaml:"ssd_config"`
	SSDThreshold  float64 `yaml:"ssd_threshold"`
}

// DecoderConfig tunes tensor decoding.
type DecoderConfig struct {
	ConfidenceFloor float64 `yaml:"confidence_floor"` // Initial per-session floor
	MinFloor        float64 `yaml:"min_floor"`
	IoUThreshold    float64 `yaml:"iou_threshold"`
	Objectness      *bool   `yaml:"objectness"`
	NumClasses      int     `yaml:"num_classes"`
}

// SpatialConfig tunes zone, band and step estimation.
type SpatialConfig struct {
	LeftEdge       float64 `yaml:"left_edge"`
	RightEdge      float64 `yaml:"right_edge"`
	NearArea       float64 `yaml:"near_area"`
	VeryNearArea   float64 `yaml:"very_near_area"`
	MinBoxHeightPx float64 `yaml:"min_box_height_px"`
	StepScale      float64 `yaml:"step_scale"`
	MaxSteps       float64 `yaml:"max_steps"`
}

// GuidanceConfig tunes phrase timing.
type GuidanceConfig struct {
	PollInterval   time.Duration `yaml:"poll_interval"`
	GlobalInterval time.Duration `yaml:"global_interval"`
	KeyCooldown    time.Duration `yaml:"key_cooldown"`
	FoundMaxSteps  int           `yaml:"found_max_steps"`
	StepChange     int           `yaml:"step_change"`
}

// InteractionConfig tunes gestures and prompts.
type InteractionConfig struct {
	DoubleTapWindow  time.Duration `yaml:"double_tap_window"`
	AskTimeout       time.Duration `yaml:"ask_timeout"`
	AskRetries       *int          `yaml:"ask_retries"`
	CurrencyCooldown time.Duration `yaml:"currency_cooldown"`
	AskTargetOnStart *bool         `yaml:"ask_target_on_start"`
}

// VoiceConfig tunes the spoken target resolver.
type VoiceConfig struct {
	Phonetic          bool    `yaml:"phonetic"`
	PhoneticThreshold float64 `yaml:"phonetic_threshold"`
}

// CurrencyConfig configures the currency side task.
type CurrencyConfig struct {
	Model         string  `yaml:"model"`
	InputSize     int     `yaml:"input_size"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// TTSConfig enables server-side speech synthesis.
type TTSConfig struct {
	Provider string        `yaml:"provider"` // "" (device speech) or "elevenlabs"
	APIKey   string        `yaml:"api_key"`
	VoiceID  string        `yaml:"voice_id"`
	ModelID  string        `yaml:"model_id"`
	Format   string        `yaml:"format"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	dec := detection.DefaultConfig()
	sp := spatial.DefaultConfig()
	g := guidance.DefaultConfig()
	in := interaction.DefaultConfig()
	cam := capture.DefaultConfig()
	yolo := detonnx.DefaultYOLOConfig()
	ssd := detonnx.DefaultSSDConfig()
	cur := currencyonnx.DefaultConfig()
	// The default model is YOLOv8, whose head has no objectness field.
	objectness := false
	askRetries := in.AskRetries
	askOnStart := in.AskTargetOnStart

	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			LogLevel:  "info",
			ModelsDir: "models",
		},
		Store: StoreConfig{Path: "vocalpath.db"},
		Camera: CameraConfig{
			Device:    cam.Device,
			Width:     cam.Width,
			Height:    cam.Height,
			Framerate: cam.Framerate,
			Quality:   cam.Quality,
		},
		Detector: DetectorConfig{
			YOLOModel:     yolo.ModelPath,
			YOLOInputSize: yolo.InputSize,
			SSDModel:      ssd.ModelPath,
			SSDConfig:     ssd.ConfigPath,
			SSDThreshold:  float64(ssd.ScoreThreshold),
		},
		Decoder: DecoderConfig{
			ConfidenceFloor: engine.DefaultConfig().ConfidenceFloor,
			MinFloor:        dec.MinFloor,
			IoUThreshold:    dec.IoUThreshold,
			Objectness:      &objectness,
		},
		Spatial: SpatialConfig{
			LeftEdge:       sp.LeftEdge,
			RightEdge:      sp.RightEdge,
			NearArea:       sp.NearArea,
			VeryNearArea:   sp.VeryNearArea,
			MinBoxHeightPx: sp.MinBoxHeightPx,
			StepScale:      sp.StepScale,
			MaxSteps:       sp.MaxSteps,
		},
		Guidance: GuidanceConfig{
			PollInterval:   engine.DefaultConfig().PollInterval,
			GlobalInterval: g.GlobalInterval,
			KeyCooldown:    g.KeyCooldown,
			FoundMaxSteps:  g.FoundMaxSteps,
			StepChange:     g.StepChangeThreshold,
		},
		Interaction: InteractionConfig{
			DoubleTapWindow:  in.DoubleTapWindow,
			AskTimeout:       in.AskTimeout,
			AskRetries:       &askRetries,
			CurrencyCooldown: in.CurrencyCooldown,
			AskTargetOnStart: &askOnStart,
		},
		Voice: VoiceConfig{PhoneticThreshold: 0.9},
		Currency: CurrencyConfig{
			Model:         cur.ModelPath,
			InputSize:     cur.InputSize,
			MinConfidence: currency.DefaultMinConfidence,
		},
		TTS: TTSConfig{
			Format:  "mp3_22050_32",
			Timeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}
