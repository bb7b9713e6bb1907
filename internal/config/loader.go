package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults. Unknown keys are
// rejected. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyEnv(cfg, os.Getenv)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment. getenv is os.Getenv
// outside tests.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Server.Addr, "VOCALPATH_ADDR")
	set(&cfg.Server.ModelsDir, "VOCALPATH_MODELS_DIR")
	set(&cfg.Store.Path, "VOCALPATH_DB")
	if v := getenv("VOCALPATH_LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = LogLevel(v)
	}
	set(&cfg.TTS.APIKey, "ELEVENLABS_API_KEY")
	set(&cfg.TTS.VoiceID, "ELEVENLABS_VOICE_ID")
	if cfg.TTS.Provider == "" && cfg.TTS.APIKey != "" && cfg.TTS.VoiceID != "" {
		cfg.TTS.Provider = "elevenlabs"
	}
}

// Validate checks cfg and returns every problem found, joined.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}

	if _, err := parseLayout(cfg.Detector.Layout); err != nil {
		errs = append(errs, err)
	}
	if cfg.Detector.YOLOModel == "" && cfg.Detector.SSDModel == "" {
		errs = append(errs, errors.New("detector: at least one of yolo_model, ssd_model is required"))
	}

	inUnit := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s %.2f is out of range [0, 1]", name, v))
		}
	}
	inUnit("decoder.confidence_floor", cfg.Decoder.ConfidenceFloor)
	inUnit("decoder.min_floor", cfg.Decoder.MinFloor)
	inUnit("decoder.iou_threshold", cfg.Decoder.IoUThreshold)
	inUnit("currency.min_confidence", cfg.Currency.MinConfidence)

	if cfg.Spatial.LeftEdge >= cfg.Spatial.RightEdge {
		errs = append(errs, fmt.Errorf("spatial.left_edge %.2f must be below right_edge %.2f", cfg.Spatial.LeftEdge, cfg.Spatial.RightEdge))
	}
	if cfg.Spatial.NearArea >= cfg.Spatial.VeryNearArea {
		errs = append(errs, fmt.Errorf("spatial.near_area %.2f must be below very_near_area %.2f", cfg.Spatial.NearArea, cfg.Spatial.VeryNearArea))
	}

	if cfg.Guidance.PollInterval <= 0 {
		errs = append(errs, errors.New("guidance.poll_interval must be positive"))
	}
	if cfg.Guidance.KeyCooldown < cfg.Guidance.GlobalInterval {
		errs = append(errs, fmt.Errorf("guidance.key_cooldown %s must not be shorter than global_interval %s", cfg.Guidance.KeyCooldown, cfg.Guidance.GlobalInterval))
	}
	if cfg.Interaction.DoubleTapWindow <= 0 {
		errs = append(errs, errors.New("interaction.double_tap_window must be positive"))
	}

	switch cfg.TTS.Provider {
	case "":
	case "elevenlabs":
		if cfg.TTS.APIKey == "" || cfg.TTS.VoiceID == "" {
			errs = append(errs, errors.New("tts: elevenlabs needs api_key and voice_id (or ELEVENLABS_API_KEY, ELEVENLABS_VOICE_ID)"))
		}
	default:
		errs = append(errs, fmt.Errorf("tts.provider %q is invalid; valid values: elevenlabs", cfg.TTS.Provider))
	}

	return errors.Join(errs...)
}
