package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/vocalpath/pkg/detection"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestLoadFromReaderOverridesDefaults(t *testing.T) {
	t.Setenv("VOCALPATH_ADDR", "")
	yml := `
server:
  addr: ":9000"
  log_level: debug
detector:
  layout: channels_last
decoder:
  confidence_floor: 0.6
  objectness: true
guidance:
  key_cooldown: 6s
interaction:
  ask_target_on_start: false
  ask_retries: 2
`
	cfg, err := LoadFromReader(strings.NewReader(yml))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, LogLevel("debug"), cfg.Server.LogLevel)
	assert.Equal(t, detection.LayoutChannelsLast, cfg.YOLOConfig().Layout)
	assert.Equal(t, 0.6, cfg.EngineConfig().ConfidenceFloor)
	assert.True(t, cfg.DecoderConfig().Objectness)

	g := cfg.GuidanceConfig()
	assert.Equal(t, 6*time.Second, g.KeyCooldown)
	assert.Equal(t, 18*time.Second, g.EvictAfter)
	assert.Equal(t, 1500*time.Millisecond, g.GlobalInterval, "unset keys keep defaults")

	ic := cfg.InteractionConfig()
	assert.False(t, ic.AskTargetOnStart)
	assert.Equal(t, 2, ic.AskRetries)
	assert.Equal(t, 300*time.Millisecond, ic.DoubleTapWindow)
}

func TestLoadFromReaderEmpty(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Decoder.ConfidenceFloor)
	assert.True(t, cfg.InteractionConfig().AskTargetOnStart)
}

func TestLoadFromReaderRejectsUnknownKeys(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("server:\n  port: 80\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.LogLevel = "loud"
	cfg.Detector.Layout = "sideways"
	cfg.Decoder.IoUThreshold = 1.5
	cfg.Spatial.LeftEdge = 0.7
	cfg.TTS.Provider = "espeak"

	err := Validate(cfg)
	require.Error(t, err)
	for _, want := range []string{"log_level", "detector.layout", "iou_threshold", "left_edge", "tts.provider"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"VOCALPATH_ADDR":      ":7000",
		"VOCALPATH_DB":        ":memory:",
		"VOCALPATH_LOG_LEVEL": "warn",
		"ELEVENLABS_API_KEY":  "k",
		"ELEVENLABS_VOICE_ID": "v",
	}
	cfg := Default()
	ApplyEnv(cfg, func(k string) string { return env[k] })

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, ":memory:", cfg.Store.Path)
	assert.Equal(t, LogLevel("warn"), cfg.Server.LogLevel)
	assert.Equal(t, "elevenlabs", cfg.TTS.Provider)
	assert.NoError(t, Validate(cfg))
}

func TestElevenLabsNeedsCredentials(t *testing.T) {
	cfg := Default()
	cfg.TTS.Provider = "elevenlabs"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestEngineConfigCarriesSections(t *testing.T) {
	cfg := Default()
	cfg.Decoder.ConfidenceFloor = 0.65
	cfg.Guidance.KeyCooldown = 2 * time.Second

	ec := cfg.EngineConfig()
	assert.Equal(t, 0.65, ec.ConfidenceFloor)
	assert.Equal(t, 2*time.Second, ec.Guidance.KeyCooldown)
	assert.Equal(t, 6*time.Second, ec.Guidance.EvictAfter)

	class, ok := cfg.Resolver().Resolve("find the chair")
	assert.True(t, ok)
	assert.Equal(t, "chair", class)
}

func TestWebConfig(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ":9000"
	cfg.Camera.Width = 320
	cfg.Camera.Height = 240

	wc := cfg.WebConfig()
	assert.Equal(t, ":9000", wc.Addr)
	assert.Equal(t, 320, wc.FrameWidth)
	assert.Equal(t, 240, wc.FrameHeight)
	assert.Equal(t, "/metrics", wc.MetricsPath)
	assert.Equal(t, cfg.Decoder.ConfidenceFloor, wc.Engine.ConfidenceFloor)

	cfg.Metrics.Enabled = false
	assert.Empty(t, cfg.WebConfig().MetricsPath)
}

func TestDefaultDecodesYOLOv8Output(t *testing.T) {
	cfg := Default()
	d := detection.NewDecoder(cfg.DecoderConfig())

	// [1, 84, N]: four box fields then 80 class scores, no objectness.
	const n = 8400
	data := make([]float32, 84*n)
	for field, v := range map[int]float32{0: 320, 1: 320, 2: 64, 3: 128, 4 + 56: 0.9} {
		data[field*n+3] = v
	}
	raw := detection.TensorOutput{Data: data, Dims: []int{1, 84, n}, Layout: cfg.YOLOConfig().Layout}

	dets, err := d.Decode(raw, 640, 480, cfg.Decoder.ConfidenceFloor)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "chair", dets[0].Class)
}
