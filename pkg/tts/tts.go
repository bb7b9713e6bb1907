// Package tts synthesizes guidance phrases into audio on the server, for
// devices that play a voice clip instead of using their own speech engine.
//
//	provider, _ := tts.NewElevenLabs(
//	    tts.WithAPIKey(os.Getenv("ELEVENLABS_API_KEY")),
//	    tts.WithVoice(os.Getenv("ELEVENLABS_VOICE_ID")),
//	)
//	defer provider.Close()
//
//	clip, _ := provider.Synthesize(ctx, "Chair, about 4 steps ahead.")
package tts

import (
	"context"
	"time"
)

// Provider converts text to a complete audio clip.
type Provider interface {
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks provider connectivity and credentials.
	Health(ctx context.Context) error

	Close() error
}

// AudioResult is one synthesized clip.
type AudioResult struct {
	Audio     []byte
	Format    AudioFormat
	Duration  time.Duration // Estimated playback duration
	CharCount int
	LatencyMs int64
}

// AudioFormat describes the clip encoding.
type AudioFormat struct {
	Encoding   Encoding
	SampleRate int
	Channels   int
}

// MIME returns the content type a browser needs to play the clip.
func (f AudioFormat) MIME() string {
	switch f.Encoding {
	case EncodingPCM16, EncodingPCM22, EncodingPCM24:
		return "audio/pcm"
	case EncodingULaw:
		return "audio/basic"
	default:
		return "audio/mpeg"
	}
}

// Encoding is an ElevenLabs output format name.
type Encoding string

const (
	EncodingMP3   Encoding = "mp3_44100_128"
	EncodingMP3Lo Encoding = "mp3_22050_32" // Small clips for mobile links
	EncodingPCM16 Encoding = "pcm_16000"
	EncodingPCM22 Encoding = "pcm_22050"
	EncodingPCM24 Encoding = "pcm_24000"
	EncodingULaw  Encoding = "ulaw_8000"
)

// SampleRate returns the encoding's sample rate in Hz.
func (e Encoding) SampleRate() int {
	switch e {
	case EncodingPCM16:
		return 16000
	case EncodingPCM22, EncodingMP3Lo:
		return 22050
	case EncodingPCM24:
		return 24000
	case EncodingULaw:
		return 8000
	default:
		return 44100
	}
}

// bytesPerSecond approximates the encoded data rate for duration estimates.
func (e Encoding) bytesPerSecond() int {
	switch e {
	case EncodingMP3:
		return 128000 / 8
	case EncodingMP3Lo:
		return 32000 / 8
	case EncodingULaw:
		return 8000
	default:
		return e.SampleRate() * 2
	}
}

// VoiceSettings controls voice characteristics.
type VoiceSettings struct {
	Stability       float64 // 0..1, higher is more even
	SimilarityBoost float64 // 0..1
	Style           float64
	SpeakerBoost    bool
}

// DefaultVoiceSettings favours a calm, consistent voice for short
// navigation phrases.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.7,
		SimilarityBoost: 0.75,
		Style:           0.0,
		SpeakerBoost:    true,
	}
}
