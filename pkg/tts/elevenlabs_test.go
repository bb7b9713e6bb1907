package tts_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/teslashibe/vocalpath/pkg/tts"
)

func newElevenLabs(t *testing.T, url string) *tts.ElevenLabs {
	t.Helper()
	p, err := tts.NewElevenLabs(
		tts.WithAPIKey("key"),
		tts.WithVoice("voice-1"),
		tts.WithBaseURL(url),
		tts.WithRetry(2, time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewElevenLabs: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestElevenLabsSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-to-speech/voice-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("output_format") != string(tts.EncodingMP3Lo) {
			t.Errorf("unexpected format %s", r.URL.RawQuery)
		}
		if r.Header.Get("xi-api-key") != "key" {
			t.Error("missing api key header")
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["text"] != "Door on the left, near." {
			t.Errorf("unexpected text %v", body["text"])
		}
		w.Write(make([]byte, 4000))
	}))
	defer srv.Close()

	result, err := newElevenLabs(t, srv.URL).Synthesize(context.Background(), "Door on the left, near.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Audio) != 4000 {
		t.Errorf("expected 4000 bytes, got %d", len(result.Audio))
	}
	if result.Duration != time.Second {
		t.Errorf("expected 1s at 32kbps, got %v", result.Duration)
	}
}

func TestElevenLabsRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	if _, err := newElevenLabs(t, srv.URL).Synthesize(context.Background(), "Hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestElevenLabsClientError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"message":"invalid key"}}`))
	}))
	defer srv.Close()

	_, err := newElevenLabs(t, srv.URL).Synthesize(context.Background(), "Hi")
	var apiErr *tts.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.IsUnauthorized() || apiErr.Message != "invalid key" {
		t.Errorf("unexpected error %+v", apiErr)
	}
	if hits.Load() != 1 {
		t.Errorf("client errors must not retry, got %d attempts", hits.Load())
	}
}

func TestElevenLabsEmptyText(t *testing.T) {
	p := newElevenLabs(t, "http://127.0.0.1:1")
	if _, err := p.Synthesize(context.Background(), "  "); !errors.Is(err, tts.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestNewElevenLabsRequiresCredentials(t *testing.T) {
	if _, err := tts.NewElevenLabs(tts.WithVoice("v")); !errors.Is(err, tts.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}
