package httpc

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClientTimeout(t *testing.T) {
	if got := NewClient(0).Timeout; got != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", got)
	}
	if got := NewClient(2 * time.Second).Timeout; got != 2*time.Second {
		t.Errorf("expected 2s, got %v", got)
	}
}

func TestPostSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if string(b) != `{"ok":true}` {
			t.Errorf("unexpected body %q", b)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
	}))
	defer srv.Close()

	resp, err := Post(srv.URL, "application/json", []byte(`{"ok":true}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	resp.Body.Close()
}
