// vocalpath-sim: a scripted device for exercising a running server.
// It opens a session, double taps, streams a JPEG while the server asks for
// frames and answers listen requests with a fixed phrase.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/vocalpath/internal/httpc"
	"github.com/teslashibe/vocalpath/pkg/protocol"
)

var (
	addr    = flag.String("addr", "localhost:8080", "Server host:port")
	imgPath = flag.String("image", "", "JPEG to stream (a gray frame when empty)")
	say     = flag.String("say", "", "Phrase answered to listen requests")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	frame, err := loadFrame(*imgPath)
	if err != nil {
		return err
	}

	sessionID, err := startSession()
	if err != nil {
		return err
	}
	fmt.Printf("📝 session %s\n", sessionID)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws/guide", RawQuery: "session=" + url.QueryEscape(sessionID)}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	ws, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	defer ws.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := &simDevice{ws: ws, frame: frame}
	if err := d.send(protocol.TypeDoubleTap, nil); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- d.readLoop(ctx) }()

	select {
	case <-ctx.Done():
		d.send(protocol.TypeStop, nil)
		ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return nil
	case err := <-errc:
		return err
	}
}

func startSession() (string, error) {
	body, _ := json.Marshal(map[string]string{"deviceInfo": "vocalpath-sim"})
	resp, err := httpc.Post("http://"+*addr+"/api/session/start", "application/json", body)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	defer resp.Body.Close()
	var out struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	return out.SessionID, nil
}

func loadFrame(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	img := image.NewGray(image.Rect(0, 0, 640, 480))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 70}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type simDevice struct {
	ws    *websocket.Conn
	frame []byte

	writeMu sync.Mutex

	mu        sync.Mutex
	streaming context.CancelFunc
	seq       uint64
}

func (d *simDevice) send(t protocol.MessageType, data any) error {
	msg, err := protocol.NewMessage(t, data)
	if err != nil {
		return err
	}
	return d.write(msg)
}

func (d *simDevice) write(msg *protocol.Message) error {
	b, err := msg.Bytes()
	if err != nil {
		return err
	}
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	return d.ws.WriteMessage(websocket.TextMessage, b)
}

func (d *simDevice) readLoop(ctx context.Context) error {
	for {
		_, data, err := d.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || err == io.EOF {
				return nil
			}
			return err
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			continue
		}
		d.handle(ctx, msg)
	}
}

func (d *simDevice) handle(ctx context.Context, msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeSpeak:
		var s protocol.SpeakData
		msg.ParseData(&s)
		if s.Audio != "" {
			fmt.Printf("🔊 %s (%s audio)\n", s.Text, s.Format)
		} else {
			fmt.Printf("🔊 %s\n", s.Text)
		}
	case protocol.TypeStatus:
		var s protocol.StatusData
		msg.ParseData(&s)
		fmt.Printf("📋 [%s] %s\n", s.Mode, s.Text)
	case protocol.TypeHaptic:
		var h protocol.HapticData
		msg.ParseData(&h)
		fmt.Printf("📳 %v\n", h.Pattern)
	case protocol.TypeListen:
		var l protocol.ListenData
		msg.ParseData(&l)
		fmt.Printf("🎤 listen %s\n", l.Recognizer)
		if *say != "" && l.Recognizer == "target" {
			d.send(protocol.TypeTranscript, protocol.TranscriptData{Text: *say, Recognizer: l.Recognizer})
		}
	case protocol.TypeCamera:
		var c protocol.CameraData
		msg.ParseData(&c)
		if c.Action == "start" {
			d.startStreaming(ctx, c)
		} else {
			d.stopStreaming()
		}
	case protocol.TypeDetections:
		var dd protocol.DetectionsData
		msg.ParseData(&dd)
		for _, det := range dd.Detections {
			fmt.Printf("   · %s %.2f\n", det.Class, det.Score)
		}
	}
}

func (d *simDevice) startStreaming(ctx context.Context, c protocol.CameraData) {
	d.stopStreaming()
	fps := c.Framerate
	if fps <= 0 {
		fps = 5
	}
	sctx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.streaming = cancel
	d.mu.Unlock()

	fmt.Printf("📹 streaming %dx%d @ %d fps\n", c.Width, c.Height, fps)
	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()
		for {
			select {
			case <-sctx.Done():
				return
			case <-ticker.C:
				d.mu.Lock()
				d.seq++
				seq := d.seq
				d.mu.Unlock()
				msg, err := protocol.NewFrameMessage(c.Width, c.Height, d.frame, seq)
				if err != nil {
					return
				}
				if err := d.write(msg); err != nil {
					return
				}
			}
		}
	}()
}

func (d *simDevice) stopStreaming() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streaming != nil {
		d.streaming()
		d.streaming = nil
		fmt.Println("📹 stopped")
	}
}
