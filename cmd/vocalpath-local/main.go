// vocalpath-local: run guidance against a local webcam with console speech.
// Type commands on stdin in place of gestures and speech.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/teslashibe/vocalpath/internal/config"
	"github.com/teslashibe/vocalpath/internal/log"
	"github.com/teslashibe/vocalpath/pkg/camera"
	"github.com/teslashibe/vocalpath/pkg/camera/capture"
	"github.com/teslashibe/vocalpath/pkg/currency"
	currencyonnx "github.com/teslashibe/vocalpath/pkg/currency/onnx"
	"github.com/teslashibe/vocalpath/pkg/detection"
	detonnx "github.com/teslashibe/vocalpath/pkg/detection/onnx"
	"github.com/teslashibe/vocalpath/pkg/engine"
	"github.com/teslashibe/vocalpath/pkg/interaction"
	"github.com/teslashibe/vocalpath/pkg/speech"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config")
	device := flag.Int("device", -1, "Camera device index (overrides config)")
	flag.Parse()

	if err := run(*configPath, *device); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, device int) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath == "" {
		cfg, err = config.LoadFromReader(strings.NewReader(""))
	} else {
		cfg, err = config.Load(configPath)
	}
	if err != nil {
		return err
	}
	if device >= 0 {
		cfg.Camera.Device = device
	}
	log.Init(string(cfg.Server.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	det, err := detection.Load(ctx, log.Component("detection"), detonnx.Loaders(cfg.YOLOConfig(), cfg.SSDConfig())...)
	if err != nil {
		return err
	}
	defer det.Close()

	var classifier currency.Classifier
	if cc, err := currencyonnx.New(cfg.CurrencyConfig()); err == nil {
		defer cc.Close()
		classifier = cc
	} else if !errors.Is(err, currency.ErrModelMissing) {
		return err
	}

	console := speech.NewConsole(os.Stdout)
	ctl := &consoleControl{}
	capCfg := cfg.CaptureConfig()
	eng := engine.New(cfg.EngineConfig(), engine.Deps{
		Camera: func(context.Context) (camera.Source, error) {
			cam, err := capture.NewWebcam(capCfg, log.Component("capture"))
			if err != nil {
				return nil, &camera.AcquireError{Kind: camera.Unsupported, Err: err}
			}
			return cam, nil
		},
		Detector: det,
		Currency: classifier,
		Resolver: cfg.Resolver(),
		Speaker:  console,
		Haptics:  console,
		Control:  ctl,
		Logger:   log.L(),
	})
	defer eng.Close()

	fmt.Println()
	fmt.Println("🦯 vocalpath local")
	fmt.Printf("   Detector: %s  Camera: %d\n", det.Name(), cfg.Camera.Device)
	fmt.Println("   Commands: tap, double, say <words>, target <class>, mute, unmute, stop, quit")
	fmt.Println()

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := dispatch(eng, line); quit {
				return nil
			}
		}
	}
}

// dispatch applies one console command. It reports true on quit.
func dispatch(eng *engine.Engine, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "":
	case "tap":
		eng.Tap()
	case "double", "dd":
		eng.DoubleTap()
	case "say":
		eng.Transcript(arg)
	case "target":
		eng.SelectTarget(arg)
	case "mute":
		eng.SetMuted(true)
	case "unmute":
		eng.SetMuted(false)
	case "stop":
		eng.Stop()
	case "quit", "exit":
		return true
	default:
		fmt.Printf("❓ unknown command %q\n", cmd)
	}
	return false
}

// consoleControl prints status lines and which recognizer wants speech.
type consoleControl struct{}

func (consoleControl) Status(snap interaction.Snapshot, text string) {
	fmt.Printf("📋 [%s] %s\n", snap.Mode, text)
}

func (consoleControl) Listen(r interaction.Recognizer) {
	fmt.Printf("🎤 listening (%s), type: say <words>\n", r)
}

func (consoleControl) StopListening(interaction.Recognizer) {}
