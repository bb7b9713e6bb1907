// vocalpath: guidance server for phone-based navigation assistance.
// Devices stream camera frames over WebSocket and receive spoken guidance.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/vocalpath/internal/config"
	"github.com/teslashibe/vocalpath/internal/log"
	"github.com/teslashibe/vocalpath/internal/observe"
	"github.com/teslashibe/vocalpath/internal/store"
	"github.com/teslashibe/vocalpath/pkg/currency"
	currencyonnx "github.com/teslashibe/vocalpath/pkg/currency/onnx"
	"github.com/teslashibe/vocalpath/pkg/detection"
	detonnx "github.com/teslashibe/vocalpath/pkg/detection/onnx"
	"github.com/teslashibe/vocalpath/pkg/engine"
	"github.com/teslashibe/vocalpath/pkg/tts"
	"github.com/teslashibe/vocalpath/pkg/web"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults are used when empty)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log.Init(string(cfg.Server.LogLevel))
	logger := log.Component("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics engine.Recorder
	if cfg.Metrics.Enabled {
		met, shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		defer shutdown(context.Background())
		metrics = met
	}

	st, err := store.Open(ctx, cfg.Store.Path, log.Component("store"))
	if err != nil {
		return err
	}
	defer st.Close()

	det, err := detection.Load(ctx, log.Component("detection"), detonnx.Loaders(cfg.YOLOConfig(), cfg.SSDConfig())...)
	if err != nil {
		return err
	}
	defer det.Close()

	var classifier currency.Classifier
	if cc, err := currencyonnx.New(cfg.CurrencyConfig()); err != nil {
		if !errors.Is(err, currency.ErrModelMissing) {
			return err
		}
		logger.Warn("currency detection disabled", "error", err)
	} else {
		defer cc.Close()
		classifier = cc
	}

	var synth tts.Provider
	if cfg.TTS.Provider == "elevenlabs" {
		el, err := tts.NewElevenLabs(append(cfg.TTSOptions(), tts.WithLogger(log.Component("tts")))...)
		if err != nil {
			return fmt.Errorf("tts: %w", err)
		}
		chain, err := tts.NewChain(log.Component("tts"), el)
		if err != nil {
			return err
		}
		defer chain.Close()
		synth = chain
	}

	web.Version = version
	srv := web.NewServer(cfg.WebConfig(), web.Deps{
		Store:    st,
		Detector: det,
		Currency: classifier,
		TTS:      synth,
		Resolver: cfg.Resolver(),
		Metrics:  metrics,
		Logger:   log.L(),
	})

	fmt.Println()
	fmt.Println("🦯 vocalpath " + version)
	fmt.Printf("   Detector:  %s\n", det.Name())
	fmt.Printf("   Guide:     ws://localhost%s/ws/guide\n", cfg.Server.Addr)
	fmt.Printf("   Dashboard: ws://localhost%s/ws/events\n", cfg.Server.Addr)
	fmt.Println()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		reportSessions(gctx, st, logger)
		return nil
	})
	return g.Wait()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromReader(strings.NewReader(""))
	}
	return config.Load(path)
}

// reportSessions logs the open session count once a minute.
func reportSessions(ctx context.Context, st *store.Store, logger *slog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := st.CountActive(ctx)
			if err != nil {
				logger.Warn("count sessions", "error", err)
				continue
			}
			logger.Info("sessions", "active", n)
		}
	}
}
