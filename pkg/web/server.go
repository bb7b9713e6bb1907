// Package web serves the guidance WebSocket for devices, the dashboard
// event stream and the session bookkeeping API.
package web

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/vocalpath/internal/store"
	"github.com/teslashibe/vocalpath/pkg/currency"
	"github.com/teslashibe/vocalpath/pkg/detection"
	"github.com/teslashibe/vocalpath/pkg/engine"
	"github.com/teslashibe/vocalpath/pkg/hub"
	"github.com/teslashibe/vocalpath/pkg/tts"
	"github.com/teslashibe/vocalpath/pkg/voicetarget"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Config configures the server.
type Config struct {
	Addr        string
	ModelsDir   string // Served at /models when set
	StaticDir   string // Device client bundle served at / when set
	MetricsPath string // Prometheus endpoint; "" disables it

	// Frame streaming requested from devices
	FrameWidth  int
	FrameHeight int
	FrameRate   int

	ShutdownWait time.Duration
	Engine       engine.Config
}

// DefaultConfig returns the standard server settings.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		MetricsPath:  "/metrics",
		FrameWidth:   640,
		FrameHeight:  480,
		FrameRate:    7,
		ShutdownWait: 5 * time.Second,
		Engine:       engine.DefaultConfig(),
	}
}

// Deps are the shared collaborators of every connection.
type Deps struct {
	Store    *store.Store        // Required
	Detector detection.Adapter   // Required
	Currency currency.Classifier // Optional
	TTS      tts.Provider        // Optional; devices speak text themselves without it
	Resolver *voicetarget.Resolver
	Metrics  engine.Recorder
	Logger   *slog.Logger
}

// Server is the vocalpath HTTP and WebSocket server.
type Server struct {
	app    *fiber.App
	config Config
	deps   Deps
	logger *slog.Logger

	events *hub.Hub

	mu      sync.RWMutex
	devices map[string]*device
}

// NewServer creates a server and registers its routes.
func NewServer(cfg Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Resolver == nil {
		deps.Resolver = voicetarget.New()
	}
	s := &Server{
		config:  cfg,
		deps:    deps,
		logger:  deps.Logger.With("component", "web"),
		events:  hub.New("events", deps.Logger),
		devices: make(map[string]*device),
	}

	app := fiber.New(fiber.Config{
		AppName:               "vocalpath",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/devices", s.handleDevices)
	api.Post("/session/start", s.handleStartSession)
	api.Get("/session/:id", s.handleGetSession)
	api.Post("/session/end/:id", s.handleEndSession)

	if cfg.MetricsPath != "" {
		app.Get(cfg.MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/guide", websocket.New(s.handleGuide))
	app.Get("/ws/events", websocket.New(s.handleEvents))

	if cfg.ModelsDir != "" {
		app.Static("/models", cfg.ModelsDir)
	}
	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Events returns the dashboard hub.
func (s *Server) Events() *hub.Hub {
	return s.events
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.events.Run(hubCtx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.Addr)
		errc <- s.app.Listen(s.config.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownWait)
	defer cancel()
	s.closeDevices()
	if err := s.app.ShutdownWithContext(sctx); err != nil {
		return err
	}
	return <-errc
}

func (s *Server) addDevice(d *device) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[d.id] = d
	return len(s.devices)
}

func (s *Server) removeDevice(d *device) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.devices[d.id] == d {
		delete(s.devices, d.id)
	}
	return len(s.devices)
}

func (s *Server) deviceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices)
}

func (s *Server) closeDevices() {
	s.mu.RLock()
	devs := make([]*device, 0, len(s.devices))
	for _, d := range s.devices {
		devs = append(devs, d)
	}
	s.mu.RUnlock()
	for _, d := range devs {
		d.close()
	}
}

// errorHandler renders every error as {"error": message}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
