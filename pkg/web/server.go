// Package web provides the remote-control HTTP surface: the command
// ingress endpoints the UI posts to, a state endpoint for resync, and a
// websocket feed of applied commands for live dashboards.
package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"

	"github.com/wheeled/go-drivebot/internal/log"
	"github.com/wheeled/go-drivebot/pkg/drive"
	"github.com/wheeled/go-drivebot/pkg/hub"
)

// StateUpdate is broadcast over /ws/state whenever a command is applied.
type StateUpdate struct {
	Command drive.Command    `json:"command"`
	Power   drive.MotorPower `json:"power"`
}

// Server is the remote-control web server. It owns no robot state beyond a
// reference to the shared command cell; every accepted request mutates
// exactly one field of it.
type Server struct {
	app     *fiber.App
	state   *drive.State
	started time.Time

	stateHub *hub.Hub
}

// NewServer wires the routes over the given command cell. staticDir holds
// the control page assets (index.html with the sliders and gear buttons).
func NewServer(state *drive.State, staticDir string) *Server {
	s := &Server{
		state:    state,
		started:  time.Now(),
		stateHub: hub.New("state"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "drivebot",
		DisableStartupMessage: true,
	})

	app.Use(logger.New())
	app.Use(cors.New())

	app.Static("/", staticDir)

	api := app.Group("/api")
	api.Post("/speed", s.handleSpeed)
	api.Post("/direction", s.handleDirection)
	api.Post("/mode", s.handleMode)
	api.Get("/state", s.handleState)
	api.Get("/health", s.handleHealth)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))

	s.app = app
	return s
}

// Listen starts the hub and serves on addr. Blocks until Shutdown.
func (s *Server) Listen(addr string) error {
	go s.stateHub.Run()
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// BroadcastApplied publishes an applied command and its mixed power to all
// dashboard clients. Hooked into the actuation loop; must not block.
func (s *Server) BroadcastApplied(cmd drive.Command, power drive.MotorPower) {
	if err := s.stateHub.BroadcastJSON(StateUpdate{Command: cmd, Power: power}); err != nil {
		log.Debug("state broadcast encode failed", "err", err)
	}
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
