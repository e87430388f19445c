package web

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/wheeled/go-drivebot/pkg/drive"
	"github.com/wheeled/go-drivebot/pkg/hub"
)

// Request bodies. Each endpoint sets exactly one field of the shared
// command state; there is no batch update in this protocol.
type speedRequest struct {
	Speed int `json:"speed"`
}

type directionRequest struct {
	Direction int `json:"direction"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

// handleSpeed installs a new travel speed.
func (s *Server) handleSpeed(c *fiber.Ctx) error {
	var req speedRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "speed", "malformed request body")
	}
	if err := s.state.SetSpeed(req.Speed); err != nil {
		return rejected(c, err)
	}
	return c.JSON(fiber.Map{"speed": req.Speed})
}

// handleDirection installs a new steering bias.
func (s *Server) handleDirection(c *fiber.Ctx) error {
	var req directionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "direction", "malformed request body")
	}
	if err := s.state.SetDirection(req.Direction); err != nil {
		return rejected(c, err)
	}
	return c.JSON(fiber.Map{"direction": req.Direction})
}

// handleMode shifts the drive mode.
func (s *Server) handleMode(c *fiber.Ctx) error {
	var req modeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "mode", "malformed request body")
	}
	if err := s.state.SetModeToken(req.Mode); err != nil {
		return rejected(c, err)
	}
	return c.JSON(fiber.Map{"mode": req.Mode})
}

// handleState returns the current command snapshot and its mixed power, so
// a freshly loaded UI can sync its controls.
func (s *Server) handleState(c *fiber.Ctx) error {
	cmd := s.state.Snapshot()
	return c.JSON(StateUpdate{Command: cmd, Power: drive.Mix(cmd)})
}

// handleHealth reports liveness for monitoring.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "OK",
		"clients": s.stateHub.ClientCount(),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

// handleStateWS upgrades a dashboard connection onto the state hub.
func (s *Server) handleStateWS(conn *websocket.Conn) {
	client := hub.NewClient(s.stateHub, conn)
	client.Run()
}

// rejected maps a validation error onto a 400 naming the offending field
// and value. The shared state was left untouched by the failed update.
func rejected(c *fiber.Ctx, err error) error {
	var verr *drive.ValidationError
	if errors.As(err, &verr) {
		reason := "out_of_range"
		if errors.Is(verr, drive.ErrUnknownMode) {
			reason = "unknown_mode"
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  verr.Error(),
			"field":  verr.Field,
			"value":  verr.Value,
			"reason": reason,
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

// badRequest reports a body that could not be decoded at all.
func badRequest(c *fiber.Ctx, field, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
		"field": field,
	})
}
