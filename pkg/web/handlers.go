package web

import (
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/vocalpath/internal/store"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "ok",
		"version":    Version,
		"detector":   s.deps.Detector.Name(),
		"currency":   s.deps.Currency != nil,
		"devices":    s.deviceCount(),
		"dashboards": s.events.ClientCount(),
	})
}

func (s *Server) handleDevices(c *fiber.Ctx) error {
	s.mu.RLock()
	out := make([]DeviceInfo, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d.info())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Connected.Before(out[j].Connected) })
	return c.JSON(out)
}

// StartSessionRequest is the body of POST /api/session/start.
type StartSessionRequest struct {
	DeviceInfo string `json:"deviceInfo"`
}

func (s *Server) handleStartSession(c *fiber.Ctx) error {
	var req StartSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	sess, err := s.deps.Store.StartSession(c.UserContext(), req.DeviceInfo)
	if err != nil {
		s.logger.Error("start session", "error", err)
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"sessionId": sess.ID,
		"status":    sess.Status,
		"startedAt": sess.StartedAt,
	})
}

func (s *Server) handleGetSession(c *fiber.Ctx) error {
	sess, err := s.deps.Store.GetSession(c.UserContext(), c.Params("id"))
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(fiber.Map{
		"sessionId": sess.ID,
		"status":    sess.Status,
		"startedAt": sess.StartedAt,
		"endedAt":   sess.EndedAt,
	})
}

func (s *Server) handleEndSession(c *fiber.Ctx) error {
	sess, err := s.deps.Store.EndSession(c.UserContext(), c.Params("id"))
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(fiber.Map{
		"sessionId": sess.ID,
		"status":    sess.Status,
		"endedAt":   sess.EndedAt,
	})
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	case errors.Is(err, store.ErrSessionEnded):
		return fiber.NewError(fiber.StatusBadRequest, "Session already ended")
	}
	return err
}
