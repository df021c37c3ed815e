package api

import (
	"github.com/gofiber/fiber/v2"
)

type CheckHandler struct {
	sessions *Sessions
}

func NewCheckHandler(sessions *Sessions) *CheckHandler {
	return &CheckHandler{sessions: sessions}
}

func (h CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok", "sessions": h.sessions.Len()})
}
