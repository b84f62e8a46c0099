package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/dentaldesk/internal/api/http/middleware"
)

// GET /me
func Me(c fiber.Ctx) error {
	s, found := middleware.SessionFromFiber(c)
	if !found {
		return unauthorized(c)
	}
	return ok(c, s)
}
