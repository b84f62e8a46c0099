package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/dentaldesk/config"
	"github.com/Alijeyrad/dentaldesk/internal/session"
	"github.com/Alijeyrad/dentaldesk/pkg/reqctx"
)

const LocalSession = "session"

// SessionRequired resolves the dashboard session from the session header,
// falling back to the session cookie. Unknown sessions are rejected; the
// role is attached for display only.
func SessionRequired(store session.Store, cfg config.SessionConfig) fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get(cfg.Header)
		if id == "" && cfg.Cookie != "" {
			id = c.Cookies(cfg.Cookie)
		}
		if id == "" {
			return fiber.ErrUnauthorized
		}

		s, err := store.Lookup(c.Context(), id)
		switch {
		case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrInvalidRole):
			return fiber.ErrUnauthorized
		case err != nil:
			slog.Error("session lookup failed", "error", err)
			return fiber.ErrServiceUnavailable
		}

		c.Locals(LocalSession, s)
		c.SetContext(reqctx.WithSession(c.Context(), s))
		return c.Next()
	}
}

func SessionFromFiber(c fiber.Ctx) (*reqctx.Session, bool) {
	s, ok := c.Locals(LocalSession).(*reqctx.Session)
	return s, ok && s != nil
}
