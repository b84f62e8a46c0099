package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/dentaldesk/internal/service/payment"
)

type OverviewHandler struct {
	svc payment.Service
}

func NewOverviewHandler(svc payment.Service) *OverviewHandler {
	return &OverviewHandler{svc: svc}
}

// GET /overview
func (h *OverviewHandler) Get(c fiber.Ctx) error {
	o, err := h.svc.Overview(c.Context())
	if err != nil {
		if errors.Is(err, payment.ErrOverviewUnavailable) {
			return badGateway(c, err.Error())
		}
		slog.Error("overview failed", "error", err)
		return internalError(c)
	}
	return ok(c, o)
}
