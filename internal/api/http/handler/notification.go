package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/dentaldesk/internal/service/dashboard"
	"github.com/Alijeyrad/dentaldesk/internal/service/notification"
)

type NotificationHandler struct {
	svc dashboard.Service
}

func NewNotificationHandler(svc dashboard.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func mapNotificationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, notification.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, notification.ErrUnknownAction):
		return badRequest(c, err.Error())
	case errors.Is(err, notification.ErrActionRequired):
		return conflict(c, err.Error())
	default:
		// the action itself failed, e.g. the confirmed delete
		return mapTableError(c, err)
	}
}

// GET /notifications
func (h *NotificationHandler) List(c fiber.Ctx) error {
	center, err := h.svc.Notifications(sessionID(c))
	if err != nil {
		return mapTableError(c, err)
	}
	return ok(c, center.Active())
}

// POST /notifications/:id/actions/:action
func (h *NotificationHandler) Resolve(c fiber.Ctx) error {
	center, err := h.svc.Notifications(sessionID(c))
	if err != nil {
		return mapTableError(c, err)
	}
	if err := center.Resolve(c.Context(), param(c, "id"), param(c, "action")); err != nil {
		return mapNotificationError(c, err)
	}
	return noContent(c)
}

// DELETE /notifications/:id
func (h *NotificationHandler) Dismiss(c fiber.Ctx) error {
	center, err := h.svc.Notifications(sessionID(c))
	if err != nil {
		return mapTableError(c, err)
	}
	if err := center.Dismiss(param(c, "id")); err != nil {
		return mapNotificationError(c, err)
	}
	return noContent(c)
}
