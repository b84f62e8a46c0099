package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/dentaldesk/internal/api/http/middleware"
	"github.com/Alijeyrad/dentaldesk/internal/service/clinic"
	"github.com/Alijeyrad/dentaldesk/internal/service/dashboard"
	"github.com/Alijeyrad/dentaldesk/internal/table"
	"github.com/Alijeyrad/dentaldesk/pkg/restclient"
)

type TableHandler struct {
	svc dashboard.Service
}

func NewTableHandler(svc dashboard.Service) *TableHandler {
	return &TableHandler{svc: svc}
}

func mapTableError(c fiber.Ctx, err error) error {
	switch {
	case table.IsValidation(err):
		return invalid(c, err)
	case errors.Is(err, dashboard.ErrSessionRequired):
		return unauthorized(c)
	case errors.Is(err, clinic.ErrUnknownEntity),
		errors.Is(err, table.ErrRecordNotFound),
		errors.Is(err, dashboard.ErrTableNotOpen),
		errors.Is(err, table.ErrNoModal),
		errors.Is(err, restclient.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, table.ErrUnknownCategory),
		errors.Is(err, table.ErrInvalidStatus),
		errors.Is(err, table.ErrNoStatusField),
		errors.Is(err, table.ErrNoQuantityField),
		errors.Is(err, table.ErrInvalidQuantity),
		errors.Is(err, table.ErrUnknownToggle):
		return badRequest(c, err.Error())
	case errors.Is(err, table.ErrModalBusy),
		errors.Is(err, table.ErrRowBusy),
		errors.Is(err, table.ErrNotMounted),
		errors.Is(err, table.ErrNotPending):
		return conflict(c, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return badGateway(c, "clinic backend did not answer in time")
	default:
		slog.Warn("table operation failed", "path", c.Path(), "error", err)
		return badGateway(c, err.Error())
	}
}

func sessionID(c fiber.Ctx) string {
	if s, ok := middleware.SessionFromFiber(c); ok {
		return s.ID
	}
	return ""
}

// param copies a path value out of fiber's reused request buffer. Ids and
// entity names outlive the request as pending-delete keys and table keys.
func param(c fiber.Ctx, key string) string {
	return strings.Clone(c.Params(key))
}

func (h *TableHandler) table(c fiber.Ctx) (*table.Controller, error) {
	return h.svc.Table(c.Context(), sessionID(c), param(c, "entity"))
}

func (h *TableHandler) mutate(c fiber.Ctx, op string, fn func(context.Context, *table.Controller) error) error {
	ctx := c.Context()
	return h.svc.Mutate(ctx, sessionID(c), param(c, "entity"), op, func(ctrl *table.Controller) error {
		return fn(ctx, ctrl)
	})
}

func (h *TableHandler) view(c fiber.Ctx, ctrl *table.Controller) error {
	v, err := ctrl.View()
	if err != nil {
		return mapTableError(c, err)
	}
	return ok(c, v)
}

// GET /tables
func (h *TableHandler) Entities(c fiber.Ctx) error {
	return ok(c, h.svc.Entities())
}

// GET /tables/:entity
func (h *TableHandler) Get(c fiber.Ctx) error {
	ctrl, err := h.table(c)
	if err != nil {
		return mapTableError(c, err)
	}
	return h.view(c, ctrl)
}

// POST /tables/:entity/refresh
//
// A failed reload keeps the previous rows; the view carries the error.
func (h *TableHandler) Refresh(c fiber.Ctx) error {
	ctrl, err := h.table(c)
	if err != nil {
		return mapTableError(c, err)
	}
	if err := ctrl.Refresh(c.Context()); errors.Is(err, table.ErrNotMounted) {
		return mapTableError(c, err)
	}
	return h.view(c, ctrl)
}

// POST /tables/:entity/reset
func (h *TableHandler) Reset(c fiber.Ctx) error {
	ctrl, err := h.table(c)
	if err != nil {
		return mapTableError(c, err)
	}
	if err := ctrl.Reset(c.Context()); errors.Is(err, table.ErrNotMounted) {
		return mapTableError(c, err)
	}
	return h.view(c, ctrl)
}

// DELETE /tables/:entity
func (h *TableHandler) Unmount(c fiber.Ctx) error {
	if err := h.svc.Unmount(sessionID(c), param(c, "entity")); err != nil {
		return mapTableError(c, err)
	}
	return noContent(c)
}

// PUT /tables/:entity/filter
func (h *TableHandler) Filter(c fiber.Ctx) error {
	var body struct {
		Category *string `json:"category"`
		Search   *string `json:"search"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctrl, err := h.table(c)
	if err != nil {
		return mapTableError(c, err)
	}
	if body.Category != nil {
		if err := ctrl.SetCategory(*body.Category); err != nil {
			return mapTableError(c, err)
		}
	}
	if body.Search != nil {
		ctrl.SetSearch(*body.Search)
	}
	return h.view(c, ctrl)
}

// POST /tables/:entity/sort/:field
func (h *TableHandler) Sort(c fiber.Ctx) error {
	ctrl, err := h.table(c)
	if err != nil {
		return mapTableError(c, err)
	}
	if !ctrl.ClickSort(param(c, "field")) {
		return badRequest(c, "column is not sortable")
	}
	return h.view(c, ctrl)
}

// POST /tables/:entity/rows/:id/edit
func (h *TableHandler) OpenEdit(c fiber.Ctx) error {
	ctrl, err := h.table(c)
	if err != nil {
		return mapTableError(c, err)
	}
	modal, err := ctrl.OpenEdit(param(c, "id"))
	if err != nil {
		return mapTableError(c, err)
	}
	return ok(c, modal)
}

// POST /tables/:entity/new
func (h *TableHandler) OpenCreate(c fiber.Ctx) error {
	var body struct {
		RelatedID string `json:"related_id"`
	}
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
	}
	ctrl, err := h.table(c)
	if err != nil {
		return mapTableError(c, err)
	}
	modal, err := ctrl.OpenCreate(strings.TrimSpace(body.RelatedID))
	if err != nil {
		return mapTableError(c, err)
	}
	return ok(c, modal)
}

// GET /tables/:entity/modal
func (h *TableHandler) Modal(c fiber.Ctx) error {
	ctrl, err := h.table(c)
	if err != nil {
		return mapTableError(c, err)
	}
	modal := ctrl.Modal()
	if modal == nil {
		return mapTableError(c, table.ErrNoModal)
	}
	return ok(c, modal)
}

// PATCH /tables/:entity/modal
func (h *TableHandler) SetFields(c fiber.Ctx) error {
	var body struct {
		Fields map[string]any `json:"fields"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(body.Fields) == 0 {
		return badRequest(c, "fields are required")
	}
	ctrl, err := h.table(c)
	if err != nil {
		return mapTableError(c, err)
	}
	var modal *table.ModalView
	for k, v := range body.Fields {
		if modal, err = ctrl.SetField(k, v); err != nil {
			return mapTableError(c, err)
		}
	}
	return ok(c, modal)
}

// POST /tables/:entity/modal/toggle/:field
func (h *TableHandler) Toggle(c fiber.Ctx) error {
	ctrl, err := h.table(c)
	if err != nil {
		return mapTableError(c, err)
	}
	modal, err := ctrl.ToggleField(param(c, "field"))
	if err != nil {
		return mapTableError(c, err)
	}
	return ok(c, modal)
}

// POST /tables/:entity/modal/submit
func (h *TableHandler) Submit(c fiber.Ctx) error {
	var (
		res    table.Record
		create bool
	)
	err := h.mutate(c, "submit", func(ctx context.Context, ctrl *table.Controller) error {
		if m := ctrl.Modal(); m != nil {
			create = m.Mode == table.ModeCreate
		}
		var err error
		res, err = ctrl.SubmitModal(ctx)
		return err
	})
	if err != nil {
		return mapTableError(c, err)
	}
	if create {
		return created(c, res)
	}
	return ok(c, res)
}

// DELETE /tables/:entity/modal
func (h *TableHandler) CloseModal(c fiber.Ctx) error {
	ctrl, err := h.table(c)
	if err != nil {
		return mapTableError(c, err)
	}
	if err := ctrl.CloseModal(); err != nil {
		return mapTableError(c, err)
	}
	return noContent(c)
}

// DELETE /tables/:entity/rows/:id
//
// Nothing is deleted until the returned confirmation is resolved with the
// delete action.
func (h *TableHandler) RequestDelete(c fiber.Ctx) error {
	var confirmID string
	err := h.mutate(c, "delete", func(_ context.Context, ctrl *table.Controller) error {
		var err error
		confirmID, err = ctrl.RequestDelete(param(c, "id"))
		return err
	})
	if err != nil {
		return mapTableError(c, err)
	}
	return accepted(c, fiber.Map{"confirmation_id": confirmID})
}

// PUT /tables/:entity/rows/:id/status
func (h *TableHandler) ChangeStatus(c fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Status == "" {
		return badRequest(c, "status is required")
	}
	var ctrl *table.Controller
	err := h.mutate(c, "status", func(ctx context.Context, tc *table.Controller) error {
		ctrl = tc
		return tc.ChangeStatus(ctx, param(c, "id"), body.Status)
	})
	if err != nil {
		return mapTableError(c, err)
	}
	return h.view(c, ctrl)
}

// POST /tables/:entity/rows/:id/adjust
func (h *TableHandler) Adjust(c fiber.Ctx) error {
	var body struct {
		Delta *float64 `json:"delta"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Delta == nil || *body.Delta == 0 {
		return badRequest(c, "a non-zero delta is required")
	}
	var ctrl *table.Controller
	err := h.mutate(c, "adjust", func(ctx context.Context, tc *table.Controller) error {
		ctrl = tc
		return tc.Adjust(ctx, param(c, "id"), *body.Delta)
	})
	if err != nil {
		return mapTableError(c, err)
	}
	return h.view(c, ctrl)
}
