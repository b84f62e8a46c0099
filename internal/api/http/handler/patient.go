package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/dentaldesk/internal/service/patient"
	"github.com/Alijeyrad/dentaldesk/internal/table"
)

type PatientHandler struct {
	history patient.HistoryService
}

func NewPatientHandler(history patient.HistoryService) *PatientHandler {
	return &PatientHandler{history: history}
}

func mapPatientError(c fiber.Ctx, err error) error {
	switch {
	case table.IsValidation(err):
		return invalid(c, err)
	case errors.Is(err, patient.ErrPatientIDRequired),
		errors.Is(err, patient.ErrUnknownCondition),
		errors.Is(err, patient.ErrReadOnlyField):
		return badRequest(c, err.Error())
	default:
		return mapTableError(c, err)
	}
}

// GET /patients/:id/medical-history
//
// A patient without a history answers {"data": null}.
func (h *PatientHandler) GetHistory(c fiber.Ctx) error {
	rec, err := h.history.Lookup(c.Context(), param(c, "id"))
	if err != nil {
		return mapPatientError(c, err)
	}
	if rec == nil {
		return ok(c, nil)
	}
	return ok(c, rec)
}

// GET /patients/medical-history/conditions
func (h *PatientHandler) Conditions(c fiber.Ctx) error {
	return ok(c, h.history.Conditions())
}

// PUT /patients/:id/medical-history
func (h *PatientHandler) SaveHistory(c fiber.Ctx) error {
	var body patient.SaveRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	rec, err := h.history.Save(c.Context(), param(c, "id"), body)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, rec)
}
