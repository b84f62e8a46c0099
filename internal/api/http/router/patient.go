package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/dentaldesk/internal/api/http/handler"
)

func (r *Router) registerPatientRoutes(api fiber.Router, ph *handler.PatientHandler) {
	patients := api.Group("/patients")

	patients.Get("/medical-history/conditions", ph.Conditions)
	patients.Get("/:id/medical-history", ph.GetHistory)
	patients.Put("/:id/medical-history", ph.SaveHistory)
}
