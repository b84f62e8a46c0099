package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/dentaldesk/internal/api/http/handler"
)

func (r *Router) registerTableRoutes(api fiber.Router, th *handler.TableHandler) {
	api.Get("/tables", th.Entities)

	t := api.Group("/tables/:entity")
	t.Get("/", th.Get)
	t.Delete("/", th.Unmount)
	t.Post("/refresh", th.Refresh)
	t.Post("/reset", th.Reset)
	t.Put("/filter", th.Filter)
	t.Post("/sort/:field", th.Sort)

	// modal
	t.Post("/new", th.OpenCreate)
	t.Get("/modal", th.Modal)
	t.Patch("/modal", th.SetFields)
	t.Delete("/modal", th.CloseModal)
	t.Post("/modal/toggle/:field", th.Toggle)
	t.Post("/modal/submit", th.Submit)

	// rows
	t.Post("/rows/:id/edit", th.OpenEdit)
	t.Delete("/rows/:id", th.RequestDelete)
	t.Put("/rows/:id/status", th.ChangeStatus)
	t.Post("/rows/:id/adjust", th.Adjust)
}
