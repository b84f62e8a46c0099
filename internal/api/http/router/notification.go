package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/dentaldesk/internal/api/http/handler"
)

func (r *Router) registerNotificationRoutes(api fiber.Router, nh *handler.NotificationHandler) {
	notifs := api.Group("/notifications")

	notifs.Get("/", nh.List)
	notifs.Post("/:id/actions/:action", nh.Resolve)
	notifs.Delete("/:id", nh.Dismiss)
}

func (r *Router) registerOverviewRoutes(api fiber.Router, oh *handler.OverviewHandler) {
	api.Get("/overview", oh.Get)
}
