package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/dentaldesk/config"
	"github.com/Alijeyrad/dentaldesk/internal/api/http/handler"
	"github.com/Alijeyrad/dentaldesk/internal/api/http/middleware"
	"github.com/Alijeyrad/dentaldesk/internal/service/dashboard"
	"github.com/Alijeyrad/dentaldesk/internal/service/patient"
	"github.com/Alijeyrad/dentaldesk/internal/service/payment"
	"github.com/Alijeyrad/dentaldesk/internal/session"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg        *config.Config
	Redis      *redis.Client `optional:"true"`
	Sessions   session.Store
	Dashboard  dashboard.Service
	Overview   payment.Service
	HistorySvc patient.HistoryService
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	sessionRequired := middleware.SessionRequired(r.p.Sessions, r.p.Cfg.Session)

	tableH := handler.NewTableHandler(r.p.Dashboard)
	notificationH := handler.NewNotificationHandler(r.p.Dashboard)
	overviewH := handler.NewOverviewHandler(r.p.Overview)
	patientH := handler.NewPatientHandler(r.p.HistorySvc)

	api := app.Group("/api/v1", sessionRequired)
	api.Get("/me", handler.Me)

	r.registerTableRoutes(api, tableH)
	r.registerNotificationRoutes(api, notificationH)
	r.registerOverviewRoutes(api, overviewH)
	r.registerPatientRoutes(api, patientH)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return r.redisHealthy(c.Context()) },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}

func (r *Router) redisHealthy(ctx context.Context) bool {
	if r.p.Redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.p.Redis.Ping(ctx).Err() == nil
}
