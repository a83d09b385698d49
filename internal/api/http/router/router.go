package router

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"go.uber.org/fx"

	"github.com/coachbook/coachbook_backend/config"
	"github.com/coachbook/coachbook_backend/internal/api/http/handler"
	"github.com/coachbook/coachbook_backend/internal/service/availability"
	"github.com/coachbook/coachbook_backend/pkg/observability"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	DB              *entsql.Driver `optional:"true"`
	OTel            *observability.Provider `optional:"true"`
	AvailabilitySvc availability.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	availabilityH := handler.NewAvailabilityHandler(r.p.AvailabilitySvc)

	api := app.Group("/api/v1")
	r.registerAvailabilityRoutes(api, availabilityH)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return r.databaseReady(c.Context()) },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.OTel != nil && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(r.p.OTel.MetricsHandler()))
	}
}

func (r *Router) databaseReady(ctx context.Context) bool {
	if r.p.DB == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.p.DB.DB().PingContext(ctx) == nil
}
