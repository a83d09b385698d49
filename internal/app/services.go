package app

import (
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/coachbook/coachbook_backend/config"
	"github.com/coachbook/coachbook_backend/internal/service/availability"
	"github.com/coachbook/coachbook_backend/internal/service/busytime"
	"github.com/coachbook/coachbook_backend/internal/service/schedule"
	"github.com/coachbook/coachbook_backend/pkg/gcal"
	redispkg "github.com/coachbook/coachbook_backend/pkg/redis"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideScheduleStore,
		ProvideBusyTimeProvider,
		ProvideAvailabilityService,
	),
)

func ProvideScheduleStore(drv *entsql.Driver) schedule.Store {
	return schedule.New(drv)
}

func ProvideBusyTimeProvider(cal *gcal.Client, rdb *redis.Client, cfg *config.Config) busytime.Provider {
	return busytime.New(cal, redispkg.NewByteCache(rdb), busytime.Config{
		Horizon: time.Duration(cfg.Booking.BusyHorizonDays) * 24 * time.Hour,
		TTL:     cfg.Booking.CacheTTL(),
	}, slog.Default())
}

func ProvideAvailabilityService(store schedule.Store, busy busytime.Provider, cfg *config.Config) availability.Service {
	return availability.New(store, busy, availability.Config{
		WindowDays:        cfg.Booking.WindowDays,
		ScheduleCacheSize: cfg.Booking.ScheduleCacheSize,
		ScheduleCacheTTL:  cfg.Booking.ScheduleCacheTTL(),
	}, slog.Default())
}
