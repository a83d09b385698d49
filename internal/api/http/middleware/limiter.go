package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/coachbook/coachbook_backend/config"
)

// NewLimiterWithRedis rate-limits per client IP with a sliding window shared
// across instances through Redis.
func NewLimiterWithRedis(rdb *redis.Client, rl config.RateLimit) fiber.Handler {
	max, window := rl.Max, time.Duration(rl.WindowSeconds)*time.Second
	if max <= 0 {
		max = 60
	}
	if window <= 0 {
		window = 30 * time.Second
	}

	return limiter.New(limiter.Config{
		Storage:           fiberredis.NewFromConnection(rdb),
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
		},
	})
}
