package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/coachbook/coachbook_backend/internal/api/http/handler"
)

func (r *Router) registerAvailabilityRoutes(api fiber.Router, ah *handler.AvailabilityHandler) {
	// Public: clients browse a coach's openings before signing in.
	availability := api.Group("/coaches/:cid/availability")

	availability.Get("/dates", ah.Dates)
	availability.Get("/slots", ah.Slots)
	availability.Get("/check", ah.Check)
}
