package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/coachbook/coachbook_backend/internal/service/availability"
	"github.com/coachbook/coachbook_backend/internal/service/busytime"
	"github.com/coachbook/coachbook_backend/internal/service/schedule"
	"github.com/coachbook/coachbook_backend/pkg/reqctx"
	"github.com/coachbook/coachbook_backend/pkg/slotengine"
)

type AvailabilityHandler struct {
	svc availability.Service
}

func NewAvailabilityHandler(svc availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func mapAvailabilityError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, schedule.ErrScheduleNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, availability.ErrInvalidDate):
		return badRequest(c, err.Error())
	case errors.Is(err, availability.ErrDateOutsideWindow):
		return unprocessable(c, err.Error())
	case errors.Is(err, slotengine.ErrInvalidSchedule), errors.Is(err, schedule.ErrInvalidSchedule):
		reqctx.Logger(c.Context(), nil).Error("stored schedule is unusable", "err", err)
		return unprocessable(c, "coach availability is misconfigured")
	case errors.Is(err, busytime.ErrCalendarUnavailable):
		return serviceUnavailable(c, "calendar temporarily unavailable")
	default:
		reqctx.Logger(c.Context(), nil).Error("availability request failed", slog.Any("err", err))
		return internalError(c)
	}
}

func coachIDParam(c fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("cid"))
	return id, err == nil
}

// GET /coaches/:cid/availability/dates
func (h *AvailabilityHandler) Dates(c fiber.Ctx) error {
	coachID, valid := coachIDParam(c)
	if !valid {
		return badRequest(c, "invalid coach id")
	}

	res, err := h.svc.AvailableDates(c.Context(), coachID)
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return ok(c, res)
}

// GET /coaches/:cid/availability/slots?date=YYYY-MM-DD
func (h *AvailabilityHandler) Slots(c fiber.Ctx) error {
	coachID, valid := coachIDParam(c)
	if !valid {
		return badRequest(c, "invalid coach id")
	}
	date := c.Query("date")
	if date == "" {
		return badRequest(c, "date query parameter is required")
	}

	res, err := h.svc.SlotsForDate(c.Context(), coachID, date)
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return ok(c, res)
}

// GET /coaches/:cid/availability/check?start=RFC3339
func (h *AvailabilityHandler) Check(c fiber.Ctx) error {
	coachID, valid := coachIDParam(c)
	if !valid {
		return badRequest(c, "invalid coach id")
	}
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return badRequest(c, "start must be an RFC 3339 timestamp")
	}

	available, err := h.svc.CheckSlot(c.Context(), coachID, start)
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return ok(c, fiber.Map{"start": start, "available": available})
}
