package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/coachbook/coachbook_backend/internal/service/availability"
	"github.com/coachbook/coachbook_backend/internal/service/busytime"
	"github.com/coachbook/coachbook_backend/internal/service/schedule"
	"github.com/coachbook/coachbook_backend/pkg/slotengine"
)

type stubService struct {
	dates *availability.DatesResult
	slots *availability.SlotsResult
	ok    bool
	err   error

	gotDate  string
	gotStart time.Time
}

func (s *stubService) AvailableDates(context.Context, uuid.UUID) (*availability.DatesResult, error) {
	return s.dates, s.err
}

func (s *stubService) SlotsForDate(_ context.Context, _ uuid.UUID, date string) (*availability.SlotsResult, error) {
	s.gotDate = date
	return s.slots, s.err
}

func (s *stubService) CheckSlot(_ context.Context, _ uuid.UUID, start time.Time) (bool, error) {
	s.gotStart = start
	return s.ok, s.err
}

func (s *stubService) Invalidate(context.Context, uuid.UUID) error { return nil }

func newTestApp(svc availability.Service) *fiber.App {
	app := fiber.New()
	h := NewAvailabilityHandler(svc)
	g := app.Group("/coaches/:cid/availability")
	g.Get("/dates", h.Dates)
	g.Get("/slots", h.Slots)
	g.Get("/check", h.Check)
	return app
}

func do(t *testing.T, app *fiber.App, target string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	return resp.StatusCode, body
}

func TestDates(t *testing.T) {
	coach := uuid.New()
	svc := &stubService{dates: &availability.DatesResult{
		CoachID:        coach,
		Dates:          []string{},
		NoAvailability: true,
		Message:        "no available slots in the next 15 days",
	}}
	app := newTestApp(svc)

	status, body := do(t, app, fmt.Sprintf("/coaches/%s/availability/dates", coach))
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]any)
	require.Equal(t, true, data["no_availability"])
	require.Equal(t, "no available slots in the next 15 days", data["message"])

	status, _ = do(t, app, "/coaches/nope/availability/dates")
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestSlots(t *testing.T) {
	coach := uuid.New()
	svc := &stubService{slots: &availability.SlotsResult{CoachID: coach, Date: "2025-01-06", Periods: []availability.Period{}}}
	app := newTestApp(svc)

	status, _ := do(t, app, fmt.Sprintf("/coaches/%s/availability/slots?date=2025-01-06", coach))
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "2025-01-06", svc.gotDate)

	status, body := do(t, app, fmt.Sprintf("/coaches/%s/availability/slots", coach))
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Contains(t, body["error"], "date")
}

func TestCheck(t *testing.T) {
	coach := uuid.New()
	svc := &stubService{ok: true}
	app := newTestApp(svc)

	status, body := do(t, app, fmt.Sprintf("/coaches/%s/availability/check?start=2025-01-06T09:30:00Z", coach))
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, body["data"].(map[string]any)["available"])
	require.True(t, svc.gotStart.Equal(time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)))

	status, _ = do(t, app, fmt.Sprintf("/coaches/%s/availability/check?start=tomorrow", coach))
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestMapAvailabilityError(t *testing.T) {
	coach := uuid.New()
	cases := []struct {
		err  error
		want int
	}{
		{schedule.ErrScheduleNotFound, fiber.StatusNotFound},
		{availability.ErrInvalidDate, fiber.StatusBadRequest},
		{availability.ErrDateOutsideWindow, fiber.StatusUnprocessableEntity},
		{fmt.Errorf("compute: %w", slotengine.ErrInvalidSchedule), fiber.StatusUnprocessableEntity},
		{fmt.Errorf("%w: timeout", busytime.ErrCalendarUnavailable), fiber.StatusServiceUnavailable},
		{context.DeadlineExceeded, fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			app := newTestApp(&stubService{err: tc.err})
			status, body := do(t, app, fmt.Sprintf("/coaches/%s/availability/slots?date=2025-01-06", coach))
			require.Equal(t, tc.want, status)
			require.NotEmpty(t, body["error"])
		})
	}
}
