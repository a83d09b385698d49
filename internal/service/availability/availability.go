package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/coachbook/coachbook_backend/internal/service/busytime"
	"github.com/coachbook/coachbook_backend/internal/service/schedule"
	"github.com/coachbook/coachbook_backend/pkg/reqctx"
	"github.com/coachbook/coachbook_backend/pkg/slotengine"
)

const (
	instrumentationName = "github.com/coachbook/coachbook_backend/internal/service/availability"
	dateLayout          = "2006-01-02"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type DatesResult struct {
	CoachID        uuid.UUID `json:"coach_id"`
	TimeZone       string    `json:"time_zone"`
	Dates          []string  `json:"dates"`
	NoAvailability bool      `json:"no_availability"`
	Message        string    `json:"message,omitempty"`
	WindowStart    string    `json:"window_start"`
	WindowEnd      string    `json:"window_end"`
}

type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

type Period struct {
	Title string `json:"title"`
	Slots []Slot `json:"slots"`
}

type SlotsResult struct {
	CoachID  uuid.UUID `json:"coach_id"`
	Date     string    `json:"date"`
	TimeZone string    `json:"time_zone"`
	Count    int       `json:"count"`
	Periods  []Period  `json:"periods"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// AvailableDates lists the bookable dates in the coach's booking window.
	// An empty window is a result, not an error.
	AvailableDates(ctx context.Context, coachID uuid.UUID) (*DatesResult, error)
	// SlotsForDate lists the free slots on date (YYYY-MM-DD in the coach's
	// zone), grouped by part of day.
	SlotsForDate(ctx context.Context, coachID uuid.UUID, date string) (*SlotsResult, error)
	// CheckSlot reports whether a slot starting at start is still offered.
	CheckSlot(ctx context.Context, coachID uuid.UUID, start time.Time) (bool, error)
	// Invalidate forgets everything cached for the coach.
	Invalidate(ctx context.Context, coachID uuid.UUID) error
}

type Config struct {
	WindowDays       int
	ScheduleCacheTTL time.Duration
	// ScheduleCacheSize of zero disables the in-process schedule cache.
	ScheduleCacheSize int
	// Now defaults to time.Now.
	Now func() time.Time
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type availabilityService struct {
	store  schedule.Store
	busy   busytime.Provider
	cfg    Config
	now    func() time.Time
	cache  *expirable.LRU[uuid.UUID, slotengine.Schedule]
	logger *slog.Logger

	tracer        trace.Tracer
	requests      metric.Int64Counter
	malformed     metric.Int64Counter
	scheduleCache metric.Int64Counter
}

func New(store schedule.Store, busy busytime.Provider, cfg Config, logger *slog.Logger) Service {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = slotengine.DefaultWindowDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &availabilityService{
		store:  store,
		busy:   busy,
		cfg:    cfg,
		now:    now,
		logger: logger,
		tracer: otel.Tracer(instrumentationName),
	}
	if cfg.ScheduleCacheSize > 0 {
		s.cache = expirable.NewLRU[uuid.UUID, slotengine.Schedule](cfg.ScheduleCacheSize, nil, cfg.ScheduleCacheTTL)
	}

	if err := s.initMetrics(otel.Meter(instrumentationName)); err != nil {
		// Failed instruments are no-ops.
		logger.Warn("availability: metric instruments unavailable", "err", err)
	}

	return s
}

const (
	MetricRequests       = "availability_requests_total"
	MetricMalformedBusy  = "availability_malformed_busy_total"
	MetricScheduleLookup = "availability_schedule_cache_lookups_total"
)

func (s *availabilityService) initMetrics(meter metric.Meter) error {
	var errs []error
	var err error

	s.requests, err = meter.Int64Counter(MetricRequests,
		metric.WithDescription("Availability computations by operation"))
	errs = append(errs, err)
	s.malformed, err = meter.Int64Counter(MetricMalformedBusy,
		metric.WithDescription("Busy intervals that could not be parsed and blocked a whole day"))
	errs = append(errs, err)
	s.scheduleCache, err = meter.Int64Counter(MetricScheduleLookup,
		metric.WithDescription("Schedule cache lookups by result"))
	errs = append(errs, err)

	return errors.Join(errs...)
}

// snapshot is everything one computation needs, fetched together.
type snapshot struct {
	schedule slotengine.Schedule
	busy     []slotengine.BusyInterval
	policy   slotengine.BookingWindowPolicy
}

func (s *availabilityService) AvailableDates(ctx context.Context, coachID uuid.UUID) (*DatesResult, error) {
	ctx, span := s.tracer.Start(ctx, "availability.AvailableDates",
		trace.WithAttributes(attribute.String("coach.id", coachID.String())))
	defer span.End()
	s.count(ctx, "dates")

	snap, err := s.load(ctx, coachID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	dates, err := slotengine.ComputeAvailableDates(snap.schedule, snap.busy, snap.policy)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("compute dates: %w", err)
	}

	res := &DatesResult{
		CoachID:     coachID,
		TimeZone:    snap.schedule.Location.String(),
		Dates:       make([]string, 0, len(dates)),
		WindowStart: snap.policy.MinDate.Format(dateLayout),
		WindowEnd:   snap.policy.MaxDate.Format(dateLayout),
	}
	for _, d := range dates {
		res.Dates = append(res.Dates, d.Format(dateLayout))
	}
	if len(res.Dates) == 0 {
		res.NoAvailability = true
		res.Message = fmt.Sprintf("no available slots in the next %d days", s.cfg.WindowDays)
	}
	span.SetAttributes(attribute.Int("availability.dates", len(res.Dates)))
	return res, nil
}

func (s *availabilityService) SlotsForDate(ctx context.Context, coachID uuid.UUID, date string) (*SlotsResult, error) {
	ctx, span := s.tracer.Start(ctx, "availability.SlotsForDate",
		trace.WithAttributes(
			attribute.String("coach.id", coachID.String()),
			attribute.String("availability.date", date),
		))
	defer span.End()
	s.count(ctx, "slots")

	snap, err := s.load(ctx, coachID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	day, err := time.ParseInLocation(dateLayout, date, snap.schedule.Location)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if !snap.policy.Contains(day) {
		return nil, ErrDateOutsideWindow
	}

	slots, err := slotengine.ComputeSlotsForDate(snap.schedule, day, snap.busy)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("compute slots: %w", err)
	}

	res := &SlotsResult{
		CoachID:  coachID,
		Date:     date,
		TimeZone: snap.schedule.Location.String(),
		Count:    len(slots),
		Periods:  []Period{},
	}
	for _, g := range slotengine.GroupSlotsByPeriod(slots) {
		p := Period{Title: g.Title, Slots: make([]Slot, 0, len(g.Slots))}
		for _, sl := range g.Slots {
			p.Slots = append(p.Slots, Slot{
				Start: sl.Start,
				End:   sl.End,
				Label: slotengine.FormatSlot(sl, snap.schedule.Location),
			})
		}
		res.Periods = append(res.Periods, p)
	}
	span.SetAttributes(attribute.Int("availability.slots", len(slots)))
	return res, nil
}

func (s *availabilityService) CheckSlot(ctx context.Context, coachID uuid.UUID, start time.Time) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "availability.CheckSlot",
		trace.WithAttributes(attribute.String("coach.id", coachID.String())))
	defer span.End()
	s.count(ctx, "check")

	snap, err := s.load(ctx, coachID)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	local := start.In(snap.schedule.Location)
	if !snap.policy.Contains(local) {
		return false, nil
	}
	slots, err := slotengine.ComputeSlotsForDate(snap.schedule, local, snap.busy)
	if err != nil {
		return false, fmt.Errorf("compute slots: %w", err)
	}
	for _, sl := range slots {
		if sl.Start.Equal(start) {
			return true, nil
		}
	}
	return false, nil
}

func (s *availabilityService) Invalidate(ctx context.Context, coachID uuid.UUID) error {
	if s.cache != nil {
		s.cache.Remove(coachID)
	}
	return s.busy.Invalidate(ctx, coachID)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// load fetches the schedule and the busy list concurrently and builds the
// booking window from a single reading of the clock.
func (s *availabilityService) load(ctx context.Context, coachID uuid.UUID) (*snapshot, error) {
	now := s.now()
	snap := &snapshot{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sch, err := s.resolveSchedule(gctx, coachID)
		if err != nil {
			return err
		}
		snap.schedule = sch
		return nil
	})
	g.Go(func() error {
		in, err := s.store.Integration(gctx, coachID)
		if err != nil && !errors.Is(err, schedule.ErrIntegrationNotFound) {
			return err
		}
		busy, err := s.busy.BusyIntervals(gctx, coachID, in, now)
		if err != nil {
			return err
		}
		snap.busy = busy
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if bad := slotengine.MalformedIntervals(snap.busy); len(bad) > 0 {
		log := reqctx.Logger(ctx, s.logger)
		for _, b := range bad {
			_, _, perr := b.Parse()
			log.Warn("availability: malformed busy interval blocks its days",
				"coach_id", coachID.String(), "source", b.Source, "err", perr)
		}
		s.malformed.Add(ctx, int64(len(bad)))
	}

	snap.policy = slotengine.NewBookingWindowPolicy(now, snap.schedule.Location, s.cfg.WindowDays)
	return snap, nil
}

func (s *availabilityService) resolveSchedule(ctx context.Context, coachID uuid.UUID) (slotengine.Schedule, error) {
	if s.cache != nil {
		if sch, ok := s.cache.Get(coachID); ok {
			s.scheduleCache.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "hit")))
			return sch, nil
		}
		s.scheduleCache.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "miss")))
	}

	stored, err := s.store.ActiveSchedule(ctx, coachID)
	if err != nil {
		return slotengine.Schedule{}, err
	}
	sch := stored.Engine()
	if err := sch.Validate(); err != nil {
		return slotengine.Schedule{}, err
	}
	sch, err = sch.Resolve()
	if err != nil {
		return slotengine.Schedule{}, err
	}

	if s.cache != nil {
		s.cache.Add(coachID, sch)
	}
	return sch, nil
}

func (s *availabilityService) count(ctx context.Context, op string) {
	s.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}
