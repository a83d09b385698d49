package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/coachbook/coachbook_backend/pkg/slotengine"
)

// ---------------------------------------------------------------------------
// Models
// ---------------------------------------------------------------------------

// Schedule is a stored coach_availability row.
type Schedule struct {
	ID                  uuid.UUID
	CoachID             uuid.UUID
	Name                string
	TimeZone            string
	SlotDurationMinutes int
	Rules               []slotengine.Rule
	IsDefault           bool
	CreatedAt           time.Time
}

// Engine returns the schedule in the shape the slot engine consumes.
func (s *Schedule) Engine() slotengine.Schedule {
	return slotengine.Schedule{
		TimeZone:            s.TimeZone,
		Rules:               s.Rules,
		SlotDurationMinutes: s.SlotDurationMinutes,
	}
}

// Integration is a coach's connected external calendar.
type Integration struct {
	ID          uuid.UUID
	CoachID     uuid.UUID
	Provider    string
	CalendarID  string
	TimeZone    string
	AccessToken string
	CreatedAt   time.Time
}

const ProviderGoogle = "google"

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Store interface {
	// ActiveSchedule returns the coach's default schedule, with the calendar
	// integration's time zone applied when one is set.
	ActiveSchedule(ctx context.Context, coachID uuid.UUID) (*Schedule, error)
	Integration(ctx context.Context, coachID uuid.UUID) (*Integration, error)

	SaveSchedule(ctx context.Context, s *Schedule) error
	// SaveIntegration replaces the coach's integration, if any.
	SaveIntegration(ctx context.Context, in *Integration) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type store struct {
	drv *entsql.Driver
	now func() time.Time
}

func New(drv *entsql.Driver) Store {
	return &store{drv: drv, now: time.Now}
}

var scheduleColumns = []string{
	"id", "coach_id", "name", "time_zone", "slot_duration_minutes", "rules", "is_default", "created_at",
}

var integrationColumns = []string{
	"id", "coach_id", "provider", "calendar_id", "time_zone", "access_token", "created_at",
}

func (s *store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

func (s *store) ActiveSchedule(ctx context.Context, coachID uuid.UUID) (*Schedule, error) {
	b := s.builder()
	query, args := b.Select(scheduleColumns...).
		From(b.Table(tableSchedules)).
		Where(entsql.And(
			entsql.EQ("coach_id", coachID.String()),
			entsql.EQ("is_default", true),
		)).
		OrderBy(entsql.Desc("created_at")).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query schedule: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query schedule: %w", err)
		}
		return nil, ErrScheduleNotFound
	}

	var (
		sch   Schedule
		rules []byte
	)
	if err := rows.Scan(&sch.ID, &sch.CoachID, &sch.Name, &sch.TimeZone,
		&sch.SlotDurationMinutes, &rules, &sch.IsDefault, &sch.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan schedule: %w", err)
	}
	if err := json.Unmarshal(rules, &sch.Rules); err != nil {
		return nil, fmt.Errorf("%w: rules of %s: %v", ErrInvalidSchedule, sch.ID, err)
	}
	// Release the connection before the integration lookup; sqlite runs on one.
	_ = rows.Close()

	in, err := s.Integration(ctx, coachID)
	switch {
	case errors.Is(err, ErrIntegrationNotFound):
	case err != nil:
		return nil, err
	case in.TimeZone != "":
		sch.TimeZone = in.TimeZone
	}

	return &sch, nil
}

func (s *store) Integration(ctx context.Context, coachID uuid.UUID) (*Integration, error) {
	b := s.builder()
	query, args := b.Select(integrationColumns...).
		From(b.Table(tableIntegrations)).
		Where(entsql.EQ("coach_id", coachID.String())).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query integration: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query integration: %w", err)
		}
		return nil, ErrIntegrationNotFound
	}

	var in Integration
	if err := rows.Scan(&in.ID, &in.CoachID, &in.Provider, &in.CalendarID,
		&in.TimeZone, &in.AccessToken, &in.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan integration: %w", err)
	}
	return &in, nil
}

func (s *store) SaveSchedule(ctx context.Context, sch *Schedule) error {
	if sch.CoachID == uuid.Nil {
		return fmt.Errorf("%w: coach id is required", ErrInvalidSchedule)
	}
	if err := sch.Engine().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	if sch.ID == uuid.Nil {
		sch.ID = uuid.New()
	}
	if sch.CreatedAt.IsZero() {
		sch.CreatedAt = s.now()
	}
	if sch.Rules == nil {
		sch.Rules = []slotengine.Rule{}
	}
	rules, err := json.Marshal(sch.Rules)
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}

	query, args := s.builder().Insert(tableSchedules).
		Columns(scheduleColumns...).
		Values(sch.ID.String(), sch.CoachID.String(), sch.Name, sch.TimeZone,
			sch.SlotDurationMinutes, string(rules), sch.IsDefault, sch.CreatedAt.UTC()).
		Query()
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func (s *store) SaveIntegration(ctx context.Context, in *Integration) error {
	if in.CoachID == uuid.Nil {
		return errors.New("integration: coach id is required")
	}
	if in.TimeZone != "" {
		if _, err := time.LoadLocation(in.TimeZone); err != nil {
			return fmt.Errorf("integration: time zone %q: %w", in.TimeZone, err)
		}
	}
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = s.now()
	}
	if in.Provider == "" {
		in.Provider = ProviderGoogle
	}

	query, args := s.builder().Insert(tableIntegrations).
		Columns(integrationColumns...).
		Values(in.ID.String(), in.CoachID.String(), in.Provider, in.CalendarID,
			in.TimeZone, in.AccessToken, in.CreatedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("coach_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("upsert integration: %w", err)
	}
	return nil
}
