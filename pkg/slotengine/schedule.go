package slotengine

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSchedule marks structural problems with a schedule: the data
// layer handed over something that violates the contract.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Rule is one contiguous time-of-day window repeated on a set of weekdays.
// Times are wall-clock "HH:MM" in the schedule's zone.
type Rule struct {
	Days      []DayValue `json:"days"`
	StartTime string     `json:"startTime"`
	EndTime   string     `json:"endTime"`
}

// Schedule is a coach's active recurring availability.
type Schedule struct {
	TimeZone            string `json:"timeZone"`
	Rules               []Rule `json:"rules"`
	SlotDurationMinutes int    `json:"slotDurationMinutes"`

	// Location, when set, is used instead of loading TimeZone.
	Location *time.Location `json:"-"`
}

// Validate reports structural problems. A rule whose start is not before its
// end is not a structural problem; it simply yields no slots.
func (s Schedule) Validate() error {
	if s.SlotDurationMinutes <= 0 {
		return fmt.Errorf("%w: slot duration must be positive, got %d", ErrInvalidSchedule, s.SlotDurationMinutes)
	}
	if _, err := s.location(); err != nil {
		return err
	}
	for i, r := range s.Rules {
		if _, err := parseClock(r.StartTime); err != nil {
			return fmt.Errorf("%w: rule %d start: %v", ErrInvalidSchedule, i, err)
		}
		if _, err := parseClock(r.EndTime); err != nil {
			return fmt.Errorf("%w: rule %d end: %v", ErrInvalidSchedule, i, err)
		}
	}
	return nil
}

// Resolve returns a copy with Location loaded, so repeated engine calls skip
// the tz database lookup.
func (s Schedule) Resolve() (Schedule, error) {
	loc, err := s.location()
	if err != nil {
		return s, err
	}
	s.Location = loc
	return s, nil
}

// SlotDuration is the length of one bookable unit.
func (s Schedule) SlotDuration() time.Duration {
	return time.Duration(s.SlotDurationMinutes) * time.Minute
}

func (s Schedule) location() (*time.Location, error) {
	if s.Location != nil {
		return s.Location, nil
	}
	if s.TimeZone == "" {
		return nil, fmt.Errorf("%w: time zone is required", ErrInvalidSchedule)
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: time zone %q: %v", ErrInvalidSchedule, s.TimeZone, err)
	}
	return loc, nil
}

// servesWeekday reports whether any of the rule's days maps onto w.
func (r Rule) servesWeekday(w time.Weekday) bool {
	for _, d := range r.Days {
		if cw, ok := ToCanonicalWeekday(d); ok && cw == w {
			return true
		}
	}
	return false
}

type clock struct {
	hour, minute int
}

// endOfDay is the ISO 8601 spelling of the midnight that closes a day.
const endOfDay = "24:00"

// parseClock reads "HH:MM". "24:00" is accepted and lands on the following
// midnight when anchored, so a rule can run to the end of its day.
func parseClock(s string) (clock, error) {
	if s == endOfDay {
		return clock{hour: 24}, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return clock{}, fmt.Errorf("time of day %q is not HH:MM", s)
	}
	return clock{hour: t.Hour(), minute: t.Minute()}, nil
}

// on anchors the clock to the calendar day of date as a wall-clock instant in
// loc. Hour 24 normalizes to midnight of the next day.
func (c clock) on(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.hour, c.minute, 0, 0, loc)
}
