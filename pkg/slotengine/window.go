package slotengine

import "time"

// DefaultWindowDays is how many dates, starting tomorrow, stay bookable.
const DefaultWindowDays = 15

// BookingWindowPolicy bounds which dates are eligible. Dates are midnight
// instants in the schedule's zone.
type BookingWindowPolicy struct {
	MinDate          time.Time
	MaxDate          time.Time
	MaxLookaheadDays int
}

// NewBookingWindowPolicy builds the window from an explicit now: same-day
// booking is never offered, so MinDate is tomorrow in loc. The window holds
// windowDays dates, so MaxDate is MinDate + windowDays - 1 and the scan
// visits exactly windowDays dates.
func NewBookingWindowPolicy(now time.Time, loc *time.Location, windowDays int) BookingWindowPolicy {
	if loc == nil {
		loc = now.Location()
	}
	if windowDays < 0 {
		windowDays = 0
	}
	y, m, d := now.In(loc).Date()
	minDate := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return BookingWindowPolicy{
		MinDate:          minDate,
		MaxDate:          addDays(minDate, windowDays-1),
		MaxLookaheadDays: windowDays,
	}
}

// Contains reports whether date's calendar day lies in [MinDate, MaxDate].
func (p BookingWindowPolicy) Contains(date time.Time) bool {
	day := dayKey(date)
	return day >= dayKey(p.MinDate) && day <= dayKey(p.MaxDate)
}

// ComputeAvailableDates scans MinDate..MaxDate (at most MaxLookaheadDays
// dates from MinDate) and returns, ascending, the dates with at least one slot
// left after busy filtering. An empty result means no availability, not an
// error.
func ComputeAvailableDates(s Schedule, busy []BusyInterval, p BookingWindowPolicy) ([]time.Time, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s, err := s.Resolve()
	if err != nil {
		return nil, err
	}
	dates := []time.Time{}
	for i := 0; i < p.MaxLookaheadDays; i++ {
		d := addDays(p.MinDate, i)
		if dayKey(d) > dayKey(p.MaxDate) {
			break
		}
		if !IsDayServed(s, d) {
			continue
		}
		slots, err := ComputeSlotsForDate(s, d, busy)
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			dates = append(dates, d)
		}
	}
	return dates, nil
}

// addDays moves by calendar days, keeping midnight across DST changes.
func addDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
