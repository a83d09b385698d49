package slotengine

import (
	"sort"
	"time"
)

// CandidateSlot is a generated bookable unit, [Start, End).
type CandidateSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsDayServed reports whether any rule covers the weekday of date's calendar
// day. Unrecognised day values never match.
func IsDayServed(s Schedule, date time.Time) bool {
	if len(s.Rules) == 0 {
		return false
	}
	w := civilWeekday(date)
	for _, r := range s.Rules {
		if r.servesWeekday(w) {
			return true
		}
	}
	return false
}

// GenerateCandidateSlots expands every rule serving date into consecutive
// slots of the schedule's duration. Trailing partial slots are dropped.
// Slots of different rules are concatenated in rule order without merging,
// so overlapping rules produce overlapping candidates.
func GenerateCandidateSlots(s Schedule, date time.Time) ([]CandidateSlot, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	loc, _ := s.location()
	dur := s.SlotDuration()
	w := civilWeekday(date)

	slots := []CandidateSlot{}
	for _, r := range s.Rules {
		if !r.servesWeekday(w) {
			continue
		}
		startClock, _ := parseClock(r.StartTime)
		endClock, _ := parseClock(r.EndTime)

		cur := startClock.on(date, loc)
		windowEnd := endClock.on(date, loc)
		for cur.Before(windowEnd) {
			end := cur.Add(dur)
			if end.After(windowEnd) {
				break
			}
			slots = append(slots, CandidateSlot{Start: cur, End: end})
			cur = end
		}
	}
	return slots, nil
}

// ComputeSlotsForDate generates and filters the slots of a single date.
func ComputeSlotsForDate(s Schedule, date time.Time, busy []BusyInterval) ([]CandidateSlot, error) {
	candidates, err := GenerateCandidateSlots(s, date)
	if err != nil {
		return nil, err
	}
	return FilterAvailableSlots(candidates, busy), nil
}

// SortSlots orders slots by start, then end. Generation only guarantees
// chronological order within one rule.
func SortSlots(slots []CandidateSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}
		return slots[i].End.Before(slots[j].End)
	})
}
