package slotengine

import (
	"fmt"
	"time"
)

const (
	PeriodMorning   = "Morning"
	PeriodAfternoon = "Afternoon"
	PeriodEvening   = "Evening"
)

// PeriodGroup is one bucket of slots for display.
type PeriodGroup struct {
	Title string          `json:"title"`
	Slots []CandidateSlot `json:"slots"`
}

// GroupSlotsByPeriod buckets slots by the local hour of their start:
// Morning before 12, Afternoon 12 to 16, Evening from 17. Buckets keep input
// order, always appear as Morning, Afternoon, Evening and are omitted when
// empty.
func GroupSlotsByPeriod(slots []CandidateSlot) []PeriodGroup {
	var morning, afternoon, evening []CandidateSlot
	for _, s := range slots {
		switch h := s.Start.Hour(); {
		case h < 12:
			morning = append(morning, s)
		case h < 17:
			afternoon = append(afternoon, s)
		default:
			evening = append(evening, s)
		}
	}

	groups := make([]PeriodGroup, 0, 3)
	for _, g := range []PeriodGroup{
		{Title: PeriodMorning, Slots: morning},
		{Title: PeriodAfternoon, Slots: afternoon},
		{Title: PeriodEvening, Slots: evening},
	} {
		if len(g.Slots) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// FormatSlot renders a slot for people, e.g. "Mon, Jan 5 · 9:00 AM – 9:30 AM".
// If loc is non-nil the slot is shown in that zone.
func FormatSlot(slot CandidateSlot, loc *time.Location) string {
	start, end := slot.Start, slot.End
	if loc != nil {
		start, end = start.In(loc), end.In(loc)
	}
	return fmt.Sprintf("%s · %s – %s",
		start.Format("Mon, Jan 2"),
		start.Format("3:04 PM"),
		end.Format("3:04 PM"),
	)
}
