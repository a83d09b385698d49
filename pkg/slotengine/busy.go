package slotengine

import (
	"errors"
	"fmt"
	"time"
)

var errMalformedInterval = errors.New("malformed busy interval")

// BusyInterval is an occupied range reported by a connected calendar.
// Start and End are kept as the raw ISO 8601 strings the provider returned;
// Source is a diagnostic label only.
type BusyInterval struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Source string `json:"source,omitempty"`
}

// NewBusyInterval formats two instants as a busy interval.
func NewBusyInterval(start, end time.Time, source string) BusyInterval {
	return BusyInterval{
		Start:  start.Format(time.RFC3339Nano),
		End:    end.Format(time.RFC3339Nano),
		Source: source,
	}
}

// isoLayouts are the ISO 8601 date-time forms accepted for busy bounds.
// A zone designator is always required; fractional seconds are optional
// wherever seconds appear.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04Z07",
}

func parseInstant(s string) (time.Time, error) {
	var err error
	for _, layout := range isoLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// Parse returns the interval's instants. An unparseable bound or a start
// that is not before the end is an error.
func (b BusyInterval) Parse() (time.Time, time.Time, error) {
	start, err := parseInstant(b.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %q", errMalformedInterval, b.Start)
	}
	end, err := parseInstant(b.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %q", errMalformedInterval, b.End)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %q not before end %q", errMalformedInterval, b.Start, b.End)
	}
	return start, end, nil
}

// Overlaps reports a half-open conflict: slot.Start < busy.End && slot.End > busy.Start.
// Touching boundaries do not conflict. A malformed interval conflicts with
// every slot, so bad upstream data leads to under-booking rather than
// double-booking.
func Overlaps(slot CandidateSlot, busy BusyInterval) bool {
	start, end, err := busy.Parse()
	if err != nil {
		return true
	}
	return slot.Start.Before(end) && slot.End.After(start)
}

// FilterAvailableSlots keeps the candidates that overlap no busy interval,
// preserving their order.
func FilterAvailableSlots(candidates []CandidateSlot, busy []BusyInterval) []CandidateSlot {
	parsed := make([]parsedInterval, len(busy))
	for i, b := range busy {
		start, end, err := b.Parse()
		parsed[i] = parsedInterval{start: start, end: end, malformed: err != nil}
	}

	out := make([]CandidateSlot, 0, len(candidates))
	for _, c := range candidates {
		if !conflictsAny(c, parsed) {
			out = append(out, c)
		}
	}
	return out
}

// MalformedIntervals returns the intervals that Parse rejects.
func MalformedIntervals(busy []BusyInterval) []BusyInterval {
	var out []BusyInterval
	for _, b := range busy {
		if _, _, err := b.Parse(); err != nil {
			out = append(out, b)
		}
	}
	return out
}

type parsedInterval struct {
	start, end time.Time
	malformed  bool
}

func conflictsAny(c CandidateSlot, busy []parsedInterval) bool {
	for _, b := range busy {
		if b.malformed {
			return true
		}
		if c.Start.Before(b.end) && c.End.After(b.start) {
			return true
		}
	}
	return false
}
