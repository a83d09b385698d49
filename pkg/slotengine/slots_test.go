package slotengine

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

// 2025-01-06 is a Monday.
func mustTime(t *testing.T, loc *time.Location, year int, month time.Month, day, hour, min int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, min, 0, 0, loc)
}

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func mondayMorning(duration int) Schedule {
	return Schedule{
		TimeZone:            "UTC",
		SlotDurationMinutes: duration,
		Rules: []Rule{
			{Days: []DayValue{DayName("MONDAY")}, StartTime: "09:00", EndTime: "10:00"},
		},
	}
}

func busy(t *testing.T, start, end time.Time) BusyInterval {
	t.Helper()
	return NewBusyInterval(start, end, "test")
}

func assertSlots(t *testing.T, got []CandidateSlot, want ...CandidateSlot) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("slot %d: expected %v–%v, got %v–%v", i, want[i].Start, want[i].End, got[i].Start, got[i].End)
		}
	}
}

func TestComputeSlotsForDate_Scenarios(t *testing.T) {
	utc := time.UTC
	monday := mustTime(t, utc, 2025, 1, 6, 0, 0)
	first := CandidateSlot{Start: mustTime(t, utc, 2025, 1, 6, 9, 0), End: mustTime(t, utc, 2025, 1, 6, 9, 30)}
	second := CandidateSlot{Start: mustTime(t, utc, 2025, 1, 6, 9, 30), End: mustTime(t, utc, 2025, 1, 6, 10, 0)}

	t.Run("no busy intervals", func(t *testing.T) {
		slots, err := ComputeSlotsForDate(mondayMorning(30), monday, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertSlots(t, slots, first, second)
	})

	t.Run("busy covers first slot", func(t *testing.T) {
		b := busy(t, first.Start, first.End)
		slots, err := ComputeSlotsForDate(mondayMorning(30), monday, []BusyInterval{b})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertSlots(t, slots, second)
	})

	t.Run("partial overlap of first slot", func(t *testing.T) {
		b := busy(t, mustTime(t, utc, 2025, 1, 6, 8, 45), mustTime(t, utc, 2025, 1, 6, 9, 15))
		slots, err := ComputeSlotsForDate(mondayMorning(30), monday, []BusyInterval{b})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertSlots(t, slots, second)
	})

	t.Run("trailing partial slot dropped", func(t *testing.T) {
		s := mondayMorning(30)
		s.Rules[0].EndTime = "09:50"
		slots, err := ComputeSlotsForDate(s, monday, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertSlots(t, slots, first)
	})

	t.Run("malformed busy interval blocks the whole date", func(t *testing.T) {
		b := BusyInterval{Start: "not-a-date", End: "2025-01-06T12:00:00Z", Source: "google:primary"}
		slots, err := ComputeSlotsForDate(mondayMorning(30), monday, []BusyInterval{b})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(slots) != 0 {
			t.Fatalf("expected no slots, got %+v", slots)
		}
	})

	t.Run("unserved day yields nothing", func(t *testing.T) {
		tuesday := mustTime(t, utc, 2025, 1, 7, 0, 0)
		slots, err := ComputeSlotsForDate(mondayMorning(30), tuesday, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(slots) != 0 {
			t.Fatalf("expected no slots, got %+v", slots)
		}
	})
}

func TestComputeSlotsForDate_Idempotent(t *testing.T) {
	monday := mustTime(t, time.UTC, 2025, 1, 6, 0, 0)
	b := []BusyInterval{busy(t, mustTime(t, time.UTC, 2025, 1, 6, 9, 30), mustTime(t, time.UTC, 2025, 1, 6, 9, 45))}
	s := mondayMorning(15)

	a, err := ComputeSlotsForDate(s, monday, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err := ComputeSlotsForDate(s, monday, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, c) {
		t.Fatalf("expected identical output, got %+v and %+v", a, c)
	}
}

func TestGenerateCandidateSlots_DurationAndBounds(t *testing.T) {
	s := Schedule{
		TimeZone:            "UTC",
		SlotDurationMinutes: 45,
		Rules: []Rule{
			{Days: []DayValue{DayNumber(1)}, StartTime: "08:10", EndTime: "12:00"},
			{Days: []DayValue{DayName("monday")}, StartTime: "13:00", EndTime: "17:20"},
		},
	}
	monday := mustTime(t, time.UTC, 2025, 1, 6, 0, 0)

	slots, err := GenerateCandidateSlots(s, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 5+5 {
		t.Fatalf("expected 10 slots, got %d", len(slots))
	}

	morningEnd := mustTime(t, time.UTC, 2025, 1, 6, 12, 0)
	afternoonEnd := mustTime(t, time.UTC, 2025, 1, 6, 17, 20)
	for i, sl := range slots {
		if d := sl.End.Sub(sl.Start); d != 45*time.Minute {
			t.Fatalf("slot %d: expected 45m, got %v", i, d)
		}
		limit := afternoonEnd
		if sl.Start.Before(morningEnd) {
			limit = morningEnd
		}
		if sl.End.After(limit) {
			t.Fatalf("slot %d ends at %v, after window end %v", i, sl.End, limit)
		}
	}
}

func TestGenerateCandidateSlots_InertRules(t *testing.T) {
	monday := mustTime(t, time.UTC, 2025, 1, 6, 0, 0)

	for name, rule := range map[string]Rule{
		"start equals end": {Days: []DayValue{DayName("MONDAY")}, StartTime: "09:00", EndTime: "09:00"},
		"start after end":  {Days: []DayValue{DayName("MONDAY")}, StartTime: "17:00", EndTime: "09:00"},
		"window too short": {Days: []DayValue{DayName("MONDAY")}, StartTime: "09:00", EndTime: "09:20"},
	} {
		t.Run(name, func(t *testing.T) {
			s := Schedule{TimeZone: "UTC", SlotDurationMinutes: 30, Rules: []Rule{rule}}
			slots, err := GenerateCandidateSlots(s, monday)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(slots) != 0 {
				t.Fatalf("expected no slots, got %+v", slots)
			}
		})
	}
}

func TestGenerateCandidateSlots_OverlappingRulesAreConcatenated(t *testing.T) {
	s := Schedule{
		TimeZone:            "UTC",
		SlotDurationMinutes: 60,
		Rules: []Rule{
			{Days: []DayValue{DayName("MONDAY")}, StartTime: "10:00", EndTime: "12:00"},
			{Days: []DayValue{DayNumber(1)}, StartTime: "09:00", EndTime: "11:00"},
		},
	}
	monday := mustTime(t, time.UTC, 2025, 1, 6, 0, 0)

	slots, err := GenerateCandidateSlots(s, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots,
		CandidateSlot{Start: mustTime(t, time.UTC, 2025, 1, 6, 10, 0), End: mustTime(t, time.UTC, 2025, 1, 6, 11, 0)},
		CandidateSlot{Start: mustTime(t, time.UTC, 2025, 1, 6, 11, 0), End: mustTime(t, time.UTC, 2025, 1, 6, 12, 0)},
		CandidateSlot{Start: mustTime(t, time.UTC, 2025, 1, 6, 9, 0), End: mustTime(t, time.UTC, 2025, 1, 6, 10, 0)},
		CandidateSlot{Start: mustTime(t, time.UTC, 2025, 1, 6, 10, 0), End: mustTime(t, time.UTC, 2025, 1, 6, 11, 0)},
	)

	SortSlots(slots)
	if !slots[0].Start.Equal(mustTime(t, time.UTC, 2025, 1, 6, 9, 0)) {
		t.Fatalf("expected sorted first slot at 09:00, got %v", slots[0].Start)
	}
}

func TestGenerateCandidateSlots_EndOfDay(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	s := Schedule{
		TimeZone:            "America/New_York",
		SlotDurationMinutes: 60,
		Rules:               []Rule{{Days: []DayValue{DayName("SATURDAY")}, StartTime: "22:00", EndTime: "24:00"}},
	}
	// Saturday before the Mar 9 DST change; 24:00 is Sunday's midnight.
	saturday := mustTime(t, ny, 2025, 3, 8, 0, 0)

	slots, err := GenerateCandidateSlots(s, saturday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots,
		CandidateSlot{Start: mustTime(t, ny, 2025, 3, 8, 22, 0), End: mustTime(t, ny, 2025, 3, 8, 23, 0)},
		CandidateSlot{Start: mustTime(t, ny, 2025, 3, 8, 23, 0), End: mustTime(t, ny, 2025, 3, 9, 0, 0)},
	)

	t.Run("as a start it is inert", func(t *testing.T) {
		s := Schedule{TimeZone: "UTC", SlotDurationMinutes: 30, Rules: []Rule{
			{Days: []DayValue{DayName("MONDAY")}, StartTime: "24:00", EndTime: "23:00"},
		}}
		slots, err := GenerateCandidateSlots(s, mustTime(t, time.UTC, 2025, 1, 6, 0, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(slots) != 0 {
			t.Fatalf("expected no slots, got %+v", slots)
		}
	})
}

func TestGenerateCandidateSlots_WallClockInScheduleZone(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	s := mondayMorning(30)
	s.TimeZone = "America/New_York"

	// Calendar day is taken from the date value, not shifted through UTC.
	date := mustTime(t, time.UTC, 2025, 1, 6, 0, 0)
	slots, err := GenerateCandidateSlots(s, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots,
		CandidateSlot{Start: mustTime(t, ny, 2025, 1, 6, 9, 0), End: mustTime(t, ny, 2025, 1, 6, 9, 30)},
		CandidateSlot{Start: mustTime(t, ny, 2025, 1, 6, 9, 30), End: mustTime(t, ny, 2025, 1, 6, 10, 0)},
	)

	// 09:00 New York is 14:00 UTC; a busy interval reported in UTC still applies.
	b := BusyInterval{Start: "2025-01-06T14:00:00Z", End: "2025-01-06T14:30:00Z"}
	filtered := FilterAvailableSlots(slots, []BusyInterval{b})
	assertSlots(t, filtered, slots[1])
}

func TestGenerateCandidateSlots_StructuralErrors(t *testing.T) {
	monday := mustTime(t, time.UTC, 2025, 1, 6, 0, 0)

	cases := map[string]Schedule{
		"missing time zone": {SlotDurationMinutes: 30},
		"unknown time zone": {TimeZone: "Mars/Olympus", SlotDurationMinutes: 30},
		"zero duration":     {TimeZone: "UTC"},
		"bad clock": {TimeZone: "UTC", SlotDurationMinutes: 30, Rules: []Rule{
			{Days: []DayValue{DayName("MONDAY")}, StartTime: "9am", EndTime: "10:00"},
		}},
		"past end of day": {TimeZone: "UTC", SlotDurationMinutes: 30, Rules: []Rule{
			{Days: []DayValue{DayName("MONDAY")}, StartTime: "22:00", EndTime: "24:30"},
		}},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := GenerateCandidateSlots(s, monday)
			if !errors.Is(err, ErrInvalidSchedule) {
				t.Fatalf("expected ErrInvalidSchedule, got %v", err)
			}
		})
	}
}

func TestIsDayServed(t *testing.T) {
	monday := mustTime(t, time.UTC, 2025, 1, 6, 0, 0)
	sunday := mustTime(t, time.UTC, 2025, 1, 5, 0, 0)

	t.Run("no rules", func(t *testing.T) {
		if IsDayServed(Schedule{TimeZone: "UTC", SlotDurationMinutes: 30}, monday) {
			t.Fatal("expected schedule without rules to serve nothing")
		}
	})

	t.Run("numeric sunday maps to zero", func(t *testing.T) {
		s := Schedule{Rules: []Rule{{Days: []DayValue{DayNumber(0)}, StartTime: "09:00", EndTime: "10:00"}}}
		if !IsDayServed(s, sunday) {
			t.Fatal("expected 0 to serve Sunday")
		}
		if IsDayServed(s, monday) {
			t.Fatal("expected 0 not to serve Monday")
		}
	})

	t.Run("names are case-insensitive", func(t *testing.T) {
		for _, name := range []string{"MONDAY", "monday", "Monday", " Mon "} {
			s := Schedule{Rules: []Rule{{Days: []DayValue{DayName(name)}}}}
			if !IsDayServed(s, monday) {
				t.Fatalf("expected %q to serve Monday", name)
			}
		}
	})

	t.Run("unknown representations fail closed", func(t *testing.T) {
		s := Schedule{Rules: []Rule{{Days: []DayValue{DayName("Funday"), DayNumber(7), DayNumber(-1)}}}}
		for i := 0; i < 7; i++ {
			d := monday.AddDate(0, 0, i)
			if IsDayServed(s, d) {
				t.Fatalf("expected %s not to be served", d.Weekday())
			}
		}
	})
}

func TestRule_UnmarshalMixedDays(t *testing.T) {
	var r Rule
	if err := json.Unmarshal([]byte(`{"days":[1,"TUESDAY",3.0],"startTime":"09:00","endTime":"12:00"}`), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday}
	for i, d := range r.Days {
		w, ok := ToCanonicalWeekday(d)
		if !ok || w != want[i] {
			t.Fatalf("day %d: expected %v, got %v (ok=%v)", i, want[i], w, ok)
		}
	}

	if err := json.Unmarshal([]byte(`{"days":[1.5]}`), &r); err == nil {
		t.Fatal("expected error for fractional day")
	}
}
