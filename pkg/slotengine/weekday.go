package slotengine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DayValue is a weekday as it arrives from storage. Older records keep a
// Sunday-based number (0..6), newer ones keep the weekday name.
type DayValue struct {
	num   int
	name  string
	isNum bool
}

// DayNumber returns a Sunday-based numeric day (0=Sunday … 6=Saturday).
func DayNumber(n int) DayValue { return DayValue{num: n, isNum: true} }

// DayName returns a named day such as "MONDAY", "monday" or "Mon".
func DayName(s string) DayValue { return DayValue{name: s} }

// DayFromAny converts a loosely typed value (decoded YAML, JSON into any, …).
func DayFromAny(v any) (DayValue, error) {
	switch d := v.(type) {
	case DayValue:
		return d, nil
	case int:
		return DayNumber(d), nil
	case int8:
		return DayNumber(int(d)), nil
	case int32:
		return DayNumber(int(d)), nil
	case int64:
		return DayNumber(int(d)), nil
	case float64:
		if d != math.Trunc(d) {
			return DayValue{}, fmt.Errorf("day %v is not an integer", d)
		}
		return DayNumber(int(d)), nil
	case json.Number:
		n, err := d.Int64()
		if err != nil {
			return DayValue{}, fmt.Errorf("day %q: %w", d.String(), err)
		}
		return DayNumber(int(n)), nil
	case string:
		return DayName(d), nil
	case time.Weekday:
		return DayNumber(int(d)), nil
	default:
		return DayValue{}, fmt.Errorf("unsupported day value %T", v)
	}
}

func (d DayValue) String() string {
	if d.isNum {
		return strconv.Itoa(d.num)
	}
	return d.name
}

func (d DayValue) MarshalJSON() ([]byte, error) {
	if d.isNum {
		return []byte(strconv.Itoa(d.num)), nil
	}
	return json.Marshal(d.name)
}

func (d *DayValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = DayName(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("day must be a number or a weekday name: %w", err)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("day %q: %w", n.String(), err)
	}
	v, err := DayFromAny(f)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// ToCanonicalWeekday maps either representation onto time.Weekday.
// Anything it does not recognise reports false and must not match any date.
func ToCanonicalWeekday(d DayValue) (time.Weekday, bool) {
	if d.isNum {
		if d.num < 0 || d.num > 6 {
			return 0, false
		}
		return time.Weekday(d.num), true
	}
	w, ok := weekdayNames[strings.ToLower(strings.TrimSpace(d.name))]
	return w, ok
}

// civilWeekday is the weekday of the calendar day carried by t, independent
// of any zone conversion.
func civilWeekday(t time.Time) time.Weekday {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC).Weekday()
}
