// Package dates holds the calendar-day and clock helpers shared by the
// scheduling packages.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DayLayout   = "2006-01-02"
	ClockLayout = "15:04"
)

// FormatDay formats t as a calendar day, or returns fallback for the zero time.
func FormatDay(t time.Time, fallback string) string {
	if t.IsZero() {
		return fallback
	}
	return t.Format(DayLayout)
}

// ParseDay parses a "2006-01-02" string in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", s)
	}
	return t, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DayLayout,
}

// ParseTimestamp accepts RFC 3339 and a few zone-less variants. Zone-less
// values are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// ValidClock reports whether s is a zero-padded "HH:mm" clock value.
func ValidClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return false
	}
	m, err := strconv.Atoi(s[3:])
	return err == nil && m >= 0 && m <= 59
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EachDay calls fn for every calendar day in [start, end], both truncated to
// midnight. Nothing is called when end precedes start.
func EachDay(start, end time.Time, fn func(day time.Time)) {
	from := StartOfDay(start)
	to := StartOfDay(end.In(start.Location()))
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}
