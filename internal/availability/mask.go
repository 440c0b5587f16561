package availability

import (
	"fmt"
	"strings"
	"time"
)

// WeekdayMask selects days of the week for bulk updates.
type WeekdayMask uint8

var weekdayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Weekdays is Monday through Friday.
const Weekdays = WeekdayMask(1<<time.Monday | 1<<time.Tuesday | 1<<time.Wednesday | 1<<time.Thursday | 1<<time.Friday)

// MaskOf builds a mask from weekdays.
func MaskOf(days ...time.Weekday) WeekdayMask {
	var m WeekdayMask
	for _, d := range days {
		m |= 1 << d
	}
	return m
}

// Has reports whether d is selected.
func (m WeekdayMask) Has(d time.Weekday) bool {
	return m&(1<<d) != 0
}

// Names lists the selected days, Sunday first.
func (m WeekdayMask) Names() []string {
	out := make([]string, 0, 7)
	for d, name := range weekdayNames {
		if m.Has(time.Weekday(d)) {
			out = append(out, name)
		}
	}
	return out
}

// ParseMask reads weekday names ("monday", "Wed"). An empty list gives the
// Monday to Friday default.
func ParseMask(names []string) (WeekdayMask, error) {
	if len(names) == 0 {
		return Weekdays, nil
	}
	var m WeekdayMask
	for _, n := range names {
		d, ok := parseWeekday(n)
		if !ok {
			return 0, fmt.Errorf("unknown weekday %q", n)
		}
		m |= 1 << d
	}
	return m, nil
}

// MaskFromFlags reads the {"monday": true, ...} form. A nil map gives the
// Monday to Friday default.
func MaskFromFlags(flags map[string]bool) (WeekdayMask, error) {
	if flags == nil {
		return Weekdays, nil
	}
	var m WeekdayMask
	for n, on := range flags {
		d, ok := parseWeekday(n)
		if !ok {
			return 0, fmt.Errorf("unknown weekday %q", n)
		}
		if on {
			m |= 1 << d
		}
	}
	return m, nil
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	for d, name := range weekdayNames {
		if strings.HasPrefix(name, s) {
			return time.Weekday(d), true
		}
	}
	return 0, false
}
