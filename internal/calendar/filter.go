// Package calendar stores team calendar events and answers which events a
// user sees on a given day.
package calendar

import (
	"slices"
	"time"

	"ascend/internal/dates"
	"ascend/internal/model"
)

// VisibleTo reports whether userID created, attends or is assigned to e.
func VisibleTo(e model.CalendarEvent, userID string) bool {
	if userID == "" {
		return false
	}
	return e.CreatedBy == userID ||
		slices.Contains(e.Attendees, userID) ||
		slices.Contains(e.AssignedTo, userID)
}

// EventsForDay returns the events visible to userID that start on day's
// calendar date in day's location. Events with an unparsable start are
// skipped.
func EventsForDay(events []model.CalendarEvent, userID string, day time.Time) []model.CalendarEvent {
	out := []model.CalendarEvent{}
	if day.IsZero() {
		return out
	}
	loc := day.Location()
	y, m, d := day.Date()
	for _, e := range events {
		if !VisibleTo(e, userID) {
			continue
		}
		start, err := dates.ParseTimestamp(e.Start, loc)
		if err != nil {
			continue
		}
		sy, sm, sd := start.In(loc).Date()
		if sy == y && sm == m && sd == d {
			out = append(out, e)
		}
	}
	return out
}
