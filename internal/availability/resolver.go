// Package availability maintains per-user availability calendars: explicit
// per-day overrides on top of default working hours.
package availability

import (
	"sort"
	"time"

	"ascend/internal/dates"
	"ascend/internal/model"
)

// UpsertDate replaces the entry for entry.Date or appends it. The result is
// sorted by date and the input slice is left untouched.
func UpsertDate(list []model.DateAvailability, entry model.DateAvailability) []model.DateAvailability {
	out := make([]model.DateAvailability, 0, len(list)+1)
	replaced := false
	for _, d := range list {
		if d.Date == entry.Date {
			if !replaced {
				out = append(out, entry)
				replaced = true
			}
			continue
		}
		out = append(out, d)
	}
	if !replaced {
		out = append(out, entry)
	}
	sortDates(out)
	return out
}

// ApplyBulkRange upserts one entry for every day in [start, end] whose
// weekday is in mask. Entries outside the selection are kept as they are.
// A zero start or end, or end before start, returns a sorted copy of list.
func ApplyBulkRange(list []model.DateAvailability, start, end time.Time, mask WeekdayMask, available bool, startTime, endTime string) []model.DateAvailability {
	out := append([]model.DateAvailability(nil), list...)
	if start.IsZero() || end.IsZero() {
		sortDates(out)
		return out
	}

	index := make(map[string]int, len(out))
	for i, d := range out {
		index[d.Date] = i
	}

	dates.EachDay(start, end, func(day time.Time) {
		if !mask.Has(day.Weekday()) {
			return
		}
		entry := model.DateAvailability{
			Date:      day.Format(dates.DayLayout),
			Available: available,
			StartTime: startTime,
			EndTime:   endTime,
		}
		if i, ok := index[entry.Date]; ok {
			out[i] = entry
			return
		}
		index[entry.Date] = len(out)
		out = append(out, entry)
	})

	sortDates(out)
	return out
}

// Lookup returns the override for day, if any.
func Lookup(list []model.DateAvailability, day time.Time) (model.DateAvailability, bool) {
	key := dates.FormatDay(day, "")
	if key == "" {
		return model.DateAvailability{}, false
	}
	for _, d := range list {
		if d.Date == key {
			return d, true
		}
	}
	return model.DateAvailability{}, false
}

// Resolve returns the effective availability for day: the override when one
// exists, otherwise the default working hours.
func Resolve(a model.Availability, day time.Time) model.DateAvailability {
	if d, ok := Lookup(a.Dates, day); ok {
		return d
	}
	return model.DateAvailability{
		Date:      dates.FormatDay(day, ""),
		Available: true,
		StartTime: a.DefaultStartTime,
		EndTime:   a.DefaultEndTime,
	}
}

func sortDates(list []model.DateAvailability) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date < list[j].Date
	})
}
