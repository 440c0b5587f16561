package availability

import (
	"testing"
	"time"

	"ascend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	require.NoError(t, err)
	return d
}

func TestApplyBulkRange_WeekdayMask(t *testing.T) {
	got := ApplyBulkRange(nil, day(t, "2025-05-01"), day(t, "2025-05-07"),
		MaskOf(time.Monday, time.Wednesday), true, "09:00", "17:00")

	assert.Equal(t, []model.DateAvailability{
		{Date: "2025-05-05", Available: true, StartTime: "09:00", EndTime: "17:00"},
		{Date: "2025-05-07", Available: true, StartTime: "09:00", EndTime: "17:00"},
	}, got)
}

func TestApplyBulkRange_KeepsOtherEntries(t *testing.T) {
	existing := []model.DateAvailability{
		{Date: "2025-04-30", Available: false, StartTime: "10:00", EndTime: "12:00"},
		{Date: "2025-05-05", Available: false, StartTime: "08:00", EndTime: "09:00"},
		{Date: "2025-05-06", Available: false, StartTime: "11:00", EndTime: "13:00"},
	}
	before := append([]model.DateAvailability(nil), existing...)

	got := ApplyBulkRange(existing, day(t, "2025-05-05"), day(t, "2025-05-09"),
		MaskOf(time.Monday), true, "09:00", "17:00")

	assert.Equal(t, before, existing, "input must not be mutated")
	require.Len(t, got, 3)
	assert.Equal(t, existing[0], got[0])
	assert.Equal(t, model.DateAvailability{Date: "2025-05-05", Available: true, StartTime: "09:00", EndTime: "17:00"}, got[1])
	assert.Equal(t, existing[2], got[2])
}

func TestApplyBulkRange_NoOp(t *testing.T) {
	existing := []model.DateAvailability{{Date: "2025-05-05", Available: true}}

	got := ApplyBulkRange(existing, day(t, "2025-05-07"), day(t, "2025-05-01"), Weekdays, false, "09:00", "17:00")
	assert.Equal(t, existing, got)

	got = ApplyBulkRange(existing, time.Time{}, day(t, "2025-05-01"), Weekdays, false, "09:00", "17:00")
	assert.Equal(t, existing, got)
}

func TestApplyBulkRange_SingleDay(t *testing.T) {
	got := ApplyBulkRange(nil, day(t, "2025-05-05"), day(t, "2025-05-05"), Weekdays, false, "09:00", "17:00")
	require.Len(t, got, 1)
	assert.Equal(t, "2025-05-05", got[0].Date)
	assert.False(t, got[0].Available)
}

func TestUpsertDate(t *testing.T) {
	entry := model.DateAvailability{Date: "2025-05-03", Available: true, StartTime: "09:00", EndTime: "17:00"}
	list := []model.DateAvailability{
		{Date: "2025-05-09"},
		{Date: "2025-05-01"},
	}

	once := UpsertDate(list, entry)
	twice := UpsertDate(once, entry)

	assert.Equal(t, once, twice, "upsert is idempotent")
	assert.Equal(t, []string{"2025-05-01", "2025-05-03", "2025-05-09"}, datesOf(once))

	replaced := UpsertDate(once, model.DateAvailability{Date: "2025-05-03", Available: false})
	require.Len(t, replaced, 3)
	assert.False(t, replaced[1].Available)
	assert.True(t, once[1].Available, "input must not be mutated")
}

func TestLookup(t *testing.T) {
	_, ok := Lookup(nil, day(t, "2025-05-05"))
	assert.False(t, ok)

	list := []model.DateAvailability{{Date: "2025-05-05", Available: false}}
	got, ok := Lookup(list, day(t, "2025-05-05"))
	assert.True(t, ok)
	assert.False(t, got.Available)

	_, ok = Lookup(list, time.Time{})
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	a := model.Availability{
		DefaultStartTime: "09:00",
		DefaultEndTime:   "17:00",
		Dates:            []model.DateAvailability{{Date: "2025-05-05", Available: false, StartTime: "09:00", EndTime: "17:00"}},
	}

	assert.False(t, Resolve(a, day(t, "2025-05-05")).Available)

	def := Resolve(a, day(t, "2025-05-06"))
	assert.Equal(t, model.DateAvailability{Date: "2025-05-06", Available: true, StartTime: "09:00", EndTime: "17:00"}, def)
}

func TestParseMask(t *testing.T) {
	m, err := ParseMask(nil)
	require.NoError(t, err)
	assert.Equal(t, Weekdays, m)
	assert.Equal(t, []string{"monday", "tuesday", "wednesday", "thursday", "friday"}, m.Names())

	m, err = ParseMask([]string{"Mon", "wednesday"})
	require.NoError(t, err)
	assert.Equal(t, MaskOf(time.Monday, time.Wednesday), m)

	_, err = ParseMask([]string{"funday"})
	assert.Error(t, err)
}

func TestMaskFromFlags(t *testing.T) {
	m, err := MaskFromFlags(map[string]bool{"saturday": true, "sunday": true, "monday": false})
	require.NoError(t, err)
	assert.True(t, m.Has(time.Saturday))
	assert.True(t, m.Has(time.Sunday))
	assert.False(t, m.Has(time.Monday))

	m, err = MaskFromFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, Weekdays, m)
}

func datesOf(list []model.DateAvailability) []string {
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.Date
	}
	return out
}
