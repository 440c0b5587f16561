package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDay(t *testing.T) {
	assert.Equal(t, "2025-05-05", FormatDay(time.Date(2025, 5, 5, 23, 59, 0, 0, time.UTC), ""))
	assert.Equal(t, "n/a", FormatDay(time.Time{}, "n/a"))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2025-05-07", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, d.Weekday())

	_, err = ParseDay("07-05-2025", time.UTC)
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2025-05-05T10:00:00Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 10, ts.Hour())

	ts, err = ParseTimestamp("2025-05-05T10:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 30, ts.Minute())

	_, err = ParseTimestamp("not a date", time.UTC)
	assert.Error(t, err)
}

func TestValidClock(t *testing.T) {
	for _, s := range []string{"00:00", "09:00", "23:59"} {
		assert.True(t, ValidClock(s), s)
	}
	for _, s := range []string{"9:00", "24:00", "12:60", "ab:cd", ""} {
		assert.False(t, ValidClock(s), s)
	}
}

func TestEachDay(t *testing.T) {
	start := time.Date(2025, 5, 1, 15, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 3, 1, 0, 0, 0, time.UTC)

	var got []string
	EachDay(start, end, func(d time.Time) { got = append(got, FormatDay(d, "")) })
	assert.Equal(t, []string{"2025-05-01", "2025-05-02", "2025-05-03"}, got)

	got = nil
	EachDay(end, start, func(d time.Time) { got = append(got, FormatDay(d, "")) })
	assert.Empty(t, got)
}
