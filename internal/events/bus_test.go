package events

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern, key string
		want         bool
	}{
		{"calendar-events", "calendar-events", true},
		{"calendar-events", "calendar", false},
		{"calendar*", "calendar-events", true},
		{"availability:*", "availability:2", true},
		{"availability:*", "availability", false},
		{"*", "anything", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Match(tt.pattern, tt.key), "%s vs %s", tt.pattern, tt.key)
	}
}

func TestBus_OnExternalChange(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	var got []string
	unsubscribe := bus.OnExternalChange("calendar*", func(c Change) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, c.Key)
	})

	require.NoError(t, bus.Notify(context.Background(), "calendar-events"))
	require.NoError(t, bus.Notify(context.Background(), "tasks"))

	unsubscribe()
	unsubscribe()
	require.NoError(t, bus.Notify(context.Background(), "calendar-events"))

	assert.Equal(t, []string{"calendar-events"}, got)
}

func TestBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewBus(nil)
	called := false
	bus.OnExternalChange("tasks", func(Change) { panic("boom") })
	bus.OnExternalChange("tasks", func(Change) { called = true })

	assert.NotPanics(t, func() { bus.Publish(Change{Key: "tasks"}) })
	assert.True(t, called)
}

func TestBus_PublishStampsTime(t *testing.T) {
	bus := NewBus(nil)
	var at Change
	bus.OnExternalChange("users", func(c Change) { at = c })
	bus.Publish(Change{Key: "users"})
	assert.False(t, at.At.IsZero())
}
