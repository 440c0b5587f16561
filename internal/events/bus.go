// Package events delivers slot change notifications to interested
// subscribers, within one process and across instances.
package events

import (
	"context"
	"strings"
	"sync"
	"time"

	"ascend/internal/metrics"

	"github.com/rs/zerolog"
)

// Change reports that the slot Key was written. Subscribers re-read the slot;
// no value is carried.
type Change struct {
	Key    string    `json:"key"`
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

// Handler reacts to a change.
type Handler func(Change)

type subscription struct {
	id      uint64
	pattern string
	handler Handler
}

// Bus provides in-process pub/sub for slot changes. Delivery is at least
// once with no ordering guarantee between changes.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger zerolog.Logger
}

// NewBus constructs an empty bus.
func NewBus(logger *zerolog.Logger) *Bus {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "events").Logger()
	}
	return &Bus{logger: l}
}

// OnExternalChange registers handler for keys matching pattern. A pattern
// matches exactly, or by prefix when it ends in '*'. The returned function
// removes the subscription.
func (b *Bus) OnExternalChange(pattern string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, pattern: pattern, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers change to every matching subscriber. Handlers run
// synchronously on the caller's goroutine.
func (b *Bus) Publish(change Change) {
	if change.At.IsZero() {
		change.At = time.Now()
	}

	b.mu.RLock()
	var handlers []Handler
	for _, s := range b.subs {
		if Match(s.pattern, change.Key) {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(h, change)
	}
}

func (b *Bus) dispatch(h Handler, change Change) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Str("key", change.Key).Msg("change handler panicked")
		}
	}()
	h(change)
}

// Notify publishes a local change for key.
func (b *Bus) Notify(_ context.Context, key string) error {
	metrics.IncChangeNotification("local")
	b.Publish(Change{Key: key, Origin: "local"})
	return nil
}

// Match reports whether key satisfies pattern.
func Match(pattern, key string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(key, prefix)
	}
	return pattern == key
}
