package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"ascend/internal/metrics"

	"github.com/rs/zerolog"
)

// Slots is the typed facade over a Store. Reads always go to the store; no
// state is cached between calls.
type Slots struct {
	store     Store
	notifiers []Notifier
	logger    zerolog.Logger
}

// NewSlots wraps store. Notifiers are called after each successful write.
func NewSlots(store Store, logger *zerolog.Logger, notifiers ...Notifier) *Slots {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "slots").Logger()
	}
	return &Slots{store: store, notifiers: notifiers, logger: l}
}

// AddNotifier registers another write notifier. Call before serving traffic.
func (s *Slots) AddNotifier(n Notifier) {
	s.notifiers = append(s.notifiers, n)
}

// Store returns the underlying store.
func (s *Slots) Store() Store {
	return s.store
}

// Raw returns the stored bytes for key.
func (s *Slots) Raw(ctx context.Context, key string) ([]byte, bool, error) {
	return s.store.Load(ctx, key)
}

// Save marshals value as JSON and overwrites key.
func (s *Slots) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	metrics.IncSlotWrite(SlotName(key))
	s.notify(ctx, key)
	return nil
}

// Delete removes key.
func (s *Slots) Delete(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	s.notify(ctx, key)
	return nil
}

func (s *Slots) notify(ctx context.Context, key string) {
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("change notification failed")
		}
	}
}

func (s *Slots) mismatch(key, want string, err error) {
	metrics.IncShapeMismatch(SlotName(key))
	ev := s.logger.Warn().Str("key", key).Str("want", want)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("slot shape mismatch, using empty value")
}

// LoadList reads a JSON array slot. A missing slot, or one holding anything
// other than a decodable array, yields an empty non-nil slice.
func LoadList[T any](ctx context.Context, s *Slots, key string) ([]T, error) {
	data, ok, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	out := []T{}
	if !ok {
		return out, nil
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out, nil
	}
	if data[0] != '[' {
		s.mismatch(key, "list", nil)
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		s.mismatch(key, "list", err)
		return []T{}, nil
	}
	return out, nil
}

// LoadRecord reads a JSON object slot. ok is false when the slot is missing
// or does not hold a decodable object.
func LoadRecord[T any](ctx context.Context, s *Slots, key string) (T, bool, error) {
	var zero T
	data, ok, err := s.store.Load(ctx, key)
	if err != nil {
		return zero, false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return zero, false, nil
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return zero, false, nil
	}
	if data[0] != '{' {
		s.mismatch(key, "record", nil)
		return zero, false, nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		s.mismatch(key, "record", err)
		return zero, false, nil
	}
	return out, true, nil
}
