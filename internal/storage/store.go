// Package storage persists named slots of JSON data and exposes typed
// helpers over them.
package storage

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Store is the slot persistence contract. Load reports ok=false for a key
// that was never saved. Writes are last-writer-wins.
type Store interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// Notifier is told about every successful write or delete.
type Notifier interface {
	Notify(ctx context.Context, key string) error
}

// NewID returns a globally unique identifier for new entities.
func NewID() string {
	return uuid.NewString()
}

// SlotName returns the slot family of a key: "availability:42" -> "availability".
func SlotName(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
