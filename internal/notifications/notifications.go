// Package notifications stores in-app notifications for team members.
package notifications

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"ascend/internal/model"
	"ascend/internal/storage"

	"github.com/rs/zerolog"
)

// Key is the slot holding every notification.
const Key = "notifications"

var ErrNotFound = errors.New("notification not found")

// Recipients lists the users a broadcast reaches.
type Recipients interface {
	List(ctx context.Context) ([]model.User, error)
}

// Filter narrows List. Empty fields match everything. Tab is "all",
// "unread" or a category name.
type Filter struct {
	Tab      string
	Priority string
	Status   string
	Query    string
}

type Service struct {
	slots      *storage.Slots
	recipients Recipients
	now        func() time.Time
	logger     zerolog.Logger
	mu         sync.Mutex
}

func NewService(slots *storage.Slots, recipients Recipients, logger *zerolog.Logger) *Service {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "notifications").Logger()
	}
	return &Service{
		slots:      slots,
		recipients: recipients,
		now:        time.Now,
		logger:     l,
	}
}

// Send stores a notification for n.UserID. A ScheduledFor in the future
// keeps it hidden until that time.
func (s *Service) Send(ctx context.Context, n model.Notification) (model.Notification, error) {
	if n.UserID == "" {
		return model.Notification{}, model.Invalid("user_id", "recipient is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return model.Notification{}, err
	}
	n, err = s.prepare(n)
	if err != nil {
		return model.Notification{}, err
	}
	all = append(all, n)
	if err := s.slots.Save(ctx, Key, all); err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

// Broadcast sends a copy of n to every known user.
func (s *Service) Broadcast(ctx context.Context, n model.Notification) ([]model.Notification, error) {
	if s.recipients == nil {
		return nil, errors.New("no recipient directory configured")
	}
	users, err := s.recipients.List(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sent := make([]model.Notification, 0, len(users))
	for _, u := range users {
		c := n
		c.ID = ""
		c.UserID = u.ID
		c, err = s.prepare(c)
		if err != nil {
			return nil, err
		}
		sent = append(sent, c)
	}
	all = append(all, sent...)
	if err := s.slots.Save(ctx, Key, all); err != nil {
		return nil, err
	}
	s.logger.Info().Str("type", n.Type).Int("recipients", len(sent)).Msg("notification broadcast")
	return sent, nil
}

func (s *Service) prepare(n model.Notification) (model.Notification, error) {
	if strings.TrimSpace(n.Title) == "" {
		return n, model.Invalid("title", "title is required")
	}
	now := s.now()
	if n.ID == "" {
		n.ID = storage.NewID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.Priority == "" {
		n.Priority = model.PriorityMedium
	}
	if n.Type == "" {
		n.Type = "system_update"
	}
	n.Status = model.NotificationDelivered
	if n.ScheduledFor != nil && n.ScheduledFor.After(now) {
		n.Status = model.NotificationScheduled
	}
	n.Read = false
	return n, nil
}

// List returns the user's visible notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, f Filter) ([]model.Notification, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := []model.Notification{}
	for _, n := range all {
		if n.UserID != userID || !n.VisibleAt(now) {
			continue
		}
		if !matchesTab(n, f.Tab) {
			continue
		}
		if f.Priority != "" && n.Priority != f.Priority {
			continue
		}
		if f.Status != "" && n.Status != f.Status {
			continue
		}
		if query != "" && !matchesQuery(n, query) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func matchesTab(n model.Notification, tab string) bool {
	switch tab {
	case "", "all":
		return true
	case "unread":
		return !n.Read
	default:
		return Category(n.Type) == tab
	}
}

func matchesQuery(n model.Notification, q string) bool {
	for _, field := range []string{n.Title, n.Message, n.SourceName} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// UnreadCount counts visible unread notifications.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	list, err := s.List(ctx, userID, Filter{Tab: "unread"})
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// MarkRead marks one of the user's notifications read.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == id && all[i].UserID == userID {
			if all[i].Read {
				return nil
			}
			all[i].Read = true
			return s.slots.Save(ctx, Key, all)
		}
	}
	return ErrNotFound
}

// MarkAllRead marks every visible notification of the user read and returns
// how many changed.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	changed := 0
	for i := range all {
		if all[i].UserID == userID && !all[i].Read && all[i].VisibleAt(now) {
			all[i].Read = true
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, s.slots.Save(ctx, Key, all)
}

// ClearAll removes every visible notification of the user.
func (s *Service) ClearAll(ctx context.Context, userID string) (int, error) {
	now := s.now()
	return s.remove(ctx, func(n model.Notification) bool {
		return n.UserID == userID && n.VisibleAt(now)
	})
}

// ClearRead removes the user's read notifications.
func (s *Service) ClearRead(ctx context.Context, userID string) (int, error) {
	return s.remove(ctx, func(n model.Notification) bool {
		return n.UserID == userID && n.Read
	})
}

func (s *Service) remove(ctx context.Context, drop func(model.Notification) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	kept := all[:0]
	for _, n := range all {
		if !drop(n) {
			kept = append(kept, n)
		}
	}
	removed := len(all) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.slots.Save(ctx, Key, kept)
}

func (s *Service) load(ctx context.Context) ([]model.Notification, error) {
	return storage.LoadList[model.Notification](ctx, s.slots, Key)
}

// Category groups a notification type by its prefix.
func Category(notificationType string) string {
	prefix, _, ok := strings.Cut(notificationType, "_")
	if !ok {
		return "other"
	}
	switch prefix {
	case "invoice", "website", "owner", "meeting", "task", "user", "system":
		return prefix
	}
	return "other"
}
