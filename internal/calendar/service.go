package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ascend/internal/dates"
	"ascend/internal/metrics"
	"ascend/internal/model"
	"ascend/internal/storage"

	"github.com/rs/zerolog"
)

// Key is the slot holding every calendar event.
const Key = "calendar-events"

var ErrEventNotFound = errors.New("event not found")

// Sender delivers in-app notifications.
type Sender interface {
	Send(ctx context.Context, n model.Notification) (model.Notification, error)
}

// EventInput describes a new event.
type EventInput struct {
	Title       string   `json:"title"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Type        string   `json:"type"`
	Status      string   `json:"status"`
	AssignedTo  []string `json:"assigned_to"`
	Attendees   []string `json:"attendees"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Color       string   `json:"color"`
}

type Service struct {
	slots  *storage.Slots
	sender Sender
	loc    *time.Location
	logger zerolog.Logger
	mu     sync.Mutex
}

func NewService(slots *storage.Slots, sender Sender, loc *time.Location, logger *zerolog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "calendar").Logger()
	}
	return &Service{slots: slots, sender: sender, loc: loc, logger: l}
}

// Create validates and stores a new event, then tells every participant
// other than the creator about it.
func (s *Service) Create(ctx context.Context, actorID string, in EventInput) (model.CalendarEvent, error) {
	if actorID == "" {
		return model.CalendarEvent{}, model.Invalid("created_by", "creator is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return model.CalendarEvent{}, model.Invalid("title", "title is required")
	}
	start, err := dates.ParseTimestamp(in.Start, s.loc)
	if err != nil {
		return model.CalendarEvent{}, model.Invalid("start", err.Error())
	}
	end, err := dates.ParseTimestamp(in.End, s.loc)
	if err != nil {
		return model.CalendarEvent{}, model.Invalid("end", err.Error())
	}
	if end.Before(start) {
		return model.CalendarEvent{}, model.Invalid("end", "end cannot be earlier than start")
	}

	e := model.CalendarEvent{
		ID:          storage.NewID(),
		Title:       strings.TrimSpace(in.Title),
		Start:       start.Format(time.RFC3339),
		End:         end.Format(time.RFC3339),
		Type:        in.Type,
		Status:      in.Status,
		CreatedBy:   actorID,
		AssignedTo:  compact(in.AssignedTo),
		Attendees:   compact(in.Attendees),
		Description: in.Description,
		Location:    in.Location,
		Color:       in.Color,
	}
	if len(e.Participants()) == 0 {
		return model.CalendarEvent{}, model.Invalid("assigned_to", "at least one participant is required")
	}
	if e.Type == "" {
		e.Type = model.EventTypeMeeting
	}
	if e.Status == "" {
		e.Status = model.EventStatusConfirmed
	}
	if e.Color == "" {
		e.Color = model.DefaultEventColor
	}

	s.mu.Lock()
	events, err := s.load(ctx)
	if err == nil {
		events = append(events, e)
		err = s.slots.Save(ctx, Key, events)
	}
	s.mu.Unlock()
	if err != nil {
		return model.CalendarEvent{}, err
	}

	metrics.IncCalendarEvent("create")
	s.notifyParticipants(ctx, e, start)
	return e, nil
}

func (s *Service) notifyParticipants(ctx context.Context, e model.CalendarEvent, start time.Time) {
	if s.sender == nil {
		return
	}
	for _, uid := range e.Participants() {
		if uid == e.CreatedBy {
			continue
		}
		_, err := s.sender.Send(ctx, model.Notification{
			UserID:   uid,
			Type:     "meeting_scheduled",
			Title:    "New Event Scheduled",
			Message:  fmt.Sprintf("You have been added to %q on %s.", e.Title, start.In(s.loc).Format("Jan 2, 2006 15:04")),
			Priority: model.PriorityMedium,
			Link:     "/calendar",
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("event_id", e.ID).Str("user_id", uid).Msg("failed to notify participant")
		}
	}
}

// Delete removes an event by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i, e := range events {
		if e.ID == id {
			events = append(events[:i], events[i+1:]...)
			if err := s.slots.Save(ctx, Key, events); err != nil {
				return err
			}
			metrics.IncCalendarEvent("delete")
			return nil
		}
	}
	return ErrEventNotFound
}

// Get returns event id.
func (s *Service) Get(ctx context.Context, id string) (model.CalendarEvent, error) {
	events, err := s.load(ctx)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	for _, e := range events {
		if e.ID == id {
			return e, nil
		}
	}
	return model.CalendarEvent{}, ErrEventNotFound
}

// List returns every event visible to userID.
func (s *Service) List(ctx context.Context, userID string) ([]model.CalendarEvent, error) {
	events, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.CalendarEvent{}
	for _, e := range events {
		if VisibleTo(e, userID) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ForDay returns the events visible to userID on a "2006-01-02" day.
func (s *Service) ForDay(ctx context.Context, userID, day string) ([]model.CalendarEvent, error) {
	d, err := dates.ParseDay(day, s.loc)
	if err != nil {
		return nil, model.Invalid("date", err.Error())
	}
	events, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return EventsForDay(events, userID, d), nil
}

// Upcoming returns up to limit visible events starting at or after from,
// soonest first. A non-positive limit returns all of them.
func (s *Service) Upcoming(ctx context.Context, userID string, from time.Time, limit int) ([]model.CalendarEvent, error) {
	events, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	type timed struct {
		at time.Time
		e  model.CalendarEvent
	}
	var list []timed
	for _, e := range events {
		at, err := dates.ParseTimestamp(e.Start, s.loc)
		if err != nil || at.Before(from) {
			continue
		}
		list = append(list, timed{at: at, e: e})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].at.Before(list[j].at) })

	out := []model.CalendarEvent{}
	for _, t := range list {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, t.e)
	}
	return out, nil
}

func (s *Service) load(ctx context.Context) ([]model.CalendarEvent, error) {
	return storage.LoadList[model.CalendarEvent](ctx, s.slots, Key)
}

func compact(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
