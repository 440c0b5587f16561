// Package tasks tracks work items assigned to team members.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ascend/internal/dates"
	"ascend/internal/model"
	"ascend/internal/storage"

	"github.com/rs/zerolog"
)

// Key is the slot holding every task.
const Key = "tasks"

var ErrNotFound = errors.New("task not found")

// Sender delivers in-app notifications.
type Sender interface {
	Send(ctx context.Context, n model.Notification) (model.Notification, error)
}

// TaskInput is the editable part of a task.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	AssignedTo  string `json:"assigned_to"`
	ProjectID   string `json:"project_id"`
	DueDate     string `json:"due_date"`
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	AssignedTo string
	ProjectID  string
	Status     string
}

type Service struct {
	slots  *storage.Slots
	sender Sender
	now    func() time.Time
	logger zerolog.Logger
	mu     sync.Mutex
}

func NewService(slots *storage.Slots, sender Sender, logger *zerolog.Logger) *Service {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "tasks").Logger()
	}
	return &Service{slots: slots, sender: sender, now: time.Now, logger: l}
}

// Create stores a new task and notifies the assignee when it is not the
// creator.
func (s *Service) Create(ctx context.Context, actorID string, in TaskInput) (model.Task, error) {
	in, err := normalize(in)
	if err != nil {
		return model.Task{}, err
	}

	now := s.now()
	t := model.Task{
		ID:        storage.NewID(),
		CreatedBy: actorID,
		CreatedAt: now.Format(time.RFC3339),
	}
	apply(&t, in, now)

	s.mu.Lock()
	all, err := s.load(ctx)
	if err == nil {
		all = append(all, t)
		err = s.slots.Save(ctx, Key, all)
	}
	s.mu.Unlock()
	if err != nil {
		return model.Task{}, err
	}

	s.notifyAssignee(ctx, actorID, t, false)
	return t, nil
}

// Update replaces the editable fields of task id.
func (s *Service) Update(ctx context.Context, actorID, id string, in TaskInput) (model.Task, error) {
	in, err := normalize(in)
	if err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	all, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return model.Task{}, err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		s.mu.Unlock()
		return model.Task{}, ErrNotFound
	}
	apply(&all[idx], in, s.now())
	t := all[idx]
	err = s.slots.Save(ctx, Key, all)
	s.mu.Unlock()
	if err != nil {
		return model.Task{}, err
	}

	s.notifyAssignee(ctx, actorID, t, true)
	return t, nil
}

// SetStatus moves a task to status. Completing stamps CompletedAt; any other
// status clears it.
func (s *Service) SetStatus(ctx context.Context, id, status string) (model.Task, error) {
	if !model.ValidTaskStatus(status) {
		return model.Task{}, model.Invalid("status", fmt.Sprintf("unknown status %q", status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return model.Task{}, err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return model.Task{}, ErrNotFound
	}
	setStatus(&all[idx], status, s.now())
	if err := s.slots.Save(ctx, Key, all); err != nil {
		return model.Task{}, err
	}
	return all[idx], nil
}

// Delete removes task id.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return ErrNotFound
	}
	all = append(all[:idx], all[idx+1:]...)
	return s.slots.Save(ctx, Key, all)
}

// Get returns task id.
func (s *Service) Get(ctx context.Context, id string) (model.Task, error) {
	all, err := s.load(ctx)
	if err != nil {
		return model.Task{}, err
	}
	if idx := indexOf(all, id); idx >= 0 {
		return all[idx], nil
	}
	return model.Task{}, ErrNotFound
}

// List returns the tasks matching f in stored order.
func (s *Service) List(ctx context.Context, f Filter) ([]model.Task, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.Task{}
	for _, t := range all {
		if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
			continue
		}
		if f.ProjectID != "" && t.ProjectID != f.ProjectID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Service) notifyAssignee(ctx context.Context, actorID string, t model.Task, updated bool) {
	if s.sender == nil || t.AssignedTo == actorID {
		return
	}
	title, lead := "New Task Assigned", "You have been assigned a new task"
	if updated {
		title, lead = "Task Updated", "Task updated"
	}
	_, err := s.sender.Send(ctx, model.Notification{
		UserID:   t.AssignedTo,
		Type:     "task_assigned",
		Title:    title,
		Message:  fmt.Sprintf("%s: %s", lead, t.Title),
		Priority: t.Priority,
		Link:     "/tasks-projects",
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("task_id", t.ID).Str("user_id", t.AssignedTo).Msg("failed to notify assignee")
	}
}

func (s *Service) load(ctx context.Context) ([]model.Task, error) {
	return storage.LoadList[model.Task](ctx, s.slots, Key)
}

func normalize(in TaskInput) (TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.AssignedTo = strings.TrimSpace(in.AssignedTo)
	if in.Title == "" {
		return in, model.Invalid("title", "Please enter a title for the task")
	}
	if in.AssignedTo == "" {
		return in, model.Invalid("assigned_to", "Please select a team member to assign this task to")
	}
	if in.Status == "" {
		in.Status = model.TaskStatusTodo
	}
	if !model.ValidTaskStatus(in.Status) {
		return in, model.Invalid("status", fmt.Sprintf("unknown status %q", in.Status))
	}
	switch in.Priority {
	case "":
		in.Priority = model.PriorityMedium
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
	default:
		return in, model.Invalid("priority", fmt.Sprintf("unknown priority %q", in.Priority))
	}
	if in.DueDate != "" {
		if _, err := dates.ParseDay(in.DueDate, time.UTC); err != nil {
			return in, model.Invalid("due_date", err.Error())
		}
	}
	return in, nil
}

func apply(t *model.Task, in TaskInput, now time.Time) {
	t.Title = in.Title
	t.Description = in.Description
	t.Priority = in.Priority
	t.AssignedTo = in.AssignedTo
	t.ProjectID = in.ProjectID
	t.DueDate = in.DueDate
	setStatus(t, in.Status, now)
}

func setStatus(t *model.Task, status string, now time.Time) {
	if status == model.TaskStatusCompleted {
		if t.Status != model.TaskStatusCompleted || t.CompletedAt == "" {
			t.CompletedAt = now.Format(time.RFC3339)
		}
	} else {
		t.CompletedAt = ""
	}
	t.Status = status
}

func indexOf(all []model.Task, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
