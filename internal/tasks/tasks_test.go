package tasks

import (
	"context"
	"testing"
	"time"

	"ascend/internal/model"
	"ascend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, n model.Notification) (model.Notification, error) {
	args := m.Called(ctx, n)
	return n, args.Error(0)
}

func newTestService(t *testing.T, sender Sender) *Service {
	t.Helper()
	svc := NewService(storage.NewSlots(storage.NewMemoryStore(), nil), sender, nil)
	svc.now = func() time.Time { return time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_CreateNotifiesAssignee(t *testing.T) {
	ctx := context.Background()
	sender := new(mockSender)
	sender.On("Send", ctx, mock.MatchedBy(func(n model.Notification) bool {
		return n.UserID == "2" && n.Title == "New Task Assigned" &&
			n.Message == "You have been assigned a new task: Edit reel" && n.Type == "task_assigned"
	})).Return(nil).Once()

	svc := newTestService(t, sender)

	task, err := svc.Create(ctx, "1", TaskInput{Title: "Edit reel", AssignedTo: "2"})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusTodo, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, "1", task.CreatedBy)
	assert.Equal(t, "2025-05-05T09:00:00Z", task.CreatedAt)

	sender.AssertExpectations(t)
}

func TestService_SelfAssignedIsSilent(t *testing.T) {
	sender := new(mockSender)
	svc := newTestService(t, sender)

	_, err := svc.Create(context.Background(), "1", TaskInput{Title: "Note", AssignedTo: "1"})
	require.NoError(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestService_Validation(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	for name, in := range map[string]TaskInput{
		"no title":     {AssignedTo: "2"},
		"no assignee":  {Title: "x"},
		"bad status":   {Title: "x", AssignedTo: "2", Status: "done"},
		"bad priority": {Title: "x", AssignedTo: "2", Priority: "someday"},
		"bad due date": {Title: "x", AssignedTo: "2", DueDate: "tomorrow"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, "1", in)
			assert.True(t, model.IsValidation(err))
		})
	}

	list, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_UpdateAndStatus(t *testing.T) {
	ctx := context.Background()
	sender := new(mockSender)
	sender.On("Send", ctx, mock.Anything).Return(nil)
	svc := newTestService(t, sender)

	task, err := svc.Create(ctx, "1", TaskInput{Title: "Edit reel", AssignedTo: "2"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "1", task.ID, TaskInput{Title: "Edit reel v2", AssignedTo: "2", Priority: model.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, "Edit reel v2", updated.Title)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)
	sender.AssertCalled(t, "Send", ctx, mock.MatchedBy(func(n model.Notification) bool {
		return n.Title == "Task Updated" && n.Message == "Task updated: Edit reel v2"
	}))

	done, err := svc.SetStatus(ctx, task.ID, model.TaskStatusCompleted)
	require.NoError(t, err)
	assert.NotEmpty(t, done.CompletedAt)

	reopened, err := svc.SetStatus(ctx, task.ID, model.TaskStatusInProgress)
	require.NoError(t, err)
	assert.Empty(t, reopened.CompletedAt)

	_, err = svc.SetStatus(ctx, "missing", model.TaskStatusTodo)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, "1", "missing", TaskInput{Title: "x", AssignedTo: "2"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	a, _ := svc.Create(ctx, "1", TaskInput{Title: "a", AssignedTo: "2", ProjectID: "p1"})
	_, _ = svc.Create(ctx, "1", TaskInput{Title: "b", AssignedTo: "3", ProjectID: "p1", Status: model.TaskStatusBlocked})
	_, _ = svc.Create(ctx, "1", TaskInput{Title: "c", AssignedTo: "2", ProjectID: "p2"})

	list, err := svc.List(ctx, Filter{AssignedTo: "2"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, _ = svc.List(ctx, Filter{ProjectID: "p1", Status: model.TaskStatusBlocked})
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Title)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), ErrNotFound)
	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
