package api

import (
	"net/http"

	"ascend/internal/access"
	"ascend/internal/metrics"
	"ascend/internal/model"
	"ascend/internal/tasks"
)

// GET /api/tasks?assigned_to=&project_id=&status=
func (s *HTTPServer) handleListTasks(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("tasks_list")
	q := r.URL.Query()
	list, err := s.svc.Tasks.List(r.Context(), tasks.Filter{
		AssignedTo: q.Get("assigned_to"),
		ProjectID:  q.Get("project_id"),
		Status:     q.Get("status"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": list})
}

// POST /api/tasks
func (s *HTTPServer) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("tasks_create")
	var in tasks.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := s.svc.Tasks.Create(r.Context(), actingUser(r).ID, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// taskForChange loads a task the acting user may change: its creator, its
// assignee or the owner.
func (s *HTTPServer) taskForChange(r *http.Request) (model.Task, error) {
	t, err := s.svc.Tasks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return model.Task{}, err
	}
	u := actingUser(r)
	if u.IsOwner() || t.CreatedBy == u.ID || t.AssignedTo == u.ID {
		return t, nil
	}
	return model.Task{}, &access.AccessDeniedError{Reason: "you cannot change this task"}
}

// PUT /api/tasks/{id}
func (s *HTTPServer) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("tasks_update")
	t, err := s.taskForChange(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var in tasks.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err = s.svc.Tasks.Update(r.Context(), actingUser(r).ID, t.ID, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type statusRequest struct {
	Status string `json:"status"`
}

// PATCH /api/tasks/{id}/status
func (s *HTTPServer) handleSetTaskStatus(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("tasks_status")
	t, err := s.taskForChange(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err = s.svc.Tasks.SetStatus(r.Context(), t.ID, req.Status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DELETE /api/tasks/{id}
func (s *HTTPServer) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("tasks_delete")
	t, err := s.taskForChange(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.svc.Tasks.Delete(r.Context(), t.ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
