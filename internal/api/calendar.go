package api

import (
	"net/http"
	"strconv"
	"time"

	"ascend/internal/access"
	"ascend/internal/calendar"
	"ascend/internal/metrics"
	"ascend/internal/model"
)

// GET /api/events?date=YYYY-MM-DD | ?upcoming=N
func (s *HTTPServer) handleListEvents(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("events_list")
	u := actingUser(r)
	q := r.URL.Query()

	var (
		list []model.CalendarEvent
		err  error
	)
	switch {
	case q.Get("date") != "":
		list, err = s.svc.Calendar.ForDay(r.Context(), u.ID, q.Get("date"))
	case q.Get("upcoming") != "":
		limit, convErr := strconv.Atoi(q.Get("upcoming"))
		if convErr != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "upcoming must be a non-negative number")
			return
		}
		list, err = s.svc.Calendar.Upcoming(r.Context(), u.ID, time.Now(), limit)
	default:
		list, err = s.svc.Calendar.List(r.Context(), u.ID)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": list})
}

// POST /api/events
func (s *HTTPServer) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("events_create")
	var in calendar.EventInput
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := s.svc.Calendar.Create(r.Context(), actingUser(r).ID, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// DELETE /api/events/{id}
func (s *HTTPServer) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("events_delete")
	u := actingUser(r)
	e, err := s.svc.Calendar.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if e.CreatedBy != u.ID && !u.IsOwner() {
		s.writeServiceError(w, r, &access.AccessDeniedError{Reason: "only the creator can delete this event"})
		return
	}
	if err := s.svc.Calendar.Delete(r.Context(), e.ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
