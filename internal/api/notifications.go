package api

import (
	"net/http"
	"time"

	"ascend/internal/metrics"
	"ascend/internal/model"
	"ascend/internal/notifications"
)

// GET /api/notifications?tab=&priority=&status=&q=
func (s *HTTPServer) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("notifications_list")
	q := r.URL.Query()
	list, err := s.svc.Notifications.List(r.Context(), actingUser(r).ID, notifications.Filter{
		Tab:      q.Get("tab"),
		Priority: q.Get("priority"),
		Status:   q.Get("status"),
		Query:    q.Get("q"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

// GET /api/notifications/unread-count
func (s *HTTPServer) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("notifications_unread")
	n, err := s.svc.Notifications.UnreadCount(r.Context(), actingUser(r).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": n})
}

// POST /api/notifications/{id}/read
func (s *HTTPServer) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("notifications_read")
	if err := s.svc.Notifications.MarkRead(r.Context(), actingUser(r).ID, r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/notifications/read-all
func (s *HTTPServer) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("notifications_read_all")
	n, err := s.svc.Notifications.MarkAllRead(r.Context(), actingUser(r).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

// DELETE /api/notifications?read=true
func (s *HTTPServer) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("notifications_clear")
	userID := actingUser(r).ID
	var (
		n   int
		err error
	)
	if r.URL.Query().Get("read") == "true" {
		n, err = s.svc.Notifications.ClearRead(r.Context(), userID)
	} else {
		n, err = s.svc.Notifications.ClearAll(r.Context(), userID)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

// SendNotificationRequest is the body of POST /api/notifications/send.
// Without a user_id the notification is broadcast to every team member.
type SendNotificationRequest struct {
	UserID       string     `json:"user_id"`
	Type         string     `json:"type"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Priority     string     `json:"priority"`
	Link         string     `json:"link"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// POST /api/notifications/send
func (s *HTTPServer) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("notifications_send")
	u, err := s.svc.Access.RequireOwner(r.Context(), actingUser(r).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var req SendNotificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	n := model.Notification{
		UserID:       req.UserID,
		Type:         req.Type,
		Title:        req.Title,
		Message:      req.Message,
		Priority:     req.Priority,
		Link:         req.Link,
		ScheduledFor: req.ScheduledFor,
		SourceName:   u.Name,
	}
	if n.Type == "" {
		n.Type = "owner_announcement"
	}

	if req.UserID == "" {
		sent, err := s.svc.Notifications.Broadcast(r.Context(), n)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"notifications": sent})
		return
	}
	sent, err := s.svc.Notifications.Send(r.Context(), n)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sent)
}
