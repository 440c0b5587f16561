package model

import "time"

const (
	NotificationDelivered = "delivered"
	NotificationScheduled = "scheduled"
)

type Notification struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Type         string     `json:"type"` // "task_assigned", "meeting_scheduled", ...
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	Read         bool       `json:"read"`
	CreatedAt    time.Time  `json:"created_at"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	Link         string     `json:"link,omitempty"`
	SourceName   string     `json:"source_name,omitempty"`
}

// VisibleAt reports whether a scheduled notification has become due.
func (n *Notification) VisibleAt(now time.Time) bool {
	if n.Status != NotificationScheduled || n.ScheduledFor == nil {
		return true
	}
	return !n.ScheduledFor.After(now)
}
