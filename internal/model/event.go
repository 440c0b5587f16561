package model

const (
	EventTypeMeeting  = "meeting"
	EventTypeDeadline = "deadline"
	EventTypeShoot    = "shoot"

	EventStatusConfirmed = "confirmed"
	EventStatusTentative = "tentative"
	EventStatusCancelled = "cancelled"

	DefaultEventColor = "#3b82f6"
)

type CalendarEvent struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Start       string   `json:"start"` // RFC 3339 timestamp
	End         string   `json:"end"`
	Type        string   `json:"type"`
	Status      string   `json:"status"`
	CreatedBy   string   `json:"created_by"`
	AssignedTo  []string `json:"assigned_to"`
	Attendees   []string `json:"attendees,omitempty"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Color       string   `json:"color,omitempty"`
}

// Participants returns assignees and attendees without duplicates, in order.
func (e *CalendarEvent) Participants() []string {
	seen := make(map[string]bool, len(e.AssignedTo)+len(e.Attendees))
	out := make([]string, 0, len(e.AssignedTo)+len(e.Attendees))
	for _, list := range [][]string{e.AssignedTo, e.Attendees} {
		for _, id := range list {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
