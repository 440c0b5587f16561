package model

// DateAvailability overrides a user's default working hours for one calendar day.
type DateAvailability struct {
	Date      string `json:"date"`       // "2025-05-05"
	Available bool   `json:"available"`  // false marks a day off
	StartTime string `json:"start_time"` // "09:00"
	EndTime   string `json:"end_time"`   // "17:00"
}

// TimeSlot is a recorded exception inside a working day.
type TimeSlot struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason,omitempty"`
}

// Availability is the availability calendar of one user.
// Dates is kept sorted ascending and holds at most one entry per day.
type Availability struct {
	UserID           string             `json:"user_id"`
	Dates            []DateAvailability `json:"dates"`
	DefaultStartTime string             `json:"default_start_time"`
	DefaultEndTime   string             `json:"default_end_time"`
	UnavailableSlots []TimeSlot         `json:"unavailable_slots"`
}
