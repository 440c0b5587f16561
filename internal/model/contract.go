package model

const (
	ContractActive  = "Active"
	ContractPending = "Pending"
	ContractExpired = "Expired"
	ContractDraft   = "Draft"
)

type Contract struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Client      string `json:"client"`
	ClientID    string `json:"client_id"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date"` // "2025-05-01"
	EndDate     string `json:"end_date"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at"`
}
