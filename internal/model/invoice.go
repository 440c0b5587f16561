package model

const (
	InvoicePending = "pending"
	InvoicePaid    = "paid"
)

type Invoice struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ClientID      string  `json:"client_id"`
	ClientName    string  `json:"client_name"`
	Date          string  `json:"date"`
	Total         float64 `json:"total"`
	Status        string  `json:"status"`
	CreatedBy     string  `json:"created_by"`
	CreatedByName string  `json:"created_by_name"`
}
