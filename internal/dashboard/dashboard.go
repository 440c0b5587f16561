// Package dashboard computes the summary figures shown on the home page.
package dashboard

import (
	"context"

	"ascend/internal/model"
	"ascend/internal/storage"
)

// InvoicesKey is the slot holding every invoice.
const InvoicesKey = "invoices"

type Stats struct {
	PendingInvoices []model.Invoice `json:"pending_invoices"`
	PendingCount    int             `json:"pending_count"`
	PendingTotal    float64         `json:"pending_total"`
	InvoiceCount    int             `json:"invoice_count"`
	ClientCount     int             `json:"client_count"`
}

type Service struct {
	slots *storage.Slots
}

func NewService(slots *storage.Slots) *Service {
	return &Service{slots: slots}
}

// Stats summarizes the invoices user may see: every invoice for the owner,
// otherwise only those the user created.
func (s *Service) Stats(ctx context.Context, user model.User) (Stats, error) {
	invoices, err := storage.LoadList[model.Invoice](ctx, s.slots, InvoicesKey)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{PendingInvoices: []model.Invoice{}}
	clients := make(map[string]struct{})
	for _, inv := range invoices {
		if !user.IsOwner() && inv.CreatedBy != user.ID {
			continue
		}
		st.InvoiceCount++
		clients[inv.ClientID] = struct{}{}
		if inv.Status == model.InvoicePending {
			st.PendingInvoices = append(st.PendingInvoices, inv)
			st.PendingTotal += inv.Total
		}
	}
	st.PendingCount = len(st.PendingInvoices)
	st.ClientCount = len(clients)
	return st, nil
}
