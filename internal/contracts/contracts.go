// Package contracts stores client contracts.
package contracts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ascend/internal/dates"
	"ascend/internal/model"
	"ascend/internal/storage"

	"github.com/rs/zerolog"
)

// Key is the slot holding every contract.
const Key = "contracts"

var ErrNotFound = errors.New("contract not found")

// ClientLookup resolves client names.
type ClientLookup interface {
	Client(ctx context.Context, id string) (model.Client, bool, error)
}

// ContractInput creates a contract, or updates one when ID is set.
type ContractInput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ClientID    string `json:"client_id"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Value       string `json:"value"`
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to"`
	FileName    string `json:"file_name"`
}

type Service struct {
	slots   *storage.Slots
	clients ClientLookup
	now     func() time.Time
	logger  zerolog.Logger
	mu      sync.Mutex
}

func NewService(slots *storage.Slots, clients ClientLookup, logger *zerolog.Logger) *Service {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "contracts").Logger()
	}
	return &Service{slots: slots, clients: clients, now: time.Now, logger: l}
}

// Save creates or updates a contract.
func (s *Service) Save(ctx context.Context, actorID string, in ContractInput) (model.Contract, error) {
	if err := validate(in); err != nil {
		return model.Contract{}, err
	}

	c := model.Contract{
		ID:          in.ID,
		Name:        strings.TrimSpace(in.Name),
		ClientID:    in.ClientID,
		Status:      in.Status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Value:       strings.TrimSpace(in.Value),
		Description: in.Description,
		AssignedTo:  in.AssignedTo,
		FileName:    in.FileName,
	}
	if c.Name == "" {
		c.Name = "Untitled Contract"
	}
	if c.Status == "" {
		c.Status = model.ContractDraft
	}
	if c.Value == "" {
		c.Value = "$0.00"
	}
	if c.ClientID != "" && s.clients != nil {
		client, ok, err := s.clients.Client(ctx, c.ClientID)
		if err != nil {
			return model.Contract{}, fmt.Errorf("resolve client: %w", err)
		}
		if ok {
			c.Client = client.Name
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return model.Contract{}, err
	}

	if c.ID == "" {
		c.ID = storage.NewID()
		c.CreatedBy = actorID
		c.CreatedAt = s.now().Format(time.RFC3339)
		all = append(all, c)
	} else {
		idx := indexOf(all, c.ID)
		if idx < 0 {
			return model.Contract{}, ErrNotFound
		}
		c.CreatedBy = all[idx].CreatedBy
		c.CreatedAt = all[idx].CreatedAt
		if c.FileName == "" {
			c.FileName = all[idx].FileName
		}
		all[idx] = c
	}

	if err := s.slots.Save(ctx, Key, all); err != nil {
		return model.Contract{}, err
	}
	s.logger.Info().Str("contract_id", c.ID).Str("status", c.Status).Msg("contract saved")
	return c, nil
}

// Delete removes contract id.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return ErrNotFound
	}
	all = append(all[:idx], all[idx+1:]...)
	return s.slots.Save(ctx, Key, all)
}

// List returns the contracts of clientID, or every contract for "".
func (s *Service) List(ctx context.Context, clientID string) ([]model.Contract, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if clientID == "" {
		return all, nil
	}
	out := []model.Contract{}
	for _, c := range all {
		if c.ClientID == clientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) load(ctx context.Context) ([]model.Contract, error) {
	return storage.LoadList[model.Contract](ctx, s.slots, Key)
}

func validate(in ContractInput) error {
	switch in.Status {
	case "", model.ContractActive, model.ContractPending, model.ContractExpired, model.ContractDraft:
	default:
		return model.Invalid("status", fmt.Sprintf("unknown status %q", in.Status))
	}

	var start, end time.Time
	var err error
	if in.StartDate != "" {
		if start, err = dates.ParseDay(in.StartDate, time.UTC); err != nil {
			return model.Invalid("start_date", err.Error())
		}
	}
	if in.EndDate != "" {
		if end, err = dates.ParseDay(in.EndDate, time.UTC); err != nil {
			return model.Invalid("end_date", err.Error())
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return model.Invalid("end_date", "End date cannot be earlier than start date")
	}
	return nil
}

func indexOf(all []model.Contract, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
