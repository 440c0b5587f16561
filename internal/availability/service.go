package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ascend/internal/dates"
	"ascend/internal/metrics"
	"ascend/internal/model"
	"ascend/internal/storage"

	"github.com/rs/zerolog"
)

// Key returns the slot holding a user's availability.
func Key(userID string) string {
	return "availability:" + userID
}

// DateInput sets one day.
type DateInput struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// BulkRequest sets every selected weekday in a date range.
type BulkRequest struct {
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Weekdays  map[string]bool `json:"weekdays"`
	Available bool            `json:"available"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
}

// Service reads and updates availability records. Every call reads the slot
// fresh; mutations within one process are serialized.
type Service struct {
	slots        *storage.Slots
	defaultStart string
	defaultEnd   string
	loc          *time.Location
	logger       zerolog.Logger
	mu           sync.Mutex
}

func NewService(slots *storage.Slots, defaultStart, defaultEnd string, loc *time.Location, logger *zerolog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "availability").Logger()
	}
	return &Service{
		slots:        slots,
		defaultStart: defaultStart,
		defaultEnd:   defaultEnd,
		loc:          loc,
		logger:       l,
	}
}

// Get returns the user's record, or a fresh one with default hours when none
// has been saved yet.
func (s *Service) Get(ctx context.Context, userID string) (model.Availability, error) {
	if userID == "" {
		return model.Availability{}, model.Invalid("user_id", "user id is required")
	}
	a, ok, err := storage.LoadRecord[model.Availability](ctx, s.slots, Key(userID))
	if err != nil {
		return model.Availability{}, err
	}
	if !ok {
		a = model.Availability{}
	}
	a.UserID = userID
	if a.DefaultStartTime == "" {
		a.DefaultStartTime = s.defaultStart
	}
	if a.DefaultEndTime == "" {
		a.DefaultEndTime = s.defaultEnd
	}
	if a.Dates == nil {
		a.Dates = []model.DateAvailability{}
	}
	if a.UnavailableSlots == nil {
		a.UnavailableSlots = []model.TimeSlot{}
	}
	return a, nil
}

// SetDate overrides a single day.
func (s *Service) SetDate(ctx context.Context, userID string, in DateInput) (model.Availability, error) {
	day, err := dates.ParseDay(in.Date, s.loc)
	if err != nil {
		return model.Availability{}, model.Invalid("date", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.Get(ctx, userID)
	if err != nil {
		return model.Availability{}, err
	}
	startTime, endTime, err := clockPair(in.StartTime, in.EndTime, a)
	if err != nil {
		return model.Availability{}, err
	}

	a.Dates = UpsertDate(a.Dates, model.DateAvailability{
		Date:      day.Format(dates.DayLayout),
		Available: in.Available,
		StartTime: startTime,
		EndTime:   endTime,
	})
	if err := s.save(ctx, a, "date"); err != nil {
		return model.Availability{}, err
	}
	return a, nil
}

// MaxBulkDays bounds the inclusive range of one bulk update.
const MaxBulkDays = 366

// ApplyBulk overrides every selected weekday between the request dates,
// both inclusive.
func (s *Service) ApplyBulk(ctx context.Context, userID string, req BulkRequest) (model.Availability, error) {
	start, err := dates.ParseDay(req.StartDate, s.loc)
	if err != nil {
		return model.Availability{}, model.Invalid("start_date", err.Error())
	}
	end, err := dates.ParseDay(req.EndDate, s.loc)
	if err != nil {
		return model.Availability{}, model.Invalid("end_date", err.Error())
	}
	if end.Before(start) {
		return model.Availability{}, model.Invalid("end_date", "End date cannot be earlier than start date")
	}
	if end.After(start.AddDate(0, 0, MaxBulkDays-1)) {
		return model.Availability{}, model.Invalid("end_date", fmt.Sprintf("Date range cannot exceed %d days", MaxBulkDays))
	}
	mask, err := MaskFromFlags(req.Weekdays)
	if err != nil {
		return model.Availability{}, model.Invalid("weekdays", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.Get(ctx, userID)
	if err != nil {
		return model.Availability{}, err
	}
	startTime, endTime, err := clockPair(req.StartTime, req.EndTime, a)
	if err != nil {
		return model.Availability{}, err
	}

	a.Dates = ApplyBulkRange(a.Dates, start, end, mask, req.Available, startTime, endTime)
	if err := s.save(ctx, a, "bulk"); err != nil {
		return model.Availability{}, err
	}
	s.logger.Debug().
		Str("user_id", userID).
		Str("from", req.StartDate).
		Str("to", req.EndDate).
		Strs("weekdays", mask.Names()).
		Msg("bulk availability applied")
	return a, nil
}

// SetDefaults changes the default working hours.
func (s *Service) SetDefaults(ctx context.Context, userID, startTime, endTime string) (model.Availability, error) {
	if !dates.ValidClock(startTime) {
		return model.Availability{}, model.Invalid("default_start_time", fmt.Sprintf("invalid time %q; expected HH:mm", startTime))
	}
	if !dates.ValidClock(endTime) {
		return model.Availability{}, model.Invalid("default_end_time", fmt.Sprintf("invalid time %q; expected HH:mm", endTime))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.Get(ctx, userID)
	if err != nil {
		return model.Availability{}, err
	}
	a.DefaultStartTime = startTime
	a.DefaultEndTime = endTime
	if err := s.save(ctx, a, "defaults"); err != nil {
		return model.Availability{}, err
	}
	return a, nil
}

// ForDate returns the effective availability of one day.
func (s *Service) ForDate(ctx context.Context, userID, day string) (model.DateAvailability, error) {
	d, err := dates.ParseDay(day, s.loc)
	if err != nil {
		return model.DateAvailability{}, model.Invalid("date", err.Error())
	}
	a, err := s.Get(ctx, userID)
	if err != nil {
		return model.DateAvailability{}, err
	}
	return Resolve(a, d), nil
}

func (s *Service) save(ctx context.Context, a model.Availability, kind string) error {
	if err := s.slots.Save(ctx, Key(a.UserID), a); err != nil {
		return err
	}
	metrics.IncAvailabilityUpdate(kind)
	return nil
}

// clockPair fills empty times from the record defaults and checks the format.
func clockPair(startTime, endTime string, a model.Availability) (string, string, error) {
	if startTime == "" {
		startTime = a.DefaultStartTime
	}
	if endTime == "" {
		endTime = a.DefaultEndTime
	}
	if !dates.ValidClock(startTime) {
		return "", "", model.Invalid("start_time", fmt.Sprintf("invalid time %q; expected HH:mm", startTime))
	}
	if !dates.ValidClock(endTime) {
		return "", "", model.Invalid("end_time", fmt.Sprintf("invalid time %q; expected HH:mm", endTime))
	}
	return startTime, endTime, nil
}
