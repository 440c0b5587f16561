package notifications

import (
	"context"
	"sync"
	"time"

	"ascend/internal/metrics"
	"ascend/internal/model"

	"github.com/rs/zerolog"
)

// SchedulerConfig holds configuration for the notification scheduler.
type SchedulerConfig struct {
	// CheckInterval is how often due notifications are delivered.
	CheckInterval time.Duration
	// RetentionDays is how long read notifications are kept. Zero keeps them.
	RetentionDays int
}

// DefaultSchedulerConfig returns the default scheduler configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		CheckInterval: time.Minute,
		RetentionDays: 30,
	}
}

// Scheduler flips scheduled notifications to delivered once they are due and
// purges old read notifications.
type Scheduler struct {
	config  SchedulerConfig
	service *Service
	logger  zerolog.Logger
	mu      sync.Mutex
	running bool
}

func NewScheduler(config SchedulerConfig, service *Service, logger *zerolog.Logger) *Scheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "notification-scheduler").Logger()
	}
	return &Scheduler{config: config, service: service, logger: l}
}

// Start runs the scheduler loop until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.logger.Info().Dur("interval", s.config.CheckInterval).Int("retention_days", s.config.RetentionDays).Msg("notification scheduler started")

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("notification scheduler stopped")
			return
		case <-ticker.C:
			s.RunNow(ctx)
		}
	}
}

// RunNow delivers due notifications and applies retention once.
func (s *Scheduler) RunNow(ctx context.Context) (delivered, purged int) {
	delivered, err := s.service.DeliverDue(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to deliver scheduled notifications")
	} else if delivered > 0 {
		metrics.AddNotificationsProcessed("delivered", delivered)
		s.logger.Info().Int("delivered", delivered).Msg("scheduled notifications delivered")
	}

	if s.config.RetentionDays <= 0 {
		return delivered, 0
	}
	cutoff := s.service.now().AddDate(0, 0, -s.config.RetentionDays)
	purged, err = s.service.PurgeRead(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to purge read notifications")
	} else if purged > 0 {
		metrics.AddNotificationsProcessed("purged", purged)
		s.logger.Info().Int("purged", purged).Msg("old read notifications purged")
	}
	return delivered, purged
}

// IsRunning returns whether the scheduler loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// DeliverDue marks every scheduled notification whose time has come as
// delivered and returns how many changed.
func (s *Service) DeliverDue(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	changed := 0
	for i := range all {
		if all[i].Status == model.NotificationScheduled && all[i].VisibleAt(now) {
			all[i].Status = model.NotificationDelivered
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, s.slots.Save(ctx, Key, all)
}

// PurgeRead removes read notifications created before cutoff.
func (s *Service) PurgeRead(ctx context.Context, cutoff time.Time) (int, error) {
	return s.remove(ctx, func(n model.Notification) bool {
		return n.Read && n.CreatedAt.Before(cutoff)
	})
}
