// Package api exposes the dashboard services as a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ascend/internal/access"
	"ascend/internal/availability"
	"ascend/internal/calendar"
	"ascend/internal/contracts"
	"ascend/internal/dashboard"
	"ascend/internal/directory"
	"ascend/internal/events"
	"ascend/internal/notifications"
	"ascend/internal/storage"
	"ascend/internal/tasks"

	"github.com/rs/zerolog"
)

// Services are the dependencies behind the handlers.
type Services struct {
	Slots         *storage.Slots
	Availability  *availability.Service
	Calendar      *calendar.Service
	Tasks         *tasks.Service
	Contracts     *contracts.Service
	Notifications *notifications.Service
	Directory     *directory.Service
	Access        *access.Service
	Dashboard     *dashboard.Service
	Bus           *events.Bus
}

// Options configure request admission.
type Options struct {
	Port           int
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
}

// HTTPServer serves the /api routes.
type HTTPServer struct {
	svc     Services
	opts    Options
	limiter *RateLimiter
	logger  zerolog.Logger
	server  *http.Server
}

func NewHTTPServer(svc Services, opts Options, logger *zerolog.Logger) *HTTPServer {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "api").Logger()
	}
	s := &HTTPServer{
		svc:     svc,
		opts:    opts,
		limiter: NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		logger:  l,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.withRecover(s.withAPIKey(s.withRateLimit(s.withUser(mux)))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/availability/{userID}", s.handleGetAvailability)
	mux.HandleFunc("PUT /api/availability/{userID}/dates", s.handleSetAvailabilityDate)
	mux.HandleFunc("POST /api/availability/{userID}/bulk", s.handleBulkAvailability)
	mux.HandleFunc("GET /api/availability/{userID}/days/{date}", s.handleAvailabilityForDate)
	mux.HandleFunc("PUT /api/availability/{userID}/defaults", s.handleSetAvailabilityDefaults)

	mux.HandleFunc("GET /api/events", s.handleListEvents)
	mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("PATCH /api/tasks/{id}/status", s.handleSetTaskStatus)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)

	mux.HandleFunc("GET /api/contracts", s.handleListContracts)
	mux.HandleFunc("POST /api/contracts", s.handleSaveContract)
	mux.HandleFunc("PUT /api/contracts/{id}", s.handleSaveContract)
	mux.HandleFunc("DELETE /api/contracts/{id}", s.handleDeleteContract)

	mux.HandleFunc("GET /api/notifications", s.handleListNotifications)
	mux.HandleFunc("GET /api/notifications/unread-count", s.handleUnreadCount)
	mux.HandleFunc("POST /api/notifications/{id}/read", s.handleMarkRead)
	mux.HandleFunc("POST /api/notifications/read-all", s.handleMarkAllRead)
	mux.HandleFunc("DELETE /api/notifications", s.handleClearNotifications)
	mux.HandleFunc("POST /api/notifications/send", s.handleSendNotification)

	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)
	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("PATCH /api/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /api/users/{id}", s.handleDeleteUser)

	mux.HandleFunc("GET /api/roles", s.handleListRoles)
	mux.HandleFunc("PUT /api/roles/{id}", s.handleSaveRole)
	mux.HandleFunc("DELETE /api/roles/{id}", s.handleDeleteRole)

	mux.HandleFunc("GET /api/clients", s.handleListClients)
	mux.HandleFunc("GET /api/clients/{id}/members", s.handleClientMembers)

	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("GET /api/changes", s.handleChanges)
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	go s.limiter.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Str("addr", s.server.Addr).Msg("API server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
