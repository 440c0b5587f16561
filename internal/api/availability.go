package api

import (
	"net/http"

	"ascend/internal/access"
	"ascend/internal/availability"
	"ascend/internal/metrics"
	"ascend/internal/model"
)

// requireSelfOrOwner allows users to change their own records; the owner may
// change anyone's.
func requireSelfOrOwner(u model.User, userID string) error {
	if u.ID == userID || u.IsOwner() {
		return nil
	}
	return &access.AccessDeniedError{Reason: "you can only change your own availability"}
}

// GET /api/availability/{userID}
func (s *HTTPServer) handleGetAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability_get")
	a, err := s.svc.Availability.Get(r.Context(), r.PathValue("userID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// PUT /api/availability/{userID}/dates
func (s *HTTPServer) handleSetAvailabilityDate(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability_set_date")
	userID := r.PathValue("userID")
	if err := requireSelfOrOwner(actingUser(r), userID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var in availability.DateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	a, err := s.svc.Availability.SetDate(r.Context(), userID, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// POST /api/availability/{userID}/bulk
func (s *HTTPServer) handleBulkAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability_bulk")
	userID := r.PathValue("userID")
	if err := requireSelfOrOwner(actingUser(r), userID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var req availability.BulkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		writeError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}
	a, err := s.svc.Availability.ApplyBulk(r.Context(), userID, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// GET /api/availability/{userID}/days/{date}
func (s *HTTPServer) handleAvailabilityForDate(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability_day")
	d, err := s.svc.Availability.ForDate(r.Context(), r.PathValue("userID"), r.PathValue("date"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type defaultsRequest struct {
	DefaultStartTime string `json:"default_start_time"`
	DefaultEndTime   string `json:"default_end_time"`
}

// PUT /api/availability/{userID}/defaults
func (s *HTTPServer) handleSetAvailabilityDefaults(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability_defaults")
	userID := r.PathValue("userID")
	if err := requireSelfOrOwner(actingUser(r), userID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var req defaultsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := s.svc.Availability.SetDefaults(r.Context(), userID, req.DefaultStartTime, req.DefaultEndTime)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
