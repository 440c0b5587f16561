package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"ascend/internal/access"
	"ascend/internal/calendar"
	"ascend/internal/contracts"
	"ascend/internal/directory"
	"ascend/internal/model"
	"ascend/internal/notifications"
	"ascend/internal/tasks"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service errors onto HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
	case access.IsAccessDenied(err):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, directory.ErrOwnerDelete),
		errors.Is(err, directory.ErrSelfDelete),
		errors.Is(err, directory.ErrOwnerRole):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, calendar.ErrEventNotFound),
		errors.Is(err, tasks.ErrNotFound),
		errors.Is(err, contracts.ErrNotFound),
		errors.Is(err, notifications.ErrNotFound),
		errors.Is(err, directory.ErrNotFound),
		errors.Is(err, directory.ErrRoleNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
