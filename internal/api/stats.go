package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ascend/internal/metrics"
	"ascend/internal/storage"
)

// GET /api/stats
func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("stats")
	st, err := s.svc.Dashboard.Stats(r.Context(), actingUser(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GET /api/export
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")
	if _, err := s.svc.Access.RequireOwner(r.Context(), actingUser(r).ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := storage.ExportWorkbook(r.Context(), s.svc.Slots, &buf); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", storage.ExportFilename(time.Now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
