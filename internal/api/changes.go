package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ascend/internal/events"
	"ascend/internal/metrics"
)

const changeBuffer = 64

// GET /api/changes?pattern=calendar*
//
// Streams slot changes as server-sent events. When the client falls behind,
// pending changes are replaced by a single "resync" event.
func (s *HTTPServer) handleChanges(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("changes")
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "*"
	}

	changes := make(chan events.Change, changeBuffer)
	overflow := make(chan struct{}, 1)
	unsubscribe := s.svc.Bus.OnExternalChange(pattern, func(c events.Change) {
		select {
		case changes <- c:
		default:
			select {
			case overflow <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": subscribed\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": ping\n\n")
		case <-overflow:
			for len(changes) > 0 {
				<-changes
			}
			fmt.Fprint(w, "event: resync\ndata: {}\n\n")
		case c := <-changes:
			data, err := json.Marshal(c)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
		}
		flusher.Flush()
	}
}
