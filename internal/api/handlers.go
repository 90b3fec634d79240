package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkgsmith/pkgsmith/internal/logging"
	"github.com/pkgsmith/pkgsmith/internal/lookup"
	"github.com/pkgsmith/pkgsmith/internal/output"
)

// defaultHistoryLimit bounds /history responses when no limit is given.
const defaultHistoryLimit = 50

// handleHealth reports service liveness for monitoring and load balancers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// handleHistory returns recorded lookups: for one package when ecosystem
// and package_name are given, or for a time window via since (RFC 3339).
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	q := r.URL.Query()

	if sinceParam := q.Get("since"); sinceParam != "" {
		since, err := time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			output.WriteJSONError(w, fmt.Errorf("invalid since parameter: %w", err))
			return
		}

		entries, err := s.orchestrator.HistorySince(r.Context(), since)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			output.WriteJSONError(w, err)
			return
		}
		output.WriteJSONData(w, entries)
		return
	}

	ecosystem := q.Get("ecosystem")
	packageName := q.Get("package_name")
	if ecosystem == "" || packageName == "" {
		w.WriteHeader(http.StatusBadRequest)
		output.WriteJSONError(w, errors.New("ecosystem and package_name are required when since is not given"))
		return
	}

	limit := defaultHistoryLimit
	if limitParam := q.Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			output.WriteJSONError(w, fmt.Errorf("invalid limit parameter %q", limitParam))
			return
		}
		limit = parsed
	}

	entries, err := s.orchestrator.History(r.Context(), lookup.Ecosystem(ecosystem), packageName, limit)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		output.WriteJSONError(w, err)
		return
	}
	output.WriteJSONData(w, entries)
}

// handleEvents provides Server-Sent Events for real-time lookup progress.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Prevent proxy buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}
	flusher.Flush()

	// Disable write deadline for this long-lived SSE connection.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		logging.DebugContext(r.Context(), "Could not reset SSE write deadline: %v", err)
	}

	eventChan, unsubscribe := s.eventBus.Subscribe("")
	defer unsubscribe()

	logging.DebugContext(r.Context(), "SSE client connected")

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	// Heartbeat keeps the connection alive through proxies.
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			logging.DebugContext(r.Context(), "SSE client disconnected")
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}

			eventData, err := json.Marshal(event.Payload)
			if err != nil {
				logging.Warn("Failed to marshal event payload: %v", err)
				continue
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, eventData)
			flusher.Flush()
			heartbeat.Reset(15 * time.Second)
		}
	}
}
