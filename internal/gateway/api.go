package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pipedeck/pipedeck/internal/monitor"
	"github.com/pipedeck/pipedeck/internal/provider"
)

// buildHandler wires all REST and SSE routes onto a new ServeMux.
// Uses Go 1.22+ method-prefixed patterns ("GET /path", "POST /path").
func buildHandler(gw *Gateway) http.Handler {
	mux := http.NewServeMux()

	// Health / status
	mux.HandleFunc("GET /health", gw.handleHealth)
	mux.HandleFunc("GET /api/status", gw.handleStatus)

	// Pipelines
	mux.HandleFunc("GET /api/pipelines", gw.handleListPipelines)
	mux.HandleFunc("GET /api/pipelines/{id}/logs", gw.handlePipelineLogs)
	mux.HandleFunc("POST /api/pipelines/{id}/trigger", gw.handleTriggerPipeline)
	mux.HandleFunc("POST /api/pipelines/{id}/cancel", gw.handleCancelPipeline)
	mux.HandleFunc("POST /api/pipelines/{id}/rerun", gw.handleRerunPipeline)
	mux.HandleFunc("POST /api/refresh", gw.handleRefresh)

	// Repositories / metrics / fixtures
	mux.HandleFunc("GET /api/repositories", gw.handleListRepositories)
	mux.HandleFunc("GET /api/metrics", gw.handleCurrentMetrics)
	mux.HandleFunc("GET /api/metrics/history", gw.handleMetricsHistory)
	mux.HandleFunc("GET /api/tests", gw.handleTestResults)
	mux.HandleFunc("GET /api/environments", gw.handleEnvironments)

	// Server-Sent Events stream
	mux.HandleFunc("GET /events", gw.handleEvents)

	return mux
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// mutationStatus maps a service mutation error to an HTTP status: cache
// misses are 404, provider HTTP failures keep their upstream status, and
// anything else is a 502.
func mutationStatus(err error) int {
	if errors.Is(err, monitor.ErrWorkflowNotFound) || errors.Is(err, monitor.ErrRunNotFound) {
		return http.StatusNotFound
	}
	if code := provider.HTTPStatus(err); code != 0 {
		return code
	}
	return http.StatusBadGateway
}

// --- handlers ---

func (gw *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (gw *Gateway) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gw.currentStatus())
}

func (gw *Gateway) handleListPipelines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gw.svc.Pipelines())
}

func (gw *Gateway) handlePipelineLogs(w http.ResponseWriter, r *http.Request) {
	logs := gw.svc.PipelineLogs(r.Context(), r.PathValue("id"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(logs))
}

func (gw *Gateway) handleTriggerPipeline(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := gw.svc.TriggerPipeline(r.Context(), id); err != nil {
		writeError(w, mutationStatus(err), err.Error())
		return
	}
	// The cached status is not mutated: the caller applies any optimistic
	// "running" transition itself and the next refresh settles the truth.
	writeJSON(w, http.StatusOK, map[string]string{"result": "triggered", "id": id})
}

func (gw *Gateway) handleCancelPipeline(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := gw.svc.CancelPipeline(r.Context(), id); err != nil {
		writeError(w, mutationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "cancelled", "id": id})
}

func (gw *Gateway) handleRerunPipeline(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := gw.svc.RerunPipeline(r.Context(), id); err != nil {
		writeError(w, mutationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "rerun", "id": id})
}

func (gw *Gateway) handleRefresh(w http.ResponseWriter, r *http.Request) {
	// Detached from the request context: the refresh outlives the 202 reply.
	go gw.refresh(context.Background())
	writeJSON(w, http.StatusAccepted, map[string]string{"result": "refresh started"})
}

func (gw *Gateway) handleListRepositories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gw.svc.Repositories())
}

func (gw *Gateway) handleCurrentMetrics(w http.ResponseWriter, r *http.Request) {
	m := gw.svc.CurrentMetrics()
	if m == nil {
		writeError(w, http.StatusNotFound, "no metrics sampled yet")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (gw *Gateway) handleMetricsHistory(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		hours = n
	}
	writeJSON(w, http.StatusOK, gw.svc.MetricsHistory(hours))
}

func (gw *Gateway) handleTestResults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gw.svc.TestResults())
}

func (gw *Gateway) handleEnvironments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gw.svc.DeploymentEnvironments())
}

// handleEvents streams SSE frames until the client disconnects.
func (gw *Gateway) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := gw.broadcaster.subscribe()
	defer gw.broadcaster.unsubscribe(ch)

	// Greet the new subscriber with the current status immediately.
	gw.broadcaster.send(SSEEvent{Type: "status.update", Payload: gw.currentStatus()})

	for {
		select {
		case <-r.Context().Done():
			return
		case frame := <-ch:
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
