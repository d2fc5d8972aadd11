package handler

import (
	"fmt"
	"net/http"

	"github.com/taskpad/taskpad/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "taskpad_users_created_total %d\n", snap.UsersCreated)

	writeMetric(w, "taskpad_todos_created_total %d\n", snap.TodosCreated)
	writeMetric(w, "taskpad_todos_updated_total %d\n", snap.TodosUpdated)
	writeMetric(w, "taskpad_todos_deleted_total %d\n", snap.TodosDeleted)

	writeMetric(w, "taskpad_request_duration_seconds_count %d\n", snap.RequestDurationCount)
	writeMetric(w, "taskpad_request_duration_seconds_sum %.6f\n", float64(snap.RequestDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
