package handler

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/infinai/infinai/internal/metrics"
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

	writeLabeled(w, "infinai_subscriptions_total", "status", snap.Subscriptions)

	writeLabeled(w, "infinai_user_syncs_total", "status", snap.Syncs)
	writeMetric(w, "infinai_user_sync_duration_seconds_count %d\n", snap.SyncDurationCount)
	writeMetric(w, "infinai_user_sync_duration_seconds_sum %.6f\n", float64(snap.SyncDurationTotalNs)/1e9)
	writeMetric(w, "infinai_synced_users_total %d\n", snap.SyncedUsers)

	writeLabeled(w, "infinai_page_views_total", "page", snap.PageViews)
	writeLabeled(w, "infinai_splash_total", "mode", snap.Splash)
}

// writeLabeled writes one line per label value in sorted order.
func writeLabeled(w http.ResponseWriter, name, label string, values map[string]uint64) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
