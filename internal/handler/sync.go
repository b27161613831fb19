package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/infinai/infinai/internal/service"
)

// SyncResponse is returned by a successful sync.
type SyncResponse struct {
	Success     bool `json:"success"`
	SyncedUsers int  `json:"syncedUsers"`
}

// AdminHandler serves the bearer-protected admin endpoints.
type AdminHandler struct {
	sync   *service.UserSyncService
	stats  *service.StatsService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(sync *service.UserSyncService, stats *service.StatsService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{sync: sync, stats: stats, logger: logger}
}

// SyncUsers handles POST /api/admin/sync-users.
func (h *AdminHandler) SyncUsers(w http.ResponseWriter, r *http.Request) {
	result, err := h.sync.Sync(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSyncInProgress):
			writeError(w, http.StatusConflict, "Sync already in progress")
		default:
			// The service already logged the run failure.
			writeError(w, http.StatusInternalServerError, "Failed to sync users")
		}
		return
	}

	writeJSON(w, http.StatusOK, SyncResponse{Success: true, SyncedUsers: result.Synced})
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		h.logger.Error("stats_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
