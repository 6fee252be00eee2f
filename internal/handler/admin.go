package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/eventhub/internal/service"
)

// AdminHandler serves the admin dashboard aggregates.
type AdminHandler struct {
	stats  *service.StatsService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(stats *service.StatsService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{stats: stats, logger: logger}
}

// HandleStats returns platform-wide counters and revenue. Unlike the other
// endpoints the counters are the whole payload, so they are not wrapped in
// an envelope key.
//
// HTTP: GET /api/admin/stats  (admin required)
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Overview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
