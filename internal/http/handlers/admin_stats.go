package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/clinic-cds/internal/observability/metrics"
	"github.com/wolfman30/clinic-cds/pkg/logging"
)

// AdminStatsHandler summarises decision-support counters for the admin UI.
type AdminStatsHandler struct {
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

// NewAdminStatsHandler creates a handler reading from gatherer, or the default
// registry when nil.
func NewAdminStatsHandler(gatherer prometheus.Gatherer, logger *logging.Logger) *AdminStatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &AdminStatsHandler{gatherer: gatherer, logger: logger}
}

// GetStats returns counters since process start.
// GET /admin/cds/stats
func (h *AdminStatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	snap, err := metrics.TakeSnapshot(h.gatherer)
	if err != nil {
		h.logger.Error("failed to gather cds metrics", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
