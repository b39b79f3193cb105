package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"medhold-data/internal/service"
)

// StatsHandler serves the dashboard aggregate and the grouped reports.
type StatsHandler struct {
	stats  service.StatsService
	logger *zap.Logger
}

func NewStatsHandler(stats service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

// Stats handles GET /api/v1/stats.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	stats, err := h.stats.GetStats(r.Context())
	if err != nil {
		h.logger.Error("GetStats failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(stats))
}

// Reports handles GET /api/v1/reports.
func (h *StatsHandler) Reports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	reports, err := h.stats.GetReports(r.Context())
	if err != nil {
		h.logger.Error("GetReports failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(reports))
}
