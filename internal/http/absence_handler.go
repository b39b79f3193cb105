package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"medhold-data/internal/service"
)

// AbsenceHandler serves the leave and hospitalization collections. DELETE on an
// absence row resolves it: the person returns to the active collection.
type AbsenceHandler struct {
	registry service.RegistryService
	logger   *zap.Logger
}

func NewAbsenceHandler(registry service.RegistryService, logger *zap.Logger) *AbsenceHandler {
	return &AbsenceHandler{registry: registry, logger: logger}
}

// Leaves handles /api/v1/leaves and /api/v1/leaves/{id}.
func (h *AbsenceHandler) Leaves(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/leaves")
	rest = strings.TrimPrefix(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		leaves, err := h.registry.ListLeaves(r.Context())
		if err != nil {
			h.logger.Error("ListLeaves failed", zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(leaves))
	case rest != "" && r.Method == http.MethodDelete:
		id, ok := pathID(rest)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		returned, err := h.registry.ResolveLeave(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(returned))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Hospitalizations handles /api/v1/hospitalizations and /api/v1/hospitalizations/{id}.
func (h *AbsenceHandler) Hospitalizations(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/hospitalizations")
	rest = strings.TrimPrefix(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		hosps, err := h.registry.ListHospitalizations(r.Context())
		if err != nil {
			h.logger.Error("ListHospitalizations failed", zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(hosps))
	case rest != "" && r.Method == http.MethodDelete:
		id, ok := pathID(rest)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		returned, err := h.registry.ResolveHospitalization(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(returned))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
