package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"medhold-data/internal/service"
)

// MovementHandler serves the movement and medical-visit append routes.
type MovementHandler struct {
	registry service.RegistryService
	logger   *zap.Logger
}

func NewMovementHandler(registry service.RegistryService, logger *zap.Logger) *MovementHandler {
	return &MovementHandler{registry: registry, logger: logger}
}

// Movements handles POST /api/v1/movements.
func (h *MovementHandler) Movements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req service.AddMovementRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	mv, err := h.registry.AddMovement(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(mv))
}

// MedicalVisits handles POST /api/v1/medical-visits.
func (h *MovementHandler) MedicalVisits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req service.AddMedicalVisitRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	visit, err := h.registry.AddMedicalVisit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(visit))
}
