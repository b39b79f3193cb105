package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"medhold-data/internal/service"
)

// ProblemHandler serves the open-problems list and the resolve action.
type ProblemHandler struct {
	registry service.RegistryService
	logger   *zap.Logger
}

func NewProblemHandler(registry service.RegistryService, logger *zap.Logger) *ProblemHandler {
	return &ProblemHandler{registry: registry, logger: logger}
}

// Problems handles /api/v1/problems and /api/v1/problems/{id}/resolve.
func (h *ProblemHandler) Problems(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/problems")
	rest = strings.TrimPrefix(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		problems, err := h.registry.ListProblems(r.Context())
		if err != nil {
			h.logger.Error("ListProblems failed", zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(problems))
	case strings.HasSuffix(rest, "/resolve") && r.Method == http.MethodPut:
		id, ok := pathID(strings.TrimSuffix(rest, "/resolve"))
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		resolved, err := h.registry.ResolveProblem(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(resolved))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
