package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"medhold-data/internal/service"
)

// PersonnelHandler serves the personnel CRUD and detail routes.
type PersonnelHandler struct {
	registry service.RegistryService
	logger   *zap.Logger
}

func NewPersonnelHandler(registry service.RegistryService, logger *zap.Logger) *PersonnelHandler {
	return &PersonnelHandler{registry: registry, logger: logger}
}

// Collection handles /api/v1/personnel.
func (h *PersonnelHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Item handles /api/v1/personnel/{id}.
func (h *PersonnelHandler) Item(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/personnel/")
	id, ok := pathID(rest)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.detail(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *PersonnelHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.registry.ListPersonnel(r.Context(), q.Get("search"), q.Get("unit"), q.Get("status"))
	if err != nil {
		h.logger.Error("ListPersonnel failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

func (h *PersonnelHandler) detail(w http.ResponseWriter, r *http.Request, id int) {
	res, err := h.registry.GetPersonnelDetail(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

func (h *PersonnelHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreatePersonnelRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	created, err := h.registry.CreatePersonnel(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(created))
}

func (h *PersonnelHandler) update(w http.ResponseWriter, r *http.Request, id int) {
	var req service.UpdatePersonnelRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	updated, err := h.registry.UpdatePersonnel(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(updated))
}

func (h *PersonnelHandler) delete(w http.ResponseWriter, r *http.Request, id int) {
	if err := h.registry.DeletePersonnel(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": id}))
}
