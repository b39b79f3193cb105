package httpapi

import (
	"bytes"
	"encoding/base64"
	"net/http"

	"go.uber.org/zap"

	"medhold-data/internal/repository"
	"medhold-data/internal/service"
)

// ExportHandler serves the file export and workbook import routes.
type ExportHandler struct {
	export   service.ExportService
	importer service.ImportService
	logger   *zap.Logger
}

func NewExportHandler(export service.ExportService, importer service.ImportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{export: export, importer: importer, logger: logger}
}

// Export handles GET /api/v1/export?unit=&status=&format=csv|xlsx.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	filters := repository.PersonnelFilters{
		Search: q.Get("search"),
		Unit:   q.Get("unit"),
		Status: q.Get("status"),
	}

	format := q.Get("format")
	if format == "" {
		format = "xlsx"
	}

	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case "csv":
		contentType = "text/csv; charset=utf-8"
		data, err = h.export.ExportCSV(r.Context(), filters)
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		data, err = h.export.ExportXLSX(r.Context(), filters)
	default:
		writeJSON(w, http.StatusBadRequest, Fail("format must be csv or xlsx"))
		return
	}
	if err != nil {
		h.logger.Error("export failed", zap.String("format", format), zap.Error(err))
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+h.export.Filename(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /api/v1/import with a JSON body {"file": "<base64 xlsx>"}.
func (h *ExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		File string `json:"file"`
	}
	if err := readBodyJSON(r, 32<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	if req.File == "" {
		writeJSON(w, http.StatusBadRequest, Fail("file field is required"))
		return
	}
	raw, err := base64.StdEncoding.DecodeString(req.File)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("file is not valid base64"))
		return
	}

	result, err := h.importer.ImportWorkbook(r.Context(), bytes.NewReader(raw))
	if err != nil {
		h.logger.Error("import failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}
