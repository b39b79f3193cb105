package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medhold-data/internal/repository"
	"medhold-data/internal/service"
	"medhold-data/internal/store"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	logger := zap.NewNop()
	st := repository.NewMemoryStore()

	registry := service.NewRegistryService(st, logger)
	stats := service.NewStatsService(st, store.NewMemoryKV(), time.Second, logger)
	export := service.NewExportService(st, logger)
	importer := service.NewImportService(st, logger)

	r := NewRouter(logger)
	r.RegisterPersonnelRoutes(NewPersonnelHandler(registry, logger))
	r.RegisterMovementRoutes(NewMovementHandler(registry, logger))
	r.RegisterAbsenceRoutes(NewAbsenceHandler(registry, logger))
	r.RegisterProblemRoutes(NewProblemHandler(registry, logger))
	r.RegisterStatsRoutes(NewStatsHandler(stats, logger))
	r.RegisterExportRoutes(NewExportHandler(export, importer, logger))
	return r
}

func doJSON(t *testing.T, r *Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, ResultSuccess, envelope.Code, "message: %s", envelope.Message)
	var out map[string]any
	if len(envelope.Result) > 0 && envelope.Result[0] == '{' {
		require.NoError(t, json.Unmarshal(envelope.Result, &out))
	}
	return out
}

func TestPersonnelLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	// create
	rec := doJSON(t, r, http.MethodPost, "/api/v1/personnel", map[string]any{
		"personal_number": "ВС-0001",
		"full_name":       "Иванов Иван Иванович",
		"unit":            "1 рота",
		"arrival_date":    "2026-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeResult(t, rec)
	id := int(created["id"].(float64))
	assert.Equal(t, "в_пвд", created["current_status"])

	// duplicate personal number
	rec = doJSON(t, r, http.MethodPost, "/api/v1/personnel", map[string]any{
		"personal_number": "ВС-0001",
		"full_name":       "Петров",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// medical visit with a fitness category
	rec = doJSON(t, r, http.MethodPost, "/api/v1/medical-visits", map[string]any{
		"personnel_id":     id,
		"visit_date":       "2026-03-05",
		"doctor_specialty": "Терапевт",
		"diagnosis":        "ОРВИ",
		"fitness_category": "Б",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// detail shows the visit and the updated category
	rec = doJSON(t, r, http.MethodGet, "/api/v1/personnel/"+strconv.Itoa(id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeResult(t, rec)
	personnel := detail["personnel"].(map[string]any)
	assert.Equal(t, "Б", personnel["fitness_category"])
	assert.Len(t, detail["medical_visits"].([]any), 1)

	// leave movement relocates the record
	rec = doJSON(t, r, http.MethodPost, "/api/v1/movements", map[string]any{
		"personnel_id":  id,
		"movement_type": "отпуск",
		"start_date":    "2026-03-06",
		"duration_days": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/personnel/"+strconv.Itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/leaves", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var leavesEnv struct {
		Result []map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leavesEnv))
	require.Len(t, leavesEnv.Result, 1)
	leaveID := int(leavesEnv.Result[0]["id"].(float64))
	assert.Equal(t, "2026-03-16", leavesEnv.Result[0]["end_date"].(string)[:10])

	// resolving the leave brings the person back
	rec = doJSON(t, r, http.MethodDelete, "/api/v1/leaves/"+strconv.Itoa(leaveID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	returned := decodeResult(t, rec)
	assert.Equal(t, float64(id), returned["id"])
	assert.Equal(t, "в_строю", returned["current_status"])
	assert.Equal(t, "Вернулся из отпуска", returned["diagnosis"])
}

func TestValidationAndNotFoundMapping(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/personnel", map[string]any{
		"full_name": "Безномерной",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/personnel/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/movements", map[string]any{
		"personnel_id":  999,
		"movement_type": "убыл",
		"start_date":    "2026-03-01",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/api/v1/hospitalizations/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	for _, name := range []string{"ВС-0001", "ВС-0002"} {
		rec := doJSON(t, r, http.MethodPost, "/api/v1/personnel", map[string]any{
			"personal_number": name,
			"full_name":       "Боец " + name,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, r, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeResult(t, rec)
	assert.Equal(t, float64(2), stats["total"])
	assert.Equal(t, float64(2), stats["v_pvd"])

	rec = doJSON(t, r, http.MethodGet, "/api/v1/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestExportDownloadOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/personnel", map[string]any{
		"personal_number": "ВС-0001",
		"full_name":       "Иванов Иван Иванович",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=personnel_")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, rec.Body.String(), "Иванов Иван Иванович")

	rec = doJSON(t, r, http.MethodGet, "/api/v1/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/import", map[string]any{"file": "не base64!!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/import", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/personnel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/personnel", strings.NewReader(""))
	req.Header.Set("X-Request-Id", "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}
