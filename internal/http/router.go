package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Router uses the standard library http.ServeMux; every request gets a uuid
// request id and an access-log line.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	requestID := req.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set("X-Request-Id", requestID)

	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	r.mux.ServeHTTP(sw, req)

	r.logger.Info("http request",
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", sw.status),
		zap.Duration("duration", time.Since(start)))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// RegisterPersonnelRoutes registers the personnel CRUD and detail routes.
func (r *Router) RegisterPersonnelRoutes(h *PersonnelHandler) {
	r.Handle("/api/v1/personnel", h.Collection)
	r.Handle("/api/v1/personnel/", h.Item)
}

// RegisterMovementRoutes registers the movement and medical-visit routes.
func (r *Router) RegisterMovementRoutes(h *MovementHandler) {
	r.Handle("/api/v1/movements", h.Movements)
	r.Handle("/api/v1/medical-visits", h.MedicalVisits)
}

// RegisterAbsenceRoutes registers the leave and hospitalization routes.
func (r *Router) RegisterAbsenceRoutes(h *AbsenceHandler) {
	r.Handle("/api/v1/leaves", h.Leaves)
	r.Handle("/api/v1/leaves/", h.Leaves)
	r.Handle("/api/v1/hospitalizations", h.Hospitalizations)
	r.Handle("/api/v1/hospitalizations/", h.Hospitalizations)
}

// RegisterProblemRoutes registers the problem routes.
func (r *Router) RegisterProblemRoutes(h *ProblemHandler) {
	r.Handle("/api/v1/problems", h.Problems)
	r.Handle("/api/v1/problems/", h.Problems)
}

// RegisterStatsRoutes registers the dashboard aggregate routes.
func (r *Router) RegisterStatsRoutes(h *StatsHandler) {
	r.Handle("/api/v1/stats", h.Stats)
	r.Handle("/api/v1/reports", h.Reports)
}

// RegisterExportRoutes registers the file export and import routes.
func (r *Router) RegisterExportRoutes(h *ExportHandler) {
	r.Handle("/api/v1/export", h.Export)
	r.Handle("/api/v1/import", h.Import)
}
