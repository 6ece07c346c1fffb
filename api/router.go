package api

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	// Liveness
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/api/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/wake", h.Wake).Methods("GET")

	// Data management endpoints
	r.HandleFunc("/api/ingest", h.IngestData).Methods("POST")
	r.HandleFunc("/api/mart/refresh", h.RefreshMart).Methods("POST")
	r.HandleFunc("/api/mart/stats", h.GetMartStats).Methods("GET")
	r.HandleFunc("/api/cleanup", h.CleanupData).Methods("POST")

	// Filter options
	r.HandleFunc("/api/filter-options", h.GetFilterOptions).Methods("GET")

	// Lot results
	resultsRouter := r.PathPrefix("/api/cotton-results").Subrouter()
	resultsRouter.HandleFunc("", h.GetCottonResults).Methods("GET")
	resultsRouter.HandleFunc("/filters", h.GetCottonResultFilters).Methods("GET")
	resultsRouter.HandleFunc("/threshold", h.GetThresholdStats).Methods("GET")
	resultsRouter.HandleFunc("/{id}", h.UpdateCottonResult).Methods("PATCH")
	resultsRouter.HandleFunc("/{id}", h.DeleteCottonResult).Methods("DELETE")

	// Mixing summary
	summaryRouter := r.PathPrefix("/api/cotton-mixing-summary").Subrouter()
	summaryRouter.HandleFunc("", h.SummarizeMixing).Methods("POST")
	summaryRouter.HandleFunc("/stream", h.StreamMixingSummary).Methods("GET")
	summaryRouter.HandleFunc("/cancel", h.CancelStream).Methods("POST")
	summaryRouter.HandleFunc("/jobs/{jobId}", h.GetReportJob).Methods("GET")

	// Mixing issues
	issuesRouter := r.PathPrefix("/api/mixing-issues").Subrouter()
	issuesRouter.HandleFunc("", h.GetMixingIssues).Methods("GET")
	issuesRouter.HandleFunc("", h.CreateMixingIssues).Methods("POST")
	issuesRouter.HandleFunc("/chart", h.DeleteMixingChart).Methods("DELETE")
	issuesRouter.HandleFunc("/missing", h.GetMissingMixingLots).Methods("GET")
	issuesRouter.HandleFunc("/{id}", h.UpdateMixingIssue).Methods("PATCH")
	issuesRouter.HandleFunc("/{id}", h.DeleteMixingIssue).Methods("DELETE")

	// Mixing codes
	r.HandleFunc("/api/mixing-codes", h.GetMixingCodes).Methods("GET")
	r.HandleFunc("/api/mixing-codes", h.UpdateMixingCode).Methods("PUT")

	// Pending lots and uploads
	r.HandleFunc("/api/pending-lots", h.GetPendingLots).Methods("GET")
	r.HandleFunc("/api/templates/{kind}", h.DownloadTemplate).Methods("GET")
	r.HandleFunc("/api/uploads/{kind}", h.UploadWorkbook).Methods("POST")

	// Export
	r.HandleFunc("/api/export/xlsx", h.ExportExcel).Methods("POST")
	r.HandleFunc("/api/export/pdf", h.ExportPDF).Methods("POST")

	// Trend charts
	r.HandleFunc("/api/trend/chart", h.GetMetricTrendChart).Methods("GET")
	r.HandleFunc("/api/trend/series", h.GetMetricTrendSeries).Methods("GET")

	// Config Management
	r.HandleFunc("/api/config", h.GetConfig).Methods("GET")
	r.HandleFunc("/api/config", h.UpdateConfig).Methods("PUT")
	r.HandleFunc("/api/config/columns", h.GetColumnLayouts).Methods("GET")
	r.HandleFunc("/api/config/columns", h.UpdateColumnLayouts).Methods("PUT")

	return r
}

// CORSMiddleware adds CORS headers
func CORSMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		)(next)
	}
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)

			// Log request
			println(
				time.Now().Format("2006-01-02 15:04:05"),
				r.Method,
				r.RequestURI,
				wrapped.statusCode,
				duration.String(),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
