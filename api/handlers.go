package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"millstat/config"
	"millstat/database"
	"millstat/etl"
	"millstat/filter"
	"millstat/jobs"
	"millstat/mart"
	"millstat/query"
	"millstat/report"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db          *database.DB
	repo        *database.Repository
	cfg         *config.Config
	martBuilder *mart.MartBuilder
	pool        *jobs.WorkerPool
	runner      *query.Runner
}

// NewHandler creates a new handler instance
func NewHandler(db *database.DB, repo *database.Repository, cfg *config.Config, martBuilder *mart.MartBuilder, pool *jobs.WorkerPool) *Handler {
	timeout := time.Duration(cfg.StreamTimeoutMinutes) * time.Minute
	return &Handler{
		db:          db,
		repo:        repo,
		cfg:         cfg,
		martBuilder: martBuilder,
		pool:        pool,
		runner:      query.NewRunner(timeout),
	}
}

// HealthCheck returns API health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]int64)

	if err := h.db.Analytics.Ping(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "analytics database health check failed")
		return
	}
	if err := h.db.App.Ping(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "app database health check failed")
		return
	}

	tables := []struct {
		name string
		db   *sql.DB
	}{
		{"lot_results", h.db.Analytics},
		{"mixing_issues", h.db.Analytics},
		{"pending_lots", h.db.Analytics},
		{"lot_stats", h.db.Analytics},
		{"report_jobs", h.db.App},
		{"upload_logs", h.db.App},
	}

	for _, t := range tables {
		var count int64
		err := t.db.QueryRow("SELECT COUNT(*) FROM " + t.name).Scan(&count)
		if err != nil {
			// Table might not exist yet
			stats[t.name] = 0
		} else {
			stats[t.name] = count
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"stats":  stats,
	})
}

// Wake is a lightweight ping used by the frontend to spin the service up
func (h *Handler) Wake(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "awake"})
}

// parseListParam reads a multi-select query parameter. The frontend sends
// JSON-encoded arrays (unit=["5","7"]); plain comma lists are accepted too.
func parseListParam(r *http.Request, name string) []string {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var values []string
		if err := json.Unmarshal([]byte(raw), &values); err == nil {
			return values
		}
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// firstParam returns the first non-empty value among the named parameters
func firstParam(q url.Values, names ...string) string {
	for _, name := range names {
		if v := q.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// scopeFromQuery builds a record scope from request query parameters
func scopeFromQuery(r *http.Request) database.RecordScope {
	q := r.URL.Query()
	scope := database.RecordScope{
		RangeMode:    q.Get("range_mode"),
		FromDate:     q.Get("from_date"),
		ToDate:       q.Get("to_date"),
		MixingNoFrom: firstParam(q, "mixing_no_from", "mixing_from"),
		MixingNoTo:   firstParam(q, "mixing_no_to", "mixing_to"),
		Units:        parseListParam(r, "unit"),
		Lines:        parseListParam(r, "line"),
		Cottons:      parseListParam(r, "cotton"),
		Mixings:      parseListParam(r, "mixing"),
	}
	if scope.RangeMode == "" {
		if scope.MixingNoFrom != "" || scope.MixingNoTo != "" {
			scope.RangeMode = string(filter.RangeByMixing)
		} else {
			scope.RangeMode = string(filter.RangeByDate)
		}
	}
	return scope
}

// stateFromScope mirrors a scope into a filter state for validation
func stateFromScope(scope database.RecordScope, rt report.ReportType) filter.State {
	return filter.State{
		RangeMode:    filter.RangeMode(scope.RangeMode),
		FromDate:     scope.FromDate,
		ToDate:       scope.ToDate,
		MixingNoFrom: scope.MixingNoFrom,
		MixingNoTo:   scope.MixingNoTo,
		Units:        scope.Units,
		Lines:        scope.Lines,
		Cottons:      scope.Cottons,
		Mixings:      scope.Mixings,
		ReportType:   rt,
	}
}

// collectRecords pages through the scoped mixing rows, reporting progress
// after each chunk. A nil progress callback skips reporting.
func (h *Handler) collectRecords(scope database.RecordScope, progress func(current, total int)) ([]report.Record, error) {
	total, err := h.repo.CountMixingRecords(scope)
	if err != nil {
		return nil, err
	}

	chunkSize := h.cfg.Report.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 500
	}

	records := make([]report.Record, 0, total)
	for offset := 0; offset < total; offset += chunkSize {
		chunk, err := h.repo.QueryMixingRecords(scope, chunkSize, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, chunk...)
		if progress != nil {
			progress(len(records), total)
		}
	}
	if progress != nil {
		progress(total, total)
	}
	return records, nil
}

// GetFilterOptions returns the distinct unit/line/cotton/mixing values
// within the current range filter, as {value,label} options.
func (h *Handler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	scope := scopeFromQuery(r)

	values, err := h.repo.FilterOptionValues(scope)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load filter options: %v", err))
		return
	}

	options := make(map[string][]filter.Option, len(values))
	for key, list := range values {
		filter.SortValues(list)
		options[key] = filter.Options(list)
	}
	respondJSON(w, http.StatusOK, options)
}

// GetCottonResultFilters returns option lists for the lot results view
func (h *Handler) GetCottonResultFilters(w http.ResponseWriter, r *http.Request) {
	values, err := h.repo.LotFilterOptions()
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load lot filters: %v", err))
		return
	}

	options := make(map[string][]filter.Option, len(values))
	for key, list := range values {
		filter.SortValues(list)
		options[key] = filter.Options(list)
	}
	respondJSON(w, http.StatusOK, options)
}

// resolveReportType accepts either wire spelling and falls back to the
// configured default, then Weekly.
func (h *Handler) resolveReportType(raw string) report.ReportType {
	if rt, ok := report.ParseReportType(raw); ok {
		return rt
	}
	if rt, ok := report.ParseReportType(h.cfg.Report.DefaultType); ok {
		return rt
	}
	return report.ReportWeekly
}

// SummarizeRequest is the body of a synchronous summary request
type SummarizeRequest struct {
	filter.State
}

// SummarizeMixing aggregates the scoped mixing rows into (period, variety)
// buckets synchronously. The streaming endpoint uses the same engine.
func (h *Handler) SummarizeMixing(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rt := h.resolveReportType(string(req.ReportType))

	state := req.State
	state.ReportType = rt
	if msgs := state.Validate(); len(msgs) > 0 {
		respondError(w, http.StatusBadRequest, msgs[0])
		return
	}

	scope := database.RecordScope{
		RangeMode:    string(state.RangeMode),
		FromDate:     state.FromDate,
		ToDate:       state.ToDate,
		MixingNoFrom: state.MixingNoFrom,
		MixingNoTo:   state.MixingNoTo,
		Units:        state.Units,
		Lines:        state.Lines,
		Cottons:      state.Cottons,
		Mixings:      state.Mixings,
	}

	records, err := h.collectRecords(scope, nil)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("summary query failed: %v", err))
		return
	}

	if rt == report.ReportDaily {
		report.SortSummary(records)
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"report_type": rt,
			"records":     records,
			"count":       len(records),
		})
		return
	}

	rows := report.Aggregate(records, rt)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"report_type": rt,
		"rows":        rows,
		"count":       len(rows),
	})
}

// GetThresholdStats counts, per variety, scoped records at or above the
// metric threshold.
func (h *Handler) GetThresholdStats(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = h.cfg.Report.ThresholdMetric
	}
	if _, ok := report.MetricDefinition(metric); !ok {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown metric: %s", metric))
		return
	}

	threshold := h.cfg.Report.ThresholdValue
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid threshold value")
			return
		}
		threshold = parsed
	}

	scope := scopeFromQuery(r)
	records, err := h.collectRecords(scope, nil)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("threshold query failed: %v", err))
		return
	}

	rows := report.ThresholdStats(records, metric, threshold)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"metric":    metric,
		"threshold": threshold,
		"rows":      rows,
		"count":     len(rows),
	})
}

// IngestData pulls lot results and mixing issues from the source system
func (h *Handler) IngestData(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	startTime, err := time.Parse(time.RFC3339Nano, req.StartTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid start_time format")
		return
	}
	endTime, err := time.Parse(time.RFC3339Nano, req.EndTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid end_time format")
		return
	}

	ingestor := etl.NewDataIngestor(h.cfg, h.repo)
	counts, err := ingestor.IngestData(startTime, endTime)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("ingestion failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "success",
		"records_inserted": counts,
	})
}

// RefreshMart rebuilds the lot_stats rollup table
func (h *Handler) RefreshMart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	stats, err := h.martBuilder.Refresh()
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("mart refresh failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"duration_ms": time.Since(start).Milliseconds(),
		"stats":       stats,
	})
}

// GetMartStats returns row counts and coverage of the lot_stats rollup
func (h *Handler) GetMartStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.martBuilder.GetMartStats()
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("mart stats failed: %v", err))
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// CleanupData prunes aged job and upload rows
func (h *Handler) CleanupData(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.CleanupOldData(h.cfg.DataRetentionDays); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("cleanup failed: %v", err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// ConfigUpdateRequest represents the body for config updates
type ConfigUpdateRequest struct {
	Report struct {
		ChunkSize   int    `json:"chunk_size"`
		DefaultType string `json:"default_type"`
	} `json:"report"`
	Export struct {
		Title     string `json:"title"`
		SheetName string `json:"sheet_name"`
	} `json:"export"`
}

// GetConfig returns the current configuration
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cfg)
}

// UpdateConfig updates configuration settings
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.cfg.UpdateReportSettings(req.Report.ChunkSize, req.Report.DefaultType); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update report settings")
		return
	}
	if err := h.cfg.UpdateExportSettings(req.Export.Title, req.Export.SheetName); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update export settings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// GetColumnLayouts returns the persisted per-view column layouts
func (h *Handler) GetColumnLayouts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cfg.Columns.GetAll())
}

// UpdateColumnLayouts replaces the persisted per-view column layouts
func (h *Handler) UpdateColumnLayouts(w http.ResponseWriter, r *http.Request) {
	var layouts map[string]config.ColumnLayout
	if err := json.NewDecoder(r.Body).Decode(&layouts); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.cfg.Columns.Save(layouts); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save column layouts")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
