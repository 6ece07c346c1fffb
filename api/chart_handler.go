package api

import (
	"fmt"
	"net/http"

	"millstat/charting"
	"millstat/report"
)

// GetMetricTrendChart renders the per-variety trend of one metric over the
// scoped issue dates as a PNG.
func (h *Handler) GetMetricTrendChart(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "mic"
	}
	if _, ok := report.MetricDefinition(metric); !ok {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown metric: %s", metric))
		return
	}

	scope := scopeFromQuery(r)
	records, err := h.collectRecords(scope, nil)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("trend query failed: %v", err))
		return
	}

	series := charting.BuildMetricSeries(records, metric)
	if len(series) == 0 {
		respondError(w, http.StatusNotFound, "no data for the selected range")
		return
	}

	generator := charting.NewGenerator()
	png, err := generator.GenerateMetricTrend(metric, series)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("chart render failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

// GetMetricTrendSeries returns the trend series as JSON for the frontend
// chart component.
func (h *Handler) GetMetricTrendSeries(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "mic"
	}
	if _, ok := report.MetricDefinition(metric); !ok {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown metric: %s", metric))
		return
	}

	scope := scopeFromQuery(r)
	records, err := h.collectRecords(scope, nil)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("trend query failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"metric": metric,
		"series": charting.BuildMetricSeries(records, metric),
	})
}
