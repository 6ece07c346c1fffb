package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"millstat/database"
	"millstat/report"
)

var lotDateFields = map[string]bool{"issue_date": true}

var lotTextFields = map[string]bool{
	"lot_no": true, "party": true, "station": true, "variety": true, "c_grade": true,
}

// normalizeUpdateValue coerces an incoming field value to what the column
// expects. Text stays text, dates are reparsed to ISO, everything else must
// normalize to a number or null.
func normalizeUpdateValue(field string, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	if lotTextFields[field] {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field %s expects text", field)
		}
		return strings.TrimSpace(s), nil
	}
	if lotDateFields[field] {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field %s expects a date", field)
		}
		for _, layout := range []string{"2006-01-02", "02-01-2006", "02/01/2006"} {
			if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
				return t.Format("2006-01-02"), nil
			}
		}
		return nil, fmt.Errorf("field %s has an unrecognised date: %s", field, s)
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	n, ok := report.Normalize(value)
	if !ok {
		return nil, fmt.Errorf("field %s expects a number", field)
	}
	return n, nil
}

// GetCottonResults lists lot results under the request filters
func (h *Handler) GetCottonResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scope := database.LotScope{
		Lots:      parseListParam(r, "lot_no"),
		Varieties: parseListParam(r, "variety"),
		Stations:  parseListParam(r, "station"),
		Parties:   parseListParam(r, "party"),
		FromDate:  q.Get("from_date"),
		ToDate:    q.Get("to_date"),
	}

	results, err := h.repo.QueryLotResults(scope)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("lot query failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// UpdateCottonResult patches editable fields of one lot result
func (h *Handler) UpdateCottonResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(fields) == 0 {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	normalized := make(map[string]interface{}, len(fields))
	for field, value := range fields {
		v, err := normalizeUpdateValue(field, value)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		normalized[field] = v
	}

	if err := h.repo.UpdateLotResult(id, normalized); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "lot result not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success", "id": id})
}

// DeleteCottonResult removes one lot result
func (h *Handler) DeleteCottonResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.repo.DeleteLotResult(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "lot result not found")
			return
		}
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("delete failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success", "id": id})
}
