package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"

	"millstat/database"
	"millstat/etl"
	"millstat/jobs"
)

// GetMixingIssues lists issue entries under the request filters
func (h *Handler) GetMixingIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	issues, err := h.repo.QueryMixingIssues(
		q.Get("unit"), q.Get("line"), q.Get("cotton"),
		q.Get("mixing_no_from"), q.Get("mixing_no_to"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("issue query failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"issues": issues,
		"count":  len(issues),
	})
}

// CreateMixingIssues inserts a batch of issue entries
func (h *Handler) CreateMixingIssues(w http.ResponseWriter, r *http.Request) {
	var issues []database.MixingIssue
	if err := json.NewDecoder(r.Body).Decode(&issues); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(issues) == 0 {
		respondError(w, http.StatusBadRequest, "no issues to insert")
		return
	}
	for i, issue := range issues {
		if issue.LotNo == "" || issue.IssueDate == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("issue %d is missing lot_no or issue_date", i+1))
			return
		}
	}

	if err := h.repo.InsertMixingIssues(issues); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("insert failed: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":   "success",
		"inserted": len(issues),
	})
}

// UpdateMixingIssue patches editable fields of one issue entry
func (h *Handler) UpdateMixingIssue(w http.ResponseWriter, r *http.Request) {
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

	if err := h.repo.UpdateMixingIssue(id, fields); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "mixing issue not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success", "id": id})
}

// DeleteMixingIssue removes one issue entry
func (h *Handler) DeleteMixingIssue(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.repo.DeleteMixingIssue(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "mixing issue not found")
			return
		}
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("delete failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success", "id": id})
}

// DeleteMixingChart removes every issue entry of one (unit, line, mixing_no)
func (h *Handler) DeleteMixingChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	unit, line, mixingNo := q.Get("unit"), q.Get("line"), q.Get("mixing_no")
	if unit == "" || line == "" || mixingNo == "" {
		respondError(w, http.StatusBadRequest, "unit, line, and mixing_no are required")
		return
	}

	deleted, err := h.repo.DeleteMixingByChart(unit, line, mixingNo)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("delete failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"deleted_rows": deleted,
	})
}

// GetMissingMixingLots lists tested lots that were never issued to a mixing
func (h *Handler) GetMissingMixingLots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lots, err := h.repo.MissingMixingLots(q.Get("from_date"), q.Get("to_date"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("missing lot query failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"lots":  lots,
		"count": len(lots),
	})
}

// GetMixingCodes lists the cotton code to variety mapping
func (h *Handler) GetMixingCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.repo.ListMixingCodes()
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("mixing code query failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"codes": codes,
		"count": len(codes),
	})
}

// UpdateMixingCode sets the variety name for a cotton code
func (h *Handler) UpdateMixingCode(w http.ResponseWriter, r *http.Request) {
	var req database.MixingCode
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Cotton == "" {
		respondError(w, http.StatusBadRequest, "cotton code is required")
		return
	}

	if err := h.repo.UpsertMixingCode(req.Cotton, req.Variety); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("update failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// GetPendingLots lists lots received but not yet tested
func (h *Handler) GetPendingLots(w http.ResponseWriter, r *http.Request) {
	lots, err := h.repo.ListPendingLots()
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("pending lot query failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"lots":  lots,
		"count": len(lots),
	})
}

// DownloadTemplate serves an empty upload workbook. kind is "lots" for
// test results or "pending" for received lots.
func (h *Handler) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]

	var (
		f   *excelize.File
		err error
	)
	switch kind {
	case "lots":
		f, err = etl.BuildLotTemplate()
	case "pending":
		f, err = etl.BuildPendingTemplate()
	default:
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown template: %s", kind))
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("template build failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.xlsx"`, kind))
	if _, err := f.WriteTo(w); err != nil {
		fmt.Printf("template write error: %v\n", err)
	}
}

// UploadWorkbook ingests an uploaded template. Parse failures are logged
// to upload_logs either way.
func (h *Handler) UploadWorkbook(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	var inserted int
	switch kind {
	case "lots":
		var lots []database.LotResult
		if lots, err = etl.ParseLotWorkbook(file); err == nil {
			if err = h.repo.BulkInsertLotResults(lots); err == nil {
				inserted = len(lots)
				lotNos := make([]string, 0, len(lots))
				for _, l := range lots {
					lotNos = append(lotNos, l.LotNo)
				}
				h.repo.ResolvePendingLots(lotNos)
			}
		}
	case "pending":
		var lots []database.PendingLot
		if lots, err = etl.ParsePendingWorkbook(file); err == nil {
			if err = h.repo.InsertPendingLots(lots); err == nil {
				inserted = len(lots)
			}
		}
	default:
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown template: %s", kind))
		return
	}

	logEntry := database.UploadLog{
		Filename:     header.Filename,
		RowsInserted: inserted,
		Status:       "success",
	}
	if err != nil {
		logEntry.Status = "failed"
		logEntry.ErrorMessage = err.Error()
	}
	if logErr := h.repo.LogUpload(logEntry); logErr != nil {
		fmt.Printf("upload log error: %v\n", logErr)
	}

	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("upload failed: %v", err))
		return
	}

	// Refresh the rollup off the request path
	h.pool.Submit(jobs.Job{
		ID:   uuid.NewString(),
		Name: "mart-refresh",
		Execute: func() error {
			_, err := h.martBuilder.Refresh()
			return err
		},
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"filename": header.Filename,
		"inserted": inserted,
	})
}
