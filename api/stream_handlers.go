package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"millstat/database"
	"millstat/query"
	"millstat/report"
)

// StreamEvent is one SSE payload on the summary stream. A run emits zero or
// more progress events followed by exactly one data or error event.
type StreamEvent struct {
	Type    string      `json:"type"`
	Current int         `json:"current,omitempty"`
	Total   int         `json:"total,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// summaryResult is the data payload of a finished streamed run
type summaryResult struct {
	ReportType report.ReportType      `json:"report_type"`
	Rows       []report.AggregatedRow `json:"rows,omitempty"`
	Records    []report.Record        `json:"records,omitempty"`
	Count      int                    `json:"count"`
}

// collectRecordsCtx pages through the scoped rows like collectRecords but
// honours cancellation between chunks.
func (h *Handler) collectRecordsCtx(ctx context.Context, scope database.RecordScope, progress func(current, total int)) ([]report.Record, error) {
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
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err := h.repo.QueryMixingRecords(scope, chunkSize, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, chunk...)
		progress(len(records), total)
	}
	progress(total, total)
	return records, nil
}

// StreamMixingSummary runs the summary as an SSE stream. Each run is a
// fresh generation on the shared runner, so starting a new stream
// supersedes and cancels any run still in flight; a superseded run's
// result is dropped, never delivered.
func (h *Handler) StreamMixingSummary(w http.ResponseWriter, r *http.Request) {
	scope := scopeFromQuery(r)

	rt := h.resolveReportType(r.URL.Query().Get("report_type"))

	if msgs := stateFromScope(scope, rt).Validate(); len(msgs) > 0 {
		respondError(w, http.StatusBadRequest, msgs[0])
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Important for Nginx

	jobID := uuid.NewString()
	if err := h.repo.CreateReportJob(jobID, "running"); err != nil {
		fmt.Printf("report job create error: %v\n", err)
	}

	task := func(ctx context.Context, progress func(current, total int)) (interface{}, error) {
		records, err := h.collectRecordsCtx(ctx, scope, progress)
		if err != nil {
			return nil, err
		}
		if rt == report.ReportDaily {
			report.SortSummary(records)
			return summaryResult{ReportType: rt, Records: records, Count: len(records)}, nil
		}
		rows := report.Aggregate(records, rt)
		return summaryResult{ReportType: rt, Rows: rows, Count: len(rows)}, nil
	}

	progressCh := make(chan query.Progress, 16)
	gen, resultCh := h.runner.Start(r.Context(), task, func(p query.Progress) {
		select {
		case progressCh <- p:
		default:
		}
	})

	lastProgress := -1
	for {
		select {
		case p := <-progressCh:
			if p.Current <= lastProgress {
				continue
			}
			lastProgress = p.Current
			writeSSE(w, StreamEvent{Type: "progress", Current: p.Current, Total: p.Total})
			flusher.Flush()
			pct := 0
			if p.Total > 0 {
				pct = p.Current * 100 / p.Total
			}
			h.repo.UpdateReportJob(jobID, "running", "", pct)

		case res := <-resultCh:
			if !h.runner.IsLatest(res.Generation) || res.Generation != gen {
				h.repo.UpdateReportJob(jobID, "cancelled", "superseded by a newer request", 0)
				return
			}

			state := query.TerminalState(res.Err)
			if res.Err == nil {
				writeSSE(w, StreamEvent{Type: "data", Data: res.Data})
				h.repo.UpdateReportJob(jobID, state, "", 100)
			} else {
				msg := streamErrorMessage(res.Err)
				writeSSE(w, StreamEvent{Type: "error", Error: msg})
				h.repo.UpdateReportJob(jobID, state, msg, lastProgress)
			}
			flusher.Flush()
			return
		}
	}
}

// CancelStream aborts the run in flight, if any
func (h *Handler) CancelStream(w http.ResponseWriter, r *http.Request) {
	h.runner.Cancel()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// GetReportJob returns the tracked state of one streamed run
func (h *Handler) GetReportJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	job, err := h.repo.GetReportJob(jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "report job not found")
			return
		}
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("job lookup failed: %v", err))
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func streamErrorMessage(err error) string {
	switch {
	case errors.Is(err, query.ErrTimedOut):
		return "The report request timed out."
	case errors.Is(err, query.ErrCancelled):
		return "The report request was cancelled."
	default:
		return err.Error()
	}
}

func writeSSE(w http.ResponseWriter, ev StreamEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
