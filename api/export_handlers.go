package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"millstat/database"
	"millstat/export"
	"millstat/filter"
	"millstat/report"
)

// ExportRequest is the body of an export request. The selection mirrors the
// summary view so the exported table matches what the user sees.
type ExportRequest struct {
	filter.State
	Title string `json:"title,omitempty"`
}

// filtersSummaryParts renders the active selection as human readable
// fragments for the export header line.
func filtersSummaryParts(state filter.State) []string {
	var parts []string
	switch state.RangeMode {
	case filter.RangeByMixing:
		if state.MixingNoFrom != "" || state.MixingNoTo != "" {
			parts = append(parts, fmt.Sprintf("Mixing No %s to %s", state.MixingNoFrom, state.MixingNoTo))
		}
	default:
		if state.FromDate != "" || state.ToDate != "" {
			parts = append(parts, fmt.Sprintf("Dates %s to %s",
				report.FormatDate(state.FromDate), report.FormatDate(state.ToDate)))
		}
	}
	if len(state.Units) > 0 {
		parts = append(parts, "Units "+strings.Join(state.Units, ", "))
	}
	if len(state.Lines) > 0 {
		parts = append(parts, "Lines "+strings.Join(state.Lines, ", "))
	}
	if len(state.Cottons) > 0 {
		parts = append(parts, "Cottons "+strings.Join(state.Cottons, ", "))
	}
	if len(state.Mixings) > 0 {
		parts = append(parts, "Mixings "+strings.Join(state.Mixings, ", "))
	}
	return parts
}

// buildExportTable runs the summary for the request selection and renders
// it as an export table.
func (h *Handler) buildExportTable(r *http.Request) (export.Table, error) {
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return export.Table{}, fmt.Errorf("invalid request body")
	}

	rt := h.resolveReportType(string(req.ReportType))

	state := req.State
	state.ReportType = rt
	if msgs := state.Validate(); len(msgs) > 0 {
		return export.Table{}, fmt.Errorf("%s", msgs[0])
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
		return export.Table{}, fmt.Errorf("export query failed: %v", err)
	}

	title := req.Title
	if title == "" {
		title = h.cfg.Export.Title
	}
	summary := report.FiltersSummary(filtersSummaryParts(state), rt)

	if rt == report.ReportDaily {
		report.SortSummary(records)
		return export.DailyTable(title, summary, records), nil
	}
	return export.SummaryTable(title, summary, report.Aggregate(records, rt)), nil
}

// ExportExcel streams the current summary as an xlsx workbook
func (h *Handler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	table, err := h.buildExportTable(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="cotton_summary.xlsx"`)
	if err := export.WriteWorkbook(w, table, h.cfg.Export.SheetName); err != nil {
		fmt.Printf("xlsx write error: %v\n", err)
	}
}

// ExportPDF streams the current summary as a PDF report
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	table, err := h.buildExportTable(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="cotton_summary.pdf"`)
	if err := export.WritePDF(w, table); err != nil {
		fmt.Printf("pdf write error: %v\n", err)
	}
}
