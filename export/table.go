package export

import (
	"millstat/report"
)

// Column is one header cell of an exported table
type Column struct {
	Header string
	Width  float64 // mm for PDF, characters for xlsx; 0 uses a default
}

// Table is the render-ready shape both export formats consume: a title
// line, the filters summary line, and pre-formatted cell strings.
type Table struct {
	Title          string
	FiltersSummary string
	Columns        []Column
	Rows           [][]string
}

// SummaryColumns builds the column set for an aggregated summary export
func SummaryColumns() []Column {
	cols := []Column{
		{Header: "Period", Width: 30},
		{Header: "Variety", Width: 32},
	}
	headers := map[string]string{
		"no_of_bale": "Bales",
		"uhml":       "UHML",
		"mic":        "Mic",
		"str":        "Str",
		"rd":         "Rd",
		"plus_b":     "+b",
		"sf":         "SF",
		"ui":         "UI",
		"elong":      "Elong",
		"trash":      "Trash",
		"moist":      "Moist",
		"min_mic":    "Min Mic",
	}
	for _, def := range report.MetricDefinitions {
		cols = append(cols, Column{Header: headers[def.Key], Width: 18})
	}
	return cols
}

// SummaryTable formats aggregated rows for export
func SummaryTable(title, filtersSummary string, rows []report.AggregatedRow) Table {
	t := Table{
		Title:          title,
		FiltersSummary: filtersSummary,
		Columns:        SummaryColumns(),
	}
	for _, row := range rows {
		cells := []string{row.Period, row.Variety}
		for _, def := range report.MetricDefinitions {
			cells = append(cells, report.FormatMetric(row.Metrics[def.Key], def.Decimals))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// DailyColumns builds the column set for a pass-through daily export
func DailyColumns() []Column {
	cols := []Column{
		{Header: "Unit", Width: 16},
		{Header: "Line", Width: 16},
		{Header: "Issue Date", Width: 24},
		{Header: "Cotton", Width: 30},
		{Header: "Mixing No", Width: 20},
	}
	for _, c := range SummaryColumns()[2:] {
		cols = append(cols, c)
	}
	return cols
}

// DailyTable formats raw records for export, dates rendered DD-MM-YY
func DailyTable(title, filtersSummary string, records []report.Record) Table {
	t := Table{
		Title:          title,
		FiltersSummary: filtersSummary,
		Columns:        DailyColumns(),
	}
	for _, rec := range records {
		cells := []string{rec.Unit, rec.Line, report.FormatDate(rec.IssueDate), rec.Variety, rec.MixingNo}
		for _, def := range report.MetricDefinitions {
			var ptr *float64
			if v, ok := report.Normalize(rec.Values[def.Key]); ok {
				ptr = &v
			}
			cells = append(cells, report.FormatMetric(ptr, def.Decimals))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}
