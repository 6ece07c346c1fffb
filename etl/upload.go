package etl

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"millstat/database"
	"millstat/report"
)

// lotTemplateColumns fixes the upload sheet layout for lot results
var lotTemplateColumns = []struct {
	Header string
	Key    string
}{
	{"Lot No", "lot_no"},
	{"Party", "party"},
	{"Station", "station"},
	{"Variety", "variety"},
	{"Issue Date", "issue_date"},
	{"No of Bale", "no_of_bale"},
	{"UHML", "uhml"},
	{"Mic", "mic"},
	{"Str", "str"},
	{"Rd", "rd"},
	{"+b", "plus_b"},
	{"SF", "sf"},
	{"UI", "ui"},
	{"Elong", "elong"},
	{"Trash", "trash"},
	{"Moist", "moist"},
	{"Min Mic", "min_mic"},
	{"Min Mic Bale/Lot", "min_mic_bale_per_lot"},
	{"Mat", "mat"},
	{"C Grade", "c_grade"},
}

var pendingTemplateColumns = []struct {
	Header string
	Key    string
}{
	{"Lot No", "lot_no"},
	{"Party", "party"},
	{"Station", "station"},
	{"Received Date", "received_date"},
}

const templateSheet = "Sheet1"

// BuildLotTemplate creates the empty upload workbook for lot results
func BuildLotTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	for i, col := range lotTemplateColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(templateSheet, cell, col.Header); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// BuildPendingTemplate creates the empty upload workbook for pending lots
func BuildPendingTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	for i, col := range pendingTemplateColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(templateSheet, cell, col.Header); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ParseLotWorkbook reads an uploaded lot results workbook. The header row
// is matched by name so column order does not matter; rows without a lot
// number are skipped.
func ParseLotWorkbook(r io.Reader) ([]database.LotResult, error) {
	rows, err := readSheet(r)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no data rows")
	}

	index := headerIndex(rows[0])
	if _, ok := index["lot_no"]; !ok {
		return nil, fmt.Errorf("workbook is missing the Lot No column")
	}

	var lots []database.LotResult
	for _, row := range rows[1:] {
		get := func(key string) string {
			i, ok := index[key]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		num := func(key string) *float64 {
			if v, ok := report.Normalize(get(key)); ok {
				return &v
			}
			return nil
		}

		lotNo := get("lot_no")
		if lotNo == "" {
			continue
		}

		lots = append(lots, database.LotResult{
			LotNo:            lotNo,
			Party:            get("party"),
			Station:          get("station"),
			Variety:          get("variety"),
			IssueDate:        normalizeDate(get("issue_date")),
			NoOfBale:         num("no_of_bale"),
			UHML:             num("uhml"),
			Mic:              num("mic"),
			Str:              num("str"),
			Rd:               num("rd"),
			PlusB:            num("plus_b"),
			SF:               num("sf"),
			UI:               num("ui"),
			Elong:            num("elong"),
			Trash:            num("trash"),
			Moist:            num("moist"),
			MinMic:           num("min_mic"),
			MinMicBalePerLot: num("min_mic_bale_per_lot"),
			Mat:              num("mat"),
			CGrade:           get("c_grade"),
		})
	}
	return lots, nil
}

// ParsePendingWorkbook reads an uploaded pending lots workbook
func ParsePendingWorkbook(r io.Reader) ([]database.PendingLot, error) {
	rows, err := readSheet(r)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no data rows")
	}

	index := headerIndex(rows[0])
	if _, ok := index["lot_no"]; !ok {
		return nil, fmt.Errorf("workbook is missing the Lot No column")
	}

	var lots []database.PendingLot
	for _, row := range rows[1:] {
		get := func(key string) string {
			i, ok := index[key]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		lotNo := get("lot_no")
		if lotNo == "" {
			continue
		}
		lots = append(lots, database.PendingLot{
			LotNo:        lotNo,
			Party:        get("party"),
			Station:      get("station"),
			ReceivedDate: normalizeDate(get("received_date")),
		})
	}
	return lots, nil
}

func readSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func headerIndex(header []string) map[string]int {
	canonical := make(map[string]string, len(lotTemplateColumns)+len(pendingTemplateColumns))
	for _, c := range lotTemplateColumns {
		canonical[strings.ToLower(c.Header)] = c.Key
	}
	for _, c := range pendingTemplateColumns {
		canonical[strings.ToLower(c.Header)] = c.Key
	}

	index := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if key, ok := canonical[h]; ok {
			index[key] = i
		}
	}
	return index
}

// normalizeDate accepts the date shapes spreadsheets produce and returns
// ISO, passing unknown shapes through for validation downstream.
func normalizeDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", "02-01-2006", "02/01/2006", "01-02-06", "1/2/06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
