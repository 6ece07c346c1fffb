package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the table as a landscape A4 PDF stream with a styled
// header band, the filters summary line, and a generated-on stamp.
func WritePDF(w io.Writer, t Table) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, t.Title)
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.Cell(0, 6, t.FiltersSummary)
	pdf.Ln(5)
	pdf.Cell(0, 6, "Generated on: "+time.Now().Format("02-01-2006 15:04"))
	pdf.Ln(9)

	// Header band
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(68, 114, 196)
	pdf.SetFont("Arial", "B", 8)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	widths := make([]float64, len(t.Columns))
	total := 0.0
	for i, col := range t.Columns {
		widths[i] = col.Width
		if widths[i] <= 0 {
			widths[i] = 18
		}
		total += widths[i]
	}
	// Scale to the usable width so wide tables still fit
	for i := range widths {
		widths[i] = widths[i] / total * usable
	}

	for i, col := range t.Columns {
		pdf.CellFormat(widths[i], 7, col.Header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFont("Arial", "", 8)

	fill := false
	pdf.SetFillColor(240, 244, 250)
	for _, row := range t.Rows {
		for i, val := range row {
			if i >= len(widths) {
				break
			}
			pdf.CellFormat(widths[i], 6, val, "1", 0, "C", fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
