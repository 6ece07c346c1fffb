package report

import (
	"sort"
	"strings"
)

// UnspecifiedVariety groups records whose variety cell is blank
const UnspecifiedVariety = "Unspecified"

// ThresholdRow reports, per variety, how many records in scope carry the
// metric at or above the threshold.
type ThresholdRow struct {
	Variety    string  `json:"variety"`
	Baseline   int     `json:"baseline"`
	Matches    int     `json:"matches"`
	Percentage float64 `json:"percentage"`
}

// ThresholdStats counts, for each variety, records whose metric value is a
// valid number >= threshold. Baseline is every record of the variety in
// scope, so matches never exceeds it. Percentage is matches/baseline*100,
// 0 when the baseline is empty.
func ThresholdStats(records []Record, metric string, threshold float64) []ThresholdRow {
	type counts struct {
		baseline int
		matches  int
	}
	byVariety := make(map[string]*counts)

	for _, rec := range records {
		variety := strings.TrimSpace(rec.Variety)
		if variety == "" {
			variety = UnspecifiedVariety
		}
		c, ok := byVariety[variety]
		if !ok {
			c = &counts{}
			byVariety[variety] = c
		}
		c.baseline++
		if v, valid := Normalize(rec.Values[metric]); valid && v >= threshold {
			c.matches++
		}
	}

	rows := make([]ThresholdRow, 0, len(byVariety))
	for variety, c := range byVariety {
		pct := 0.0
		if c.baseline > 0 {
			pct = float64(c.matches) / float64(c.baseline) * 100
		}
		rows = append(rows, ThresholdRow{
			Variety:    variety,
			Baseline:   c.baseline,
			Matches:    c.matches,
			Percentage: pct,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return CompareText(rows[i].Variety, rows[j].Variety) < 0
	})
	return rows
}
