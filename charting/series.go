package charting

import (
	"sort"

	"millstat/report"
)

// TrendPoint is one issue date on a metric trend
type TrendPoint struct {
	IssueDate string  `json:"issue_date"`
	Value     float64 `json:"value"`
	Count     int     `json:"count"`
}

// VarietySeries is the trend of one variety across the selected dates
type VarietySeries struct {
	Variety string       `json:"variety"`
	Points  []TrendPoint `json:"points"`
}

// BuildMetricSeries computes the per-date unweighted mean of one metric for
// each variety. Cells that fail to normalize are skipped; dates where no
// cell was valid produce no point.
func BuildMetricSeries(records []report.Record, metric string) []VarietySeries {
	type bucket struct {
		sum   float64
		count int
	}
	perVariety := make(map[string]map[string]*bucket)

	for _, rec := range records {
		v, ok := report.Normalize(rec.Values[metric])
		if !ok || rec.IssueDate == "" || rec.Variety == "" {
			continue
		}
		dates, exists := perVariety[rec.Variety]
		if !exists {
			dates = make(map[string]*bucket)
			perVariety[rec.Variety] = dates
		}
		b, exists := dates[rec.IssueDate]
		if !exists {
			b = &bucket{}
			dates[rec.IssueDate] = b
		}
		b.sum += v
		b.count++
	}

	series := make([]VarietySeries, 0, len(perVariety))
	for variety, dates := range perVariety {
		s := VarietySeries{Variety: variety}
		for date, b := range dates {
			s.Points = append(s.Points, TrendPoint{
				IssueDate: date,
				Value:     b.sum / float64(b.count),
				Count:     b.count,
			})
		}
		sort.Slice(s.Points, func(i, j int) bool {
			return s.Points[i].IssueDate < s.Points[j].IssueDate
		})
		series = append(series, s)
	}

	sort.Slice(series, func(i, j int) bool {
		return report.CompareText(series[i].Variety, series[j].Variety) < 0
	})
	return series
}
