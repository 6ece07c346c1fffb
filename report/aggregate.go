package report

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Record is one issue-level row fed into the summary engine. Values holds
// the raw metric cells keyed by metric name, no_of_bale included; cells may
// be numbers, numeric strings or nil depending on the source.
type Record struct {
	IssueDate string                 `json:"issue_date"`
	PeriodID  string                 `json:"period_id,omitempty"` // optional pre-labelled period from the upstream system
	Variety   string                 `json:"variety"`
	Unit      string                 `json:"unit"`
	Line      string                 `json:"line"`
	MixingNo  string                 `json:"mixing_no"`
	Mixing    string                 `json:"mixing"`
	Values    map[string]interface{} `json:"values"`
}

// MetricDef describes how one metric column aggregates and renders
type MetricDef struct {
	Key      string
	Sum      bool // summed instead of bale-weighted average
	Decimals int
}

// MetricDefinitions fixes the metric set and column order for every summary
// view and export.
var MetricDefinitions = []MetricDef{
	{Key: "no_of_bale", Sum: true, Decimals: 0},
	{Key: "uhml", Decimals: 1},
	{Key: "mic", Decimals: 2},
	{Key: "str", Decimals: 1},
	{Key: "rd", Decimals: 1},
	{Key: "plus_b", Decimals: 1},
	{Key: "sf", Decimals: 1},
	{Key: "ui", Decimals: 1},
	{Key: "elong", Decimals: 1},
	{Key: "trash", Decimals: 1},
	{Key: "moist", Decimals: 1},
	{Key: "min_mic", Decimals: 2},
}

// MetricDefinition looks up a metric by key
func MetricDefinition(key string) (MetricDef, bool) {
	for _, d := range MetricDefinitions {
		if d.Key == key {
			return d, true
		}
	}
	return MetricDef{}, false
}

// AggregatedRow is one (period, variety) bucket. Metric cells are nil when
// no weighted value contributed, never zero-filled.
type AggregatedRow struct {
	Period  string              `json:"period"`
	Variety string              `json:"variety"`
	Metrics map[string]*float64 `json:"metrics"`
	sortKey []float64
}

type accumulator struct {
	meta    PeriodMeta
	variety string
	sums    map[string]float64
	weights map[string]float64
}

// Aggregate rolls issue records up into (period, variety) buckets under the
// given report type. Records without a resolvable period or variety are
// skipped. Sum metrics accumulate their value; the rest accumulate
// value*baleCount and divide by the bale weight of the cells that carried a
// valid value. Output order is period sort key, then variety.
func Aggregate(records []Record, rt ReportType) []AggregatedRow {
	groups := make(map[string]*accumulator)

	for _, rec := range records {
		meta, ok := classifyRecord(rec, rt)
		if !ok {
			continue
		}
		variety := strings.TrimSpace(rec.Variety)
		if variety == "" {
			continue
		}

		key := meta.Label + "__" + variety
		acc, exists := groups[key]
		if !exists {
			acc = &accumulator{
				meta:    meta,
				variety: variety,
				sums:    make(map[string]float64),
				weights: make(map[string]float64),
			}
			groups[key] = acc
		}

		bale, _ := Normalize(rec.Values["no_of_bale"])

		for _, def := range MetricDefinitions {
			raw, valid := Normalize(rec.Values[def.Key])
			if !valid {
				// A bad cell only drops this metric, not the record
				continue
			}
			if def.Sum {
				acc.sums[def.Key] += raw
				acc.weights[def.Key] += 1
			} else {
				acc.sums[def.Key] += raw * bale
				acc.weights[def.Key] += bale
			}
		}
	}

	rows := make([]AggregatedRow, 0, len(groups))
	for _, acc := range groups {
		metrics := make(map[string]*float64, len(MetricDefinitions))
		for _, def := range MetricDefinitions {
			w := acc.weights[def.Key]
			if def.Sum {
				total := acc.sums[def.Key]
				metrics[def.Key] = &total
				continue
			}
			if w == 0 {
				metrics[def.Key] = nil
				continue
			}
			avg := acc.sums[def.Key] / w
			metrics[def.Key] = &avg
		}
		rows = append(rows, AggregatedRow{
			Period:  acc.meta.Label,
			Variety: acc.variety,
			Metrics: metrics,
			sortKey: acc.meta.SortKey,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if c := ComparePeriods(rows[i].sortKey, rows[j].sortKey); c != 0 {
			return c < 0
		}
		return CompareText(rows[i].Variety, rows[j].Variety) < 0
	})

	return rows
}

func classifyRecord(rec Record, rt ReportType) (PeriodMeta, bool) {
	if rec.PeriodID != "" && rt != ReportDaily {
		if meta, ok := ClassifyPeriodID(rec.PeriodID); ok {
			return meta, true
		}
	}
	if strings.TrimSpace(rec.IssueDate) == "" {
		return PeriodMeta{Label: "-"}, false
	}
	return ClassifyDate(rec.IssueDate, rt)
}

// dateSortValue orders issue dates by parsed timestamp. Missing or
// unparseable dates rank after every real date rather than dropping out.
func dateSortValue(isoDate string) float64 {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return math.Inf(1)
	}
	return float64(t.Unix())
}

// SortDaily orders pass-through rows for the daily view: variety first,
// then issue date.
func SortDaily(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if c := CompareText(records[i].Variety, records[j].Variety); c != 0 {
			return c < 0
		}
		return dateSortValue(records[i].IssueDate) < dateSortValue(records[j].IssueDate)
	})
}

// SortSummary orders raw mixing rows the way the summary grid lists them:
// unit, line, issue date, cotton, mixing number, then mixing.
func SortSummary(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if c := CompareText(a.Unit, b.Unit); c != 0 {
			return c < 0
		}
		if c := CompareText(a.Line, b.Line); c != 0 {
			return c < 0
		}
		da, db := dateSortValue(a.IssueDate), dateSortValue(b.IssueDate)
		if da != db {
			return da < db
		}
		if c := CompareText(a.Variety, b.Variety); c != 0 {
			return c < 0
		}
		if c := CompareText(a.MixingNo, b.MixingNo); c != 0 {
			return c < 0
		}
		return CompareText(a.Mixing, b.Mixing) < 0
	})
}
