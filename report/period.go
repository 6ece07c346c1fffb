package report

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ReportType selects the period granularity for a summary run
type ReportType string

const (
	ReportDaily   ReportType = "Daily"
	ReportWeekly  ReportType = "Weekly"
	ReportMonthly ReportType = "Monthly"
)

// weekBucket is a fixed day-of-month range within a single month
type weekBucket struct {
	start int
	end   int
	label string
}

// Fixed buckets: the last one absorbs days 29-31 regardless of month length
var weekBuckets = []weekBucket{
	{1, 7, "1-7"},
	{8, 14, "8-14"},
	{15, 21, "15-21"},
	{22, 28, "22-28"},
	{29, 31, "29-31"},
}

var (
	weeklyIDPattern  = regexp.MustCompile(`^(\d{4})-(\d{2})-W(\d{1,2})$`)
	monthlyIDPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

// PeriodMeta carries the display label and the sortable key for one period.
// SortKey elements compare element-wise; missing elements rank last.
type PeriodMeta struct {
	Label   string
	SortKey []float64
}

// ValidReportType reports whether s is one of the supported report types
func ValidReportType(s string) bool {
	switch ReportType(s) {
	case ReportDaily, ReportWeekly, ReportMonthly:
		return true
	}
	return false
}

// ParseReportType accepts both wire spellings ("weekly" and "Weekly")
func ParseReportType(s string) (ReportType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return ReportDaily, true
	case "weekly":
		return ReportWeekly, true
	case "monthly":
		return ReportMonthly, true
	}
	return "", false
}

// ClassifyDate maps an ISO issue date (YYYY-MM-DD) to its period under the
// given report type. Returns ok=false for dates that cannot be parsed.
func ClassifyDate(isoDate string, rt ReportType) (PeriodMeta, bool) {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return PeriodMeta{Label: "-"}, false
	}

	year := t.Year()
	month := int(t.Month())

	switch rt {
	case ReportMonthly:
		return PeriodMeta{
			Label:   t.Format("Jan 2006"),
			SortKey: []float64{float64(year), float64(month)},
		}, true
	case ReportWeekly:
		day := t.Day()
		for i, b := range weekBuckets {
			if day >= b.start && day <= b.end {
				return PeriodMeta{
					Label:   b.label + " " + t.Format("Jan 2006"),
					SortKey: []float64{float64(year), float64(month), float64(i)},
				}, true
			}
		}
		// Unreachable: buckets cover days 1-31
		return PeriodMeta{Label: "-"}, false
	default:
		// Daily keeps the raw date as its own period
		return PeriodMeta{
			Label:   isoDate,
			SortKey: []float64{float64(year), float64(month), float64(t.Day())},
		}, true
	}
}

// ClassifyPeriodID resolves a pre-labelled period identifier produced by an
// upstream system: "YYYY-MM-Www" for weekly buckets, "YYYY-MM" for months.
// Returns ok=false when the identifier matches neither shape.
func ClassifyPeriodID(id string) (PeriodMeta, bool) {
	if m := weeklyIDPattern.FindStringSubmatch(id); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		week, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || week < 1 || week > len(weekBuckets) {
			return PeriodMeta{Label: "-"}, false
		}
		bucket := weekBuckets[week-1]
		return PeriodMeta{
			Label:   fmt.Sprintf("%s %s %d", bucket.label, time.Month(month).String()[:3], year),
			SortKey: []float64{float64(year), float64(month), float64(week - 1)},
		}, true
	}
	if m := monthlyIDPattern.FindStringSubmatch(id); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return PeriodMeta{Label: "-"}, false
		}
		return PeriodMeta{
			Label:   fmt.Sprintf("%s %d", time.Month(month).String()[:3], year),
			SortKey: []float64{float64(year), float64(month)},
		}, true
	}
	return PeriodMeta{Label: "-"}, false
}

// ComparePeriods orders two period sort keys element-wise. A missing element
// is treated as +Inf so shorter keys sort after longer ones at the same prefix.
func ComparePeriods(a, b []float64) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av := math.Inf(1)
		bv := math.Inf(1)
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}
