package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatMetric renders an optional metric value with the metric's fixed
// decimal places. Nil renders as "-" so empty buckets never print 0.
func FormatMetric(v *float64, decimals int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', decimals, 64)
}

// FormatMetricKey renders with the decimals registered for the metric key,
// defaulting to one decimal place for unknown keys.
func FormatMetricKey(v *float64, key string) string {
	decimals := 1
	if def, ok := MetricDefinition(key); ok {
		decimals = def.Decimals
	}
	return FormatMetric(v, decimals)
}

// FormatDate renders an ISO date as DD-MM-YY for grids and exports.
// Unparseable input passes through untouched.
func FormatDate(isoDate string) string {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	return t.Format("02-01-06")
}

// FiltersSummary builds the single-line description of the active filters
// that heads every export, e.g.
// "Filters: Unit 2, 5; Line A (Report: Weekly)".
func FiltersSummary(parts []string, rt ReportType) string {
	body := "none"
	if len(parts) > 0 {
		body = strings.Join(parts, "; ")
	}
	return fmt.Sprintf("Filters: %s (Report: %s)", body, rt)
}
