package report

import "testing"

func TestClassifyDateWeeklyBuckets(t *testing.T) {
	cases := []struct {
		date  string
		label string
	}{
		{"2024-01-01", "1-7 Jan 2024"},
		{"2024-01-07", "1-7 Jan 2024"},
		{"2024-01-08", "8-14 Jan 2024"},
		{"2024-01-14", "8-14 Jan 2024"},
		{"2024-01-15", "15-21 Jan 2024"},
		{"2024-01-21", "15-21 Jan 2024"},
		{"2024-01-22", "22-28 Jan 2024"},
		{"2024-01-28", "22-28 Jan 2024"},
		{"2024-01-29", "29-31 Jan 2024"},
		{"2024-01-31", "29-31 Jan 2024"},
		{"2024-02-29", "29-31 Feb 2024"},
	}

	for _, c := range cases {
		meta, ok := ClassifyDate(c.date, ReportWeekly)
		if !ok {
			t.Errorf("ClassifyDate(%q) not ok", c.date)
			continue
		}
		if meta.Label != c.label {
			t.Errorf("ClassifyDate(%q) = %q, want %q", c.date, meta.Label, c.label)
		}
	}
}

func TestClassifyDateMonthly(t *testing.T) {
	meta, ok := ClassifyDate("2024-09-17", ReportMonthly)
	if !ok || meta.Label != "Sep 2024" {
		t.Fatalf("monthly label = %q ok=%v, want Sep 2024", meta.Label, ok)
	}
}

func TestClassifyDateInvalid(t *testing.T) {
	for _, bad := range []string{"", "2024-13-01", "17/09/2024", "garbage"} {
		meta, ok := ClassifyDate(bad, ReportWeekly)
		if ok {
			t.Errorf("ClassifyDate(%q) unexpectedly ok", bad)
		}
		if meta.Label != "-" {
			t.Errorf("ClassifyDate(%q) label = %q, want -", bad, meta.Label)
		}
	}
}

func TestClassifyDateSortKeyMonotonic(t *testing.T) {
	dates := []string{
		"2023-12-31", "2024-01-01", "2024-01-07", "2024-01-08",
		"2024-01-29", "2024-02-01", "2024-12-31", "2025-01-01",
	}

	var prev []float64
	for i, d := range dates {
		meta, ok := ClassifyDate(d, ReportWeekly)
		if !ok {
			t.Fatalf("ClassifyDate(%q) not ok", d)
		}
		if i > 0 && ComparePeriods(prev, meta.SortKey) > 0 {
			t.Errorf("sort key for %s ranks before its predecessor", d)
		}
		prev = meta.SortKey
	}
}

func TestClassifyPeriodID(t *testing.T) {
	meta, ok := ClassifyPeriodID("2024-01-W1")
	if !ok || meta.Label != "1-7 Jan 2024" {
		t.Errorf("weekly id label = %q ok=%v, want 1-7 Jan 2024", meta.Label, ok)
	}

	meta, ok = ClassifyPeriodID("2024-09")
	if !ok || meta.Label != "Sep 2024" {
		t.Errorf("monthly id label = %q ok=%v, want Sep 2024", meta.Label, ok)
	}

	for _, bad := range []string{"2024-W1", "2024-00", "2024-01-W9", "2024-1-W1", "abc"} {
		if _, ok := ClassifyPeriodID(bad); ok {
			t.Errorf("ClassifyPeriodID(%q) unexpectedly ok", bad)
		}
	}
}

func TestComparePeriodsShorterKeyRanksLast(t *testing.T) {
	month := []float64{2024, 1}
	week := []float64{2024, 1, 0}
	if ComparePeriods(month, week) <= 0 {
		t.Errorf("month key should rank after any week key with the same prefix")
	}
	if ComparePeriods(week, week) != 0 {
		t.Errorf("equal keys should compare equal")
	}
}

func TestParseReportType(t *testing.T) {
	cases := map[string]ReportType{
		"daily":     ReportDaily,
		"Weekly":    ReportWeekly,
		" MONTHLY ": ReportMonthly,
	}
	for in, want := range cases {
		got, ok := ParseReportType(in)
		if !ok || got != want {
			t.Errorf("ParseReportType(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseReportType("hourly"); ok {
		t.Errorf("ParseReportType accepted an unknown type")
	}
}
