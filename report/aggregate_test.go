package report

import (
	"math"
	"math/rand"
	"testing"
)

func rec(date, variety string, bale float64, mic interface{}) Record {
	return Record{
		IssueDate: date,
		Variety:   variety,
		Values: map[string]interface{}{
			"no_of_bale": bale,
			"mic":        mic,
		},
	}
}

func TestAggregateWeeklyWeightedAverage(t *testing.T) {
	records := []Record{
		rec("2024-01-02", "MCU-5", 10, 4.0),
		rec("2024-01-05", "MCU-5", 5, 5.0),
	}

	rows := Aggregate(records, ReportWeekly)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.Period != "1-7 Jan 2024" {
		t.Errorf("period label = %q, want %q", row.Period, "1-7 Jan 2024")
	}
	if row.Variety != "MCU-5" {
		t.Errorf("variety = %q, want MCU-5", row.Variety)
	}

	bales := row.Metrics["no_of_bale"]
	if bales == nil || *bales != 15 {
		t.Errorf("no_of_bale = %v, want 15", bales)
	}

	mic := row.Metrics["mic"]
	want := (10*4.0 + 5*5.0) / 15
	if mic == nil || math.Abs(*mic-want) > 1e-9 {
		t.Errorf("mic = %v, want %.6f", mic, want)
	}
}

func TestAggregateZeroWeightYieldsNull(t *testing.T) {
	records := []Record{
		rec("2024-01-02", "Shankar-6", 0, 4.2),
		rec("2024-01-03", "Shankar-6", 0, 4.6),
	}

	rows := Aggregate(records, ReportMonthly)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	mic := rows[0].Metrics["mic"]
	if mic != nil {
		t.Errorf("mic with zero bale weight = %v, want nil", *mic)
	}
	bales := rows[0].Metrics["no_of_bale"]
	if bales == nil || *bales != 0 {
		t.Errorf("no_of_bale = %v, want 0", bales)
	}
}

func TestAggregateSkipsInvalidCellsNotRecords(t *testing.T) {
	records := []Record{
		{
			IssueDate: "2024-03-10",
			Variety:   "DCH-32",
			Values: map[string]interface{}{
				"no_of_bale": "12",
				"mic":        "not-a-number",
				"str":        " 28.5 ",
			},
		},
	}

	rows := Aggregate(records, ReportMonthly)
	if len(rows) != 1 {
		t.Fatalf("record with one bad cell was dropped entirely")
	}
	if rows[0].Metrics["mic"] != nil {
		t.Errorf("mic = %v, want nil for invalid cell", *rows[0].Metrics["mic"])
	}
	str := rows[0].Metrics["str"]
	if str == nil || *str != 28.5 {
		t.Errorf("str = %v, want 28.5 from trimmed string cell", str)
	}
}

func TestAggregateSkipsRecordsMissingDateOrVariety(t *testing.T) {
	records := []Record{
		rec("", "MCU-5", 10, 4.0),
		rec("2024-13-45", "MCU-5", 10, 4.0),
		rec("2024-01-02", "   ", 10, 4.0),
		rec("2024-01-02", "MCU-5", 10, 4.0),
	}

	rows := Aggregate(records, ReportWeekly)
	if len(rows) != 1 {
		t.Fatalf("expected only the valid record to aggregate, got %d rows", len(rows))
	}
	if b := rows[0].Metrics["no_of_bale"]; b == nil || *b != 10 {
		t.Errorf("no_of_bale = %v, want 10", b)
	}
}

func TestAggregatePermutationInvariant(t *testing.T) {
	records := []Record{
		rec("2024-01-02", "MCU-5", 10, 4.0),
		rec("2024-01-05", "MCU-5", 5, 5.0),
		rec("2024-01-09", "MCU-5", 7, 4.4),
		rec("2024-01-02", "DCH-32", 3, 3.8),
		rec("2024-02-20", "MCU-5", 2, 4.9),
	}

	base := Aggregate(records, ReportWeekly)

	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]Record, len(records))
		copy(shuffled, records)
		r.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got := Aggregate(shuffled, ReportWeekly)
		if !equalRows(base, got) {
			t.Fatalf("aggregation depends on input order (trial %d)", trial)
		}
	}
}

func TestAggregateDeterministicOrder(t *testing.T) {
	records := []Record{
		rec("2024-02-01", "MCU-5", 1, 4.0),
		rec("2024-01-30", "MCU-5", 1, 4.0),
		rec("2024-01-02", "Shankar-6", 1, 4.0),
		rec("2024-01-02", "DCH-32", 1, 4.0),
	}

	rows := Aggregate(records, ReportWeekly)
	wantOrder := []struct{ period, variety string }{
		{"1-7 Jan 2024", "DCH-32"},
		{"1-7 Jan 2024", "Shankar-6"},
		{"29-31 Jan 2024", "MCU-5"},
		{"1-7 Feb 2024", "MCU-5"},
	}
	if len(rows) != len(wantOrder) {
		t.Fatalf("got %d rows, want %d", len(rows), len(wantOrder))
	}
	for i, w := range wantOrder {
		if rows[i].Period != w.period || rows[i].Variety != w.variety {
			t.Errorf("row %d = (%s, %s), want (%s, %s)",
				i, rows[i].Period, rows[i].Variety, w.period, w.variety)
		}
	}
}

func TestAggregateIdempotent(t *testing.T) {
	records := []Record{
		rec("2024-01-02", "MCU-5", 10, 4.0),
		rec("2024-01-05", "MCU-5", 5, 5.0),
	}

	once := Aggregate(records, ReportWeekly)

	// Re-feed the aggregated row as a record: a single already-merged bucket
	// must come back unchanged.
	again := Aggregate([]Record{{
		IssueDate: "2024-01-02",
		Variety:   "MCU-5",
		Values: map[string]interface{}{
			"no_of_bale": *once[0].Metrics["no_of_bale"],
			"mic":        *once[0].Metrics["mic"],
		},
	}}, ReportWeekly)

	if len(again) != 1 {
		t.Fatalf("expected 1 row, got %d", len(again))
	}
	if math.Abs(*again[0].Metrics["mic"]-*once[0].Metrics["mic"]) > 1e-9 {
		t.Errorf("mic changed on re-aggregation: %v vs %v",
			*again[0].Metrics["mic"], *once[0].Metrics["mic"])
	}
	if *again[0].Metrics["no_of_bale"] != *once[0].Metrics["no_of_bale"] {
		t.Errorf("bale total changed on re-aggregation")
	}
}

func TestSortSummaryChain(t *testing.T) {
	records := []Record{
		{Unit: "Unit 10", Line: "A", IssueDate: "2024-01-02", Variety: "MCU-5"},
		{Unit: "Unit 2", Line: "B", IssueDate: "2024-01-02", Variety: "MCU-5"},
		{Unit: "Unit 2", Line: "A", IssueDate: "2024-01-03", Variety: "MCU-5"},
		{Unit: "Unit 2", Line: "A", IssueDate: "2024-01-02", Variety: "DCH-32"},
	}

	SortSummary(records)

	if records[0].Variety != "DCH-32" || records[0].Unit != "Unit 2" {
		t.Errorf("first row = %+v, want Unit 2 / A / 2024-01-02 / DCH-32", records[0])
	}
	if records[3].Unit != "Unit 10" {
		t.Errorf("numeric-aware unit ordering failed: last unit = %s, want Unit 10", records[3].Unit)
	}
}

func equalRows(a, b []AggregatedRow) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Period != b[i].Period || a[i].Variety != b[i].Variety {
			return false
		}
		for _, def := range MetricDefinitions {
			av, bv := a[i].Metrics[def.Key], b[i].Metrics[def.Key]
			if (av == nil) != (bv == nil) {
				return false
			}
			if av != nil && math.Abs(*av-*bv) > 1e-9 {
				return false
			}
		}
	}
	return true
}

func TestSortSummaryMissingDateRanksLast(t *testing.T) {
	records := []Record{
		{Unit: "1", Line: "A", IssueDate: "2024-01-05", Variety: "MCU-5"},
		{Unit: "1", Line: "A", IssueDate: "", Variety: "MCU-5"},
		{Unit: "1", Line: "A", IssueDate: "2024-01-02", Variety: "MCU-5"},
	}

	SortSummary(records)

	want := []string{"2024-01-02", "2024-01-05", ""}
	for i, d := range want {
		if records[i].IssueDate != d {
			t.Fatalf("row %d date = %q, want %q", i, records[i].IssueDate, d)
		}
	}
}

func TestSortDailyMissingDateRanksLast(t *testing.T) {
	records := []Record{
		{IssueDate: "not-a-date", Variety: "MCU-5"},
		{IssueDate: "2024-01-03", Variety: "MCU-5"},
	}

	SortDaily(records)

	if records[0].IssueDate != "2024-01-03" {
		t.Errorf("unparseable date sorted before a real one: %q first", records[0].IssueDate)
	}
}
