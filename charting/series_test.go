package charting

import (
	"testing"

	"millstat/report"
)

func rec(variety, date string, mic interface{}) report.Record {
	return report.Record{
		IssueDate: date,
		Variety:   variety,
		Values:    map[string]interface{}{"mic": mic},
	}
}

func TestBuildMetricSeries(t *testing.T) {
	records := []report.Record{
		rec("MCU-5", "2024-01-02", 4.0),
		rec("MCU-5", "2024-01-02", 5.0),
		rec("MCU-5", "2024-01-01", 3.5),
		rec("Bunny", "2024-01-01", 4.2),
		rec("Bunny", "2024-01-03", nil),
		rec("Bunny", "", 4.9),
	}

	series := BuildMetricSeries(records, "mic")
	if len(series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(series))
	}
	if series[0].Variety != "Bunny" || series[1].Variety != "MCU-5" {
		t.Fatalf("unexpected series order: %s, %s", series[0].Variety, series[1].Variety)
	}

	if len(series[0].Points) != 1 {
		t.Fatalf("expected 1 Bunny point, got %d", len(series[0].Points))
	}

	mcu := series[1].Points
	if len(mcu) != 2 {
		t.Fatalf("expected 2 MCU-5 points, got %d", len(mcu))
	}
	if mcu[0].IssueDate != "2024-01-01" {
		t.Errorf("points not sorted by date: %s first", mcu[0].IssueDate)
	}
	if mcu[1].Value != 4.5 || mcu[1].Count != 2 {
		t.Errorf("expected mean 4.5 of 2 cells, got %v of %d", mcu[1].Value, mcu[1].Count)
	}
}

func TestGenerateMetricTrend(t *testing.T) {
	series := BuildMetricSeries([]report.Record{
		rec("MCU-5", "2024-01-01", 4.0),
		rec("MCU-5", "2024-01-02", 4.2),
	}, "mic")

	g := NewGenerator()
	png, err := g.GenerateMetricTrend("mic", series)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Errorf("output is not a PNG")
	}

	if _, err := g.GenerateMetricTrend("mic", nil); err == nil {
		t.Errorf("expected error for empty series")
	}
}
