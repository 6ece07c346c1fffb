package report

import "testing"

func TestThresholdStats(t *testing.T) {
	records := []Record{
		rec("2024-01-02", "MCU-5", 1, 4.0),
		rec("2024-01-03", "MCU-5", 1, 4.6),
		rec("2024-01-04", "MCU-5", 1, "bad"),
		rec("2024-01-05", "", 1, 5.1),
	}

	rows := ThresholdStats(records, "mic", 4.5)
	if len(rows) != 2 {
		t.Fatalf("expected 2 variety rows, got %d", len(rows))
	}

	mcu := rows[0]
	if mcu.Variety != "MCU-5" {
		t.Fatalf("first variety = %q", mcu.Variety)
	}
	if mcu.Baseline != 3 || mcu.Matches != 1 {
		t.Errorf("MCU-5 = %d/%d, want 1/3", mcu.Matches, mcu.Baseline)
	}
	if mcu.Percentage < 33.3 || mcu.Percentage > 33.4 {
		t.Errorf("MCU-5 percentage = %f", mcu.Percentage)
	}

	unspec := rows[1]
	if unspec.Variety != UnspecifiedVariety {
		t.Errorf("blank variety grouped as %q, want %q", unspec.Variety, UnspecifiedVariety)
	}
	if unspec.Matches != 1 || unspec.Baseline != 1 || unspec.Percentage != 100 {
		t.Errorf("unspecified = %+v", unspec)
	}
}

func TestThresholdMatchesNeverExceedBaseline(t *testing.T) {
	records := []Record{
		rec("2024-01-02", "V1", 1, 9.9),
		rec("2024-01-02", "V1", 1, 9.9),
	}
	for _, threshold := range []float64{-100, 0, 5, 100} {
		for _, row := range ThresholdStats(records, "mic", threshold) {
			if row.Matches > row.Baseline {
				t.Fatalf("threshold %f: matches %d > baseline %d", threshold, row.Matches, row.Baseline)
			}
		}
	}
}

func TestThresholdEmptyScope(t *testing.T) {
	if rows := ThresholdStats(nil, "mic", 4.5); len(rows) != 0 {
		t.Errorf("empty scope produced %d rows", len(rows))
	}
}
