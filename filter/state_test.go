package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"millstat/report"
)

func TestWithRangeModeClearsOtherMode(t *testing.T) {
	s := NewState()
	s.FromDate = "2024-01-01"
	s.ToDate = "2024-01-31"
	s.Units = []string{"2"}
	s.Lines = []string{"A"}
	s.HasLoadedOptions = true

	next := s.WithRangeMode(RangeByMixing)

	assert.Equal(t, RangeByMixing, next.RangeMode)
	assert.Empty(t, next.FromDate)
	assert.Empty(t, next.ToDate)
	assert.Empty(t, next.Units)
	assert.Empty(t, next.Lines)
	assert.False(t, next.HasLoadedOptions)

	// The original state is untouched
	assert.Equal(t, "2024-01-01", s.FromDate)
	assert.True(t, s.HasLoadedOptions)
}

func TestWithRangeModeSameModeNoOp(t *testing.T) {
	s := NewState()
	s.FromDate = "2024-01-01"
	next := s.WithRangeMode(RangeByDate)
	assert.Equal(t, s, next)
}

func TestWithReportTypeSignalsReset(t *testing.T) {
	s := NewState()

	next, changed := s.WithReportType(report.ReportMonthly)
	assert.True(t, changed)
	assert.Equal(t, report.ReportMonthly, next.ReportType)

	_, changed = next.WithReportType(report.ReportMonthly)
	assert.False(t, changed)
}

func TestValidateMessages(t *testing.T) {
	s := NewState()
	problems := s.Validate()
	assert.Equal(t, []string{
		"Please choose both From and To issue dates.",
		"Select at least one Unit.",
		"Select at least one Line.",
	}, problems)

	s = s.WithRangeMode(RangeByMixing)
	problems = s.Validate()
	assert.Contains(t, problems, "Please provide both From and To mixing numbers.")

	s.MixingNoFrom = "100"
	s.MixingNoTo = "120"
	s.Units = []string{"2"}
	s.Lines = []string{"A"}
	assert.Empty(t, s.Validate())
}

func TestDeriveOptions(t *testing.T) {
	records := []report.Record{
		{Unit: "Unit 10", Line: "B", Variety: "MCU-5", MixingNo: "102"},
		{Unit: "Unit 2", Line: "A", Variety: "MCU-5", MixingNo: "99"},
		{Unit: "Unit 2", Line: " ", Variety: "DCH-32", MixingNo: "102"},
	}

	opts := DeriveOptions(records)

	assert.Equal(t, []Option{{"Unit 2", "Unit 2"}, {"Unit 10", "Unit 10"}}, opts.Units)
	assert.Equal(t, []Option{{"A", "A"}, {"B", "B"}}, opts.Lines)
	assert.Equal(t, []Option{{"DCH-32", "DCH-32"}, {"MCU-5", "MCU-5"}}, opts.Cottons)
	assert.Equal(t, []Option{{"99", "99"}, {"102", "102"}}, opts.Mixings)
}

func TestValidateRangeOrdering(t *testing.T) {
	s := NewState()
	s.FromDate = "2024-02-01"
	s.ToDate = "2024-01-01"
	s.Units = []string{"2"}
	s.Lines = []string{"A"}

	assert.Equal(t, []string{"Issue date 'From' cannot be later than 'To'."}, s.Validate())

	s.FromDate = "2024-01-01"
	s.ToDate = "2024-02-01"
	assert.Empty(t, s.Validate())
}

func TestValidateMixingRange(t *testing.T) {
	s := NewState().WithRangeMode(RangeByMixing)
	s.Units = []string{"2"}
	s.Lines = []string{"A"}

	s.MixingNoFrom = "abc"
	s.MixingNoTo = "20"
	assert.Equal(t, []string{"Mixing numbers must be valid numbers."}, s.Validate())

	s.MixingNoFrom = "30"
	assert.Equal(t, []string{"Mixing No From cannot be greater than Mixing No To."}, s.Validate())

	s.MixingNoFrom = "10"
	assert.Empty(t, s.Validate())
}

func TestToggleValue(t *testing.T) {
	selected := []string{"2", "5"}

	added := ToggleValue(selected, "7")
	assert.Equal(t, []string{"2", "5", "7"}, added)

	removed := ToggleValue(selected, "5")
	assert.Equal(t, []string{"2"}, removed)

	// The input slice stays untouched
	assert.Equal(t, []string{"2", "5"}, selected)
}

func TestToggleAll(t *testing.T) {
	options := Options([]string{"2", "5", "7"})

	assert.Equal(t, []string{"2", "5", "7"}, ToggleAll(nil, options))
	assert.Equal(t, []string{"2", "5", "7"}, ToggleAll([]string{"5"}, options))
	assert.Nil(t, ToggleAll([]string{"2", "5", "7"}, options))
}

func TestFilterOptions(t *testing.T) {
	options := Options([]string{"Shankar-6", "MCU-5", "Bunny"})

	matched := FilterOptions(options, "shank")
	assert.Equal(t, []Option{{Value: "Shankar-6", Label: "Shankar-6"}}, matched)

	assert.Equal(t, options, FilterOptions(options, ""))
	assert.Empty(t, FilterOptions(options, "zzz"))
}
