package filter

import (
	"strconv"
	"time"

	"millstat/report"
)

// RangeMode selects which of the two mutually exclusive range filters is
// active.
type RangeMode string

const (
	RangeByDate   RangeMode = "date"
	RangeByMixing RangeMode = "mixing"
)

// State is the full filter selection for a summary view. Only one range
// mode is populated at a time; switching modes clears the other mode's
// values along with any options derived under them.
type State struct {
	RangeMode RangeMode `json:"range_mode"`

	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`

	MixingNoFrom string `json:"mixing_no_from"`
	MixingNoTo   string `json:"mixing_no_to"`

	Units   []string `json:"units"`
	Lines   []string `json:"lines"`
	Cottons []string `json:"cottons"`
	Mixings []string `json:"mixings"`

	ReportType report.ReportType `json:"report_type"`

	HasLoadedOptions bool `json:"has_loaded_options"`
}

// NewState returns the initial selection: date mode, weekly report.
func NewState() State {
	return State{
		RangeMode:  RangeByDate,
		ReportType: report.ReportWeekly,
	}
}

// WithRangeMode switches the active range mode. Switching away from a mode
// clears its values, the multi-selects, and the derived options so nothing
// from the old scope leaks into the new one. Selecting the current mode is
// a no-op.
func (s State) WithRangeMode(mode RangeMode) State {
	if mode == s.RangeMode {
		return s
	}
	next := s
	next.RangeMode = mode
	next.FromDate = ""
	next.ToDate = ""
	next.MixingNoFrom = ""
	next.MixingNoTo = ""
	next.Units = nil
	next.Lines = nil
	next.Cottons = nil
	next.Mixings = nil
	next.HasLoadedOptions = false
	return next
}

// WithReportType changes the report granularity. The caller must treat
// changed=true as an instruction to discard any loaded result rows.
func (s State) WithReportType(rt report.ReportType) (next State, changed bool) {
	if rt == s.ReportType {
		return s, false
	}
	next = s
	next.ReportType = rt
	return next, true
}

// WithOptionsLoaded marks the derived options as loaded for the current
// scope.
func (s State) WithOptionsLoaded() State {
	next := s
	next.HasLoadedOptions = true
	return next
}

// Validate returns the user-facing problems with the current selection, in
// display order. An empty slice means the selection can run.
func (s State) Validate() []string {
	var problems []string

	switch s.RangeMode {
	case RangeByDate:
		if s.FromDate == "" || s.ToDate == "" {
			problems = append(problems, "Please choose both From and To issue dates.")
		} else {
			from, errFrom := time.Parse("2006-01-02", s.FromDate)
			to, errTo := time.Parse("2006-01-02", s.ToDate)
			if errFrom == nil && errTo == nil && from.After(to) {
				problems = append(problems, "Issue date 'From' cannot be later than 'To'.")
			}
		}
	case RangeByMixing:
		if s.MixingNoFrom == "" || s.MixingNoTo == "" {
			problems = append(problems, "Please provide both From and To mixing numbers.")
		} else {
			from, errFrom := strconv.ParseFloat(s.MixingNoFrom, 64)
			to, errTo := strconv.ParseFloat(s.MixingNoTo, 64)
			switch {
			case errFrom != nil || errTo != nil:
				problems = append(problems, "Mixing numbers must be valid numbers.")
			case from > to:
				problems = append(problems, "Mixing No From cannot be greater than Mixing No To.")
			}
		}
	default:
		problems = append(problems, "Please choose a range mode.")
	}

	if len(s.Units) == 0 {
		problems = append(problems, "Select at least one Unit.")
	}
	if len(s.Lines) == 0 {
		problems = append(problems, "Select at least one Line.")
	}

	return problems
}
