package filter

import (
	"sort"
	"strings"

	"millstat/report"
)

// Option is one selectable entry in a filter dropdown
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionSet holds the derived options for the summary filters
type OptionSet struct {
	Units   []Option `json:"units"`
	Lines   []Option `json:"lines"`
	Cottons []Option `json:"cottons"`
	Mixings []Option `json:"mixings"`
}

// DeriveOptions builds the distinct, sorted option lists from the records
// currently in scope. Blank cells are dropped; ordering is the numeric-aware
// text order the grids use. Derivation never mutates its input.
func DeriveOptions(records []report.Record) OptionSet {
	return OptionSet{
		Units:   distinctOptions(records, func(r report.Record) string { return r.Unit }),
		Lines:   distinctOptions(records, func(r report.Record) string { return r.Line }),
		Cottons: distinctOptions(records, func(r report.Record) string { return r.Variety }),
		Mixings: distinctOptions(records, func(r report.Record) string { return r.MixingNo }),
	}
}

// Options converts plain values to value/label pairs, preserving order
func Options(values []string) []Option {
	opts := make([]Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, Option{Value: v, Label: v})
	}
	return opts
}

// SortValues orders a distinct value list in place with the numeric-aware
// comparator.
func SortValues(values []string) {
	sort.Slice(values, func(i, j int) bool {
		return report.CompareText(values[i], values[j]) < 0
	})
}

func distinctOptions(records []report.Record, field func(report.Record) string) []Option {
	seen := make(map[string]bool)
	var values []string
	for _, r := range records {
		v := strings.TrimSpace(field(r))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	SortValues(values)
	return Options(values)
}

// ToggleValue flips one value in a multi-select: selected values are
// removed, unselected ones appended. The input slice is not modified.
func ToggleValue(selected []string, value string) []string {
	for i, v := range selected {
		if v == value {
			out := make([]string, 0, len(selected)-1)
			out = append(out, selected[:i]...)
			return append(out, selected[i+1:]...)
		}
	}
	out := make([]string, len(selected), len(selected)+1)
	copy(out, selected)
	return append(out, value)
}

// ToggleAll implements the Select All checkbox: a complete selection
// clears, anything less selects every option value.
func ToggleAll(selected []string, options []Option) []string {
	if len(selected) == len(options) {
		return nil
	}
	values := make([]string, len(options))
	for i, o := range options {
		values[i] = o.Value
	}
	return values
}

// FilterOptions narrows an option list to the entries whose label contains
// the search term, case-insensitively. A blank term keeps everything.
func FilterOptions(options []Option, term string) []Option {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return options
	}
	var matched []Option
	for _, o := range options {
		if strings.Contains(strings.ToLower(o.Label), term) {
			matched = append(matched, o)
		}
	}
	return matched
}
