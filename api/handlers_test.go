package api

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"millstat/filter"
	"millstat/query"
	"millstat/report"
)

func TestParseListParam(t *testing.T) {
	r := httptest.NewRequest("GET", `/api/cotton-results?unit=["5","7"]&line=1,2&cotton=`, nil)

	assert.Equal(t, []string{"5", "7"}, parseListParam(r, "unit"))
	assert.Equal(t, []string{"1", "2"}, parseListParam(r, "line"))
	assert.Nil(t, parseListParam(r, "cotton"))
	assert.Nil(t, parseListParam(r, "mixing"))
}

func TestScopeFromQueryDefaultsRangeMode(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/filter-options?from_date=2024-01-01&to_date=2024-01-31", nil)
	scope := scopeFromQuery(r)
	assert.Equal(t, string(filter.RangeByDate), scope.RangeMode)
	assert.Equal(t, "2024-01-01", scope.FromDate)

	r = httptest.NewRequest("GET", "/api/filter-options?mixing_no_from=10&mixing_no_to=20", nil)
	scope = scopeFromQuery(r)
	assert.Equal(t, string(filter.RangeByMixing), scope.RangeMode)
}

func TestStateFromScopeValidation(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/cotton-mixing-summary/stream?range_mode=date&from_date=2024-01-01", nil)
	msgs := stateFromScope(scopeFromQuery(r), report.ReportWeekly).Validate()

	assert.Contains(t, msgs, "Please choose both From and To issue dates.")
}

func TestNormalizeUpdateValue(t *testing.T) {
	v, err := normalizeUpdateValue("mic", "4.25")
	assert.NoError(t, err)
	assert.Equal(t, 4.25, v)

	v, err = normalizeUpdateValue("mic", "")
	assert.NoError(t, err)
	assert.Nil(t, v)

	_, err = normalizeUpdateValue("mic", "abc")
	assert.Error(t, err)

	v, err = normalizeUpdateValue("issue_date", "07/01/2024")
	assert.NoError(t, err)
	assert.Equal(t, "2024-01-07", v)

	v, err = normalizeUpdateValue("variety", " Shankar-6 ")
	assert.NoError(t, err)
	assert.Equal(t, "Shankar-6", v)

	_, err = normalizeUpdateValue("variety", 12)
	assert.Error(t, err)
}

func TestFiltersSummaryParts(t *testing.T) {
	state := filter.State{
		RangeMode: filter.RangeByDate,
		FromDate:  "2024-01-01",
		ToDate:    "2024-01-31",
		Units:     []string{"5", "7"},
	}
	parts := filtersSummaryParts(state)
	assert.Equal(t, []string{"Dates 01-01-24 to 31-01-24", "Units 5, 7"}, parts)

	line := report.FiltersSummary(parts, report.ReportWeekly)
	assert.Equal(t, "Filters: Dates 01-01-24 to 31-01-24; Units 5, 7 (Report: Weekly)", line)

	assert.Empty(t, filtersSummaryParts(filter.State{RangeMode: filter.RangeByDate}))
}

func TestStreamErrorMessage(t *testing.T) {
	assert.Equal(t, "The report request timed out.", streamErrorMessage(query.ErrTimedOut))
	assert.Equal(t, "The report request was cancelled.", streamErrorMessage(query.ErrCancelled))
	assert.Equal(t, assert.AnError.Error(), streamErrorMessage(assert.AnError))
}

func TestWriteSSE(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSSE(rec, StreamEvent{Type: "progress", Current: 10, Total: 40})

	assert.Equal(t, "data: {\"type\":\"progress\",\"current\":10,\"total\":40}\n\n", rec.Body.String())
}
