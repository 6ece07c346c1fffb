package database

import (
	"database/sql"
	"testing"

	_ "github.com/marcboeker/go-duckdb"
	_ "github.com/mattn/go-sqlite3"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	analytics, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("failed to open in-memory duckdb: %v", err)
	}
	t.Cleanup(func() { analytics.Close() })

	app, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	t.Cleanup(func() { app.Close() })

	repo := NewRepository(&DB{Analytics: analytics, App: app})
	if err := repo.CreateSchema(); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return repo
}

func f(v float64) *float64 { return &v }

func seedLots(t *testing.T, repo *Repository) {
	t.Helper()
	lots := []LotResult{
		{LotNo: "L-1001", Party: "Alpha Traders", Station: "Adoni", Variety: "MCU-5",
			IssueDate: "2024-01-02", NoOfBale: f(10), Mic: f(4.0), UHML: f(29.1)},
		{LotNo: "L-1002", Party: "Beta Ginners", Station: "Guntur", Variety: "MCU-5",
			IssueDate: "2024-01-05", NoOfBale: f(5), Mic: f(5.0)},
		{LotNo: "L-1003", Party: "Alpha Traders", Station: "Adoni", Variety: "DCH-32",
			IssueDate: "2024-02-10", NoOfBale: f(8), Mic: f(3.6)},
	}
	if err := repo.BulkInsertLotResults(lots); err != nil {
		t.Fatalf("failed to insert lots: %v", err)
	}
}

func seedIssues(t *testing.T, repo *Repository) {
	t.Helper()
	issues := []MixingIssue{
		{Unit: "2", Line: "A", Cotton: "MCU-5", MixingNo: "101", Mixing: "M1",
			LotNo: "L-1001", IssueDate: "2024-01-02", NoOfBale: f(10)},
		{Unit: "2", Line: "A", Cotton: "MCU-5", MixingNo: "102", Mixing: "M1",
			LotNo: "L-1002", IssueDate: "2024-01-05", NoOfBale: f(5)},
		{Unit: "5", Line: "B", Cotton: "DCH-32", MixingNo: "99", Mixing: "M2",
			LotNo: "L-1003", IssueDate: "2024-02-10", NoOfBale: f(8)},
	}
	if err := repo.InsertMixingIssues(issues); err != nil {
		t.Fatalf("failed to insert issues: %v", err)
	}
}

func TestQueryMixingRecordsByDateRange(t *testing.T) {
	repo := newTestRepo(t)
	seedLots(t, repo)
	seedIssues(t, repo)

	scope := RecordScope{
		RangeMode: "date",
		FromDate:  "2024-01-01",
		ToDate:    "2024-01-31",
	}

	count, err := repo.CountMixingRecords(scope)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	records, err := repo.QueryMixingRecords(scope, 0, 0)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// Metrics come through the lot join
	first := records[0]
	if first.Variety != "MCU-5" || first.Unit != "2" {
		t.Errorf("first record = %+v", first)
	}
	if mic, ok := first.Values["mic"].(float64); !ok || mic != 4.0 {
		t.Errorf("mic from joined lot = %v", first.Values["mic"])
	}
}

func TestQueryMixingRecordsByMixingRange(t *testing.T) {
	repo := newTestRepo(t)
	seedLots(t, repo)
	seedIssues(t, repo)

	scope := RecordScope{
		RangeMode:    "mixing",
		MixingNoFrom: "100",
		MixingNoTo:   "110",
		Units:        []string{"2"},
	}

	records, err := repo.QueryMixingRecords(scope, 0, 0)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (mixing 101 and 102)", len(records))
	}
	for _, r := range records {
		if r.MixingNo != "101" && r.MixingNo != "102" {
			t.Errorf("unexpected mixing_no %s", r.MixingNo)
		}
	}
}

func TestFilterOptionValues(t *testing.T) {
	repo := newTestRepo(t)
	seedLots(t, repo)
	seedIssues(t, repo)

	opts, err := repo.FilterOptionValues(RecordScope{
		RangeMode: "date",
		FromDate:  "2024-01-01",
		ToDate:    "2024-12-31",
	})
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}
	if len(opts["units"]) != 2 {
		t.Errorf("units = %v, want 2 values", opts["units"])
	}
	if len(opts["cottons"]) != 2 {
		t.Errorf("cottons = %v, want 2 values", opts["cottons"])
	}
}

func TestUpdateAndDeleteLotResult(t *testing.T) {
	repo := newTestRepo(t)
	seedLots(t, repo)

	lots, err := repo.QueryLotResults(LotScope{Lots: []string{"L-1001"}})
	if err != nil || len(lots) != 1 {
		t.Fatalf("lookup failed: %v (%d rows)", err, len(lots))
	}
	id := lots[0].ID

	if err := repo.UpdateLotResult(id, map[string]interface{}{"mic": 4.25, "c_grade": "B"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	lots, _ = repo.QueryLotResults(LotScope{Lots: []string{"L-1001"}})
	if lots[0].Mic == nil || *lots[0].Mic != 4.25 || lots[0].CGrade != "B" {
		t.Errorf("update not applied: %+v", lots[0])
	}

	if err := repo.UpdateLotResult(id, map[string]interface{}{"nope": 1}); err == nil {
		t.Errorf("update with unknown column should fail")
	}

	if err := repo.DeleteLotResult(id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := repo.DeleteLotResult(id); err != sql.ErrNoRows {
		t.Errorf("second delete = %v, want sql.ErrNoRows", err)
	}
}

func TestMissingMixingLots(t *testing.T) {
	repo := newTestRepo(t)
	seedLots(t, repo)

	// Only L-1001 gets issued
	if err := repo.InsertMixingIssues([]MixingIssue{
		{Unit: "2", Line: "A", Cotton: "MCU-5", MixingNo: "101", LotNo: "L-1001", IssueDate: "2024-01-02"},
	}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	missing, err := repo.MissingMixingLots("", "")
	if err != nil {
		t.Fatalf("missing query failed: %v", err)
	}
	if len(missing) != 2 {
		t.Fatalf("missing = %d lots, want 2", len(missing))
	}
	for _, l := range missing {
		if l.LotNo == "L-1001" {
			t.Errorf("issued lot reported missing")
		}
	}
}

func TestPendingLotsResolve(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.InsertPendingLots([]PendingLot{
		{LotNo: "L-2001", Party: "Alpha Traders", ReceivedDate: "2024-03-01"},
		{LotNo: "L-2002", Party: "Beta Ginners", ReceivedDate: "2024-03-02"},
	}); err != nil {
		t.Fatalf("insert pending failed: %v", err)
	}

	n, err := repo.ResolvePendingLots([]string{"L-2001"})
	if err != nil || n != 1 {
		t.Fatalf("resolve = %d, %v; want 1, nil", n, err)
	}

	lots, _ := repo.ListPendingLots()
	if len(lots) != 1 || lots[0].LotNo != "L-2002" {
		t.Errorf("pending after resolve = %+v", lots)
	}
}

func TestReportJobLifecycle(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.CreateReportJob("job-1", "running"); err != nil {
		t.Fatalf("create job failed: %v", err)
	}
	if err := repo.UpdateReportJob("job-1", "completed", "", 100); err != nil {
		t.Fatalf("update job failed: %v", err)
	}

	job, err := repo.GetReportJob("job-1")
	if err != nil {
		t.Fatalf("get job failed: %v", err)
	}
	if job.Status != "completed" || job.Progress != 100 {
		t.Errorf("job = %+v", job)
	}

	if _, err := repo.GetReportJob("nope"); err != sql.ErrNoRows {
		t.Errorf("missing job error = %v, want sql.ErrNoRows", err)
	}
}

func TestMixingCodes(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.UpsertMixingCode("C01", "MCU-5"); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := repo.UpsertMixingCode("C01", "MCU-5 Improved"); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	codes, err := repo.ListMixingCodes()
	if err != nil || len(codes) != 1 {
		t.Fatalf("list = %v, %v", codes, err)
	}
	if codes[0].Variety != "MCU-5 Improved" {
		t.Errorf("variety = %q after upsert", codes[0].Variety)
	}
}
