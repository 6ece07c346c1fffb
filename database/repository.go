package database

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"millstat/report"
)

// RecordScope restricts a mixing summary query. Exactly one of the two
// range pairs is used, per the active range mode.
type RecordScope struct {
	RangeMode    string   `json:"range_mode"`
	FromDate     string   `json:"from_date"`
	ToDate       string   `json:"to_date"`
	MixingNoFrom string   `json:"mixing_no_from"`
	MixingNoTo   string   `json:"mixing_no_to"`
	Units        []string `json:"units"`
	Lines        []string `json:"lines"`
	Cottons      []string `json:"cottons"`
	Mixings      []string `json:"mixings"`
}

// LotScope restricts a lot results query
type LotScope struct {
	Lots      []string `json:"lots"`
	Varieties []string `json:"varieties"`
	Stations  []string `json:"stations"`
	Parties   []string `json:"parties"`
	FromDate  string   `json:"from_date"`
	ToDate    string   `json:"to_date"`
}

type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateSchema creates necessary database tables
func (r *Repository) CreateSchema() error {
	execSQL := func(db *sql.DB, path string) error {
		content, err := os.ReadFile(path)
		if err != nil {
			// Running from the package directory (tests) drops the prefix
			alt := strings.TrimPrefix(path, "database/")
			if content, err = os.ReadFile(alt); err != nil {
				return fmt.Errorf("failed to read schema %s: %w", path, err)
			}
		}
		statements := strings.Split(string(content), ";")
		for _, stmt := range statements {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("failed to execute statement in %s: %w\nStatement: %s", path, err, stmt)
			}
		}
		return nil
	}

	if err := execSQL(r.db.Analytics, "database/schema_duckdb.sql"); err != nil {
		return fmt.Errorf("duckdb schema error: %w", err)
	}
	if err := execSQL(r.db.App, "database/schema_sqlite.sql"); err != nil {
		return fmt.Errorf("sqlite schema error: %w", err)
	}
	return nil
}

// scopeClauses builds the WHERE fragment for a RecordScope
func scopeClauses(scope RecordScope) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if scope.RangeMode == "mixing" {
		if scope.MixingNoFrom != "" && scope.MixingNoTo != "" {
			clauses = append(clauses, "TRY_CAST(mixing_no AS INTEGER) BETWEEN TRY_CAST(? AS INTEGER) AND TRY_CAST(? AS INTEGER)")
			args = append(args, scope.MixingNoFrom, scope.MixingNoTo)
		}
	} else {
		if scope.FromDate != "" && scope.ToDate != "" {
			clauses = append(clauses, "issue_date >= ? AND issue_date <= ?")
			args = append(args, scope.FromDate, scope.ToDate)
		}
	}

	addIn := func(col string, vals []string) {
		if len(vals) == 0 {
			return
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(vals)), ",")
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", col, placeholders))
		for _, v := range vals {
			args = append(args, v)
		}
	}
	addIn("unit", scope.Units)
	addIn("line", scope.Lines)
	addIn("cotton", scope.Cottons)
	addIn("mixing_no", scope.Mixings)

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}
	return where, args
}

// CountMixingRecords returns the number of rows the scope selects
func (r *Repository) CountMixingRecords(scope RecordScope) (int, error) {
	where, args := scopeClauses(scope)
	var count int
	err := r.db.Analytics.QueryRow("SELECT COUNT(*) FROM mixing_results"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count mixing records: %w", err)
	}
	return count, nil
}

// QueryMixingRecords fetches a page of the scoped mixing rows joined with
// their lot metrics, ready for the summary engine.
func (r *Repository) QueryMixingRecords(scope RecordScope, limit, offset int) ([]report.Record, error) {
	where, args := scopeClauses(scope)
	query := `
		SELECT unit, line, cotton, mixing_no, mixing, issue_date,
		       no_of_bale, uhml, mic, str, rd, plus_b, sf, ui, elong, trash, moist, min_mic
		FROM mixing_results` + where + `
		ORDER BY issue_date, unit, line, mixing_no, id`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}

	rows, err := r.db.Analytics.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mixing records: %w", err)
	}
	defer rows.Close()

	metricCols := []string{"no_of_bale", "uhml", "mic", "str", "rd", "plus_b", "sf", "ui", "elong", "trash", "moist", "min_mic"}

	var records []report.Record
	for rows.Next() {
		var unit, line, cotton, mixingNo, mixing, issueDate sql.NullString
		metrics := make([]sql.NullFloat64, len(metricCols))
		dest := []interface{}{&unit, &line, &cotton, &mixingNo, &mixing, &issueDate}
		for i := range metrics {
			dest = append(dest, &metrics[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan mixing record: %w", err)
		}

		values := make(map[string]interface{}, len(metricCols))
		for i, col := range metricCols {
			if metrics[i].Valid {
				values[col] = metrics[i].Float64
			} else {
				values[col] = nil
			}
		}
		records = append(records, report.Record{
			IssueDate: issueDate.String,
			Variety:   cotton.String,
			Unit:      unit.String,
			Line:      line.String,
			MixingNo:  mixingNo.String,
			Mixing:    mixing.String,
			Values:    values,
		})
	}
	return records, rows.Err()
}

// FilterOptionValues returns the distinct unit/line/cotton/mixing values
// within the scope's range filter (multi-selects are ignored so the lists
// stay complete for the pickers).
func (r *Repository) FilterOptionValues(scope RecordScope) (map[string][]string, error) {
	rangeOnly := RecordScope{
		RangeMode:    scope.RangeMode,
		FromDate:     scope.FromDate,
		ToDate:       scope.ToDate,
		MixingNoFrom: scope.MixingNoFrom,
		MixingNoTo:   scope.MixingNoTo,
	}
	where, args := scopeClauses(rangeOnly)

	out := make(map[string][]string)
	for key, col := range map[string]string{
		"units":   "unit",
		"lines":   "line",
		"cottons": "cotton",
		"mixings": "mixing_no",
	} {
		query := fmt.Sprintf("SELECT DISTINCT %s FROM mixing_issues%s", col, where)
		rows, err := r.db.Analytics.Query(query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s options: %w", key, err)
		}
		var values []string
		for rows.Next() {
			var v sql.NullString
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return nil, err
			}
			if strings.TrimSpace(v.String) != "" {
				values = append(values, v.String)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		out[key] = values
	}
	return out, nil
}

var lotColumns = []string{
	"id", "lot_no", "party", "station", "variety", "issue_date",
	"no_of_bale", "uhml", "mic", "str", "rd", "plus_b", "sf", "ui",
	"elong", "trash", "moist", "min_mic", "min_mic_bale_per_lot", "mat", "c_grade",
}

func scanLotResult(rows *sql.Rows) (LotResult, error) {
	var l LotResult
	var party, station, variety, issueDate, cGrade sql.NullString
	metrics := make([]sql.NullFloat64, 14)
	dest := []interface{}{&l.ID, &l.LotNo, &party, &station, &variety, &issueDate}
	for i := range metrics {
		dest = append(dest, &metrics[i])
	}
	dest = append(dest, &cGrade)
	if err := rows.Scan(dest...); err != nil {
		return l, err
	}
	l.Party = party.String
	l.Station = station.String
	l.Variety = variety.String
	l.IssueDate = issueDate.String
	l.CGrade = cGrade.String

	assign := func(i int) *float64 {
		if metrics[i].Valid {
			v := metrics[i].Float64
			return &v
		}
		return nil
	}
	l.NoOfBale = assign(0)
	l.UHML = assign(1)
	l.Mic = assign(2)
	l.Str = assign(3)
	l.Rd = assign(4)
	l.PlusB = assign(5)
	l.SF = assign(6)
	l.UI = assign(7)
	l.Elong = assign(8)
	l.Trash = assign(9)
	l.Moist = assign(10)
	l.MinMic = assign(11)
	l.MinMicBalePerLot = assign(12)
	l.Mat = assign(13)
	return l, nil
}

// QueryLotResults fetches lot rows under the given scope
func (r *Repository) QueryLotResults(scope LotScope) ([]LotResult, error) {
	var clauses []string
	var args []interface{}

	addIn := func(col string, vals []string) {
		if len(vals) == 0 {
			return
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(vals)), ",")
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", col, placeholders))
		for _, v := range vals {
			args = append(args, v)
		}
	}
	addIn("lot_no", scope.Lots)
	addIn("variety", scope.Varieties)
	addIn("station", scope.Stations)
	addIn("party", scope.Parties)

	if scope.FromDate != "" && scope.ToDate != "" {
		clauses = append(clauses, "issue_date >= ? AND issue_date <= ?")
		args = append(args, scope.FromDate, scope.ToDate)
	}

	query := "SELECT " + strings.Join(lotColumns, ", ") + " FROM lot_results"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY issue_date, lot_no"

	rows, err := r.db.Analytics.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot results: %w", err)
	}
	defer rows.Close()

	var results []LotResult
	for rows.Next() {
		l, err := scanLotResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot result: %w", err)
		}
		results = append(results, l)
	}
	return results, rows.Err()
}

// LotFilterOptions returns the distinct lot/variety/station/party values
func (r *Repository) LotFilterOptions() (map[string][]string, error) {
	out := make(map[string][]string)
	for key, col := range map[string]string{
		"lots":      "lot_no",
		"varieties": "variety",
		"stations":  "station",
		"parties":   "party",
	} {
		rows, err := r.db.Analytics.Query(fmt.Sprintf("SELECT DISTINCT %s FROM lot_results", col))
		if err != nil {
			return nil, fmt.Errorf("failed to query %s options: %w", key, err)
		}
		var values []string
		for rows.Next() {
			var v sql.NullString
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return nil, err
			}
			if strings.TrimSpace(v.String) != "" {
				values = append(values, v.String)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		out[key] = values
	}
	return out, nil
}

// BulkInsertLotResults inserts lot rows in one transaction, assigning ids
// where missing.
func (r *Repository) BulkInsertLotResults(data []LotResult) error {
	if len(data) == 0 {
		return nil
	}

	tx, err := r.db.Analytics.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO lot_results (` + strings.Join(lotColumns, ", ") + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range data {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		_, err := stmt.Exec(
			row.ID, row.LotNo, row.Party, row.Station, row.Variety, row.IssueDate,
			row.NoOfBale, row.UHML, row.Mic, row.Str, row.Rd, row.PlusB, row.SF, row.UI,
			row.Elong, row.Trash, row.Moist, row.MinMic, row.MinMicBalePerLot, row.Mat, row.CGrade,
		)
		if err != nil {
			return fmt.Errorf("failed to insert lot row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// lotUpdatable whitelists the columns a PATCH may touch
var lotUpdatable = map[string]bool{
	"lot_no": true, "party": true, "station": true, "variety": true,
	"issue_date": true, "no_of_bale": true, "uhml": true, "mic": true,
	"str": true, "rd": true, "plus_b": true, "sf": true, "ui": true,
	"elong": true, "trash": true, "moist": true, "min_mic": true,
	"min_mic_bale_per_lot": true, "mat": true, "c_grade": true,
}

// UpdateLotResult applies the given column values to one lot row
func (r *Repository) UpdateLotResult(id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update")
	}

	var sets []string
	var args []interface{}
	for col, val := range fields {
		if !lotUpdatable[col] {
			return fmt.Errorf("column %q is not updatable", col)
		}
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}
	args = append(args, id)

	res, err := r.db.Analytics.Exec(
		"UPDATE lot_results SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update lot result: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteLotResult removes one lot row by id
func (r *Repository) DeleteLotResult(id string) error {
	res, err := r.db.Analytics.Exec("DELETE FROM lot_results WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete lot result: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// QueryMixingIssues lists issue rows with optional filters. Mixing number
// bounds compare numerically.
func (r *Repository) QueryMixingIssues(unit, line, cotton, mixingNoFrom, mixingNoTo string) ([]MixingIssue, error) {
	var clauses []string
	var args []interface{}

	addEq := func(col, val string) {
		if val == "" {
			return
		}
		clauses = append(clauses, col+" = ?")
		args = append(args, val)
	}
	addEq("unit", unit)
	addEq("line", line)
	addEq("cotton", cotton)

	if mixingNoFrom != "" && mixingNoTo != "" {
		clauses = append(clauses, "TRY_CAST(mixing_no AS INTEGER) BETWEEN TRY_CAST(? AS INTEGER) AND TRY_CAST(? AS INTEGER)")
		args = append(args, mixingNoFrom, mixingNoTo)
	}

	query := `SELECT id, unit, line, cotton, mixing_no, mixing, lot_no, issue_date, no_of_bale FROM mixing_issues`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY issue_date, unit, line, mixing_no"

	rows, err := r.db.Analytics.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mixing issues: %w", err)
	}
	defer rows.Close()

	var issues []MixingIssue
	for rows.Next() {
		var m MixingIssue
		var unit, line, cotton, mixingNo, mixing, lotNo, issueDate sql.NullString
		var bale sql.NullFloat64
		if err := rows.Scan(&m.ID, &unit, &line, &cotton, &mixingNo, &mixing, &lotNo, &issueDate, &bale); err != nil {
			return nil, fmt.Errorf("failed to scan mixing issue: %w", err)
		}
		m.Unit = unit.String
		m.Line = line.String
		m.Cotton = cotton.String
		m.MixingNo = mixingNo.String
		m.Mixing = mixing.String
		m.LotNo = lotNo.String
		m.IssueDate = issueDate.String
		if bale.Valid {
			v := bale.Float64
			m.NoOfBale = &v
		}
		issues = append(issues, m)
	}
	return issues, rows.Err()
}

// InsertMixingIssues inserts issue rows in one transaction
func (r *Repository) InsertMixingIssues(data []MixingIssue) error {
	if len(data) == 0 {
		return nil
	}

	tx, err := r.db.Analytics.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO mixing_issues (id, unit, line, cotton, mixing_no, mixing, lot_no, issue_date, no_of_bale)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range data {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		_, err := stmt.Exec(row.ID, row.Unit, row.Line, row.Cotton, row.MixingNo, row.Mixing, row.LotNo, row.IssueDate, row.NoOfBale)
		if err != nil {
			return fmt.Errorf("failed to insert mixing issue %d: %w", i, err)
		}
	}
	return tx.Commit()
}

var issueUpdatable = map[string]bool{
	"unit": true, "line": true, "cotton": true, "mixing_no": true,
	"mixing": true, "lot_no": true, "issue_date": true, "no_of_bale": true,
}

// UpdateMixingIssue applies the given column values to one issue row
func (r *Repository) UpdateMixingIssue(id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update")
	}

	var sets []string
	var args []interface{}
	for col, val := range fields {
		if !issueUpdatable[col] {
			return fmt.Errorf("column %q is not updatable", col)
		}
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}
	args = append(args, id)

	res, err := r.db.Analytics.Exec(
		"UPDATE mixing_issues SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update mixing issue: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteMixingIssue removes one issue row by id
func (r *Repository) DeleteMixingIssue(id string) error {
	res, err := r.db.Analytics.Exec("DELETE FROM mixing_issues WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete mixing issue: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteMixingByChart removes every issue row of one mixing on a line
func (r *Repository) DeleteMixingByChart(unit, line, mixingNo string) (int64, error) {
	res, err := r.db.Analytics.Exec(
		"DELETE FROM mixing_issues WHERE unit = ? AND line = ? AND mixing_no = ?",
		unit, line, mixingNo)
	if err != nil {
		return 0, fmt.Errorf("failed to delete mixing chart: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// MissingMixingLots lists tested lots never issued into any mixing
func (r *Repository) MissingMixingLots(fromDate, toDate string) ([]LotResult, error) {
	query := "SELECT " + strings.Join(lotColumns, ", ") + `
		FROM lot_results
		WHERE lot_no NOT IN (SELECT DISTINCT lot_no FROM mixing_issues WHERE lot_no IS NOT NULL)`
	var args []interface{}
	if fromDate != "" && toDate != "" {
		query += " AND issue_date >= ? AND issue_date <= ?"
		args = append(args, fromDate, toDate)
	}
	query += " ORDER BY issue_date, lot_no"

	rows, err := r.db.Analytics.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query missing lots: %w", err)
	}
	defer rows.Close()

	var results []LotResult
	for rows.Next() {
		l, err := scanLotResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan missing lot: %w", err)
		}
		results = append(results, l)
	}
	return results, rows.Err()
}

// ListMixingCodes returns the cotton code to variety mapping
func (r *Repository) ListMixingCodes() ([]MixingCode, error) {
	rows, err := r.db.Analytics.Query("SELECT cotton, variety FROM mixing_codes ORDER BY cotton")
	if err != nil {
		return nil, fmt.Errorf("failed to query mixing codes: %w", err)
	}
	defer rows.Close()

	var codes []MixingCode
	for rows.Next() {
		var c MixingCode
		var variety sql.NullString
		if err := rows.Scan(&c.Cotton, &variety); err != nil {
			return nil, err
		}
		c.Variety = variety.String
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// UpsertMixingCode sets the variety name for one cotton code
func (r *Repository) UpsertMixingCode(cotton, variety string) error {
	_, err := r.db.Analytics.Exec(`
		INSERT INTO mixing_codes (cotton, variety) VALUES (?, ?)
		ON CONFLICT (cotton) DO UPDATE SET variety = EXCLUDED.variety
	`, cotton, variety)
	if err != nil {
		return fmt.Errorf("failed to upsert mixing code: %w", err)
	}
	return nil
}

// ListPendingLots returns lots awaiting test results
func (r *Repository) ListPendingLots() ([]PendingLot, error) {
	rows, err := r.db.Analytics.Query(
		"SELECT id, lot_no, party, station, received_date FROM pending_lots ORDER BY received_date, lot_no")
	if err != nil {
		return nil, fmt.Errorf("failed to query pending lots: %w", err)
	}
	defer rows.Close()

	var lots []PendingLot
	for rows.Next() {
		var p PendingLot
		var party, station, received sql.NullString
		if err := rows.Scan(&p.ID, &p.LotNo, &party, &station, &received); err != nil {
			return nil, err
		}
		p.Party = party.String
		p.Station = station.String
		p.ReceivedDate = received.String
		lots = append(lots, p)
	}
	return lots, rows.Err()
}

// InsertPendingLots inserts pending rows, assigning ids where missing
func (r *Repository) InsertPendingLots(data []PendingLot) error {
	if len(data) == 0 {
		return nil
	}

	tx, err := r.db.Analytics.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO pending_lots (id, lot_no, party, station, received_date) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range data {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if _, err := stmt.Exec(row.ID, row.LotNo, row.Party, row.Station, row.ReceivedDate); err != nil {
			return fmt.Errorf("failed to insert pending lot %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ResolvePendingLots drops pending rows once their lot has results
func (r *Repository) ResolvePendingLots(lotNos []string) (int64, error) {
	if len(lotNos) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(lotNos)), ",")
	args := make([]interface{}, len(lotNos))
	for i, l := range lotNos {
		args[i] = l
	}
	res, err := r.db.Analytics.Exec(
		"DELETE FROM pending_lots WHERE lot_no IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve pending lots: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// CreateReportJob records a new streamed summary run
func (r *Repository) CreateReportJob(jobID, status string) error {
	_, err := r.db.App.Exec(
		"INSERT INTO report_jobs (job_id, status, created_at, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)",
		jobID, status)
	return err
}

// UpdateReportJob updates a run's status and progress
func (r *Repository) UpdateReportJob(jobID, status, errorMsg string, progress int) error {
	_, err := r.db.App.Exec(
		"UPDATE report_jobs SET status = ?, error_message = ?, progress = ?, updated_at = CURRENT_TIMESTAMP WHERE job_id = ?",
		status, errorMsg, progress, jobID)
	return err
}

// GetReportJob fetches one run's status
func (r *Repository) GetReportJob(jobID string) (*ReportJob, error) {
	var job ReportJob
	var errorMsg sql.NullString
	err := r.db.App.QueryRow(
		"SELECT job_id, status, progress, error_message, created_at, updated_at FROM report_jobs WHERE job_id = ?",
		jobID).Scan(&job.JobID, &job.Status, &job.Progress, &errorMsg, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if errorMsg.Valid {
		job.ErrorMessage = errorMsg.String
	}
	return &job, nil
}

// LogUpload records one template upload attempt
func (r *Repository) LogUpload(l UploadLog) error {
	_, err := r.db.App.Exec(
		"INSERT INTO upload_logs (filename, rows_inserted, status, error_message, created_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)",
		l.Filename, l.RowsInserted, l.Status, l.ErrorMessage)
	return err
}

// CleanupOldData prunes aged job and upload rows from the app DB
func (r *Repository) CleanupOldData(retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	if _, err := r.db.App.Exec("DELETE FROM report_jobs WHERE created_at < ?", cutoff); err != nil {
		return fmt.Errorf("failed to prune report jobs: %w", err)
	}
	if _, err := r.db.App.Exec("DELETE FROM upload_logs WHERE created_at < ?", cutoff); err != nil {
		return fmt.Errorf("failed to prune upload logs: %w", err)
	}
	return nil
}
