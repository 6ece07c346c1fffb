package etl

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"millstat/config"
	"millstat/database"
)

// DataIngestor pulls lot results and mixing issues from the mill's
// HVI/LIMS Postgres into the analytics store.
type DataIngestor struct {
	config *config.Config
	repo   *database.Repository
}

// NewDataIngestor creates a new data ingestor
func NewDataIngestor(cfg *config.Config, repo *database.Repository) *DataIngestor {
	return &DataIngestor{
		config: cfg,
		repo:   repo,
	}
}

// IngestData ingests source data issued inside the given time range.
// Zero times mean "everything the source has".
func (d *DataIngestor) IngestData(startTime, endTime time.Time) (map[string]int, error) {
	if d.config.MockData.Enabled {
		return d.ingestMockData()
	}

	src, err := d.openSource()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	lots, err := d.fetchLotResults(src, startTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lot results: %w", err)
	}
	if err := d.repo.BulkInsertLotResults(lots); err != nil {
		return nil, fmt.Errorf("failed to insert lot results: %w", err)
	}

	issues, err := d.fetchMixingIssues(src, startTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mixing issues: %w", err)
	}
	if err := d.repo.InsertMixingIssues(issues); err != nil {
		return nil, fmt.Errorf("failed to insert mixing issues: %w", err)
	}

	// Lots that arrived with results are no longer pending
	lotNos := make([]string, 0, len(lots))
	for _, l := range lots {
		lotNos = append(lotNos, l.LotNo)
	}
	resolved, err := d.repo.ResolvePendingLots(lotNos)
	if err != nil {
		return nil, err
	}

	return map[string]int{
		"lot_results":      len(lots),
		"mixing_issues":    len(issues),
		"pending_resolved": int(resolved),
	}, nil
}

func (d *DataIngestor) openSource() (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		d.config.SourceDBHost, d.config.SourceDBPort, d.config.SourceDBName,
		d.config.SourceDBUser, d.config.SourceDBPassword)

	src, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open source db: %w", err)
	}
	if err := src.Ping(); err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to ping source db: %w", err)
	}
	return src, nil
}

func (d *DataIngestor) fetchLotResults(src *sql.DB, startTime, endTime time.Time) ([]database.LotResult, error) {
	query := fmt.Sprintf(`
		SELECT lot_no, party, station, variety, issue_date,
		       no_of_bale, uhml, mic, str, rd, plus_b, sf, ui,
		       elong, trash, moist, min_mic, min_mic_bale_per_lot, mat, c_grade
		FROM %s
		WHERE ($1::timestamp IS NULL OR issue_date >= $1)
		  AND ($2::timestamp IS NULL OR issue_date <= $2)
		ORDER BY issue_date`, d.config.SourceLotTable)

	rows, err := src.Query(query, nullTime(startTime), nullTime(endTime))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []database.LotResult
	for rows.Next() {
		var l database.LotResult
		var party, station, variety, cGrade sql.NullString
		var issueDate sql.NullTime
		metrics := make([]sql.NullFloat64, 14)
		dest := []interface{}{&l.LotNo, &party, &station, &variety, &issueDate}
		for i := range metrics {
			dest = append(dest, &metrics[i])
		}
		dest = append(dest, &cGrade)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		l.Party = party.String
		l.Station = station.String
		l.Variety = variety.String
		l.CGrade = cGrade.String
		if issueDate.Valid {
			l.IssueDate = issueDate.Time.Format("2006-01-02")
		}
		ptr := func(i int) *float64 {
			if metrics[i].Valid {
				v := metrics[i].Float64
				return &v
			}
			return nil
		}
		l.NoOfBale = ptr(0)
		l.UHML = ptr(1)
		l.Mic = ptr(2)
		l.Str = ptr(3)
		l.Rd = ptr(4)
		l.PlusB = ptr(5)
		l.SF = ptr(6)
		l.UI = ptr(7)
		l.Elong = ptr(8)
		l.Trash = ptr(9)
		l.Moist = ptr(10)
		l.MinMic = ptr(11)
		l.MinMicBalePerLot = ptr(12)
		l.Mat = ptr(13)
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

func (d *DataIngestor) fetchMixingIssues(src *sql.DB, startTime, endTime time.Time) ([]database.MixingIssue, error) {
	query := fmt.Sprintf(`
		SELECT unit, line, cotton, mixing_no, mixing, lot_no, issue_date, no_of_bale
		FROM %s
		WHERE ($1::timestamp IS NULL OR issue_date >= $1)
		  AND ($2::timestamp IS NULL OR issue_date <= $2)
		ORDER BY issue_date`, d.config.SourceIssueTable)

	rows, err := src.Query(query, nullTime(startTime), nullTime(endTime))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []database.MixingIssue
	for rows.Next() {
		var m database.MixingIssue
		var unit, line, cotton, mixingNo, mixing, lotNo sql.NullString
		var issueDate sql.NullTime
		var bale sql.NullFloat64
		if err := rows.Scan(&unit, &line, &cotton, &mixingNo, &mixing, &lotNo, &issueDate, &bale); err != nil {
			return nil, err
		}
		m.Unit = unit.String
		m.Line = line.String
		m.Cotton = cotton.String
		m.MixingNo = mixingNo.String
		m.Mixing = mixing.String
		m.LotNo = lotNo.String
		if issueDate.Valid {
			m.IssueDate = issueDate.Time.Format("2006-01-02")
		}
		if bale.Valid {
			v := bale.Float64
			m.NoOfBale = &v
		}
		issues = append(issues, m)
	}
	return issues, rows.Err()
}

// ingestMockData generates and inserts mock data
func (d *DataIngestor) ingestMockData() (map[string]int, error) {
	generator := NewMockDataGenerator(&d.config.MockData)

	lots := generator.GenerateLotResults()
	if err := d.repo.BulkInsertLotResults(lots); err != nil {
		return nil, fmt.Errorf("failed to insert lot results: %w", err)
	}

	issues := generator.GenerateMixingIssues(lots)
	if err := d.repo.InsertMixingIssues(issues); err != nil {
		return nil, fmt.Errorf("failed to insert mixing issues: %w", err)
	}

	return map[string]int{
		"lot_results":   len(lots),
		"mixing_issues": len(issues),
	}, nil
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
