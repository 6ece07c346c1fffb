package mart

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"millstat/database"
)

// MartBuilder maintains the lot_stats rollup used by the dashboard tiles
type MartBuilder struct {
	db *database.DB
}

// MartStats holds statistics about the refreshed rollup
type MartStats struct {
	TotalRows     int64
	MinIssueDate  string
	MaxIssueDate  string
	TotalBales    float64
	UniqueVariety int64
}

// NewMartBuilder creates a new mart builder
func NewMartBuilder(db *database.DB) *MartBuilder {
	return &MartBuilder{db: db}
}

// Refresh rebuilds lot_stats: one row per (month, variety) with bale totals
// and bale-weighted metric averages. Weighted averages guard against zero
// bale weight with NULLIF so empty buckets stay NULL.
func (m *MartBuilder) Refresh() (MartStats, error) {
	start := time.Now()
	stats := MartStats{}

	query := `
		CREATE OR REPLACE TABLE lot_stats AS
		SELECT
			STRFTIME(CAST(issue_date AS DATE), '%Y-%m') AS month,
			variety,
			COUNT(*) AS lot_count,
			COALESCE(SUM(no_of_bale), 0) AS total_bales,
			SUM(mic * no_of_bale) / NULLIF(SUM(CASE WHEN mic IS NOT NULL THEN no_of_bale END), 0) AS avg_mic,
			SUM(uhml * no_of_bale) / NULLIF(SUM(CASE WHEN uhml IS NOT NULL THEN no_of_bale END), 0) AS avg_uhml,
			SUM(str * no_of_bale) / NULLIF(SUM(CASE WHEN str IS NOT NULL THEN no_of_bale END), 0) AS avg_str,
			CURRENT_TIMESTAMP AS created_at
		FROM lot_results
		WHERE issue_date IS NOT NULL AND variety IS NOT NULL
		GROUP BY STRFTIME(CAST(issue_date AS DATE), '%Y-%m'), variety;
	`
	if _, err := m.db.Analytics.Exec(query); err != nil {
		return MartStats{}, fmt.Errorf("failed to refresh lot_stats: %w", err)
	}

	indexQueries := []string{
		`CREATE INDEX IF NOT EXISTS idx_lot_stats_month ON lot_stats(month)`,
		`CREATE INDEX IF NOT EXISTS idx_lot_stats_variety ON lot_stats(variety)`,
	}
	for _, indexQuery := range indexQueries {
		if _, err := m.db.Analytics.Exec(indexQuery); err != nil {
			return MartStats{}, fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := m.db.Analytics.QueryRow("SELECT COUNT(*) FROM lot_stats").Scan(&stats.TotalRows); err != nil {
		log.Printf("Warning: Failed to get row count: %v", err)
	}

	var minMonth, maxMonth sql.NullString
	if err := m.db.Analytics.QueryRow("SELECT MIN(month), MAX(month) FROM lot_stats").Scan(&minMonth, &maxMonth); err == nil {
		stats.MinIssueDate = minMonth.String
		stats.MaxIssueDate = maxMonth.String
	}

	if err := m.db.Analytics.QueryRow("SELECT COALESCE(SUM(total_bales), 0) FROM lot_stats").Scan(&stats.TotalBales); err != nil {
		log.Printf("Warning: Failed to get bale total: %v", err)
	}
	if err := m.db.Analytics.QueryRow("SELECT COUNT(DISTINCT variety) FROM lot_stats").Scan(&stats.UniqueVariety); err != nil {
		log.Printf("Warning: Failed to get variety count: %v", err)
	}

	log.Printf("Mart refresh completed in %v. Rows: %d", time.Since(start), stats.TotalRows)
	return stats, nil
}

// GetMartStats returns the current rollup summary
func (m *MartBuilder) GetMartStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalRows int64
	if err := m.db.Analytics.QueryRow(`SELECT COUNT(*) FROM lot_stats`).Scan(&totalRows); err != nil {
		return nil, err
	}
	stats["total_rows"] = totalRows

	var minMonth, maxMonth sql.NullString
	if err := m.db.Analytics.QueryRow(`SELECT MIN(month), MAX(month) FROM lot_stats`).Scan(&minMonth, &maxMonth); err != nil {
		return nil, err
	}
	if minMonth.Valid {
		stats["min_month"] = minMonth.String
	}
	if maxMonth.Valid {
		stats["max_month"] = maxMonth.String
	}

	var totalBales float64
	if err := m.db.Analytics.QueryRow(`SELECT COALESCE(SUM(total_bales), 0) FROM lot_stats`).Scan(&totalBales); err != nil {
		return nil, err
	}
	stats["total_bales"] = totalBales

	var varieties int64
	if err := m.db.Analytics.QueryRow(`SELECT COUNT(DISTINCT variety) FROM lot_stats`).Scan(&varieties); err != nil {
		return nil, err
	}
	stats["unique_varieties"] = varieties

	return stats, nil
}
