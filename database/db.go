package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
	_ "github.com/mattn/go-sqlite3"
)

// DB bundles the two stores: DuckDB for the lot and mixing analytics,
// SQLite for job tracking and upload logs.
type DB struct {
	Analytics *sql.DB
	App       *sql.DB
}

// Initialize opens both databases, creating parent directories as needed
func Initialize(analyticsPath, appPath string) (*DB, error) {
	for _, p := range []string{analyticsPath, appPath} {
		dir := filepath.Dir(p)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	analytics, err := sql.Open("duckdb", analyticsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics db: %w", err)
	}
	if _, err := analytics.Exec("PRAGMA threads=4"); err != nil {
		log.Printf("Warning: Failed to set threads: %v", err)
	}
	if err := analytics.Ping(); err != nil {
		analytics.Close()
		return nil, fmt.Errorf("failed to ping analytics db: %w", err)
	}

	app, err := sql.Open("sqlite3", appPath)
	if err != nil {
		analytics.Close()
		return nil, fmt.Errorf("failed to open app db: %w", err)
	}
	if _, err := app.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Printf("Warning: Failed to set WAL mode: %v", err)
	}
	if err := app.Ping(); err != nil {
		analytics.Close()
		app.Close()
		return nil, fmt.Errorf("failed to ping app db: %w", err)
	}

	return &DB{Analytics: analytics, App: app}, nil
}

func (db *DB) Close() {
	if db.Analytics != nil {
		db.Analytics.Close()
	}
	if db.App != nil {
		db.App.Close()
	}
}
