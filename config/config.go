package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DBPath    string
	AppDBPath string

	// Source System (mill HVI/LIMS Postgres)
	SourceDBHost     string
	SourceDBPort     int
	SourceDBName     string
	SourceDBUser     string
	SourceDBPassword string
	SourceLotTable   string
	SourceIssueTable string

	// API Server
	APIPort string
	APIHost string

	// Logging
	LogLevel string

	// Data Retention
	DataRetentionDays int

	// Worker Pool
	WorkerPoolSize int

	// Streamed report timeout
	StreamTimeoutMinutes int

	// Report parameters
	Report ReportConfig `mapstructure:"report"`

	// Export settings
	Export ExportConfig `mapstructure:"export"`

	// Column layout manager
	Columns *ColumnsConfigManager

	// Mock data settings
	MockData MockDataConfig `mapstructure:"mock_data"`

	// Scheduler
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ReportConfig holds summary engine parameters
type ReportConfig struct {
	ChunkSize       int     `mapstructure:"chunk_size"`
	DefaultType     string  `mapstructure:"default_type"`
	ThresholdMetric string  `mapstructure:"threshold_metric"`
	ThresholdValue  float64 `mapstructure:"threshold_value"`
}

// ExportConfig holds export presentation settings
type ExportConfig struct {
	Title     string `mapstructure:"title"`
	SheetName string `mapstructure:"sheet_name"`
}

// MockDataConfig holds mock data generation settings
type MockDataConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	LotRecords    int      `mapstructure:"lot_records"`
	IssueRecords  int      `mapstructure:"issue_records"`
	TimeRangeDays int      `mapstructure:"time_range_days"`
	Units         []string `mapstructure:"units"`
	Lines         []string `mapstructure:"lines"`
	Varieties     []string `mapstructure:"varieties"`
	Stations      []string `mapstructure:"stations"`
	Parties       []string `mapstructure:"parties"`
}

// LoadConfig loads configuration from .env and config.yaml
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		// .env file is optional, only warn
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	// Load YAML configuration
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	config := &Config{
		DBPath:               getEnv("DB_PATH", "./data/millstat.duckdb"),
		AppDBPath:            getEnv("APP_DB_PATH", "./data/app.db"),
		SourceDBHost:         getEnv("SOURCE_DB_HOST", "localhost"),
		SourceDBPort:         getEnvAsInt("SOURCE_DB_PORT", 5432),
		SourceDBName:         getEnv("SOURCE_DB_NAME", "mill_lims"),
		SourceDBUser:         getEnv("SOURCE_DB_USER", "etl_user"),
		SourceDBPassword:     getEnv("SOURCE_DB_PASSWORD", ""),
		SourceLotTable:       getEnv("SOURCE_LOT_TABLE", "hvi_lot_results"),
		SourceIssueTable:     getEnv("SOURCE_ISSUE_TABLE", "mixing_issue_register"),
		APIPort:              getEnv("API_PORT", "5000"),
		APIHost:              getEnv("API_HOST", "0.0.0.0"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DataRetentionDays:    getEnvAsInt("DATA_RETENTION_DAYS", 365),
		WorkerPoolSize:       getEnvAsInt("WORKER_POOL_SIZE", 4),
		StreamTimeoutMinutes: getEnvAsInt("STREAM_TIMEOUT_MINUTES", 5),
	}

	if err := viper.UnmarshalKey("report", &config.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report config: %w", err)
	}
	if err := viper.UnmarshalKey("export", &config.Export); err != nil {
		return nil, fmt.Errorf("failed to unmarshal export config: %w", err)
	}
	if err := viper.UnmarshalKey("mock_data", &config.MockData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mock_data config: %w", err)
	}
	if err := viper.UnmarshalKey("scheduler", &config.Scheduler); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scheduler config: %w", err)
	}

	if config.Report.ChunkSize <= 0 {
		config.Report.ChunkSize = 500
	}
	if config.Export.Title == "" {
		config.Export.Title = "Cotton Quality Summary"
	}

	// Initialize column layout manager
	config.Columns = NewColumnsConfigManager("config_columns.json")
	if err := config.Columns.Load(); err != nil {
		fmt.Printf("Warning: Failed to load column config: %v\n", err)
	}

	if config.DBPath == "" {
		return nil, fmt.Errorf("DB_PATH is required")
	}

	return config, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
