package config

import (
	"sync"

	"github.com/spf13/viper"
)

var configMutex sync.Mutex

// UpdateReportSettings updates summary parameters and saves to file
func (c *Config) UpdateReportSettings(chunkSize int, defaultType string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	c.Report.ChunkSize = chunkSize
	c.Report.DefaultType = defaultType

	viper.Set("report.chunk_size", chunkSize)
	viper.Set("report.default_type", defaultType)

	return viper.WriteConfig()
}

// UpdateExportSettings updates export presentation settings
func (c *Config) UpdateExportSettings(title, sheetName string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	c.Export.Title = title
	c.Export.SheetName = sheetName

	viper.Set("export.title", title)
	viper.Set("export.sheet_name", sheetName)

	return viper.WriteConfig()
}
