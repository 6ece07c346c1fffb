package config

import (
	"encoding/json"
	"os"
	"sync"
)

// ColumnLayout defines which columns a view shows and their order
type ColumnLayout struct {
	Keys []string `json:"keys"`
}

// ColumnsConfigManager manages per-view column layouts
type ColumnsConfigManager struct {
	configPath string
	mu         sync.RWMutex
	Layouts    map[string]ColumnLayout `json:"layouts"` // view name -> layout
}

// NewColumnsConfigManager creates a new manager
func NewColumnsConfigManager(path string) *ColumnsConfigManager {
	return &ColumnsConfigManager{
		configPath: path,
		Layouts:    make(map[string]ColumnLayout),
	}
}

// Load reads the layouts from disk
func (m *ColumnsConfigManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			m.Layouts = make(map[string]ColumnLayout)
			return m.saveInternal()
		}
		return err
	}

	if len(data) == 0 {
		m.Layouts = make(map[string]ColumnLayout)
		return nil
	}

	return json.Unmarshal(data, &m.Layouts)
}

// Save replaces the layouts and writes them to disk
func (m *ColumnsConfigManager) Save(layouts map[string]ColumnLayout) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Layouts = layouts
	return m.saveInternal()
}

// saveInternal writes to disk (must hold lock)
func (m *ColumnsConfigManager) saveInternal() error {
	data, err := json.MarshalIndent(m.Layouts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.configPath, data, 0644)
}

// GetLayout returns the layout for a view
func (m *ColumnsConfigManager) GetLayout(view string) (ColumnLayout, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	layout, ok := m.Layouts[view]
	return layout, ok
}

// GetAll returns a copy of every layout
func (m *ColumnsConfigManager) GetAll() map[string]ColumnLayout {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]ColumnLayout)
	for k, v := range m.Layouts {
		out[k] = v
	}
	return out
}
