package etl

import (
	"fmt"
	"math/rand"
	"time"

	"millstat/config"
	"millstat/database"
)

// MockDataGenerator generates realistic mill data for local runs
type MockDataGenerator struct {
	config *config.MockDataConfig
	rand   *rand.Rand
}

// NewMockDataGenerator creates a new mock data generator
func NewMockDataGenerator(cfg *config.MockDataConfig) *MockDataGenerator {
	return &MockDataGenerator{
		config: cfg,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockDataGenerator) pick(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[m.rand.Intn(len(values))]
}

func (m *MockDataGenerator) metric(base, spread float64) *float64 {
	// Leave roughly one cell in twenty blank, like real lab sheets
	if m.rand.Intn(20) == 0 {
		return nil
	}
	v := base + (m.rand.Float64()-0.5)*spread
	return &v
}

// GenerateLotResults produces tested lots spread over the configured range
func (m *MockDataGenerator) GenerateLotResults() []database.LotResult {
	start := time.Now().AddDate(0, 0, -m.config.TimeRangeDays)
	lots := make([]database.LotResult, 0, m.config.LotRecords)

	for i := 0; i < m.config.LotRecords; i++ {
		day := m.rand.Intn(m.config.TimeRangeDays + 1)
		issueDate := start.AddDate(0, 0, day).Format("2006-01-02")
		bales := float64(20 + m.rand.Intn(160))

		lots = append(lots, database.LotResult{
			LotNo:     fmt.Sprintf("L-%05d", 10000+i),
			Party:     m.pick(m.config.Parties, "Local Trader"),
			Station:   m.pick(m.config.Stations, "Adoni"),
			Variety:   m.pick(m.config.Varieties, "MCU-5"),
			IssueDate: issueDate,
			NoOfBale:  &bales,
			UHML:      m.metric(29.0, 3.0),
			Mic:       m.metric(4.2, 1.2),
			Str:       m.metric(28.5, 4.0),
			Rd:        m.metric(74.0, 6.0),
			PlusB:     m.metric(8.5, 2.0),
			SF:        m.metric(22.0, 5.0),
			UI:        m.metric(82.0, 4.0),
			Elong:     m.metric(5.8, 1.4),
			Trash:     m.metric(3.2, 2.0),
			Moist:     m.metric(7.1, 1.6),
			MinMic:    m.metric(3.6, 0.8),
		})
	}
	return lots
}

// GenerateMixingIssues issues a share of the lots into mixings on the
// configured units and lines.
func (m *MockDataGenerator) GenerateMixingIssues(lots []database.LotResult) []database.MixingIssue {
	issues := make([]database.MixingIssue, 0, m.config.IssueRecords)
	if len(lots) == 0 {
		return issues
	}

	mixingNo := 100
	for i := 0; i < m.config.IssueRecords; i++ {
		lot := lots[m.rand.Intn(len(lots))]
		if i%4 == 0 {
			mixingNo++
		}
		bales := float64(5 + m.rand.Intn(40))

		issues = append(issues, database.MixingIssue{
			Unit:      m.pick(m.config.Units, "1"),
			Line:      m.pick(m.config.Lines, "A"),
			Cotton:    lot.Variety,
			MixingNo:  fmt.Sprintf("%d", mixingNo),
			Mixing:    fmt.Sprintf("MX-%d", mixingNo/10),
			LotNo:     lot.LotNo,
			IssueDate: lot.IssueDate,
			NoOfBale:  &bales,
		})
	}
	return issues
}
