package obs

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// UsageRecord is the GORM model for one completed request.
type UsageRecord struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	RequestID    string    `gorm:"column:request_id;index"`
	Kind         string    `gorm:"column:kind;index"`
	ProviderUUID string    `gorm:"column:provider_uuid"`
	Model        string    `gorm:"column:model;index"`
	Endpoint     string    `gorm:"column:endpoint"`
	Stream       bool      `gorm:"column:stream"`
	InputTokens  int       `gorm:"column:input_tokens"`
	OutputTokens int       `gorm:"column:output_tokens"`
	CostUSD      float64   `gorm:"column:cost_usd"`
	LatencyMS    int64     `gorm:"column:latency_ms"`
	Failed       bool      `gorm:"column:failed"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
}

// UsageStore persists usage records to SQLite. Writes are fire-and-forget
// over a buffered channel so the request path never blocks on the database.
type UsageStore struct {
	db      *gorm.DB
	records chan UsageRecord
	done    chan struct{}
}

// NewUsageStore opens (or creates) the usage database and starts the
// writer goroutine.
func NewUsageStore(path string) (*UsageStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&UsageRecord{}); err != nil {
		return nil, err
	}

	s := &UsageStore{
		db:      db,
		records: make(chan UsageRecord, 256),
		done:    make(chan struct{}),
	}
	go s.writeLoop()
	return s, nil
}

// Record enqueues a usage record, dropping it if the writer is saturated.
func (s *UsageStore) Record(rec UsageRecord) {
	rec.CreatedAt = time.Now()
	select {
	case s.records <- rec:
	default:
		logrus.Debug("usage record dropped, writer saturated")
	}
}

// Close flushes queued records and stops the writer.
func (s *UsageStore) Close() {
	close(s.records)
	<-s.done
}

func (s *UsageStore) writeLoop() {
	defer close(s.done)
	for rec := range s.records {
		if err := s.db.Create(&rec).Error; err != nil {
			logrus.Warnf("usage record write failed: %v", err)
		}
	}
}

// TotalsByModel aggregates usage per model for reporting.
type ModelUsage struct {
	Model        string  `json:"model"`
	Requests     int64   `json:"requests"`
	InputTokens  int64   `json:"inputTokens"`
	OutputTokens int64   `json:"outputTokens"`
	CostUSD      float64 `json:"costUsd"`
}

// TotalsByModel returns aggregate usage grouped by model since a cutoff.
func (s *UsageStore) TotalsByModel(since time.Time) ([]ModelUsage, error) {
	var out []ModelUsage
	err := s.db.Model(&UsageRecord{}).
		Select("model, count(*) as requests, sum(input_tokens) as input_tokens, sum(output_tokens) as output_tokens, sum(cost_usd) as cost_usd").
		Where("created_at >= ?", since).
		Group("model").
		Order("requests desc").
		Scan(&out).Error
	return out, err
}
