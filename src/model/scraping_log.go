package model

import "time"

type ScrapingStatus string

const (
	ScrapingStatusPending     ScrapingStatus = "pending"
	ScrapingStatusInProgress  ScrapingStatus = "in_progress"
	ScrapingStatusSuccess     ScrapingStatus = "success"
	ScrapingStatusFailed      ScrapingStatus = "failed"
	ScrapingStatusTimeout     ScrapingStatus = "timeout"
	ScrapingStatusRateLimited ScrapingStatus = "rate_limited"
)

type ScrapingType string

const (
	ScrapingTypeStockPrice    ScrapingType = "stock_price"
	ScrapingTypeCompanyInfo   ScrapingType = "company_info"
	ScrapingTypeFinancialData ScrapingType = "financial_data"
	ScrapingTypeMarketData    ScrapingType = "market_data"
	ScrapingTypeNews          ScrapingType = "news"
)

// ScrapingLog records one run of an external data-collection job. The
// jobs themselves run outside this service; this table is only the
// persisted audit trail their runners write into.
type ScrapingLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Source       string         `gorm:"size:100;not null;index" json:"source"`
	ScrapingType ScrapingType   `gorm:"size:30;not null;index" json:"scraping_type"`
	TargetSymbol string         `gorm:"size:20;index" json:"target_symbol,omitempty"`
	Status       ScrapingStatus `gorm:"size:20;not null;default:pending" json:"status"`

	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Duration    *float64   `json:"duration,omitempty"`

	RecordsProcessed int `gorm:"not null;default:0" json:"records_processed"`
	RecordsUpdated   int `gorm:"not null;default:0" json:"records_updated"`
	RecordsCreated   int `gorm:"not null;default:0" json:"records_created"`

	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`
	RetryCount   int    `gorm:"not null;default:0" json:"retry_count"`
	MaxRetries   int    `gorm:"not null;default:3" json:"max_retries"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ScrapingLog) TableName() string { return "scraping_logs" }

func (l *ScrapingLog) IsFailed() bool {
	switch l.Status {
	case ScrapingStatusFailed, ScrapingStatusTimeout, ScrapingStatusRateLimited:
		return true
	}
	return false
}

func (l *ScrapingLog) CanRetry() bool {
	return l.IsFailed() && l.RetryCount < l.MaxRetries
}
