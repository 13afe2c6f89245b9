package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockPrice is one historical price bar for a stock, as delivered by
// an external data source.
type StockPrice struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	StockID uint `gorm:"not null;index;index:idx_stock_timestamp" json:"stock_id"`

	OpenPrice     decimal.Decimal  `gorm:"type:numeric(20,8);not null" json:"open_price"`
	HighPrice     decimal.Decimal  `gorm:"type:numeric(20,8);not null" json:"high_price"`
	LowPrice      decimal.Decimal  `gorm:"type:numeric(20,8);not null" json:"low_price"`
	ClosePrice    decimal.Decimal  `gorm:"type:numeric(20,8);not null" json:"close_price"`
	AdjustedClose *decimal.Decimal `gorm:"type:numeric(20,8)" json:"adjusted_close,omitempty"`

	Volume        int64  `gorm:"not null" json:"volume"`
	AverageVolume *int64 `json:"average_volume,omitempty"`

	ChangeAmount  *decimal.Decimal `gorm:"type:numeric(20,8)" json:"change_amount,omitempty"`
	ChangePercent *decimal.Decimal `gorm:"type:numeric(10,4)" json:"change_percent,omitempty"`

	Source      string `gorm:"size:100;not null" json:"source"`
	DataQuality string `gorm:"size:20;not null;default:high" json:"data_quality"`

	Timestamp time.Time `gorm:"not null;index;index:idx_stock_timestamp" json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

func (StockPrice) TableName() string { return "stock_prices" }

// IsUpDay reports whether the bar closed above its open.
func (p *StockPrice) IsUpDay() bool {
	return p.ClosePrice.GreaterThan(p.OpenPrice)
}

// PriceRange is the high-low spread of the bar.
func (p *StockPrice) PriceRange() decimal.Decimal {
	return p.HighPrice.Sub(p.LowPrice)
}
