package model

import "time"

type MarketType string

const (
	MarketTypeStock  MarketType = "stock"
	MarketTypeETF    MarketType = "etf"
	MarketTypeIndex  MarketType = "index"
	MarketTypeCrypto MarketType = "crypto"
	MarketTypeForex  MarketType = "forex"
)

// Stock is one tradable instrument in the directory. Symbols and ISINs
// are stored upper-cased; an empty sector is reported as "Unknown" by
// the portfolio aggregation queries.
type Stock struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Symbol string `gorm:"size:20;uniqueIndex;not null" json:"symbol"`
	Name   string `gorm:"size:255;not null" json:"name"`
	ISIN   string `gorm:"size:12;uniqueIndex;default:null;column:isin" json:"isin,omitempty"`

	Market     string     `gorm:"size:100" json:"market,omitempty"`
	MarketType MarketType `gorm:"size:20;not null;default:stock" json:"market_type"`
	Currency   string     `gorm:"size:3;not null;default:USD" json:"currency"`

	Sector      string `gorm:"size:100" json:"sector,omitempty"`
	Industry    string `gorm:"size:100" json:"industry,omitempty"`
	Description string `gorm:"type:text;column:company_description" json:"company_description,omitempty"`
	Website     string `gorm:"size:255" json:"website,omitempty"`

	MarketCap     *float64 `json:"market_cap,omitempty"`
	PERatio       *float64 `gorm:"column:pe_ratio" json:"pe_ratio,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	Beta          *float64 `json:"beta,omitempty"`

	IsActive   bool `gorm:"not null;default:true" json:"is_active"`
	IsTradable bool `gorm:"not null;default:true" json:"is_tradable"`

	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastPriceUpdate *time.Time `json:"last_price_update,omitempty"`
}

func (Stock) TableName() string { return "stocks" }

// DisplayName is the "SYMBOL - Name" form used in listings.
func (s *Stock) DisplayName() string {
	return s.Symbol + " - " + s.Name
}
