package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionStatus is the closed set of position lifecycle states.
// Closed is terminal; there is no reopen.
type PositionStatus string

const (
	PositionStatusActive PositionStatus = "active"
	PositionStatusClosed PositionStatus = "closed"
)

// Position is one aggregated holding of a stock by a user, tracked at
// weighted-average cost. For an active position total_invested equals
// quantity * average_price within rounding tolerance; the two are only
// ever rewritten together.
//
// At most one active position exists per (user, stock) pair, enforced
// by a partial unique index (see database/migrations).
type Position struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	UserID  uint `gorm:"not null;index" json:"user_id"`
	StockID uint `gorm:"not null;index" json:"stock_id"`

	Quantity      decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"quantity"`
	AveragePrice  decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"average_price"`
	TotalInvested decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"total_invested"`

	Notes  string         `gorm:"type:text" json:"notes,omitempty"`
	Status PositionStatus `gorm:"size:20;not null;default:active" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Position) TableName() string { return "positions" }
