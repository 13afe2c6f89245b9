package model

import "time"

// Watchlist is a named list of stocks a user follows. A user has at
// most one default watchlist; the repository swaps the flag when a new
// default is created.
type Watchlist struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	IsDefault   bool   `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []WatchlistItem `gorm:"foreignKey:WatchlistID" json:"items,omitempty"`
}

func (Watchlist) TableName() string { return "watchlists" }

// WatchlistItem is one stock entry on a watchlist.
type WatchlistItem struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	WatchlistID uint `gorm:"not null;index" json:"watchlist_id"`
	StockID     uint `gorm:"not null;index" json:"stock_id"`

	Notes        string `gorm:"type:text" json:"notes,omitempty"`
	TargetPrice  string `gorm:"size:20" json:"target_price,omitempty"`
	AlertEnabled bool   `gorm:"not null;default:true" json:"alert_enabled"`

	CreatedAt time.Time `json:"created_at"`
}

func (WatchlistItem) TableName() string { return "watchlist_items" }
