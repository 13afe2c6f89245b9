package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/louisinayinde/dashboard-finance/src/database"
	"github.com/louisinayinde/dashboard-finance/src/model"
)

// WatchlistRepository handles watchlists and their items.
type WatchlistRepository struct {
	db *gorm.DB
}

// NewWatchlistRepository creates a new repository instance using the
// main read/write database.
func NewWatchlistRepository() *WatchlistRepository {
	logger.WithField("component", "WatchlistRepository").
		Info("Creating new WatchlistRepository with MainDB")

	return &WatchlistRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *WatchlistRepository) WithDB(db *gorm.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// WatchlistItemDetail is one watchlist entry joined with the stock
// directory.
type WatchlistItemDetail struct {
	ID           uint      `json:"id"`
	StockID      uint      `json:"stock_id"`
	StockSymbol  string    `json:"stock_symbol"`
	StockName    string    `json:"stock_name"`
	Notes        string    `json:"notes,omitempty"`
	TargetPrice  string    `json:"target_price,omitempty"`
	AlertEnabled bool      `json:"alert_enabled"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListByUser returns all watchlists for a user, newest first.
func (r *WatchlistRepository) ListByUser(
	ctx context.Context,
	userID uint,
) ([]model.Watchlist, error) {

	var watchlists []model.Watchlist

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&watchlists).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "WatchlistRepository",
			"op":      "ListByUser",
			"user_id": userID,
		}).WithError(err).Error("Failed to list watchlists")

		return nil, err
	}

	return watchlists, nil
}

// FindDefault returns the user's default watchlist, or (nil, nil) when
// none is marked default.
func (r *WatchlistRepository) FindDefault(
	ctx context.Context,
	userID uint,
) (*model.Watchlist, error) {

	var watchlist model.Watchlist

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&watchlist).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":    "WatchlistRepository",
			"op":      "FindDefault",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch default watchlist")

		return nil, err
	}

	return &watchlist, nil
}

// Create inserts a new watchlist. When isDefault is set, any previous
// default for the user is unset in the same transaction so at most one
// default exists.
func (r *WatchlistRepository) Create(
	ctx context.Context,
	userID uint,
	name string,
	description string,
	isDefault bool,
) (*model.Watchlist, error) {

	watchlist := model.Watchlist{
		UserID:      userID,
		Name:        name,
		Description: description,
		IsDefault:   isDefault,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isDefault {
			if err := tx.Model(&model.Watchlist{}).
				Where("user_id = ? AND is_default = ?", userID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}

		return tx.Create(&watchlist).Error
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "WatchlistRepository",
			"op":      "Create",
			"user_id": userID,
			"name":    name,
		}).WithError(err).Error("Failed to create watchlist")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":         "WatchlistRepository",
		"op":           "Create",
		"user_id":      userID,
		"watchlist_id": watchlist.ID,
	}).Info("Watchlist created")

	return &watchlist, nil
}

// AddStock adds a stock to a watchlist, updating notes/target price in
// place when the stock is already on the list.
func (r *WatchlistRepository) AddStock(
	ctx context.Context,
	watchlistID uint,
	stockID uint,
	notes string,
	targetPrice string,
) (*model.WatchlistItem, error) {

	var item model.WatchlistItem

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("watchlist_id = ? AND stock_id = ?", watchlistID, stockID).
			First(&item).Error

		switch {
		case err == nil:
			if notes != "" {
				item.Notes = notes
			}
			if targetPrice != "" {
				item.TargetPrice = targetPrice
			}
			return tx.Save(&item).Error

		case errors.Is(err, gorm.ErrRecordNotFound):
			item = model.WatchlistItem{
				WatchlistID:  watchlistID,
				StockID:      stockID,
				Notes:        notes,
				TargetPrice:  targetPrice,
				AlertEnabled: true,
			}
			return tx.Create(&item).Error

		default:
			return err
		}
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":         "WatchlistRepository",
			"op":           "AddStock",
			"watchlist_id": watchlistID,
			"stock_id":     stockID,
		}).WithError(err).Error("Failed to add stock to watchlist")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":         "WatchlistRepository",
		"op":           "AddStock",
		"watchlist_id": watchlistID,
		"stock_id":     stockID,
	}).Info("Stock added to watchlist")

	return &item, nil
}

// RemoveStock deletes a stock from a watchlist. Returns false when the
// stock was not on the list.
func (r *WatchlistRepository) RemoveStock(
	ctx context.Context,
	watchlistID uint,
	stockID uint,
) (bool, error) {

	result := r.db.WithContext(ctx).
		Where("watchlist_id = ? AND stock_id = ?", watchlistID, stockID).
		Delete(&model.WatchlistItem{})

	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":         "WatchlistRepository",
			"op":           "RemoveStock",
			"watchlist_id": watchlistID,
			"stock_id":     stockID,
		}).WithError(result.Error).Error("Failed to remove stock from watchlist")

		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// Items returns all entries of a watchlist joined with stock details.
func (r *WatchlistRepository) Items(
	ctx context.Context,
	watchlistID uint,
) ([]WatchlistItemDetail, error) {

	var details []WatchlistItemDetail

	err := r.db.WithContext(ctx).
		Model(&model.WatchlistItem{}).
		Select(`watchlist_items.id,
			watchlist_items.stock_id,
			stocks.symbol AS stock_symbol,
			stocks.name AS stock_name,
			watchlist_items.notes,
			watchlist_items.target_price,
			watchlist_items.alert_enabled,
			watchlist_items.created_at`).
		Joins("JOIN stocks ON stocks.id = watchlist_items.stock_id").
		Where("watchlist_items.watchlist_id = ?", watchlistID).
		Order("watchlist_items.id ASC").
		Scan(&details).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":         "WatchlistRepository",
			"op":           "Items",
			"watchlist_id": watchlistID,
		}).WithError(err).Error("Failed to fetch watchlist items")

		return nil, err
	}

	return details, nil
}
