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

// StockPriceRepository handles historical price bars.
type StockPriceRepository struct {
	db *gorm.DB
}

// NewStockPriceRepository creates a new repository instance using the
// main read/write database.
func NewStockPriceRepository() *StockPriceRepository {
	logger.WithField("component", "StockPriceRepository").
		Info("Creating new StockPriceRepository with MainDB")

	return &StockPriceRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *StockPriceRepository) WithDB(db *gorm.DB) *StockPriceRepository {
	return &StockPriceRepository{db: db}
}

// Latest returns the most recent price bar for a stock, or (nil, nil)
// when no prices are stored.
func (r *StockPriceRepository) Latest(
	ctx context.Context,
	stockID uint,
) (*model.StockPrice, error) {

	var price model.StockPrice

	err := r.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("timestamp DESC").
		First(&price).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":     "StockPriceRepository",
			"op":       "Latest",
			"stock_id": stockID,
		}).WithError(err).Error("Failed to fetch latest price")

		return nil, err
	}

	return &price, nil
}

// Range returns price bars for a stock between from and to inclusive,
// oldest first.
func (r *StockPriceRepository) Range(
	ctx context.Context,
	stockID uint,
	from time.Time,
	to time.Time,
) ([]model.StockPrice, error) {

	var prices []model.StockPrice

	err := r.db.WithContext(ctx).
		Where("stock_id = ? AND timestamp >= ? AND timestamp <= ?",
			stockID, from, to).
		Order("timestamp ASC").
		Find(&prices).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "StockPriceRepository",
			"op":       "Range",
			"stock_id": stockID,
		}).WithError(err).Error("Failed to fetch price range")

		return nil, err
	}

	return prices, nil
}

// BulkInsert stores a batch of price bars in one transaction. The batch
// is written entirely or not at all.
func (r *StockPriceRepository) BulkInsert(
	ctx context.Context,
	prices []model.StockPrice,
) error {

	if len(prices) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(prices, 500).Error
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "StockPriceRepository",
			"op":    "BulkInsert",
			"count": len(prices),
		}).WithError(err).Error("Failed to bulk insert prices")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":  "StockPriceRepository",
		"op":    "BulkInsert",
		"count": len(prices),
	}).Info("Price bars inserted")

	return nil
}

// PruneOlderThan removes price bars older than the cutoff and returns
// the number of rows removed. The maintenance surface calls this.
func (r *StockPriceRepository) PruneOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {

	result := r.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&model.StockPrice{})

	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "StockPriceRepository",
			"op":   "PruneOlderThan",
		}).WithError(result.Error).Error("Failed to prune old prices")

		return 0, result.Error
	}

	logger.WithFields(map[string]interface{}{
		"repo":         "StockPriceRepository",
		"op":           "PruneOlderThan",
		"rows_removed": result.RowsAffected,
	}).Info("Old price bars pruned")

	return result.RowsAffected, nil
}
