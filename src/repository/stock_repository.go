package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/louisinayinde/dashboard-finance/src/database"
	"github.com/louisinayinde/dashboard-finance/src/model"
)

// StockRepository handles read/write operations for the stock directory.
type StockRepository struct {
	db *gorm.DB
}

// NewStockRepository creates a new repository instance using the main
// read/write database.
func NewStockRepository() *StockRepository {
	logger.WithField("component", "StockRepository").
		Info("Creating new StockRepository with MainDB")

	return &StockRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *StockRepository) WithDB(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

// StockSearchOptions are the filters for Search. Query matches symbol,
// name and company description case-insensitively.
type StockSearchOptions struct {
	Query      string
	MarketType *model.MarketType
	Sector     *string
	Limit      int
	Offset     int
}

// MarketSummary counts active stocks by market type and by market.
type MarketSummary struct {
	TotalStocks int64            `json:"total_stocks"`
	ByType      map[string]int64 `json:"by_type"`
	ByMarket    map[string]int64 `json:"by_market"`
}

// FindBySymbol fetches a stock by its symbol (case-insensitive).
// Returns (nil, nil) if the stock is not found.
func (r *StockRepository) FindBySymbol(
	ctx context.Context,
	symbol string,
) (*model.Stock, error) {

	var stock model.Stock

	err := r.db.WithContext(ctx).
		Where("symbol = ?", strings.ToUpper(symbol)).
		First(&stock).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":   "StockRepository",
			"op":     "FindBySymbol",
			"symbol": symbol,
		}).WithError(err).Error("Failed to fetch stock by symbol")

		return nil, err
	}

	return &stock, nil
}

// FindByISIN fetches a stock by ISIN. Returns (nil, nil) if not found.
func (r *StockRepository) FindByISIN(
	ctx context.Context,
	isin string,
) (*model.Stock, error) {

	var stock model.Stock

	err := r.db.WithContext(ctx).
		Where("isin = ?", strings.ToUpper(isin)).
		First(&stock).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "StockRepository",
			"op":   "FindByISIN",
			"isin": isin,
		}).WithError(err).Error("Failed to fetch stock by ISIN")

		return nil, err
	}

	return &stock, nil
}

// Search returns active stocks matching the given filters, ordered by
// symbol.
func (r *StockRepository) Search(
	ctx context.Context,
	options StockSearchOptions,
) ([]model.Stock, error) {

	limit := options.Limit
	if limit <= 0 {
		limit = 50
	}

	query := r.db.WithContext(ctx).
		Where("is_active = ?", true)

	if options.Query != "" {
		pattern := "%" + options.Query + "%"
		query = query.Where(
			r.db.Where("symbol ILIKE ?", pattern).
				Or("name ILIKE ?", pattern).
				Or("company_description ILIKE ?", pattern),
		)
	}

	if options.MarketType != nil {
		query = query.Where("market_type = ?", *options.MarketType)
	}

	if options.Sector != nil {
		query = query.Where("sector ILIKE ?", "%"+*options.Sector+"%")
	}

	var stocks []model.Stock

	err := query.
		Order("symbol").
		Limit(limit).
		Offset(options.Offset).
		Find(&stocks).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "StockRepository",
			"op":    "Search",
			"query": options.Query,
		}).WithError(err).Error("Failed to search stocks")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "StockRepository",
		"op":          "Search",
		"query":       options.Query,
		"rows_return": len(stocks),
	}).Debug("Stocks searched")

	return stocks, nil
}

// FindByMarket returns active stocks listed on the given market.
func (r *StockRepository) FindByMarket(
	ctx context.Context,
	market string,
	limit int,
	offset int,
) ([]model.Stock, error) {

	if limit <= 0 {
		limit = 100
	}

	var stocks []model.Stock

	err := r.db.WithContext(ctx).
		Where("market = ? AND is_active = ?", strings.ToUpper(market), true).
		Order("symbol").
		Limit(limit).
		Offset(offset).
		Find(&stocks).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "StockRepository",
			"op":     "FindByMarket",
			"market": market,
		}).WithError(err).Error("Failed to fetch stocks by market")

		return nil, err
	}

	return stocks, nil
}

// FindBySector returns active stocks in the given sector.
func (r *StockRepository) FindBySector(
	ctx context.Context,
	sector string,
	limit int,
	offset int,
) ([]model.Stock, error) {

	if limit <= 0 {
		limit = 100
	}

	var stocks []model.Stock

	err := r.db.WithContext(ctx).
		Where("sector = ? AND is_active = ?", sector, true).
		Order("symbol").
		Limit(limit).
		Offset(offset).
		Find(&stocks).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "StockRepository",
			"op":     "FindBySector",
			"sector": sector,
		}).WithError(err).Error("Failed to fetch stocks by sector")

		return nil, err
	}

	return stocks, nil
}

// ListTradable returns all active, tradable stocks.
func (r *StockRepository) ListTradable(
	ctx context.Context,
	limit int,
	offset int,
) ([]model.Stock, error) {

	if limit <= 0 {
		limit = 100
	}

	var stocks []model.Stock

	err := r.db.WithContext(ctx).
		Where("is_tradable = ? AND is_active = ?", true, true).
		Order("symbol").
		Limit(limit).
		Offset(offset).
		Find(&stocks).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "StockRepository",
			"op":   "ListTradable",
		}).WithError(err).Error("Failed to fetch tradable stocks")

		return nil, err
	}

	return stocks, nil
}

// ListNeedingPriceUpdate returns active stocks whose last price update
// is older than the cutoff (or missing entirely), oldest first. Used by
// external refresh jobs to pick work.
func (r *StockRepository) ListNeedingPriceUpdate(
	ctx context.Context,
	olderThan time.Duration,
	limit int,
) ([]model.Stock, error) {

	if limit <= 0 {
		limit = 100
	}

	cutoff := time.Now().UTC().Add(-olderThan)

	var stocks []model.Stock

	err := r.db.WithContext(ctx).
		Where("is_active = ? AND (last_price_update IS NULL OR last_price_update < ?)",
			true, cutoff).
		Order("last_price_update ASC NULLS FIRST").
		Limit(limit).
		Find(&stocks).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "StockRepository",
			"op":   "ListNeedingPriceUpdate",
		}).WithError(err).Error("Failed to fetch stocks needing price update")

		return nil, err
	}

	return stocks, nil
}

// TouchPriceUpdate stamps last_price_update for a stock. Returns false
// when the stock does not exist.
func (r *StockRepository) TouchPriceUpdate(
	ctx context.Context,
	stockID uint,
) (bool, error) {

	result := r.db.WithContext(ctx).
		Model(&model.Stock{}).
		Where("id = ?", stockID).
		Update("last_price_update", time.Now().UTC())

	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "StockRepository",
			"op":       "TouchPriceUpdate",
			"stock_id": stockID,
		}).WithError(result.Error).Error("Failed to update price timestamp")

		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// Summary counts active stocks grouped by market type and by market.
func (r *StockRepository) Summary(ctx context.Context) (*MarketSummary, error) {
	type countRow struct {
		Key   string
		Count int64
	}

	summary := &MarketSummary{
		ByType:   map[string]int64{},
		ByMarket: map[string]int64{},
	}

	if err := r.db.WithContext(ctx).
		Model(&model.Stock{}).
		Where("is_active = ?", true).
		Count(&summary.TotalStocks).Error; err != nil {
		return nil, err
	}

	var typeRows []countRow
	if err := r.db.WithContext(ctx).
		Model(&model.Stock{}).
		Select("market_type AS key, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("market_type").
		Scan(&typeRows).Error; err != nil {
		return nil, err
	}
	for _, row := range typeRows {
		summary.ByType[row.Key] = row.Count
	}

	var marketRows []countRow
	if err := r.db.WithContext(ctx).
		Model(&model.Stock{}).
		Select("market AS key, COUNT(*) AS count").
		Where("is_active = ? AND market <> ''", true).
		Group("market").
		Scan(&marketRows).Error; err != nil {
		return nil, err
	}
	for _, row := range marketRows {
		summary.ByMarket[row.Key] = row.Count
	}

	return summary, nil
}
