package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/louisinayinde/dashboard-finance/src/database"
	"github.com/louisinayinde/dashboard-finance/src/model"
)

// priceScale is the scale used when deriving the weighted-average
// price, matching the NUMERIC(20,8) columns.
const priceScale = 8

// addConflictRetries bounds how often Add re-reads after losing a
// create race on the active-position unique index.
const addConflictRetries = 3

// PositionRepository is the position ledger: it maintains at most one
// active position per (user, stock) pair at weighted-average cost, and
// aggregates a user's open positions into portfolio views.
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new repository instance using the main
// read/write database.
func NewPositionRepository() *PositionRepository {
	logger.WithField("component", "PositionRepository").
		Info("Creating new PositionRepository with MainDB")

	return &PositionRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *PositionRepository) WithDB(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// PositionUpdate carries the optional overwrite fields for Update. Nil
// fields are left untouched.
type PositionUpdate struct {
	Quantity *decimal.Decimal
	Price    *decimal.Decimal
	Notes    *string
}

// PositionDetail is one row of a portfolio summary, joined with the
// stock directory.
type PositionDetail struct {
	ID            uint            `json:"id"`
	StockSymbol   string          `json:"stock_symbol"`
	StockName     string          `json:"stock_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	TotalInvested decimal.Decimal `json:"total_invested"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PortfolioSummary aggregates a user's active positions.
//
// EstimatedValue equals TotalInvested and UnrealizedPnL is zero: no
// live pricing feed is integrated, so invested capital stands in for
// current value.
type PortfolioSummary struct {
	TotalPositions int              `json:"total_positions"`
	TotalInvested  decimal.Decimal  `json:"total_invested"`
	EstimatedValue decimal.Decimal  `json:"estimated_value"`
	UnrealizedPnL  decimal.Decimal  `json:"unrealized_pnl"`
	Positions      []PositionDetail `json:"positions"`
}

// SectorAllocation is the per-sector slice of a portfolio.
type SectorAllocation struct {
	TotalInvested decimal.Decimal `json:"total_invested"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// ---------------------------------------------------
// Ledger methods
// ---------------------------------------------------

// Add applies a trade event (quantity bought at price) to the user's
// position in a stock. If no active position exists one is created;
// otherwise the position is merged using the weighted-average cost
// recurrence:
//
//	total_invested += quantity * price
//	average_price   = total_invested / total_quantity
//
// Each attempt runs in its own transaction. Losing a concurrent create
// race surfaces as a duplicate key on the active-position index; Add
// retries with a fresh read up to addConflictRetries times and returns
// ErrStorageConflict if the conflict persists.
func (r *PositionRepository) Add(
	ctx context.Context,
	userID uint,
	stockID uint,
	quantity decimal.Decimal,
	price decimal.Decimal,
	notes string,
) (*model.Position, error) {

	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidQuantity
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPrice
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "PositionRepository",
		"op":       "Add",
		"user_id":  userID,
		"stock_id": stockID,
		"qty":      quantity,
		"price":    price,
	}).Debug("Applying trade event to position")

	var position *model.Position
	var err error

	for attempt := 0; attempt < addConflictRetries; attempt++ {
		position, err = r.addOnce(ctx, userID, stockID, quantity, price, notes)
		if !errors.Is(err, ErrStorageConflict) {
			break
		}

		logger.WithFields(map[string]interface{}{
			"repo":     "PositionRepository",
			"op":       "Add",
			"user_id":  userID,
			"stock_id": stockID,
			"attempt":  attempt + 1,
		}).Warn("Concurrent position create detected, retrying with fresh read")
	}

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "PositionRepository",
			"op":       "Add",
			"user_id":  userID,
			"stock_id": stockID,
		}).WithError(err).Error("Failed to apply trade event")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":         "PositionRepository",
		"op":           "Add",
		"user_id":      userID,
		"stock_id":     stockID,
		"position_id":  position.ID,
		"new_quantity": position.Quantity,
	}).Info("Trade event applied to position")

	return position, nil
}

func (r *PositionRepository) addOnce(
	ctx context.Context,
	userID uint,
	stockID uint,
	quantity decimal.Decimal,
	price decimal.Decimal,
	notes string,
) (*model.Position, error) {

	var position *model.Position

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Position

		err := tx.
			Where("user_id = ? AND stock_id = ? AND status = ?",
				userID, stockID, model.PositionStatusActive).
			First(&existing).Error

		switch {
		case err == nil:
			cost := quantity.Mul(price)
			newQuantity := existing.Quantity.Add(quantity)
			newInvested := existing.TotalInvested.Add(cost)

			existing.Quantity = newQuantity
			existing.TotalInvested = newInvested
			existing.AveragePrice = newInvested.DivRound(newQuantity, priceScale)
			if notes != "" {
				existing.Notes = notes
			}

			if err := tx.Save(&existing).Error; err != nil {
				return translateConflict(err)
			}
			position = &existing
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			created := model.Position{
				UserID:        userID,
				StockID:       stockID,
				Quantity:      quantity,
				AveragePrice:  price,
				TotalInvested: quantity.Mul(price),
				Notes:         notes,
				Status:        model.PositionStatusActive,
			}

			if err := tx.Create(&created).Error; err != nil {
				return translateConflict(err)
			}
			position = &created
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	return position, nil
}

// Update overwrites fields of the active position directly, without
// merge semantics. Quantity and average price are never rewritten
// without total_invested being recomputed from the final pair.
// Returns (nil, nil) when no active position exists.
func (r *PositionRepository) Update(
	ctx context.Context,
	userID uint,
	stockID uint,
	update PositionUpdate,
) (*model.Position, error) {

	if update.Quantity != nil && update.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidQuantity
	}
	if update.Price != nil && update.Price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPrice
	}

	var position *model.Position

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Position

		err := tx.
			Where("user_id = ? AND stock_id = ? AND status = ?",
				userID, stockID, model.PositionStatusActive).
			First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if update.Quantity != nil {
			existing.Quantity = *update.Quantity
		}
		if update.Price != nil {
			existing.AveragePrice = *update.Price
		}
		if update.Quantity != nil || update.Price != nil {
			existing.TotalInvested = existing.Quantity.Mul(existing.AveragePrice)
		}
		if update.Notes != nil {
			existing.Notes = *update.Notes
		}

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		position = &existing
		return nil
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "PositionRepository",
			"op":       "Update",
			"user_id":  userID,
			"stock_id": stockID,
		}).WithError(err).Error("Failed to update position")

		return nil, err
	}

	if position == nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "PositionRepository",
			"op":       "Update",
			"user_id":  userID,
			"stock_id": stockID,
		}).Info("No active position to update")

		return nil, nil
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "PositionRepository",
		"op":          "Update",
		"user_id":     userID,
		"stock_id":    stockID,
		"position_id": position.ID,
	}).Info("Position updated")

	return position, nil
}

// Close marks the active position closed. Closed is terminal; closing
// an already closed or absent position is a no-op returning false.
func (r *PositionRepository) Close(
	ctx context.Context,
	userID uint,
	stockID uint,
) (bool, error) {

	result := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("user_id = ? AND stock_id = ? AND status = ?",
			userID, stockID, model.PositionStatusActive).
		Update("status", model.PositionStatusClosed)

	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "PositionRepository",
			"op":       "Close",
			"user_id":  userID,
			"stock_id": stockID,
		}).WithError(result.Error).Error("Failed to close position")

		return false, result.Error
	}

	closed := result.RowsAffected > 0

	logger.WithFields(map[string]interface{}{
		"repo":     "PositionRepository",
		"op":       "Close",
		"user_id":  userID,
		"stock_id": stockID,
		"closed":   closed,
	}).Info("Close position")

	return closed, nil
}

// Get returns the single active position for (user, stock), or
// (nil, nil) when none exists.
func (r *PositionRepository) Get(
	ctx context.Context,
	userID uint,
	stockID uint,
) (*model.Position, error) {

	var position model.Position

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND stock_id = ? AND status = ?",
			userID, stockID, model.PositionStatusActive).
		First(&position).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":     "PositionRepository",
			"op":       "Get",
			"user_id":  userID,
			"stock_id": stockID,
		}).WithError(err).Error("Failed to fetch position")

		return nil, err
	}

	return &position, nil
}

// ListByUser returns the user's active positions, newest first.
func (r *PositionRepository) ListByUser(
	ctx context.Context,
	userID uint,
	limit int,
	offset int,
) ([]model.Position, error) {

	if limit <= 0 {
		limit = 100
	}

	var positions []model.Position

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.PositionStatusActive).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&positions).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "PositionRepository",
			"op":      "ListByUser",
			"user_id": userID,
		}).WithError(err).Error("Failed to list positions")

		return nil, err
	}

	return positions, nil
}

// ---------------------------------------------------
// Portfolio aggregation
// ---------------------------------------------------

// Summary aggregates the user's active positions with stock details.
// It reads every active position; the pagination default of ListByUser
// does not cap the aggregation. Estimated value equals invested
// capital: no live pricing feed is integrated, so unrealized PnL is
// reported as zero.
func (r *PositionRepository) Summary(
	ctx context.Context,
	userID uint,
) (*PortfolioSummary, error) {

	var positions []model.Position

	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.PositionStatusActive).
		Order("created_at DESC").
		Find(&positions).Error; err != nil {

		logger.WithFields(map[string]interface{}{
			"repo":    "PositionRepository",
			"op":      "Summary",
			"user_id": userID,
		}).WithError(err).Error("Failed to list positions for summary")

		return nil, err
	}

	summary := &PortfolioSummary{
		TotalInvested:  decimal.Zero,
		EstimatedValue: decimal.Zero,
		UnrealizedPnL:  decimal.Zero,
		Positions:      []PositionDetail{},
	}

	if len(positions) == 0 {
		return summary, nil
	}

	stockIDs := make([]uint, 0, len(positions))
	for _, pos := range positions {
		stockIDs = append(stockIDs, pos.StockID)
	}

	var stocks []model.Stock
	if err := r.db.WithContext(ctx).
		Where("id IN ?", stockIDs).
		Find(&stocks).Error; err != nil {

		logger.WithFields(map[string]interface{}{
			"repo":    "PositionRepository",
			"op":      "Summary",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch stocks for summary")

		return nil, err
	}

	stocksByID := make(map[uint]model.Stock, len(stocks))
	for _, stock := range stocks {
		stocksByID[stock.ID] = stock
	}

	summary.TotalPositions = len(positions)

	for _, pos := range positions {
		symbol, name := "Unknown", "Unknown"
		if stock, ok := stocksByID[pos.StockID]; ok {
			symbol, name = stock.Symbol, stock.Name
		}

		summary.TotalInvested = summary.TotalInvested.Add(pos.TotalInvested)
		summary.Positions = append(summary.Positions, PositionDetail{
			ID:            pos.ID,
			StockSymbol:   symbol,
			StockName:     name,
			Quantity:      pos.Quantity,
			AveragePrice:  pos.AveragePrice,
			TotalInvested: pos.TotalInvested,
			Notes:         pos.Notes,
			CreatedAt:     pos.CreatedAt,
		})
	}

	summary.EstimatedValue = summary.TotalInvested

	return summary, nil
}

// BySector groups the user's active positions by the stock's sector,
// summing invested capital and quantity. Stocks without a sector are
// grouped under "Unknown".
func (r *PositionRepository) BySector(
	ctx context.Context,
	userID uint,
) (map[string]SectorAllocation, error) {

	type sectorRow struct {
		Sector        string
		TotalInvested decimal.Decimal
		TotalQuantity decimal.Decimal
	}

	var rows []sectorRow

	err := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Select(`COALESCE(NULLIF(stocks.sector, ''), 'Unknown') AS sector,
			SUM(positions.total_invested) AS total_invested,
			SUM(positions.quantity) AS total_quantity`).
		Joins("JOIN stocks ON stocks.id = positions.stock_id").
		Where("positions.user_id = ? AND positions.status = ?",
			userID, model.PositionStatusActive).
		Group("COALESCE(NULLIF(stocks.sector, ''), 'Unknown')").
		Scan(&rows).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "PositionRepository",
			"op":      "BySector",
			"user_id": userID,
		}).WithError(err).Error("Failed to aggregate positions by sector")

		return nil, err
	}

	breakdown := make(map[string]SectorAllocation, len(rows))
	for _, row := range rows {
		breakdown[row.Sector] = SectorAllocation{
			TotalInvested: row.TotalInvested,
			TotalQuantity: row.TotalQuantity,
		}
	}

	return breakdown, nil
}

// translateConflict maps duplicate-key errors from the storage layer
// onto ErrStorageConflict so the ledger can retry them.
func translateConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrStorageConflict
	}
	return err
}
