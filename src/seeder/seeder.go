package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/louisinayinde/dashboard-finance/src/model"
	"github.com/louisinayinde/dashboard-finance/src/repository"
)

// Run populates the database with demo users, stocks, prices,
// watchlists and positions. Idempotent: it does nothing when users
// already exist.
func Run(ctx context.Context, db *gorm.DB) error {
	var userCount int64
	if err := db.WithContext(ctx).Model(&model.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if userCount > 0 {
		logger.Info("[seeder] database already seeded, skipping")
		return nil
	}

	users := repository.NewUserRepository().WithDB(db)

	demo := &model.User{
		Email:      "demo@dashboard-finance.local",
		Username:   "demo",
		FirstName:  "Demo",
		LastName:   "User",
		Role:       model.UserRoleUser,
		IsActive:   true,
		IsVerified: true,
	}
	if err := users.Create(ctx, demo, "demo1234"); err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}

	admin := &model.User{
		Email:      "admin@dashboard-finance.local",
		Username:   "admin",
		Role:       model.UserRoleAdmin,
		IsActive:   true,
		IsVerified: true,
	}
	if err := users.Create(ctx, admin, "admin1234"); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	stocks := []model.Stock{
		{Symbol: "AAPL", Name: "Apple Inc.", Market: "NASDAQ", MarketType: model.MarketTypeStock, Currency: "USD", Sector: "Technology", Industry: "Consumer Electronics", IsActive: true, IsTradable: true},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Market: "NASDAQ", MarketType: model.MarketTypeStock, Currency: "USD", Sector: "Technology", Industry: "Software", IsActive: true, IsTradable: true},
		{Symbol: "JNJ", Name: "Johnson & Johnson", Market: "NYSE", MarketType: model.MarketTypeStock, Currency: "USD", Sector: "Healthcare", Industry: "Pharmaceuticals", IsActive: true, IsTradable: true},
		{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Market: "NYSE", MarketType: model.MarketTypeStock, Currency: "USD", Sector: "Financial Services", Industry: "Banks", IsActive: true, IsTradable: true},
		{Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust", Market: "NYSE", MarketType: model.MarketTypeETF, Currency: "USD", IsActive: true, IsTradable: true},
		{Symbol: "BTC-USD", Name: "Bitcoin USD", MarketType: model.MarketTypeCrypto, Currency: "USD", IsActive: true, IsTradable: true},
	}
	if err := db.WithContext(ctx).Create(&stocks).Error; err != nil {
		return fmt.Errorf("seed stocks: %w", err)
	}

	if err := seedPrices(ctx, db, stocks); err != nil {
		return err
	}

	watchlists := repository.NewWatchlistRepository().WithDB(db)
	watchlist, err := watchlists.Create(ctx, demo.ID, "My Watchlist", "Seeded default watchlist", true)
	if err != nil {
		return fmt.Errorf("seed watchlist: %w", err)
	}
	for _, stock := range stocks[:3] {
		if _, err := watchlists.AddStock(ctx, watchlist.ID, stock.ID, "", ""); err != nil {
			return fmt.Errorf("seed watchlist item: %w", err)
		}
	}

	positions := repository.NewPositionRepository().WithDB(db)
	trades := []struct {
		stock    model.Stock
		quantity string
		price    string
	}{
		{stocks[0], "100", "150"},
		{stocks[0], "50", "300"},
		{stocks[2], "25", "160.50"},
	}
	for _, trade := range trades {
		if _, err := positions.Add(ctx, demo.ID, trade.stock.ID,
			decimal.RequireFromString(trade.quantity),
			decimal.RequireFromString(trade.price),
			""); err != nil {
			return fmt.Errorf("seed position for %s: %w", trade.stock.Symbol, err)
		}
	}

	logger.WithFields(map[string]interface{}{
		"users":  2,
		"stocks": len(stocks),
	}).Info("[seeder] demo data created")

	return nil
}

func seedPrices(ctx context.Context, db *gorm.DB, stocks []model.Stock) error {
	prices := repository.NewStockPriceRepository().WithDB(db)

	base := map[string]decimal.Decimal{
		"AAPL":    decimal.NewFromInt(190),
		"MSFT":    decimal.NewFromInt(420),
		"JNJ":     decimal.NewFromInt(160),
		"JPM":     decimal.NewFromInt(200),
		"SPY":     decimal.NewFromInt(550),
		"BTC-USD": decimal.NewFromInt(65000),
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	var bars []model.StockPrice

	for _, stock := range stocks {
		open, ok := base[stock.Symbol]
		if !ok {
			continue
		}
		for day := 7; day >= 1; day-- {
			drift := decimal.NewFromInt(int64(day)).Div(decimal.NewFromInt(100))
			closePrice := open.Add(open.Mul(drift))
			bars = append(bars, model.StockPrice{
				StockID:     stock.ID,
				OpenPrice:   open,
				HighPrice:   closePrice.Add(decimal.NewFromInt(1)),
				LowPrice:    open.Sub(decimal.NewFromInt(1)),
				ClosePrice:  closePrice,
				Volume:      1_000_000,
				Source:      "seed",
				DataQuality: "high",
				Timestamp:   now.AddDate(0, 0, -day),
			})
		}
	}

	if err := prices.BulkInsert(ctx, bars); err != nil {
		return fmt.Errorf("seed prices: %w", err)
	}

	return nil
}
