package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/louisinayinde/dashboard-finance/src/model"
)

func TestStockRepositoryFindBySymbol(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&StockRepository{}).WithDB(mockDB)

	createdAt := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "symbol", "name", "sector", "created_at"}).
			AddRow(1, "AAPL", "Apple Inc.", "Technology", createdAt)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "stocks" WHERE symbol = $1 ORDER BY "stocks"."id" LIMIT $2`)).
			WithArgs("AAPL", 1).
			WillReturnRows(rows)

		stock, err := repo.FindBySymbol(context.Background(), "aapl")
		if err != nil {
			t.Fatalf("unexpected error fetching stock: %v", err)
		}
		if stock == nil || stock.Symbol != "AAPL" {
			t.Fatalf("unexpected stock returned: %+v", stock)
		}
	})

	t.Run("not found returns nil, nil", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "stocks" WHERE symbol = $1 ORDER BY "stocks"."id" LIMIT $2`)).
			WithArgs("NOPE", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "symbol"}))

		stock, err := repo.FindBySymbol(context.Background(), "NOPE")
		if err != nil {
			t.Fatalf("unexpected error for missing stock: %v", err)
		}
		if stock != nil {
			t.Fatalf("expected nil for missing stock, got %+v", stock)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestStockRepositorySearch(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&StockRepository{}).WithDB(mockDB)

	t.Run("free text with filters", func(t *testing.T) {
		sector := "Tech"
		marketType := model.MarketTypeStock

		rows := sqlmock.NewRows([]string{"id", "symbol", "name"}).
			AddRow(1, "AAPL", "Apple Inc.")

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "stocks" WHERE is_active = $1 AND (symbol ILIKE $2 OR name ILIKE $3 OR company_description ILIKE $4) AND market_type = $5 AND sector ILIKE $6 ORDER BY symbol LIMIT $7`)).
			WithArgs(true, "%apple%", "%apple%", "%apple%", "stock", "%Tech%", 50).
			WillReturnRows(rows)

		stocks, err := repo.Search(context.Background(), StockSearchOptions{
			Query:      "apple",
			MarketType: &marketType,
			Sector:     &sector,
		})
		if err != nil {
			t.Fatalf("unexpected error searching stocks: %v", err)
		}
		if len(stocks) != 1 || stocks[0].Symbol != "AAPL" {
			t.Fatalf("unexpected search result: %+v", stocks)
		}
	})

	t.Run("applies pagination", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "symbol", "name"}).
			AddRow(2, "MSFT", "Microsoft")

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "stocks" WHERE is_active = $1 ORDER BY symbol LIMIT $2 OFFSET $3`)).
			WithArgs(true, 10, 10).
			WillReturnRows(rows)

		stocks, err := repo.Search(context.Background(), StockSearchOptions{Limit: 10, Offset: 10})
		if err != nil {
			t.Fatalf("unexpected error searching stocks: %v", err)
		}
		if len(stocks) != 1 {
			t.Fatalf("expected 1 stock, got %d", len(stocks))
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestStockRepositoryTouchPriceUpdate(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&StockRepository{}).WithDB(mockDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "stocks" SET "last_price_update"=$1,"updated_at"=$2 WHERE id = $3`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), uint(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	touched, err := repo.TouchPriceUpdate(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error touching price update: %v", err)
	}
	if !touched {
		t.Fatalf("expected touch to report an affected row")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
