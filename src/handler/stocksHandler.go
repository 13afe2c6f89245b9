package handler

import (
	"context"
	"net/http"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/louisinayinde/dashboard-finance/src/model"
	"github.com/louisinayinde/dashboard-finance/src/repository"
)

type stockDirectory interface {
	FindBySymbol(ctx context.Context, symbol string) (*model.Stock, error)
	Search(ctx context.Context, options repository.StockSearchOptions) ([]model.Stock, error)
}

type priceHistory interface {
	Latest(ctx context.Context, stockID uint) (*model.StockPrice, error)
	Range(ctx context.Context, stockID uint, from, to time.Time) ([]model.StockPrice, error)
}

// SearchStocksHandler lists active stocks matching free-text and
// type/sector filters. Supports pagination (page, pageSize).
func SearchStocksHandler(directory stockDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options := repository.StockSearchOptions{
			Query: r.URL.Query().Get("q"),
		}

		if typeParam := r.URL.Query().Get("type"); typeParam != "" {
			marketType := model.MarketType(typeParam)
			switch marketType {
			case model.MarketTypeStock, model.MarketTypeETF, model.MarketTypeIndex,
				model.MarketTypeCrypto, model.MarketTypeForex:
				options.MarketType = &marketType
			default:
				http.Error(w, "invalid type", http.StatusBadRequest)
				return
			}
		}

		if sectorParam := r.URL.Query().Get("sector"); sectorParam != "" {
			options.Sector = &sectorParam
		}

		limit, offset, ok := pagination(r, 50)
		if !ok {
			http.Error(w, "invalid pagination", http.StatusBadRequest)
			return
		}
		options.Limit = limit
		options.Offset = offset

		stocks, err := directory.Search(r.Context(), options)
		if err != nil {
			logger.WithError(err).Error("failed to search stocks")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, stocks)
	}
}

// GetStockHandler fetches one stock by symbol.
func GetStockHandler(directory stockDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := urlSymbol(r)
		if symbol == "" {
			http.Error(w, "invalid symbol", http.StatusBadRequest)
			return
		}

		stock, err := directory.FindBySymbol(r.Context(), symbol)
		if err != nil {
			logger.WithError(err).Error("failed to fetch stock")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if stock == nil {
			http.Error(w, "stock not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, stock)
	}
}

// StockHistoryHandler returns price bars for a symbol over a window;
// defaults to the last 30 days.
func StockHistoryHandler(directory stockDirectory, prices priceHistory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := urlSymbol(r)
		if symbol == "" {
			http.Error(w, "invalid symbol", http.StatusBadRequest)
			return
		}

		to := time.Now().UTC()
		from := to.AddDate(0, 0, -30)

		if fromParam := r.URL.Query().Get("from"); fromParam != "" {
			parsed, err := time.Parse(time.RFC3339, fromParam)
			if err != nil {
				http.Error(w, "invalid from", http.StatusBadRequest)
				return
			}
			from = parsed
		}
		if toParam := r.URL.Query().Get("to"); toParam != "" {
			parsed, err := time.Parse(time.RFC3339, toParam)
			if err != nil {
				http.Error(w, "invalid to", http.StatusBadRequest)
				return
			}
			to = parsed
		}

		stock, err := directory.FindBySymbol(r.Context(), symbol)
		if err != nil {
			logger.WithError(err).Error("failed to fetch stock")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if stock == nil {
			http.Error(w, "stock not found", http.StatusNotFound)
			return
		}

		bars, err := prices.Range(r.Context(), stock.ID, from, to)
		if err != nil {
			logger.WithError(err).Error("failed to fetch price history")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, bars)
	}
}

// LatestPriceHandler returns the most recent stored price bar for a
// symbol.
func LatestPriceHandler(directory stockDirectory, prices priceHistory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := urlSymbol(r)
		if symbol == "" {
			http.Error(w, "invalid symbol", http.StatusBadRequest)
			return
		}

		stock, err := directory.FindBySymbol(r.Context(), symbol)
		if err != nil {
			logger.WithError(err).Error("failed to fetch stock")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if stock == nil {
			http.Error(w, "stock not found", http.StatusNotFound)
			return
		}

		price, err := prices.Latest(r.Context(), stock.ID)
		if err != nil {
			logger.WithError(err).Error("failed to fetch latest price")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if price == nil {
			http.Error(w, "no price data", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, price)
	}
}

// Default wiring to the production repository implementations.

func DefaultSearchStocksHandler() http.HandlerFunc {
	return SearchStocksHandler(repository.NewStockRepository())
}

func DefaultGetStockHandler() http.HandlerFunc {
	return GetStockHandler(repository.NewStockRepository())
}

func DefaultStockHistoryHandler() http.HandlerFunc {
	return StockHistoryHandler(repository.NewStockRepository(), repository.NewStockPriceRepository())
}

func DefaultLatestPriceHandler() http.HandlerFunc {
	return LatestPriceHandler(repository.NewStockRepository(), repository.NewStockPriceRepository())
}
