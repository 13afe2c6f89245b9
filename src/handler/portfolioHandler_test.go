package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisinayinde/dashboard-finance/src/model"
	"github.com/louisinayinde/dashboard-finance/src/repository"
)

// mockPositionLedger records arguments and returns canned results.
type mockPositionLedger struct {
	addErr   error
	closeOK  bool
	position *model.Position
	summary  *repository.PortfolioSummary

	gotUserID   uint
	gotStockID  uint
	gotQuantity decimal.Decimal
	gotPrice    decimal.Decimal
	gotUpdate   repository.PositionUpdate
	gotLimit    int
	gotOffset   int
}

func (m *mockPositionLedger) Add(_ context.Context, userID, stockID uint, quantity, price decimal.Decimal, _ string) (*model.Position, error) {
	m.gotUserID = userID
	m.gotStockID = stockID
	m.gotQuantity = quantity
	m.gotPrice = price
	if m.addErr != nil {
		return nil, m.addErr
	}
	return m.position, nil
}

func (m *mockPositionLedger) Update(_ context.Context, userID, stockID uint, update repository.PositionUpdate) (*model.Position, error) {
	m.gotUserID = userID
	m.gotStockID = stockID
	m.gotUpdate = update
	return m.position, nil
}

func (m *mockPositionLedger) Close(_ context.Context, userID, stockID uint) (bool, error) {
	m.gotUserID = userID
	m.gotStockID = stockID
	return m.closeOK, nil
}

func (m *mockPositionLedger) ListByUser(_ context.Context, userID uint, limit, offset int) ([]model.Position, error) {
	m.gotUserID = userID
	m.gotLimit = limit
	m.gotOffset = offset
	return []model.Position{}, nil
}

func (m *mockPositionLedger) Summary(_ context.Context, userID uint) (*repository.PortfolioSummary, error) {
	m.gotUserID = userID
	return m.summary, nil
}

func (m *mockPositionLedger) BySector(context.Context, uint) (map[string]repository.SectorAllocation, error) {
	return map[string]repository.SectorAllocation{}, nil
}

// portfolioRouter mounts the handlers under the same route shapes the
// server uses, so chi URL params resolve.
func portfolioRouter(ledger positionLedger) *chi.Mux {
	router := chi.NewRouter()
	router.Route("/api/v1/users/{userID}/portfolio", func(r chi.Router) {
		r.Get("/", ListPositionsHandler(ledger))
		r.Post("/positions", AddPositionHandler(ledger))
		r.Put("/positions/{stockID}", UpdatePositionHandler(ledger))
		r.Delete("/positions/{stockID}", ClosePositionHandler(ledger))
		r.Get("/summary", PortfolioSummaryHandler(ledger))
	})
	return router
}

func TestAddPositionHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		ledger := &mockPositionLedger{
			position: &model.Position{
				ID:       7,
				UserID:   42,
				StockID:  3,
				Quantity: decimal.NewFromInt(150),
				Status:   model.PositionStatusActive,
			},
		}

		body := `{"stock_id": 3, "quantity": "100", "price": "150.50"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/42/portfolio/positions", strings.NewReader(body))
		rec := httptest.NewRecorder()

		portfolioRouter(ledger).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, uint(42), ledger.gotUserID)
		assert.Equal(t, uint(3), ledger.gotStockID)
		assert.True(t, decimal.NewFromInt(100).Equal(ledger.gotQuantity))
		assert.True(t, decimal.RequireFromString("150.50").Equal(ledger.gotPrice))
		assert.Contains(t, rec.Body.String(), `"id":7`)
	})

	t.Run("invalid quantity maps to 400", func(t *testing.T) {
		ledger := &mockPositionLedger{addErr: repository.ErrInvalidQuantity}

		body := `{"stock_id": 3, "quantity": "0", "price": "150"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/42/portfolio/positions", strings.NewReader(body))
		rec := httptest.NewRecorder()

		portfolioRouter(ledger).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("storage conflict maps to 409", func(t *testing.T) {
		ledger := &mockPositionLedger{addErr: repository.ErrStorageConflict}

		body := `{"stock_id": 3, "quantity": "100", "price": "150"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/42/portfolio/positions", strings.NewReader(body))
		rec := httptest.NewRecorder()

		portfolioRouter(ledger).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing stock_id is rejected", func(t *testing.T) {
		ledger := &mockPositionLedger{}

		body := `{"quantity": "100", "price": "150"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/42/portfolio/positions", strings.NewReader(body))
		rec := httptest.NewRecorder()

		portfolioRouter(ledger).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		ledger := &mockPositionLedger{}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/42/portfolio/positions", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()

		portfolioRouter(ledger).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdatePositionHandler(t *testing.T) {
	t.Run("overwrites quantity only", func(t *testing.T) {
		ledger := &mockPositionLedger{
			position: &model.Position{ID: 7, UserID: 42, StockID: 3},
		}

		body := `{"quantity": "200"}`
		req := httptest.NewRequest(http.MethodPut, "/api/v1/users/42/portfolio/positions/3", strings.NewReader(body))
		rec := httptest.NewRecorder()

		portfolioRouter(ledger).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, ledger.gotUpdate.Quantity)
		assert.True(t, decimal.NewFromInt(200).Equal(*ledger.gotUpdate.Quantity))
		assert.Nil(t, ledger.gotUpdate.Price)
		assert.Nil(t, ledger.gotUpdate.Notes)
	})

	t.Run("absent position maps to 404", func(t *testing.T) {
		ledger := &mockPositionLedger{position: nil}

		req := httptest.NewRequest(http.MethodPut, "/api/v1/users/42/portfolio/positions/3", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		portfolioRouter(ledger).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestClosePositionHandler(t *testing.T) {
	t.Run("closed", func(t *testing.T) {
		ledger := &mockPositionLedger{closeOK: true}

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/42/portfolio/positions/3", nil)
		rec := httptest.NewRecorder()

		portfolioRouter(ledger).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"closed":true`)
	})

	t.Run("already closed maps to 404", func(t *testing.T) {
		ledger := &mockPositionLedger{closeOK: false}

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/42/portfolio/positions/3", nil)
		rec := httptest.NewRecorder()

		portfolioRouter(ledger).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad userID is rejected before the ledger is called", func(t *testing.T) {
		ledger := &mockPositionLedger{closeOK: true}

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/0/portfolio/positions/3", nil)
		rec := httptest.NewRecorder()

		portfolioRouter(ledger).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, ledger.gotUserID)
	})
}

func TestListPositionsHandlerPagination(t *testing.T) {
	t.Run("page and pageSize map to limit and offset", func(t *testing.T) {
		ledger := &mockPositionLedger{}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/42/portfolio/?page=3&pageSize=25", nil)
		rec := httptest.NewRecorder()

		portfolioRouter(ledger).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, uint(42), ledger.gotUserID)
		assert.Equal(t, 25, ledger.gotLimit)
		assert.Equal(t, 50, ledger.gotOffset)
	})

	t.Run("oversized pageSize is clamped", func(t *testing.T) {
		ledger := &mockPositionLedger{}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/42/portfolio/?pageSize=10000000", nil)
		rec := httptest.NewRecorder()

		portfolioRouter(ledger).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, maxPageSize, ledger.gotLimit)
	})

	t.Run("non-numeric pageSize is rejected", func(t *testing.T) {
		ledger := &mockPositionLedger{}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/42/portfolio/?pageSize=lots", nil)
		rec := httptest.NewRecorder()

		portfolioRouter(ledger).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPortfolioSummaryHandler(t *testing.T) {
	ledger := &mockPositionLedger{
		summary: &repository.PortfolioSummary{
			TotalPositions: 0,
			TotalInvested:  decimal.Zero,
			EstimatedValue: decimal.Zero,
			UnrealizedPnL:  decimal.Zero,
			Positions:      []repository.PositionDetail{},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/42/portfolio/summary", nil)
	rec := httptest.NewRecorder()

	portfolioRouter(ledger).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(42), ledger.gotUserID)
	assert.Contains(t, rec.Body.String(), `"total_positions":0`)
	assert.Contains(t, rec.Body.String(), `"total_invested":"0"`)
}
