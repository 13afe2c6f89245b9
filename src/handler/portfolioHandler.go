package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"github.com/louisinayinde/dashboard-finance/src/model"
	"github.com/louisinayinde/dashboard-finance/src/repository"
)

type positionLedger interface {
	Add(ctx context.Context, userID, stockID uint, quantity, price decimal.Decimal, notes string) (*model.Position, error)
	Update(ctx context.Context, userID, stockID uint, update repository.PositionUpdate) (*model.Position, error)
	Close(ctx context.Context, userID, stockID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]model.Position, error)
	Summary(ctx context.Context, userID uint) (*repository.PortfolioSummary, error)
	BySector(ctx context.Context, userID uint) (map[string]repository.SectorAllocation, error)
}

type addPositionRequest struct {
	StockID  uint            `json:"stock_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Notes    string          `json:"notes,omitempty"`
}

type updatePositionRequest struct {
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

// AddPositionHandler applies a trade event to the user's position in a
// stock, creating or merging it at weighted-average cost.
func AddPositionHandler(ledger positionLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := uintURLParam(r, "userID")
		if !ok {
			http.Error(w, "invalid userID", http.StatusBadRequest)
			return
		}

		var req addPositionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.StockID == 0 {
			http.Error(w, "stock_id is required", http.StatusBadRequest)
			return
		}

		position, err := ledger.Add(r.Context(), userID, req.StockID, req.Quantity, req.Price, req.Notes)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrInvalidQuantity),
				errors.Is(err, repository.ErrInvalidPrice):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, repository.ErrStorageConflict):
				http.Error(w, "conflicting concurrent update, retry", http.StatusConflict)
			default:
				logger.WithError(err).Error("failed to add position")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, position)
	}
}

// UpdatePositionHandler overwrites quantity/price/notes of the active
// position. Responds 404 when no active position exists.
func UpdatePositionHandler(ledger positionLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := uintURLParam(r, "userID")
		if !ok {
			http.Error(w, "invalid userID", http.StatusBadRequest)
			return
		}
		stockID, ok := uintURLParam(r, "stockID")
		if !ok {
			http.Error(w, "invalid stockID", http.StatusBadRequest)
			return
		}

		var req updatePositionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		position, err := ledger.Update(r.Context(), userID, stockID, repository.PositionUpdate{
			Quantity: req.Quantity,
			Price:    req.Price,
			Notes:    req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrInvalidQuantity),
				errors.Is(err, repository.ErrInvalidPrice):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				logger.WithError(err).Error("failed to update position")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
			return
		}
		if position == nil {
			http.Error(w, "position not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, position)
	}
}

// ClosePositionHandler closes the active position. Closing an absent or
// already closed position responds 404.
func ClosePositionHandler(ledger positionLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := uintURLParam(r, "userID")
		if !ok {
			http.Error(w, "invalid userID", http.StatusBadRequest)
			return
		}
		stockID, ok := uintURLParam(r, "stockID")
		if !ok {
			http.Error(w, "invalid stockID", http.StatusBadRequest)
			return
		}

		closed, err := ledger.Close(r.Context(), userID, stockID)
		if err != nil {
			logger.WithError(err).Error("failed to close position")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if !closed {
			http.Error(w, "position not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"closed": true})
	}
}

// ListPositionsHandler lists the user's active positions with
// pagination.
func ListPositionsHandler(ledger positionLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := uintURLParam(r, "userID")
		if !ok {
			http.Error(w, "invalid userID", http.StatusBadRequest)
			return
		}

		limit, offset, ok := pagination(r, 100)
		if !ok {
			http.Error(w, "invalid pagination", http.StatusBadRequest)
			return
		}

		positions, err := ledger.ListByUser(r.Context(), userID, limit, offset)
		if err != nil {
			logger.WithError(err).Error("failed to list positions")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, positions)
	}
}

// PortfolioSummaryHandler returns counts, totals and the per-position
// breakdown for a user.
func PortfolioSummaryHandler(ledger positionLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := uintURLParam(r, "userID")
		if !ok {
			http.Error(w, "invalid userID", http.StatusBadRequest)
			return
		}

		summary, err := ledger.Summary(r.Context(), userID)
		if err != nil {
			logger.WithError(err).Error("failed to build portfolio summary")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

// PortfolioBySectorHandler returns the user's sector breakdown.
func PortfolioBySectorHandler(ledger positionLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := uintURLParam(r, "userID")
		if !ok {
			http.Error(w, "invalid userID", http.StatusBadRequest)
			return
		}

		breakdown, err := ledger.BySector(r.Context(), userID)
		if err != nil {
			logger.WithError(err).Error("failed to build sector breakdown")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, breakdown)
	}
}

// Default wiring to the production repository implementation.

func DefaultAddPositionHandler() http.HandlerFunc {
	return AddPositionHandler(repository.NewPositionRepository())
}

func DefaultUpdatePositionHandler() http.HandlerFunc {
	return UpdatePositionHandler(repository.NewPositionRepository())
}

func DefaultClosePositionHandler() http.HandlerFunc {
	return ClosePositionHandler(repository.NewPositionRepository())
}

func DefaultListPositionsHandler() http.HandlerFunc {
	return ListPositionsHandler(repository.NewPositionRepository())
}

func DefaultPortfolioSummaryHandler() http.HandlerFunc {
	return PortfolioSummaryHandler(repository.NewPositionRepository())
}

func DefaultPortfolioBySectorHandler() http.HandlerFunc {
	return PortfolioBySectorHandler(repository.NewPositionRepository())
}
