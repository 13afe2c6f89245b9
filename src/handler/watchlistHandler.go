package handler

import (
	"context"
	"encoding/json"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"github.com/louisinayinde/dashboard-finance/src/model"
	"github.com/louisinayinde/dashboard-finance/src/repository"
)

type watchlistStore interface {
	ListByUser(ctx context.Context, userID uint) ([]model.Watchlist, error)
	Create(ctx context.Context, userID uint, name, description string, isDefault bool) (*model.Watchlist, error)
	AddStock(ctx context.Context, watchlistID, stockID uint, notes, targetPrice string) (*model.WatchlistItem, error)
	RemoveStock(ctx context.Context, watchlistID, stockID uint) (bool, error)
	Items(ctx context.Context, watchlistID uint) ([]repository.WatchlistItemDetail, error)
}

type createWatchlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"is_default,omitempty"`
}

type addWatchlistItemRequest struct {
	StockID     uint   `json:"stock_id"`
	Notes       string `json:"notes,omitempty"`
	TargetPrice string `json:"target_price,omitempty"`
}

// ListWatchlistsHandler lists a user's watchlists.
func ListWatchlistsHandler(store watchlistStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := uintURLParam(r, "userID")
		if !ok {
			http.Error(w, "invalid userID", http.StatusBadRequest)
			return
		}

		watchlists, err := store.ListByUser(r.Context(), userID)
		if err != nil {
			logger.WithError(err).Error("failed to list watchlists")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, watchlists)
	}
}

// CreateWatchlistHandler creates a watchlist; marking it default
// unsets any previous default.
func CreateWatchlistHandler(store watchlistStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := uintURLParam(r, "userID")
		if !ok {
			http.Error(w, "invalid userID", http.StatusBadRequest)
			return
		}

		var req createWatchlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		watchlist, err := store.Create(r.Context(), userID, req.Name, req.Description, req.IsDefault)
		if err != nil {
			logger.WithError(err).Error("failed to create watchlist")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, watchlist)
	}
}

// AddWatchlistItemHandler adds (or updates) a stock on a watchlist.
func AddWatchlistItemHandler(store watchlistStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		watchlistID, ok := uintURLParam(r, "watchlistID")
		if !ok {
			http.Error(w, "invalid watchlistID", http.StatusBadRequest)
			return
		}

		var req addWatchlistItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.StockID == 0 {
			http.Error(w, "stock_id is required", http.StatusBadRequest)
			return
		}

		item, err := store.AddStock(r.Context(), watchlistID, req.StockID, req.Notes, req.TargetPrice)
		if err != nil {
			logger.WithError(err).Error("failed to add watchlist item")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, item)
	}
}

// RemoveWatchlistItemHandler removes a stock from a watchlist.
func RemoveWatchlistItemHandler(store watchlistStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		watchlistID, ok := uintURLParam(r, "watchlistID")
		if !ok {
			http.Error(w, "invalid watchlistID", http.StatusBadRequest)
			return
		}
		stockID, ok := uintURLParam(r, "stockID")
		if !ok {
			http.Error(w, "invalid stockID", http.StatusBadRequest)
			return
		}

		removed, err := store.RemoveStock(r.Context(), watchlistID, stockID)
		if err != nil {
			logger.WithError(err).Error("failed to remove watchlist item")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if !removed {
			http.Error(w, "watchlist item not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
	}
}

// WatchlistItemsHandler lists a watchlist's entries with stock details.
func WatchlistItemsHandler(store watchlistStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		watchlistID, ok := uintURLParam(r, "watchlistID")
		if !ok {
			http.Error(w, "invalid watchlistID", http.StatusBadRequest)
			return
		}

		items, err := store.Items(r.Context(), watchlistID)
		if err != nil {
			logger.WithError(err).Error("failed to fetch watchlist items")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, items)
	}
}

// Default wiring to the production repository implementation.

func DefaultListWatchlistsHandler() http.HandlerFunc {
	return ListWatchlistsHandler(repository.NewWatchlistRepository())
}

func DefaultCreateWatchlistHandler() http.HandlerFunc {
	return CreateWatchlistHandler(repository.NewWatchlistRepository())
}

func DefaultAddWatchlistItemHandler() http.HandlerFunc {
	return AddWatchlistItemHandler(repository.NewWatchlistRepository())
}

func DefaultRemoveWatchlistItemHandler() http.HandlerFunc {
	return RemoveWatchlistItemHandler(repository.NewWatchlistRepository())
}

func DefaultWatchlistItemsHandler() http.HandlerFunc {
	return WatchlistItemsHandler(repository.NewWatchlistRepository())
}
