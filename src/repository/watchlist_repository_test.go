package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchlistCreateSwapsDefault(t *testing.T) {
	db := newTestDB(t)
	repo := (&WatchlistRepository{}).WithDB(db)
	ctx := context.Background()

	first, err := repo.Create(ctx, 1, "Tech", "", true)
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := repo.Create(ctx, 1, "Dividends", "", true)
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	// The previous default must have been unset in the same
	// transaction.
	def, err := repo.FindDefault(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, second.ID, def.ID)

	lists, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	defaults := 0
	for _, list := range lists {
		if list.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults, "at most one default watchlist per user")

	// Another user's default is untouched.
	otherDefault, err := repo.FindDefault(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, otherDefault)
}

func TestWatchlistAddStockUpdatesInPlace(t *testing.T) {
	db := newTestDB(t)
	repo := (&WatchlistRepository{}).WithDB(db)
	ctx := context.Background()

	watchlist, err := repo.Create(ctx, 1, "Tech", "", false)
	require.NoError(t, err)

	stock := seedStock(t, db, "AAPL", "Apple Inc.", "Technology")

	item, err := repo.AddStock(ctx, watchlist.ID, stock.ID, "breakout candidate", "210")
	require.NoError(t, err)
	assert.True(t, item.AlertEnabled)

	// Adding the same stock again updates instead of duplicating.
	updated, err := repo.AddStock(ctx, watchlist.ID, stock.ID, "", "250")
	require.NoError(t, err)
	assert.Equal(t, item.ID, updated.ID)
	assert.Equal(t, "breakout candidate", updated.Notes, "empty notes must not clobber existing")
	assert.Equal(t, "250", updated.TargetPrice)

	items, err := repo.Items(ctx, watchlist.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "AAPL", items[0].StockSymbol)
	assert.Equal(t, "Apple Inc.", items[0].StockName)
}

func TestWatchlistRemoveStock(t *testing.T) {
	db := newTestDB(t)
	repo := (&WatchlistRepository{}).WithDB(db)
	ctx := context.Background()

	watchlist, err := repo.Create(ctx, 1, "Tech", "", false)
	require.NoError(t, err)
	stock := seedStock(t, db, "MSFT", "Microsoft", "Technology")

	removed, err := repo.RemoveStock(ctx, watchlist.ID, stock.ID)
	require.NoError(t, err)
	assert.False(t, removed, "removing an absent stock reports false")

	_, err = repo.AddStock(ctx, watchlist.ID, stock.ID, "", "")
	require.NoError(t, err)

	removed, err = repo.RemoveStock(ctx, watchlist.ID, stock.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	items, err := repo.Items(ctx, watchlist.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
