package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaggle-market/snaggle/internal/model"
	"github.com/snaggle-market/snaggle/internal/money"
	"github.com/snaggle-market/snaggle/internal/pagination"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *MemoryRepository {
	t.Helper()

	seed, err := DefaultSeed(testNow)
	require.NoError(t, err)
	return NewMemoryRepository(seed)
}

func TestDefaultSeed(t *testing.T) {
	seed, err := DefaultSeed(testNow)
	require.NoError(t, err)

	require.NotEmpty(t, seed.Auctions)
	require.NotEmpty(t, seed.Products)
	require.NotEmpty(t, seed.Drops)
	require.NotEmpty(t, seed.Users)

	for _, a := range seed.Auctions {
		assert.Equal(t, money.Money(1), a.Increment, a.ID)
		assert.False(t, a.EndsAt.IsZero(), a.ID)
	}
}

func TestParseSeed_RelativeTimes(t *testing.T) {
	data := []byte(`
auctions:
  - id: a1
    title: Lamp
    category: home
    retail_price: 10.00
    current_bid: 1.05
    increment: 0.01
    ends_in: 1h30m
  - id: a2
    title: Fixed
    category: home
    retail_price: 5
    current_bid: 0
    increment: 0.01
    ends_at: 2026-01-01T00:00:00Z
drops:
  - id: d1
    title: Drop
    starts_in: -2h
    ends_in: 2h
`)

	seed, err := ParseSeed(data, testNow)
	require.NoError(t, err)
	require.Len(t, seed.Auctions, 2)

	assert.Equal(t, testNow.Add(90*time.Minute), seed.Auctions[0].EndsAt)
	assert.Equal(t, money.Money(105), seed.Auctions[0].CurrentBid)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), seed.Auctions[1].EndsAt.UTC())
	assert.Equal(t, testNow.Add(-2*time.Hour), seed.Drops[0].StartsAt)
}

func TestParseSeed_Errors(t *testing.T) {
	_, err := ParseSeed([]byte("auctions: [{title: no id}]"), testNow)
	require.Error(t, err)

	_, err = ParseSeed([]byte("auctions: [{id: x, current_bid: 0.001}]"), testNow)
	require.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestMemoryRepository_GetNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetAuction(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetDrop(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_ListAuctions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	all, err := repo.ListAuctions(ctx, AuctionFilter{}, pagination.Default())
	require.NoError(t, err)
	require.Equal(t, 6, all.Total)
	for i := 1; i < len(all.Items); i++ {
		assert.False(t, all.Items[i].EndsAt.Before(all.Items[i-1].EndsAt), "auctions must be ordered by ends_at")
	}

	live, err := repo.ListAuctions(ctx, AuctionFilter{State: StateLive, At: testNow}, pagination.Default())
	require.NoError(t, err)
	assert.Equal(t, 5, live.Total)

	ended, err := repo.ListAuctions(ctx, AuctionFilter{State: StateEnded, At: testNow}, pagination.Default())
	require.NoError(t, err)
	require.Equal(t, 1, ended.Total)
	assert.Equal(t, "auc-0999", ended.Items[0].ID)

	byDrop, err := repo.ListAuctions(ctx, AuctionFilter{DropID: "drop-neon-nights"}, pagination.Default())
	require.NoError(t, err)
	assert.Equal(t, 2, byDrop.Total)

	paged, err := repo.ListAuctions(ctx, AuctionFilter{}, pagination.Page{Number: 2, Limit: 4})
	require.NoError(t, err)
	assert.Len(t, paged.Items, 2)
	assert.Equal(t, 2, paged.Page)
	assert.False(t, paged.HasMore)

	_, err = repo.ListAuctions(ctx, AuctionFilter{State: "soon"}, pagination.Default())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestMemoryRepository_ListProductsAndDrops(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	products, err := repo.ListProducts(ctx, ProductFilter{}, pagination.Default())
	require.NoError(t, err)
	require.Equal(t, 4, products.Total)
	assert.Equal(t, "Desk Mat XL", products.Items[0].Name)

	outdoors, err := repo.ListProducts(ctx, ProductFilter{Category: "outdoors"}, pagination.Default())
	require.NoError(t, err)
	require.Len(t, outdoors.Items, 1)
	assert.Equal(t, "prd-2003", outdoors.Items[0].ID)

	drops, err := repo.ListDrops(ctx, pagination.Default())
	require.NoError(t, err)
	require.Len(t, drops.Items, 2)
	assert.Equal(t, "drop-neon-nights", drops.Items[0].ID)

	empty, err := repo.ListDrops(ctx, pagination.Page{Number: 5, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

func TestMemoryRepository_CloseAuction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	expired, err := repo.ListExpiredOpenAuctions(ctx, testNow, 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "auc-0999", expired[0].ID)

	closed, err := repo.CloseAuction(ctx, "auc-0999", testNow)
	require.NoError(t, err)
	assert.True(t, closed)

	closed, err = repo.CloseAuction(ctx, "auc-0999", testNow.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, closed, "second close must not win")

	a, err := repo.GetAuction(ctx, "auc-0999")
	require.NoError(t, err)
	require.NotNil(t, a.ClosedAt)
	assert.Equal(t, testNow, *a.ClosedAt)

	expired, err = repo.ListExpiredOpenAuctions(ctx, testNow, 10)
	require.NoError(t, err)
	assert.Empty(t, expired)

	_, err = repo.CloseAuction(ctx, "missing", testNow)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_CloseAuctionConcurrent(t *testing.T) {
	repo := NewMemoryRepository(Seed{Auctions: []model.Auction{{ID: "a", EndsAt: testNow.Add(-time.Minute), Increment: 1}}})
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.CloseAuction(ctx, "a", testNow)
			if err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CloseAuction(ctx, "auc-0999", testNow)
	require.NoError(t, err)

	a, err := repo.GetAuction(ctx, "auc-0999")
	require.NoError(t, err)
	*a.ClosedAt = testNow.Add(time.Hour)
	a.Title = "changed"

	again, err := repo.GetAuction(ctx, "auc-0999")
	require.NoError(t, err)
	assert.Equal(t, testNow, *again.ClosedAt)
	assert.NotEqual(t, "changed", again.Title)
}
