package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Kariqs/tableside/models"
	"github.com/Kariqs/tableside/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*Service, *store.RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	s := store.NewRedisStore(client, "")
	return NewService(s, 24*time.Hour), s, mr
}

func TestAggregatorPersistsEveryMutation(t *testing.T) {
	svc, _, mr := setupService(t)
	ctx := context.Background()
	agg := svc.For("browser-1")

	_, err := agg.AddOrIncrement(ctx, line("D1", "medium", 2, 100))
	require.NoError(t, err)
	assert.True(t, mr.Exists(store.CartKey("browser-1")))

	_, err = agg.AddOrIncrement(ctx, line("D1", "medium", 1, 100))
	require.NoError(t, err)

	// a fresh aggregator stands in for a page reload
	reloaded, err := svc.For("browser-1").Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, reloaded, 1)
	assert.Equal(t, 3, reloaded[0].Quantity)

	total, err := agg.Total(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(total))

	_, err = agg.ChangeQuantity(ctx, "D1", "medium", -3)
	require.NoError(t, err)
	total, err = agg.Total(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestAggregatorRoundTripPreservesLines(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	agg := svc.For("browser-1")

	for _, l := range []models.CartLine{
		line("D1", "small", 2, 80),
		line("D2", "large", 1, 150),
		line("D3", "medium", 4, 45),
	} {
		_, err := agg.AddOrIncrement(ctx, l)
		require.NoError(t, err)
	}

	before, err := agg.Snapshot(ctx)
	require.NoError(t, err)
	after, err := svc.For("browser-1").Snapshot(ctx)
	require.NoError(t, err)

	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].DishID, after[i].DishID)
		assert.Equal(t, before[i].Size, after[i].Size)
		assert.Equal(t, before[i].Quantity, after[i].Quantity)
		assert.True(t, before[i].UnitPrice.Equal(after[i].UnitPrice))
	}
}

func TestAggregatorRejectionLeavesStateUntouched(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	agg := svc.For("browser-1")

	_, err := agg.AddOrIncrement(ctx, line("D1", "small", 1, 80))
	require.NoError(t, err)

	got, err := agg.AddOrIncrement(ctx, line("D2", "small", 0, 80))
	assert.ErrorIs(t, err, ErrRejectedQuantity)
	assert.Len(t, got, 1)

	snap, err := agg.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 1)
}

func TestAggregatorBrowsersAreIsolated(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.For("a").AddOrIncrement(ctx, line("D1", "small", 1, 80))
	require.NoError(t, err)

	snap, err := svc.For("b").Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestAggregatorSnapshotIsACopy(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	agg := svc.For("browser-1")

	_, err := agg.AddOrIncrement(ctx, line("D1", "small", 1, 80))
	require.NoError(t, err)

	snap, err := agg.Snapshot(ctx)
	require.NoError(t, err)
	snap[0].Quantity = 99

	again, err := agg.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again[0].Quantity)
}

func TestAggregatorConcurrentIncrementsAreNotLost(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	agg := svc.For("browser-1")

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := agg.AddOrIncrement(ctx, line("D1", "medium", 1, 100))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := agg.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, 25, snap[0].Quantity)
}

func TestAggregatorClear(t *testing.T) {
	svc, _, mr := setupService(t)
	ctx := context.Background()
	agg := svc.For("browser-1")

	_, err := agg.AddOrIncrement(ctx, line("D1", "small", 1, 80))
	require.NoError(t, err)
	require.NoError(t, agg.Clear(ctx))

	assert.False(t, mr.Exists(store.CartKey("browser-1")))
	snap, err := agg.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestAggregatorNormalizesStoredDuplicates(t *testing.T) {
	svc, s, _ := setupService(t)
	ctx := context.Background()

	legacy := []models.CartLine{line("D1", "small", 1, 80), line("D1", "small", 2, 80)}
	require.NoError(t, s.SetJSON(ctx, store.CartKey("browser-1"), legacy, 0))

	snap, err := svc.For("browser-1").Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, 3, snap[0].Quantity)
}

func TestRemovePaidKeepsLaterAdditions(t *testing.T) {
	svc, _, mr := setupService(t)
	ctx := context.Background()
	agg := svc.For("browser-1")

	_, err := agg.AddOrIncrement(ctx, line("D1", "medium", 2, 100))
	require.NoError(t, err)
	paid, err := agg.Snapshot(ctx)
	require.NoError(t, err)

	_, err = agg.AddOrIncrement(ctx, line("D1", "medium", 1, 100))
	require.NoError(t, err)
	_, err = agg.AddOrIncrement(ctx, line("D2", "small", 1, 50))
	require.NoError(t, err)

	left, err := agg.RemovePaid(ctx, paid)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, 1, left[0].Quantity)
	assert.Equal(t, models.ID("D2"), left[1].DishID)

	left, err = agg.RemovePaid(ctx, left)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.False(t, mr.Exists(store.CartKey("browser-1")))
}
