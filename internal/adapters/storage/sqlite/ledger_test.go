package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rwafolio/internal/domain"
	"rwafolio/internal/ports"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestJudgmentRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveJudgment(ctx, domain.Judgment{
		ConfidenceScore: 9,
		TargetAlloc:     domain.Allocation{"PAXG_USDT": 0.5, "USDT": 0.5},
		Reasoning:       "gold momentum",
		SourceURLs:      []string{"https://example.com/a"},
		FetchStatus:     map[string]bool{"cryptopanic": true},
		FailedSources:   []string{},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.GetJudgment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 9, got.ConfidenceScore)
	assert.InDelta(t, 0.5, got.TargetAlloc["PAXG_USDT"], 1e-9)
	assert.Equal(t, "gold momentum", got.Reasoning)
	assert.Equal(t, []string{"https://example.com/a"}, got.SourceURLs)
	assert.True(t, got.FetchStatus["cryptopanic"])
	assert.False(t, got.Timestamp.IsZero())
}

func TestGetJudgment_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetJudgment(context.Background(), "no-such-id")

	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestTransactionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveTransaction(ctx, domain.Transaction{
		Symbol:      "PAXG_USDT",
		Side:        domain.Buy,
		Amount:      0.25,
		Price:       2000.5,
		Status:      "closed",
		PreAlloc:    domain.Allocation{"USDT": 1.0},
		TargetAlloc: domain.Allocation{"PAXG_USDT": 0.5, "USDT": 0.5},
	})
	require.NoError(t, err)

	got, err := store.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "PAXG_USDT", got.Symbol)
	assert.Equal(t, domain.Buy, got.Side)
	assert.InDelta(t, 0.25, got.Amount, 1e-12)
	assert.InDelta(t, 2000.5, got.Price, 1e-12)
	assert.InDelta(t, 1.0, got.PreAlloc["USDT"], 1e-9)

	list, err := store.ListTransactions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestSnapshotLatestAndNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.LatestSnapshot(ctx)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	id, err := store.SaveSnapshot(ctx, domain.PortfolioSnapshot{
		Holdings:   map[string]float64{"PAXG_USDT": 0.25, "USDT": 500},
		Values:     map[string]float64{"PAXG_USDT": 500, "USDT": 500},
		TotalValue: 1000,
		Alloc:      domain.Allocation{"PAXG_USDT": 0.5, "USDT": 0.5},
	})
	require.NoError(t, err)

	got, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.InDelta(t, 1000.0, got.TotalValue, 1e-12)
	assert.InDelta(t, 0.25, got.Holdings["PAXG_USDT"], 1e-9)
}

func TestPriceHistory_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, price := range []float64{2000, 2010, 2020} {
		require.NoError(t, store.SavePriceHistory(ctx, domain.PricePoint{
			Symbol:    "PAXG_USDT",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Price:     price,
		}))
	}

	points, err := store.PriceHistory(ctx, "PAXG_USDT", 2)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, 2020.0, points[0].Price, 1e-9)
	assert.InDelta(t, 2010.0, points[1].Price, 1e-9)
}

func TestSavePriceHistory_KeepsFirstObservationOnSameSecond(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SavePriceHistory(ctx, domain.PricePoint{
		Symbol: "PAXG_USDT", Timestamp: ts, Price: 2000,
	}))
	require.NoError(t, store.SavePriceHistory(ctx, domain.PricePoint{
		Symbol: "PAXG_USDT", Timestamp: ts, Price: 1000,
	}))

	points, err := store.PriceHistory(ctx, "PAXG_USDT", 10)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 2000.0, points[0].Price, 1e-9)
}

func TestReferencePrice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok := store.ReferencePrice(ctx, "PAXG_USDT")
	assert.False(t, ok)

	require.NoError(t, store.SavePriceHistory(ctx, domain.PricePoint{
		Symbol:    "PAXG_USDT",
		Timestamp: time.Now(),
		Price:     2015.5,
	}))

	price, ok := store.ReferencePrice(ctx, "PAXG_USDT")
	require.True(t, ok)
	assert.InDelta(t, 2015.5, price, 1e-9)
}

func TestListJudgments_RespectsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.SaveJudgment(ctx, domain.Judgment{
			ConfidenceScore: i,
			TargetAlloc:     domain.Allocation{"USDT": 1.0},
		})
		require.NoError(t, err)
	}

	list, err := store.ListJudgments(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
