package engine

import (
	"context"
	"errors"
	"fmt"

	"rwafolio/internal/domain"
	"rwafolio/internal/ports"
)

// Test doubles for the orchestrator's ports. All in-memory, no goroutines.

type fakeExchange struct {
	balances     domain.Balances
	refreshed    domain.Balances // returned after the first GetBalances call
	balancesErr  error
	balanceCalls int

	tickers    domain.Tickers
	tickersErr error

	books map[string]domain.OrderBook

	orderErr map[string]error // per-symbol execution failures
	placed   []domain.Order
}

func (f *fakeExchange) GetBalances(ctx context.Context) (domain.Balances, error) {
	f.balanceCalls++
	if f.balancesErr != nil {
		return nil, f.balancesErr
	}
	if f.balanceCalls > 1 && f.refreshed != nil {
		return f.refreshed, nil
	}
	return f.balances, nil
}

func (f *fakeExchange) GetTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	t, ok := f.tickers[symbol]
	if !ok {
		return domain.Ticker{}, errors.New("no ticker")
	}
	return t, nil
}

func (f *fakeExchange) GetAllTickers(ctx context.Context) (domain.Tickers, error) {
	if f.tickersErr != nil {
		return nil, f.tickersErr
	}
	return f.tickers, nil
}

func (f *fakeExchange) GetOrderBook(ctx context.Context, symbol string, depth int) (domain.OrderBook, bool) {
	book, ok := f.books[symbol]
	return book, ok
}

func (f *fakeExchange) CreateMarketOrder(ctx context.Context, symbol string, side domain.Side, amount float64) (domain.ExecutedOrder, error) {
	if err := f.orderErr[symbol]; err != nil {
		return domain.ExecutedOrder{}, err
	}
	f.placed = append(f.placed, domain.Order{Symbol: symbol, Side: side, Amount: amount})
	return domain.ExecutedOrder{
		OrderID: fmt.Sprintf("o-%d", len(f.placed)),
		Symbol:  symbol,
		Side:    side,
		Amount:  amount,
		Price:   f.tickers[symbol].Price,
		Status:  "closed",
	}, nil
}

type fakeAdvisor struct {
	score     int
	reasoning string
	target    domain.Allocation
}

func (f *fakeAdvisor) AnalyzeMarket(ctx context.Context, newsText string, tickers domain.Tickers) (int, string) {
	return f.score, f.reasoning
}

func (f *fakeAdvisor) OptimizePortfolio(ctx context.Context, reasoning string, current domain.Allocation) domain.Allocation {
	if f.target == nil {
		return current
	}
	return f.target
}

type fakeNews struct {
	bundle domain.NewsBundle
}

func (f *fakeNews) Collect(ctx context.Context) domain.NewsBundle {
	return f.bundle
}

type fakeLedger struct {
	prices       []domain.PricePoint
	judgments    []domain.Judgment
	transactions []domain.Transaction
	snapshots    []domain.PortfolioSnapshot

	judgmentErr error
	snapshotErr error

	refPrices map[string]float64
}

// SavePriceHistory advances the reference price like the real stores do:
// the newest stored point is what ReferencePrice hands back.
func (f *fakeLedger) SavePriceHistory(ctx context.Context, p domain.PricePoint) error {
	f.prices = append(f.prices, p)
	if f.refPrices == nil {
		f.refPrices = make(map[string]float64)
	}
	f.refPrices[p.Symbol] = p.Price
	return nil
}

func (f *fakeLedger) SaveJudgment(ctx context.Context, j domain.Judgment) (string, error) {
	if f.judgmentErr != nil {
		return "", f.judgmentErr
	}
	f.judgments = append(f.judgments, j)
	return fmt.Sprintf("j-%d", len(f.judgments)), nil
}

func (f *fakeLedger) SaveTransaction(ctx context.Context, t domain.Transaction) (string, error) {
	f.transactions = append(f.transactions, t)
	return fmt.Sprintf("t-%d", len(f.transactions)), nil
}

func (f *fakeLedger) SaveSnapshot(ctx context.Context, s domain.PortfolioSnapshot) (string, error) {
	if f.snapshotErr != nil {
		return "", f.snapshotErr
	}
	f.snapshots = append(f.snapshots, s)
	return fmt.Sprintf("s-%d", len(f.snapshots)), nil
}

func (f *fakeLedger) ListJudgments(ctx context.Context, limit int) ([]domain.Judgment, error) {
	return f.judgments, nil
}

func (f *fakeLedger) GetJudgment(ctx context.Context, id string) (domain.Judgment, error) {
	return domain.Judgment{}, ports.ErrNotFound
}

func (f *fakeLedger) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	return f.transactions, nil
}

func (f *fakeLedger) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	return domain.Transaction{}, ports.ErrNotFound
}

func (f *fakeLedger) LatestSnapshot(ctx context.Context) (domain.PortfolioSnapshot, error) {
	if len(f.snapshots) == 0 {
		return domain.PortfolioSnapshot{}, ports.ErrNotFound
	}
	return f.snapshots[len(f.snapshots)-1], nil
}

func (f *fakeLedger) SnapshotDaysAgo(ctx context.Context, days int) (domain.PortfolioSnapshot, error) {
	return domain.PortfolioSnapshot{}, ports.ErrNotFound
}

func (f *fakeLedger) PriceHistory(ctx context.Context, symbol string, n int) ([]domain.PricePoint, error) {
	return nil, nil
}

func (f *fakeLedger) ReferencePrice(ctx context.Context, symbol string) (float64, bool) {
	p, ok := f.refPrices[symbol]
	return p, ok
}

type fakeLock struct {
	acquired   bool
	acquireErr error
	releases   int
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) {
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	return f.acquired, nil
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.releases++
	return nil
}
