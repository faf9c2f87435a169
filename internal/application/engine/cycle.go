package engine

// cycle.go — one full decision-and-execution cycle.
//
// The pipeline is strictly linear: lock → gather → advise → compute →
// gate+execute → persist judgment → persist snapshot → unlock. There is no
// retry inside a cycle; the external schedule is the retry mechanism. The
// lock release is deferred on a cancel-free context so it runs on every
// exit path, including errors and caller cancellation.

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"rwafolio/internal/domain"
	"rwafolio/internal/ports"
)

// Config holds the orchestrator's tunables.
type Config struct {
	MinConfidenceScore int
	DryRun             bool // log orders instead of sending them
}

// CycleResult summarizes one invocation.
type CycleResult struct {
	Skipped         bool // lock was held by another run
	ConfidenceScore int
	OrdersComputed  int
	OrdersExecuted  int
	OrdersRejected  int
	JudgmentID      string
	SnapshotID      string
	Executed        []domain.ExecutedOrder
	Rejections      []string
}

// Cycle orchestrates the rebalancing pipeline. All collaborators are
// injected; it holds no global state.
type Cycle struct {
	universe domain.Universe
	exchange ports.Exchange
	advisor  ports.Advisor
	news     ports.NewsCollector
	ledger   ports.Ledger
	lock     ports.Locker
	risk     *RiskGate
	notifier ports.Notifier // optional
	cfg      Config
	log      zerolog.Logger
}

// New creates a Cycle. notifier may be nil.
func New(
	universe domain.Universe,
	exchange ports.Exchange,
	advisor ports.Advisor,
	news ports.NewsCollector,
	ledger ports.Ledger,
	lock ports.Locker,
	risk *RiskGate,
	notifier ports.Notifier,
	cfg Config,
	log zerolog.Logger,
) *Cycle {
	return &Cycle{
		universe: universe,
		exchange: exchange,
		advisor:  advisor,
		news:     news,
		ledger:   ledger,
		lock:     lock,
		risk:     risk,
		notifier: notifier,
		cfg:      cfg,
		log:      log.With().Str("component", "cycle").Logger(),
	}
}

// RunOnce executes one cycle. A held lock yields a Skipped result, not an
// error. Any other failure aborts the remainder of the pipeline and
// propagates — after the deferred release has run.
func (c *Cycle) RunOnce(ctx context.Context) (*CycleResult, error) {
	acquired, err := c.lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine.RunOnce: acquire lock: %w", err)
	}
	if !acquired {
		c.log.Info().Msg("another execution in progress, skipping cycle")
		return &CycleResult{Skipped: true}, nil
	}

	defer func() {
		// Release must survive caller cancellation.
		if rerr := c.lock.Release(context.WithoutCancel(ctx)); rerr != nil {
			c.log.Error().Err(rerr).Msg("lock release failed")
		}
	}()

	return c.run(ctx)
}

func (c *Cycle) run(ctx context.Context) (*CycleResult, error) {
	result := &CycleResult{}

	// Gather: news, balances, tickers. News degrades per source; a ticker
	// that fails is simply absent from the map.
	bundle := c.news.Collect(ctx)
	if len(bundle.FailedSources) > 0 {
		c.log.Warn().Strs("failed_sources", bundle.FailedSources).Msg("partial news failure")
	}

	balances, err := c.exchange.GetBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine.run: get balances: %w", err)
	}
	tickers, err := c.exchange.GetAllTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine.run: get tickers: %w", err)
	}

	// The deviation reference is captured before this cycle writes its own
	// observations. Read after the write, the ledger would hand back the
	// live price and the check below would compare a price against itself.
	refs := make(ReferencePrices, len(tickers))
	for symbol := range tickers {
		if price, ok := c.ledger.ReferencePrice(ctx, symbol); ok {
			refs[symbol] = price
		}
	}

	// Every observed ticker becomes a price-history point, regardless of
	// what the rest of the cycle decides. Best effort: a failed write is
	// logged, not fatal.
	for symbol, t := range tickers {
		point := domain.PricePoint{
			Symbol:    symbol,
			Price:     t.Price,
			Change24h: t.Change24h,
			Volume:    t.Volume,
		}
		if err := c.ledger.SavePriceHistory(ctx, point); err != nil {
			c.log.Error().Err(err).Str("symbol", symbol).Msg("price history write failed")
		}
	}

	current := c.universe.CurrentAllocation(balances, tickers)
	totalValue := c.universe.TotalValue(balances, tickers)

	// Advise. Failures inside the advisor already degrade to score 0.
	score, reasoning := c.advisor.AnalyzeMarket(ctx, bundle.Text, tickers)
	result.ConfidenceScore = score
	c.log.Info().Int("confidence_score", score).Msg("market analyzed")

	target := current
	if score >= c.cfg.MinConfidenceScore {
		target = c.advisor.OptimizePortfolio(ctx, reasoning, current)

		orders := c.universe.TradeOrders(current, target, totalValue, tickers)
		result.OrdersComputed = len(orders)

		for _, order := range orders {
			order.Amount = c.risk.ScaleForFees(order.Amount)
			ok, reason := c.risk.Validate(ctx, order, refs)
			if !ok {
				c.log.Warn().
					Str("symbol", order.Symbol).
					Str("side", string(order.Side)).
					Str("reason", reason).
					Msg("order rejected by risk gate")
				result.OrdersRejected++
				result.Rejections = append(result.Rejections, reason)
				continue
			}

			executed, err := c.execute(ctx, order)
			if err != nil {
				c.log.Error().Err(err).Str("symbol", order.Symbol).Msg("order execution failed")
				continue
			}

			if _, err := c.ledger.SaveTransaction(ctx, domain.Transaction{
				Symbol:      executed.Symbol,
				Side:        executed.Side,
				Amount:      executed.Amount,
				Price:       executed.Price,
				Status:      executed.Status,
				PreAlloc:    current,
				TargetAlloc: target,
			}); err != nil {
				return nil, fmt.Errorf("engine.run: save transaction: %w", err)
			}
			result.OrdersExecuted++
			result.Executed = append(result.Executed, executed)
		}
	} else {
		c.log.Info().
			Int("score", score).
			Int("threshold", c.cfg.MinConfidenceScore).
			Msg("confidence below threshold, no action")
	}

	// The judgment is written exactly once per cycle, trades or not.
	judgmentID, err := c.ledger.SaveJudgment(ctx, domain.Judgment{
		ConfidenceScore: score,
		TargetAlloc:     target,
		Reasoning:       reasoning,
		SourceURLs:      bundle.SourceURLs,
		FetchStatus:     bundle.FetchStatus,
		FailedSources:   bundle.FailedSources,
	})
	if err != nil {
		return nil, fmt.Errorf("engine.run: save judgment: %w", err)
	}
	result.JudgmentID = judgmentID

	// Snapshot reflects post-trade state: refetch balances when anything
	// executed, keep the gathered ones otherwise.
	finalBalances := balances
	if result.OrdersExecuted > 0 {
		if refreshed, err := c.exchange.GetBalances(ctx); err != nil {
			c.log.Warn().Err(err).Msg("post-trade balance refresh failed, snapshotting pre-trade balances")
		} else {
			finalBalances = refreshed
		}
	}

	snapshot := c.buildSnapshot(finalBalances, tickers)
	snapshotID, err := c.ledger.SaveSnapshot(ctx, snapshot)
	if err != nil {
		return nil, fmt.Errorf("engine.run: save snapshot: %w", err)
	}
	result.SnapshotID = snapshotID

	if c.notifier != nil {
		snapshot.ID = snapshotID
		c.notifier.NotifyCycle(snapshot, result.Executed, result.Rejections)
	}

	c.log.Info().
		Int("orders_executed", result.OrdersExecuted).
		Int("orders_rejected", result.OrdersRejected).
		Msg("cycle completed")
	return result, nil
}

// execute places the order, or fabricates a simulated fill in dry-run mode.
func (c *Cycle) execute(ctx context.Context, order domain.Order) (domain.ExecutedOrder, error) {
	if c.cfg.DryRun {
		c.log.Info().
			Str("symbol", order.Symbol).
			Str("side", string(order.Side)).
			Float64("amount", order.Amount).
			Msg("dry run: order not sent")
		price := 0.0
		if t, err := c.exchange.GetTicker(ctx, order.Symbol); err == nil {
			price = t.Price
		}
		return domain.ExecutedOrder{
			Symbol: order.Symbol,
			Side:   order.Side,
			Amount: order.Amount,
			Price:  price,
			Status: "simulated",
		}, nil
	}
	return c.exchange.CreateMarketOrder(ctx, order.Symbol, order.Side, order.Amount)
}

// buildSnapshot values every universe symbol (zeros included in holdings)
// and derives the final allocation.
func (c *Cycle) buildSnapshot(balances domain.Balances, tickers domain.Tickers) domain.PortfolioSnapshot {
	holdings := make(map[string]float64, len(c.universe.All()))
	values := make(map[string]float64)

	for _, symbol := range c.universe.Symbols {
		holdings[symbol] = balances[symbol]
		if balances[symbol] > 0 {
			values[symbol] = balances[symbol] * tickers[symbol].Price
		}
	}
	holdings[c.universe.Cash] = balances[c.universe.Cash]
	if cash, ok := balances[c.universe.Cash]; ok {
		values[c.universe.Cash] = cash
	}

	return domain.PortfolioSnapshot{
		Holdings:   holdings,
		Values:     values,
		TotalValue: c.universe.TotalValue(balances, tickers),
		Alloc:      c.universe.CurrentAllocation(balances, tickers),
	}
}
