package sqlite

// ledger.go — local ledger for dry-run and development.
//
// Same append-only contract as the DynamoDB store, one file on disk (or
// ":memory:"). Allocation maps are stored as JSON text; monetary amounts as
// exact decimal strings so repeated aggregation never drifts.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"rwafolio/internal/domain"
	"rwafolio/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS judgments (
    judgment_id      TEXT PRIMARY KEY,
    timestamp        DATETIME NOT NULL,
    confidence_score INTEGER  NOT NULL,
    target_allocs    TEXT     NOT NULL,
    reasoning        TEXT     NOT NULL DEFAULT '',
    source_urls      TEXT     NOT NULL DEFAULT '[]',
    fetch_status     TEXT     NOT NULL DEFAULT '{}',
    failed_sources   TEXT     NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS transactions (
    transaction_id TEXT PRIMARY KEY,
    timestamp      DATETIME NOT NULL,
    symbol         TEXT     NOT NULL,
    side           TEXT     NOT NULL,
    amount         TEXT     NOT NULL,
    price          TEXT     NOT NULL,
    status         TEXT     NOT NULL,
    pre_alloc      TEXT     NOT NULL,
    post_alloc     TEXT     NOT NULL
);

CREATE TABLE IF NOT EXISTS portfolio_snapshots (
    snapshot_id TEXT PRIMARY KEY,
    timestamp   DATETIME NOT NULL,
    holdings    TEXT     NOT NULL,
    values_usdt TEXT     NOT NULL,
    total_value TEXT     NOT NULL,
    allocations TEXT     NOT NULL
);

CREATE TABLE IF NOT EXISTS price_history (
    symbol     TEXT     NOT NULL,
    timestamp  DATETIME NOT NULL,
    price      REAL     NOT NULL,
    change_24h REAL     NOT NULL DEFAULT 0,
    volume     REAL     NOT NULL DEFAULT 0,
    PRIMARY KEY (symbol, timestamp)
);

CREATE TABLE IF NOT EXISTS execution_locks (
    lock_id    TEXT PRIMARY KEY,
    locked_at  DATETIME NOT NULL,
    expires_at INTEGER  NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_judgments_ts    ON judgments(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_ts ON transactions(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_snapshots_ts    ON portfolio_snapshots(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_prices_sym_ts   ON price_history(symbol, timestamp DESC);
`

// Store implements ports.Ledger on SQLite.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore opens (or creates) the database at path and applies the schema.
func NewStore(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.NewStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // single writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.NewStore: apply schema: %w", err)
	}
	return &Store{db: db, log: log.With().Str("component", "sqlite").Logger()}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for the lock.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) SavePriceHistory(ctx context.Context, p domain.PricePoint) error {
	ts := p.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	// History is append-only: a same-second duplicate keeps the first
	// observation instead of rewriting it.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO price_history (symbol, timestamp, price, change_24h, volume)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (symbol, timestamp) DO NOTHING`,
		p.Symbol, ts.UTC().Format(time.RFC3339), p.Price, p.Change24h, p.Volume)
	if err != nil {
		return fmt.Errorf("sqlite.SavePriceHistory %s: %w", p.Symbol, err)
	}
	return nil
}

func (s *Store) SaveJudgment(ctx context.Context, j domain.Judgment) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO judgments (judgment_id, timestamp, confidence_score, target_allocs,
		                       reasoning, source_urls, fetch_status, failed_sources)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), j.ConfidenceScore,
		mustJSON(j.TargetAlloc), j.Reasoning, mustJSON(j.SourceURLs),
		mustJSON(j.FetchStatus), mustJSON(j.FailedSources))
	if err != nil {
		return "", fmt.Errorf("sqlite.SaveJudgment: %w", err)
	}
	return id, nil
}

func (s *Store) SaveTransaction(ctx context.Context, t domain.Transaction) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (transaction_id, timestamp, symbol, side, amount,
		                          price, status, pre_alloc, post_alloc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), t.Symbol, string(t.Side),
		decimal.NewFromFloat(t.Amount).String(), decimal.NewFromFloat(t.Price).String(),
		t.Status, mustJSON(t.PreAlloc), mustJSON(t.TargetAlloc))
	if err != nil {
		return "", fmt.Errorf("sqlite.SaveTransaction: %w", err)
	}
	return id, nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snap domain.PortfolioSnapshot) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO portfolio_snapshots (snapshot_id, timestamp, holdings, values_usdt,
		                                 total_value, allocations)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), mustJSON(snap.Holdings),
		mustJSON(snap.Values), decimal.NewFromFloat(snap.TotalValue).String(),
		mustJSON(snap.Alloc))
	if err != nil {
		return "", fmt.Errorf("sqlite.SaveSnapshot: %w", err)
	}
	return id, nil
}

func (s *Store) ListJudgments(ctx context.Context, limit int) ([]domain.Judgment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT judgment_id, timestamp, confidence_score, target_allocs,
		       reasoning, source_urls, fetch_status, failed_sources
		FROM judgments ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite.ListJudgments: %w", err)
	}
	defer rows.Close()

	var out []domain.Judgment
	for rows.Next() {
		j, err := scanJudgment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *Store) GetJudgment(ctx context.Context, id string) (domain.Judgment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT judgment_id, timestamp, confidence_score, target_allocs,
		       reasoning, source_urls, fetch_status, failed_sources
		FROM judgments WHERE judgment_id = ?`, id)
	j, err := scanJudgment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Judgment{}, ports.ErrNotFound
	}
	return j, err
}

func (s *Store) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, timestamp, symbol, side, amount, price, status,
		       pre_alloc, post_alloc
		FROM transactions ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite.ListTransactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT transaction_id, timestamp, symbol, side, amount, price, status,
		       pre_alloc, post_alloc
		FROM transactions WHERE transaction_id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transaction{}, ports.ErrNotFound
	}
	return t, err
}

func (s *Store) LatestSnapshot(ctx context.Context) (domain.PortfolioSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT snapshot_id, timestamp, holdings, values_usdt, total_value, allocations
		FROM portfolio_snapshots ORDER BY timestamp DESC LIMIT 1`)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PortfolioSnapshot{}, ports.ErrNotFound
	}
	return snap, err
}

func (s *Store) SnapshotDaysAgo(ctx context.Context, days int) (domain.PortfolioSnapshot, error) {
	target := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	row := s.db.QueryRowContext(ctx, `
		SELECT snapshot_id, timestamp, holdings, values_usdt, total_value, allocations
		FROM portfolio_snapshots WHERE timestamp <= ?
		ORDER BY timestamp DESC LIMIT 1`, target)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PortfolioSnapshot{}, ports.ErrNotFound
	}
	return snap, err
}

func (s *Store) PriceHistory(ctx context.Context, symbol string, n int) ([]domain.PricePoint, error) {
	if n <= 0 {
		n = 30
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, timestamp, price, change_24h, volume
		FROM price_history WHERE symbol = ?
		ORDER BY timestamp DESC LIMIT ?`, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("sqlite.PriceHistory %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		var ts string
		if err := rows.Scan(&p.Symbol, &ts, &p.Price, &p.Change24h, &p.Volume); err != nil {
			return nil, err
		}
		p.Timestamp, _ = time.Parse(time.RFC3339, ts)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ReferencePrice(ctx context.Context, symbol string) (float64, bool) {
	points, err := s.PriceHistory(ctx, symbol, 1)
	if err != nil || len(points) == 0 || points[0].Price <= 0 {
		return 0, false
	}
	return points[0].Price, true
}

// scanner abstracts sql.Row and sql.Rows for the shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanJudgment(sc scanner) (domain.Judgment, error) {
	var j domain.Judgment
	var ts, allocs, urls, status, failed string
	if err := sc.Scan(&j.ID, &ts, &j.ConfidenceScore, &allocs, &j.Reasoning, &urls, &status, &failed); err != nil {
		return domain.Judgment{}, err
	}
	j.Timestamp, _ = time.Parse(time.RFC3339, ts)
	fromJSON(allocs, &j.TargetAlloc)
	fromJSON(urls, &j.SourceURLs)
	fromJSON(status, &j.FetchStatus)
	fromJSON(failed, &j.FailedSources)
	return j, nil
}

func scanTransaction(sc scanner) (domain.Transaction, error) {
	var t domain.Transaction
	var ts, side, amount, price, pre, post string
	if err := sc.Scan(&t.ID, &ts, &t.Symbol, &side, &amount, &price, &t.Status, &pre, &post); err != nil {
		return domain.Transaction{}, err
	}
	t.Timestamp, _ = time.Parse(time.RFC3339, ts)
	t.Side = domain.Side(side)
	t.Amount = decimalFloat(amount)
	t.Price = decimalFloat(price)
	fromJSON(pre, &t.PreAlloc)
	fromJSON(post, &t.TargetAlloc)
	return t, nil
}

func scanSnapshot(sc scanner) (domain.PortfolioSnapshot, error) {
	var snap domain.PortfolioSnapshot
	var ts, holdings, values, total, allocs string
	if err := sc.Scan(&snap.ID, &ts, &holdings, &values, &total, &allocs); err != nil {
		return domain.PortfolioSnapshot{}, err
	}
	snap.Timestamp, _ = time.Parse(time.RFC3339, ts)
	fromJSON(holdings, &snap.Holdings)
	fromJSON(values, &snap.Values)
	snap.TotalValue = decimalFloat(total)
	fromJSON(allocs, &snap.Alloc)
	return snap, nil
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func fromJSON[T any](s string, out *T) {
	_ = json.Unmarshal([]byte(s), out)
}

func decimalFloat(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}
