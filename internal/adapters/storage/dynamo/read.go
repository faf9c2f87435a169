package dynamo

// read.go — the query side consumed by the HTTP API and the risk gate.
//
// List queries prefer the record_type GSI (newest first); when the index
// returns fewer rows than requested — older rows predate the record_type
// attribute — they fall back to a full scan sorted in memory. Callers must
// not assume strict recency ordering under that fallback.

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"rwafolio/internal/domain"
	"rwafolio/internal/ports"
)

const (
	judgmentsIndex = "judgments_by_record_type_timestamp"
	defaultLimit   = 50
)

// ListJudgments returns up to limit judgments, newest first.
func (s *Store) ListJudgments(ctx context.Context, limit int) ([]domain.Judgment, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	raw, err := s.queryByRecordType(ctx, s.tables.judgments, judgmentsIndex, "judgment", limit)
	if err != nil {
		s.log.Warn().Err(err).Msg("judgments index query failed, falling back to scan")
		raw = nil
	}
	if len(raw) < limit {
		raw, err = s.scanAllSorted(ctx, s.tables.judgments, limit)
		if err != nil {
			return nil, fmt.Errorf("dynamo.ListJudgments: %w", err)
		}
	}

	out := make([]domain.Judgment, 0, len(raw))
	for _, av := range raw {
		var item judgmentItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			continue
		}
		out = append(out, item.toDomain())
	}
	return out, nil
}

// GetJudgment looks up one judgment by id. The table key is composite
// (id, timestamp), so a filtered scan is the lookup path.
func (s *Store) GetJudgment(ctx context.Context, id string) (domain.Judgment, error) {
	av, err := s.scanForID(ctx, s.tables.judgments, "judgment_id", id)
	if err != nil {
		return domain.Judgment{}, err
	}
	var item judgmentItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return domain.Judgment{}, fmt.Errorf("dynamo.GetJudgment: unmarshal: %w", err)
	}
	return item.toDomain(), nil
}

// ListTransactions returns up to limit transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	raw, err := s.scanAllSorted(ctx, s.tables.transactions, limit)
	if err != nil {
		return nil, fmt.Errorf("dynamo.ListTransactions: %w", err)
	}

	out := make([]domain.Transaction, 0, len(raw))
	for _, av := range raw {
		var item transactionItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			continue
		}
		out = append(out, item.toDomain())
	}
	return out, nil
}

// GetTransaction looks up one transaction by id.
func (s *Store) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	av, err := s.scanForID(ctx, s.tables.transactions, "transaction_id", id)
	if err != nil {
		return domain.Transaction{}, err
	}
	var item transactionItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return domain.Transaction{}, fmt.Errorf("dynamo.GetTransaction: unmarshal: %w", err)
	}
	return item.toDomain(), nil
}

// LatestSnapshot returns the most recent portfolio snapshot.
func (s *Store) LatestSnapshot(ctx context.Context) (domain.PortfolioSnapshot, error) {
	raw, err := s.scanAllSorted(ctx, s.tables.snapshots, 1)
	if err != nil {
		return domain.PortfolioSnapshot{}, fmt.Errorf("dynamo.LatestSnapshot: %w", err)
	}
	if len(raw) == 0 {
		return domain.PortfolioSnapshot{}, ports.ErrNotFound
	}
	var item snapshotItem
	if err := attributevalue.UnmarshalMap(raw[0], &item); err != nil {
		return domain.PortfolioSnapshot{}, fmt.Errorf("dynamo.LatestSnapshot: unmarshal: %w", err)
	}
	return item.toDomain(), nil
}

// SnapshotDaysAgo returns the snapshot closest to (now - days), looking
// backward only.
func (s *Store) SnapshotDaysAgo(ctx context.Context, days int) (domain.PortfolioSnapshot, error) {
	raw, err := s.scanAllSorted(ctx, s.tables.snapshots, 0)
	if err != nil {
		return domain.PortfolioSnapshot{}, fmt.Errorf("dynamo.SnapshotDaysAgo: %w", err)
	}

	target := time.Now().UTC().AddDate(0, 0, -days)
	var best *snapshotItem
	var bestDiff time.Duration

	for _, av := range raw {
		var item snapshotItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			continue
		}
		ts := parseTime(item.Timestamp)
		if ts.IsZero() || ts.After(target) {
			continue
		}
		diff := target.Sub(ts)
		if best == nil || diff < bestDiff {
			candidate := item
			best = &candidate
			bestDiff = diff
		}
	}

	if best == nil {
		return domain.PortfolioSnapshot{}, ports.ErrNotFound
	}
	return best.toDomain(), nil
}

// PriceHistory returns the n most recent points for a symbol, newest first.
func (s *Store) PriceHistory(ctx context.Context, symbol string, n int) ([]domain.PricePoint, error) {
	if n <= 0 {
		n = 30
	}
	resp, err := s.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tables.priceHistory),
		KeyConditionExpression: aws.String("symbol = :symbol"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":symbol": strAttr(symbol),
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(n)),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo.PriceHistory %s: %w", symbol, err)
	}

	out := make([]domain.PricePoint, 0, len(resp.Items))
	for _, av := range resp.Items {
		var item priceItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			continue
		}
		out = append(out, item.toDomain())
	}
	return out, nil
}

// ReferencePrice returns the most recently stored price for a symbol.
func (s *Store) ReferencePrice(ctx context.Context, symbol string) (float64, bool) {
	points, err := s.PriceHistory(ctx, symbol, 1)
	if err != nil || len(points) == 0 || points[0].Price <= 0 {
		return 0, false
	}
	return points[0].Price, true
}

// queryByRecordType queries a record_type GSI newest-first.
func (s *Store) queryByRecordType(ctx context.Context, table, index, recordType string, limit int) ([]map[string]types.AttributeValue, error) {
	resp, err := s.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("record_type = :rt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rt": strAttr(recordType),
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// scanAllSorted scans the whole table, sorts by the timestamp attribute
// descending, and truncates to limit (0 = no truncation).
func (s *Store) scanAllSorted(ctx context.Context, table string, limit int) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue

	for {
		resp, err := s.db.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, resp.Items...)
		if resp.LastEvaluatedKey == nil {
			break
		}
		startKey = resp.LastEvaluatedKey
	}

	sort.Slice(items, func(i, j int) bool {
		return itemTimestamp(items[i]) > itemTimestamp(items[j])
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// scanForID finds the single item whose key attribute equals id.
func (s *Store) scanForID(ctx context.Context, table, attr, id string) (map[string]types.AttributeValue, error) {
	resp, err := s.db.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(table),
		FilterExpression: aws.String("#id = :id"),
		ExpressionAttributeNames: map[string]string{
			"#id": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": strAttr(id),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo: scan %s: %w", table, err)
	}
	if len(resp.Items) == 0 {
		return nil, ports.ErrNotFound
	}
	return resp.Items[0], nil
}

// itemTimestamp pulls the string timestamp out of a raw item for sorting.
// RFC3339 strings sort chronologically, so string comparison is enough.
func itemTimestamp(item map[string]types.AttributeValue) string {
	if av, ok := item["timestamp"].(*types.AttributeValueMemberS); ok {
		return av.Value
	}
	return ""
}
