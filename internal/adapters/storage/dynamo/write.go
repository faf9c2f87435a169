package dynamo

// write.go — the append-only write side. Every record gets a uuid, an
// RFC3339 UTC timestamp, and a record_type attribute for the list GSIs.

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"rwafolio/internal/domain"
)

// SavePriceHistory stores one ticker observation, keyed by symbol+timestamp.
func (s *Store) SavePriceHistory(ctx context.Context, p domain.PricePoint) error {
	ts := p.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	item := map[string]types.AttributeValue{
		"symbol":     strAttr(p.Symbol),
		"timestamp":  strAttr(formatTime(ts)),
		"price":      numAttr(p.Price),
		"change_24h": numAttr(p.Change24h),
		"volume":     numAttr(p.Volume),
	}
	_, err := s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tables.priceHistory),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamo.SavePriceHistory %s: %w", p.Symbol, err)
	}
	return nil
}

// SaveJudgment stores the advisor verdict and returns its id.
func (s *Store) SaveJudgment(ctx context.Context, j domain.Judgment) (string, error) {
	id := uuid.NewString()
	item := map[string]types.AttributeValue{
		"judgment_id":        strAttr(id),
		"timestamp":          strAttr(formatTime(time.Now())),
		"record_type":        strAttr("judgment"),
		"confidence_score":   intAttr(j.ConfidenceScore),
		"target_allocations": numMapAttr(j.TargetAlloc),
		"reasoning_text":     strAttr(j.Reasoning),
		"source_urls":        strListAttr(j.SourceURLs),
		"info_fetch_status":  boolMapAttr(j.FetchStatus),
		"failed_sources":     strListAttr(j.FailedSources),
	}
	_, err := s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tables.judgments),
		Item:      item,
	})
	if err != nil {
		return "", fmt.Errorf("dynamo.SaveJudgment: %w", err)
	}
	s.log.Info().Str("judgment_id", id).Msg("judgment saved")
	return id, nil
}

// SaveTransaction stores one executed order and returns its id.
func (s *Store) SaveTransaction(ctx context.Context, t domain.Transaction) (string, error) {
	id := uuid.NewString()
	item := map[string]types.AttributeValue{
		"transaction_id":  strAttr(id),
		"timestamp":       strAttr(formatTime(time.Now())),
		"record_type":     strAttr("transaction"),
		"symbol":          strAttr(t.Symbol),
		"side":            strAttr(string(t.Side)),
		"amount":          numAttr(t.Amount),
		"price":           numAttr(t.Price),
		"status":          strAttr(t.Status),
		"pre_allocation":  numMapAttr(t.PreAlloc),
		"post_allocation": numMapAttr(t.TargetAlloc),
	}
	_, err := s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tables.transactions),
		Item:      item,
	})
	if err != nil {
		return "", fmt.Errorf("dynamo.SaveTransaction: %w", err)
	}
	s.log.Info().Str("transaction_id", id).Str("symbol", t.Symbol).Msg("transaction saved")
	return id, nil
}

// SaveSnapshot stores the end-of-cycle portfolio state and returns its id.
func (s *Store) SaveSnapshot(ctx context.Context, snap domain.PortfolioSnapshot) (string, error) {
	id := uuid.NewString()
	item := map[string]types.AttributeValue{
		"snapshot_id":      strAttr(id),
		"timestamp":        strAttr(formatTime(time.Now())),
		"record_type":      strAttr("snapshot"),
		"holdings":         numMapAttr(snap.Holdings),
		"values_usdt":      numMapAttr(snap.Values),
		"total_value_usdt": numAttr(snap.TotalValue),
		"allocations":      numMapAttr(snap.Alloc),
	}
	_, err := s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tables.snapshots),
		Item:      item,
	})
	if err != nil {
		return "", fmt.Errorf("dynamo.SaveSnapshot: %w", err)
	}
	s.log.Info().Str("snapshot_id", id).Msg("portfolio snapshot saved")
	return id, nil
}
