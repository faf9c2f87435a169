package dynamo

// items.go — attribute-value construction and item DTOs.
//
// Writes build attribute maps by hand so monetary numbers go through
// shopspring/decimal and land as exact decimal strings, never float64
// round-trips. Reads use attributevalue's struct unmarshaling.

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"rwafolio/internal/domain"
)

func strAttr(s string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s}
}

func intAttr(i int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: decimal.NewFromInt(int64(i)).String()}
}

func numAttr(f float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: decimal.NewFromFloat(f).String()}
}

func boolAttr(b bool) types.AttributeValue {
	return &types.AttributeValueMemberBOOL{Value: b}
}

func strListAttr(values []string) types.AttributeValue {
	list := make([]types.AttributeValue, len(values))
	for i, v := range values {
		list[i] = strAttr(v)
	}
	return &types.AttributeValueMemberL{Value: list}
}

func numMapAttr(m map[string]float64) types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(m))
	for k, v := range m {
		out[k] = numAttr(v)
	}
	return &types.AttributeValueMemberM{Value: out}
}

func boolMapAttr(m map[string]bool) types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(m))
	for k, v := range m {
		out[k] = boolAttr(v)
	}
	return &types.AttributeValueMemberM{Value: out}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Read-side DTOs, tagged for attributevalue unmarshaling.

type judgmentItem struct {
	JudgmentID      string             `dynamodbav:"judgment_id"`
	Timestamp       string             `dynamodbav:"timestamp"`
	ConfidenceScore int                `dynamodbav:"confidence_score"`
	TargetAllocs    map[string]float64 `dynamodbav:"target_allocations"`
	ReasoningText   string             `dynamodbav:"reasoning_text"`
	SourceURLs      []string           `dynamodbav:"source_urls"`
	InfoFetchStatus map[string]bool    `dynamodbav:"info_fetch_status"`
	FailedSources   []string           `dynamodbav:"failed_sources"`
}

func (i judgmentItem) toDomain() domain.Judgment {
	return domain.Judgment{
		ID:              i.JudgmentID,
		Timestamp:       parseTime(i.Timestamp),
		ConfidenceScore: i.ConfidenceScore,
		TargetAlloc:     i.TargetAllocs,
		Reasoning:       i.ReasoningText,
		SourceURLs:      i.SourceURLs,
		FetchStatus:     i.InfoFetchStatus,
		FailedSources:   i.FailedSources,
	}
}

type transactionItem struct {
	TransactionID  string             `dynamodbav:"transaction_id"`
	Timestamp      string             `dynamodbav:"timestamp"`
	Symbol         string             `dynamodbav:"symbol"`
	Side           string             `dynamodbav:"side"`
	Amount         float64            `dynamodbav:"amount"`
	Price          float64            `dynamodbav:"price"`
	Status         string             `dynamodbav:"status"`
	PreAllocation  map[string]float64 `dynamodbav:"pre_allocation"`
	PostAllocation map[string]float64 `dynamodbav:"post_allocation"`
}

func (i transactionItem) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:          i.TransactionID,
		Timestamp:   parseTime(i.Timestamp),
		Symbol:      i.Symbol,
		Side:        domain.Side(i.Side),
		Amount:      i.Amount,
		Price:       i.Price,
		Status:      i.Status,
		PreAlloc:    i.PreAllocation,
		TargetAlloc: i.PostAllocation,
	}
}

type snapshotItem struct {
	SnapshotID  string             `dynamodbav:"snapshot_id"`
	Timestamp   string             `dynamodbav:"timestamp"`
	Holdings    map[string]float64 `dynamodbav:"holdings"`
	ValuesUSDT  map[string]float64 `dynamodbav:"values_usdt"`
	TotalValue  float64            `dynamodbav:"total_value_usdt"`
	Allocations map[string]float64 `dynamodbav:"allocations"`
}

func (i snapshotItem) toDomain() domain.PortfolioSnapshot {
	return domain.PortfolioSnapshot{
		ID:         i.SnapshotID,
		Timestamp:  parseTime(i.Timestamp),
		Holdings:   i.Holdings,
		Values:     i.ValuesUSDT,
		TotalValue: i.TotalValue,
		Alloc:      i.Allocations,
	}
}

type priceItem struct {
	Symbol    string  `dynamodbav:"symbol"`
	Timestamp string  `dynamodbav:"timestamp"`
	Price     float64 `dynamodbav:"price"`
	Change24h float64 `dynamodbav:"change_24h"`
	Volume    float64 `dynamodbav:"volume"`
}

func (i priceItem) toDomain() domain.PricePoint {
	return domain.PricePoint{
		Symbol:    i.Symbol,
		Timestamp: parseTime(i.Timestamp),
		Price:     i.Price,
		Change24h: i.Change24h,
		Volume:    i.Volume,
	}
}
