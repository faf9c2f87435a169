package dynamo

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rwafolio/internal/domain"
)

func TestNumAttr_ExactDecimalString(t *testing.T) {
	// 0.1 must survive as "0.1", not a float64 binary expansion.
	n, ok := numAttr(0.1).(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "0.1", n.Value)

	n, ok = numAttr(2000.5).(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "2000.5", n.Value)
}

func TestNumMapAttr(t *testing.T) {
	m, ok := numMapAttr(map[string]float64{"PAXG_USDT": 0.5}).(*types.AttributeValueMemberM)
	require.True(t, ok)

	n, ok := m.Value["PAXG_USDT"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "0.5", n.Value)
}

func TestStrListAttr(t *testing.T) {
	l, ok := strListAttr([]string{"a", "b"}).(*types.AttributeValueMemberL)
	require.True(t, ok)
	require.Len(t, l.Value, 2)
	assert.Equal(t, "a", l.Value[0].(*types.AttributeValueMemberS).Value)
}

func TestFormatTime_RFC3339UTC(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	ts := time.Date(2025, 6, 1, 21, 0, 0, 0, loc)

	assert.Equal(t, "2025-06-01T12:00:00Z", formatTime(ts))
}

func TestParseTime_InvalidYieldsZero(t *testing.T) {
	assert.True(t, parseTime("garbage").IsZero())
	assert.False(t, parseTime("2025-06-01T12:00:00Z").IsZero())
}

func TestJudgmentItem_ToDomain(t *testing.T) {
	item := judgmentItem{
		JudgmentID:      "j-1",
		Timestamp:       "2025-06-01T12:00:00Z",
		ConfidenceScore: 9,
		TargetAllocs:    map[string]float64{"PAXG_USDT": 0.5, "USDT": 0.5},
		ReasoningText:   "gold momentum",
		SourceURLs:      []string{"https://example.com"},
		InfoFetchStatus: map[string]bool{"cryptopanic": true},
	}

	j := item.toDomain()

	assert.Equal(t, "j-1", j.ID)
	assert.Equal(t, 9, j.ConfidenceScore)
	assert.InDelta(t, 0.5, j.TargetAlloc["PAXG_USDT"], 1e-9)
	assert.Equal(t, "gold momentum", j.Reasoning)
	assert.True(t, j.FetchStatus["cryptopanic"])
	assert.Equal(t, 2025, j.Timestamp.Year())
}

func TestTransactionItem_ToDomain(t *testing.T) {
	item := transactionItem{
		TransactionID:  "t-1",
		Timestamp:      "2025-06-01T12:00:00Z",
		Symbol:         "PAXG_USDT",
		Side:           "buy",
		Amount:         0.25,
		Price:          2000,
		Status:         "closed",
		PreAllocation:  map[string]float64{"USDT": 1.0},
		PostAllocation: map[string]float64{"PAXG_USDT": 0.5, "USDT": 0.5},
	}

	tx := item.toDomain()

	assert.Equal(t, domain.Buy, tx.Side)
	assert.InDelta(t, 0.25, tx.Amount, 1e-12)
	assert.InDelta(t, 1.0, tx.PreAlloc["USDT"], 1e-9)
	assert.InDelta(t, 0.5, tx.TargetAlloc["PAXG_USDT"], 1e-9)
}
