package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rwafolio/internal/domain"
)

func parseTestUniverse() domain.Universe {
	return domain.Universe{Symbols: []string{"PAXG_USDT", "ONDO_USDT"}, Cash: "USDT"}
}

func TestParseVerdict_CleanJSON(t *testing.T) {
	text := `{"confidence_score": 8, "reasoning": "tokenized gold inflows accelerating"}`

	v := parseVerdict(text)

	assert.Equal(t, ParsedOK, v.Outcome)
	assert.Equal(t, 8, v.Score)
	assert.Equal(t, "tokenized gold inflows accelerating", v.Reasoning)
}

func TestParseVerdict_JSONInsideProse(t *testing.T) {
	text := "Here is my analysis:\n```json\n{\"confidence_score\": 6, \"reasoning\": \"mixed signals\"}\n```\nLet me know."

	v := parseVerdict(text)

	assert.Equal(t, ParsedOK, v.Outcome)
	assert.Equal(t, 6, v.Score)
	assert.Equal(t, "mixed signals", v.Reasoning)
}

func TestParseVerdict_RegexFallback(t *testing.T) {
	// Broken JSON (trailing comma) that still carries the fields.
	text := `{"confidence_score": 7, "reasoning": "rate cut priced in",}`

	v := parseVerdict(text)

	assert.Equal(t, ParsedOK, v.Outcome)
	assert.Equal(t, 7, v.Score)
	assert.Equal(t, "rate cut priced in", v.Reasoning)
}

func TestParseVerdict_UnparsableKeepsRawText(t *testing.T) {
	text := "I cannot provide financial advice today."

	v := parseVerdict(text)

	assert.Equal(t, ParsedFallback, v.Outcome)
	assert.Zero(t, v.Score)
	assert.Equal(t, text, v.Reasoning)
}

func TestParseVerdict_ClampsScore(t *testing.T) {
	v := parseVerdict(`{"confidence_score": 42, "reasoning": "overflow"}`)

	assert.Equal(t, 10, v.Score)
}

func TestParseAllocation_CleanJSON(t *testing.T) {
	text := `{"PAXG_USDT": 0.4, "ONDO_USDT": 0.3, "USDT": 0.3}`

	alloc, outcome := parseAllocation(text, parseTestUniverse())

	assert.Equal(t, ParsedOK, outcome)
	require.Len(t, alloc, 3)
	assert.InDelta(t, 0.4, alloc["PAXG_USDT"], 1e-9)
	assert.InDelta(t, 0.3, alloc["USDT"], 1e-9)
}

func TestParseAllocation_DropsUnknownSymbols(t *testing.T) {
	text := `{"PAXG_USDT": 0.5, "BTC_USDT": 0.5}`

	alloc, outcome := parseAllocation(text, parseTestUniverse())

	assert.Equal(t, ParsedOK, outcome)
	require.Len(t, alloc, 1)
	assert.InDelta(t, 0.5, alloc["PAXG_USDT"], 1e-9)
}

func TestParseAllocation_RegexFallbackOnBrokenJSON(t *testing.T) {
	text := `Allocations: "PAXG_USDT": 0.6 and "USDT": 0.4, adjust as needed {broken`

	alloc, outcome := parseAllocation(text, parseTestUniverse())

	assert.Equal(t, ParsedOK, outcome)
	assert.InDelta(t, 0.6, alloc["PAXG_USDT"], 1e-9)
	assert.InDelta(t, 0.4, alloc["USDT"], 1e-9)
}

func TestParseAllocation_NothingUsable(t *testing.T) {
	alloc, outcome := parseAllocation("no numbers here", parseTestUniverse())

	assert.Equal(t, ParsedFallback, outcome)
	assert.Nil(t, alloc)
}

func TestParseAllocation_RejectsNegativeRatios(t *testing.T) {
	text := `{"PAXG_USDT": -0.5, "ONDO_USDT": 0.5}`

	alloc, outcome := parseAllocation(text, parseTestUniverse())

	assert.Equal(t, ParsedOK, outcome)
	require.Len(t, alloc, 1)
	assert.InDelta(t, 0.5, alloc["ONDO_USDT"], 1e-9)
}
