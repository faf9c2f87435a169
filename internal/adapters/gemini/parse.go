package gemini

// parse.go — turning model free text into structured values.
//
// Strategy: strict JSON parse of the first {...} block, then a regex
// extraction pass, then a tagged fallback. Callers branch on the Outcome
// instead of catching errors.

import (
	"encoding/json"
	"regexp"
	"strconv"

	"rwafolio/internal/domain"
)

// Outcome tags how a model response was interpreted.
type Outcome int

const (
	ParsedOK       Outcome = iota // strict or regex parse succeeded
	ParsedFallback                // nothing usable, caller applies its default
)

// Verdict is the parsed market analysis.
type Verdict struct {
	Score     int
	Reasoning string
	Outcome   Outcome
}

var (
	jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)
	scoreRe     = regexp.MustCompile(`"confidence_score"\s*:\s*(\d+)`)
	reasoningRe = regexp.MustCompile(`"reasoning"\s*:\s*"([^"]+)"`)
)

// parseVerdict extracts the confidence score and reasoning. When no JSON is
// recoverable the raw text becomes the reasoning with score 0, so the
// judgment trail still records what the model said.
func parseVerdict(text string) Verdict {
	if block := jsonBlockRe.FindString(text); block != "" {
		var v struct {
			ConfidenceScore int    `json:"confidence_score"`
			Reasoning       string `json:"reasoning"`
		}
		if err := json.Unmarshal([]byte(block), &v); err == nil && v.ConfidenceScore > 0 {
			return Verdict{Score: clampScore(v.ConfidenceScore), Reasoning: v.Reasoning, Outcome: ParsedOK}
		}
	}

	if m := scoreRe.FindStringSubmatch(text); m != nil {
		score, _ := strconv.Atoi(m[1])
		reasoning := text
		if r := reasoningRe.FindStringSubmatch(text); r != nil {
			reasoning = r[1]
		}
		return Verdict{Score: clampScore(score), Reasoning: reasoning, Outcome: ParsedOK}
	}

	return Verdict{Score: 0, Reasoning: text, Outcome: ParsedFallback}
}

// parseAllocation extracts a symbol→ratio mapping restricted to the
// universe. Unknown keys are dropped; an empty result is a fallback.
func parseAllocation(text string, u domain.Universe) (domain.Allocation, Outcome) {
	if block := jsonBlockRe.FindString(text); block != "" {
		var raw map[string]float64
		if err := json.Unmarshal([]byte(block), &raw); err == nil {
			alloc := make(domain.Allocation)
			for symbol, ratio := range raw {
				if u.Contains(symbol) && ratio >= 0 {
					alloc[symbol] = ratio
				}
			}
			if len(alloc) > 0 {
				return alloc, ParsedOK
			}
		}
	}

	// Regex pass: per-symbol "SYM": 0.25 pairs anywhere in the text.
	alloc := make(domain.Allocation)
	for _, symbol := range u.All() {
		re := regexp.MustCompile(`"` + regexp.QuoteMeta(symbol) + `"\s*:\s*([\d.]+)`)
		if m := re.FindStringSubmatch(text); m != nil {
			if ratio, err := strconv.ParseFloat(m[1], 64); err == nil && ratio >= 0 {
				alloc[symbol] = ratio
			}
		}
	}
	if len(alloc) > 0 {
		return alloc, ParsedOK
	}
	return nil, ParsedFallback
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
