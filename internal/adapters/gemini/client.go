package gemini

// client.go — Gemini generative-language REST advisor.
//
// The model's free-text output is treated as untrusted: responses go through
// a strict JSON parse with a regex fallback (parse.go), and every failure
// degrades to a safe default instead of propagating.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"rwafolio/internal/domain"
)

// Client implements ports.Advisor against the Gemini REST API.
type Client struct {
	http     *http.Client
	baseURL  string
	model    string
	apiKey   string
	universe domain.Universe
	log      zerolog.Logger
}

// NewClient creates a Gemini advisor for the given universe.
func NewClient(baseURL, model, apiKey string, universe domain.Universe, log zerolog.Logger) *Client {
	return &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		baseURL:  baseURL,
		model:    model,
		apiKey:   apiKey,
		universe: universe,
		log:      log.With().Str("component", "gemini").Logger(),
	}
}

// AnalyzeMarket rates market conditions 0-10 and explains the rating.
// Any transport or parse failure yields score 0 with the error recorded in
// the reasoning text — the cycle still persists a judgment.
func (c *Client) AnalyzeMarket(ctx context.Context, newsText string, tickers domain.Tickers) (int, string) {
	prompt := analyzePrompt(newsText, tickers)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.log.Error().Err(err).Msg("market analysis request failed")
		return 0, fmt.Sprintf("analysis error: %v", err)
	}

	verdict := parseVerdict(text)
	if verdict.Outcome == ParsedFallback {
		c.log.Warn().Msg("verdict JSON parse failed, used regex fallback")
	}
	return verdict.Score, verdict.Reasoning
}

// OptimizePortfolio asks for a target allocation. Malformed output falls
// back to the current allocation unchanged; a parsable allocation is
// normalized to sum 1.0.
func (c *Client) OptimizePortfolio(ctx context.Context, reasoning string, current domain.Allocation) domain.Allocation {
	prompt := optimizePrompt(reasoning, current, c.universe)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.log.Error().Err(err).Msg("portfolio optimization request failed, keeping current allocation")
		return current
	}

	target, outcome := parseAllocation(text, c.universe)
	if outcome == ParsedFallback {
		c.log.Warn().Msg("allocation parse failed, keeping current allocation")
		return current
	}
	return target.Normalized()
}

// generate calls models/{model}:generateContent and returns the first
// candidate's text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, string(msg))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func analyzePrompt(newsText string, tickers domain.Tickers) string {
	var sb strings.Builder
	sb.WriteString("You are a financial market analyst for a tokenized real-world-asset portfolio.\n\n")
	sb.WriteString("## Latest news\n")
	if newsText == "" {
		sb.WriteString("(no news available this cycle)\n")
	} else {
		sb.WriteString(newsText + "\n")
	}
	sb.WriteString("\n## Current prices\n")
	symbols := make([]string, 0, len(tickers))
	for s := range tickers {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	for _, s := range symbols {
		t := tickers[s]
		sb.WriteString(fmt.Sprintf("%s: $%.4f (%+.2f%%)\n", s, t.Price, t.Change24h))
	}
	sb.WriteString(`
## Task
Compare the news against the prices and 24h changes, then rate your
confidence that the portfolio should be rebalanced now:
  1-3: insufficient information
  4-7: weak signal, no action
  8-10: strong signal, consider action

## Output
Answer with JSON only:
{"confidence_score": <integer 1-10>, "reasoning": "<explanation>"}
`)
	return sb.String()
}

func optimizePrompt(reasoning string, current domain.Allocation, u domain.Universe) string {
	var sb strings.Builder
	sb.WriteString("You are a portfolio optimization expert.\n\n")
	sb.WriteString("## Analysis\n" + reasoning + "\n\n")
	sb.WriteString("## Current allocation\n")
	for _, s := range u.All() {
		sb.WriteString(fmt.Sprintf("%s: %.1f%%\n", s, current[s]*100))
	}
	sb.WriteString("\n## Tradable instruments\n")
	for _, s := range u.All() {
		sb.WriteString("- " + s + "\n")
	}
	sb.WriteString(`
## Task
Decide a target allocation ratio for each instrument (cash included).
Diversify risk and stay consistent with the analysis.

## Output
Answer with JSON only, one key per instrument, values in 0.0-1.0 summing
to 1.0:
`)
	sb.WriteString("{")
	for i, s := range u.All() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%q: <ratio>", s))
	}
	sb.WriteString("}\n")
	return sb.String()
}
