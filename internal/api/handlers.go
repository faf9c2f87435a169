package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"rwafolio/internal/domain"
	"rwafolio/internal/ports"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

type judgmentResponse struct {
	JudgmentID        string             `json:"judgment_id"`
	Timestamp         string             `json:"timestamp"`
	ConfidenceScore   int                `json:"confidence_score"`
	TargetAllocations map[string]float64 `json:"target_allocations"`
	ReasoningText     string             `json:"reasoning_text"`
	SourceURLs        []string           `json:"source_urls"`
	InfoFetchStatus   map[string]bool    `json:"info_fetch_status"`
	FailedSources     []string           `json:"failed_sources"`
}

type transactionResponse struct {
	TransactionID    string             `json:"transaction_id"`
	Timestamp        string             `json:"timestamp"`
	Symbol           string             `json:"symbol"`
	Side             string             `json:"side"`
	Amount           float64            `json:"amount"`
	Price            float64            `json:"price"`
	Status           string             `json:"status"`
	PreAllocation    map[string]float64 `json:"pre_allocation"`
	TargetAllocation map[string]float64 `json:"target_allocation"`
}

type snapshotResponse struct {
	SnapshotID     string             `json:"snapshot_id"`
	Timestamp      string             `json:"timestamp"`
	Holdings       map[string]float64 `json:"holdings"`
	ValuesUSDT     map[string]float64 `json:"values_usdt"`
	TotalValueUSDT float64            `json:"total_value_usdt"`
	Allocations    map[string]float64 `json:"allocations"`
}

type pricePointResponse struct {
	Symbol    string  `json:"symbol"`
	Timestamp string  `json:"timestamp"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
	Volume    float64 `json:"volume"`
}

type performanceEntry struct {
	Days          int     `json:"days"`
	StartValue    float64 `json:"start_value"`
	CurrentValue  float64 `json:"current_value"`
	ChangePercent float64 `json:"change_percent"`
}

type performanceResponse struct {
	AsOf    string             `json:"as_of"`
	Periods []performanceEntry `json:"periods"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListJudgments(w http.ResponseWriter, r *http.Request) {
	limit := listLimit(r)
	judgments, err := s.ledger.ListJudgments(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list judgments failed")
		judgments = nil
	}
	out := make([]judgmentResponse, 0, len(judgments))
	for _, j := range judgments {
		out = append(out, toJudgmentResponse(j))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetJudgment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	j, err := s.ledger.GetJudgment(r.Context(), id)
	if err != nil {
		s.writeLookupError(w, err, "judgment not found")
		return
	}
	s.writeJSON(w, http.StatusOK, toJudgmentResponse(j))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := listLimit(r)
	txs, err := s.ledger.ListTransactions(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list transactions failed")
		txs = nil
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tx, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		s.writeLookupError(w, err, "transaction not found")
		return
	}
	s.writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleCurrentPortfolio(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.LatestSnapshot(r.Context())
	if err != nil {
		s.writeLookupError(w, err, "no portfolio snapshot recorded")
		return
	}
	s.writeJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	current, err := s.ledger.LatestSnapshot(r.Context())
	if err != nil {
		s.writeLookupError(w, err, "no portfolio snapshot recorded")
		return
	}

	resp := performanceResponse{AsOf: current.Timestamp.UTC().Format(time.RFC3339)}
	for _, days := range []int{1, 2, 7, 14, 30} {
		past, err := s.ledger.SnapshotDaysAgo(r.Context(), days)
		if err != nil || past.TotalValue <= 0 {
			continue
		}
		change := (current.TotalValue - past.TotalValue) / past.TotalValue * 100
		resp.Periods = append(resp.Periods, performanceEntry{
			Days:          days,
			StartValue:    past.TotalValue,
			CurrentValue:  current.TotalValue,
			ChangePercent: change,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePriceHistory(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	limit := listLimit(r)
	points, err := s.ledger.PriceHistory(r.Context(), symbol, limit)
	if err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("price history failed")
		points = nil
	}
	out := make([]pricePointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, pricePointResponse{
			Symbol:    p.Symbol,
			Timestamp: p.Timestamp.UTC().Format(time.RFC3339),
			Price:     p.Price,
			Change24h: p.Change24h,
			Volume:    p.Volume,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeLookupError(w http.ResponseWriter, err error, detail string) {
	if errors.Is(err, ports.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"detail": detail})
		return
	}
	s.log.Error().Err(err).Msg("ledger read failed")
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal error"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("response encode failed")
	}
}

func listLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

func toJudgmentResponse(j domain.Judgment) judgmentResponse {
	return judgmentResponse{
		JudgmentID:        j.ID,
		Timestamp:         j.Timestamp.UTC().Format(time.RFC3339),
		ConfidenceScore:   j.ConfidenceScore,
		TargetAllocations: j.TargetAlloc,
		ReasoningText:     j.Reasoning,
		SourceURLs:        j.SourceURLs,
		InfoFetchStatus:   j.FetchStatus,
		FailedSources:     j.FailedSources,
	}
}

func toTransactionResponse(tx domain.Transaction) transactionResponse {
	return transactionResponse{
		TransactionID:    tx.ID,
		Timestamp:        tx.Timestamp.UTC().Format(time.RFC3339),
		Symbol:           tx.Symbol,
		Side:             string(tx.Side),
		Amount:           tx.Amount,
		Price:            tx.Price,
		Status:           tx.Status,
		PreAllocation:    tx.PreAlloc,
		TargetAllocation: tx.TargetAlloc,
	}
}

func toSnapshotResponse(s domain.PortfolioSnapshot) snapshotResponse {
	return snapshotResponse{
		SnapshotID:     s.ID,
		Timestamp:      s.Timestamp.UTC().Format(time.RFC3339),
		Holdings:       s.Holdings,
		ValuesUSDT:     s.Values,
		TotalValueUSDT: s.TotalValue,
		Allocations:    s.Alloc,
	}
}
