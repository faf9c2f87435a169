// Package api serves the read-only audit trail over HTTP: judgments,
// transactions, portfolio state, and price history. It consumes the ledger's
// read side only; nothing here can trade or write.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"rwafolio/internal/ports"
)

// Server is the read API.
type Server struct {
	router *chi.Mux
	server *http.Server
	ledger ports.LedgerReader
	log    zerolog.Logger
}

// New creates the server on the given port.
func New(port int, ledger ports.LedgerReader, log zerolog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		ledger: ledger,
		log:    log.With().Str("component", "api").Logger(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/judgments", func(r chi.Router) {
			r.Get("/", s.handleListJudgments)
			r.Get("/{id}", s.handleGetJudgment)
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Get("/{id}", s.handleGetTransaction)
		})
		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/current", s.handleCurrentPortfolio)
			r.Get("/performance", s.handlePerformance)
		})
		r.Get("/prices/{symbol}/history", s.handlePriceHistory)
	})
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting read API")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api.Start: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router exposes the mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
