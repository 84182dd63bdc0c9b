// Package server hosts the dashboard HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/basketwatch/indexd/internal/server/handler"
	"github.com/basketwatch/indexd/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
	RateLimit   int    // requests per second per client; 0 disables
}

// Handlers aggregates the HTTP handlers the server registers.
type Handlers struct {
	Health  *handler.HealthHandler
	Indexes *handler.IndexHandler
	Trades  *handler.TradeHandler
	Cache   *handler.CacheHandler
}

// Server is the HTTP API server behind the dashboard.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer registers all routes on a ServeMux and wires the middleware
// chain (rate limiting, auth, logging, CORS).
func NewServer(cfg Config, handlers Handlers, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Index resolution and derived views.
	mux.HandleFunc("GET /api/indexes", handlers.Indexes.ListIndexes)
	mux.HandleFunc("GET /api/indexes/{id}", handlers.Indexes.GetIndex)
	mux.HandleFunc("GET /api/indexes/{id}/history", handlers.Indexes.GetHistory)
	mux.HandleFunc("GET /api/indexes/{id}/orderbook", handlers.Indexes.GetOrderBook)
	mux.HandleFunc("GET /api/indexes/{id}/candles", handlers.Indexes.GetCandles)

	// Wallet-backed trade flow. Absent when the chain is disabled, leaving
	// the API read-only.
	if handlers.Trades != nil {
		mux.HandleFunc("POST /api/trade/mint", handlers.Trades.Mint)
		mux.HandleFunc("POST /api/trade/redeem", handlers.Trades.Redeem)
		mux.HandleFunc("GET /api/trade/balance", handlers.Trades.Balance)
	}

	// Cache administration.
	mux.HandleFunc("POST /api/cache/clear", handlers.Cache.ClearCache)

	var h http.Handler = mux

	if cfg.RateLimit > 0 {
		h = middleware.RateLimit(cfg.RateLimit, time.Second)(h)
	}
	h = middleware.Auth(cfg.APIKey)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
