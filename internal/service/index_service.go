// Package service exposes the application's use cases to the HTTP layer:
// index resolution and its derived views, and the wallet-backed trade flow.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/basketwatch/indexd/internal/domain"
	"github.com/basketwatch/indexd/internal/index"
)

// IndexService resolves indexes and serves the derived views built from
// them: price history, candles, and the aggregated order book.
type IndexService struct {
	compositor *index.Compositor
	cache      domain.Cache
	syn        *index.Synthesizer
	logger     *slog.Logger
	now        func() time.Time
}

// NewIndexService creates an IndexService.
func NewIndexService(compositor *index.Compositor, cache domain.Cache, syn *index.Synthesizer, logger *slog.Logger) *IndexService {
	return &IndexService{
		compositor: compositor,
		cache:      cache,
		syn:        syn,
		logger:     logger,
		now:        time.Now,
	}
}

// ListBasic resolves the lightweight view of every catalogued index.
func (s *IndexService) ListBasic(ctx context.Context) []domain.Index {
	return s.compositor.ResolveAll(ctx)
}

// Get resolves the full view of one index, constituents included.
func (s *IndexService) Get(ctx context.Context, id string) domain.Index {
	return s.compositor.Resolve(ctx, id)
}

// History returns the index-level trade series aggregated across every
// constituent, oldest first.
func (s *IndexService) History(ctx context.Context, id string) []domain.TradeRecord {
	idx := s.compositor.Resolve(ctx, id)
	s.refreshHistories(ctx, &idx)
	return index.IndexHistory(idx, s.syn, s.now())
}

// refreshHistories re-reads each constituent's trade series from the cache.
// The memoized index carries the series as of resolution time; the live feed
// appends later fills to the history keyspace only, so serving from the memo
// alone would never show them. Works on a copied slice so the memoized entry
// is not mutated.
func (s *IndexService) refreshHistories(ctx context.Context, idx *domain.Index) {
	if len(idx.Markets) == 0 {
		return
	}
	markets := make([]domain.Market, len(idx.Markets))
	copy(markets, idx.Markets)
	idx.Markets = markets

	for i := range markets {
		m := &markets[i]
		if m.Synthetic {
			continue
		}
		if h, err := s.cache.GetHistory(ctx, idx.Provider, m.ID); err == nil {
			m.PriceHistory = h
		}
	}
}

// Candles buckets the index-level trade series into OHLCV candles of
// bucketHours width.
func (s *IndexService) Candles(ctx context.Context, id string, bucketHours int) ([]domain.Candle, error) {
	if bucketHours <= 0 {
		return nil, fmt.Errorf("service: candle bucket must be positive, got %d", bucketHours)
	}
	trades := s.History(ctx, id)
	return index.GenerateCandles(trades, bucketHours), nil
}

// OrderBook returns the aggregated order book of an index, keyed by asset id.
func (s *IndexService) OrderBook(ctx context.Context, id string) map[string]domain.OrderBookSummary {
	idx := s.compositor.Resolve(ctx, id)
	return index.AggregateOrderBook(idx, s.now())
}

// ClearCache drops every cached market, series, book, and resolved index so
// the next resolution re-fetches from the provider.
func (s *IndexService) ClearCache(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("service: clear cache: %w", err)
	}
	s.logger.InfoContext(ctx, "cache cleared")
	return nil
}
