package service

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/basketwatch/indexd/internal/cache/memory"
	"github.com/basketwatch/indexd/internal/domain"
	"github.com/basketwatch/indexd/internal/index"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// staticProvider serves one market with a fixed single-point history.
type staticProvider struct{}

func (staticProvider) FetchExchange(ctx context.Context, provider, marketID string) (domain.ExchangeRecord, error) {
	return domain.ExchangeRecord{
		ID:     marketID,
		Title:  "Market " + marketID,
		Tokens: []domain.PositionToken{{Name: "Yes", Price: 0.6}},
	}, nil
}

func (staticProvider) FetchPriceHistory(ctx context.Context, provider, marketID string) ([][]domain.TradeRecord, error) {
	return [][]domain.TradeRecord{
		{{Price: 0.6, VolumeBase: 100, Timestamp: testNow.Add(-time.Hour).Unix()}},
		{},
	}, nil
}

func (staticProvider) FetchOrderBook(ctx context.Context, provider, marketID string) (map[string]domain.OrderBookSummary, error) {
	return map[string]domain.OrderBookSummary{}, nil
}

func newTestIndexService(cache domain.Cache) *IndexService {
	defs := []domain.IndexDefinition{{
		ID:            "one",
		Name:          "One Market Index",
		MarketIDs:     []string{"m1"},
		PositionCodes: []int{1},
		Provider:      "polymarket",
		Status:        domain.IndexStatusActive,
	}}
	syn := index.NewSynthesizer(rand.NewSource(1))
	compositor := index.NewCompositor(
		index.NewCatalog(defs),
		staticProvider{},
		cache,
		syn,
		nil,
		testLogger(),
	)
	s := NewIndexService(compositor, cache, syn, testLogger())
	s.now = func() time.Time { return testNow }
	return s
}

func TestHistoryServesFillsAppendedAfterResolution(t *testing.T) {
	cache := memory.New()
	s := newTestIndexService(cache)
	ctx := context.Background()

	before := s.History(ctx, "one")
	if len(before) != 1 {
		t.Fatalf("initial series length = %d, want 1", len(before))
	}

	// A live fill lands after the index has been resolved and memoized.
	fill := domain.TradeRecord{Price: 0.72, VolumeBase: 40, Timestamp: testNow.Unix()}
	if err := cache.AppendTrade(ctx, "polymarket", "m1", 0, fill); err != nil {
		t.Fatal(err)
	}

	after := s.History(ctx, "one")
	if len(after) != 2 {
		t.Fatalf("series length after fill = %d, want 2", len(after))
	}
	if after[1].Price != 0.72 {
		t.Errorf("latest price = %v, want the appended fill", after[1].Price)
	}

	// The memoized index itself must stay untouched by the refresh.
	cached, err := cache.GetIndex(ctx, "one")
	if err != nil {
		t.Fatal(err)
	}
	if got := len(cached.Markets[0].PriceHistory[0]); got != 1 {
		t.Errorf("memoized history length = %d, want 1", got)
	}
}

func TestCandlesIncludeAppendedFills(t *testing.T) {
	cache := memory.New()
	s := newTestIndexService(cache)
	ctx := context.Background()

	if _, err := s.Candles(ctx, "one", 24); err != nil {
		t.Fatal(err)
	}

	fill := domain.TradeRecord{Price: 0.9, VolumeBase: 10, Timestamp: testNow.Unix()}
	if err := cache.AppendTrade(ctx, "polymarket", "m1", 0, fill); err != nil {
		t.Fatal(err)
	}

	candles, err := s.Candles(ctx, "one", 24)
	if err != nil {
		t.Fatal(err)
	}
	if len(candles) != 1 {
		t.Fatalf("candles = %d, want 1", len(candles))
	}
	if candles[0].High != 0.9 {
		t.Errorf("candle high = %v, want the appended fill's price", candles[0].High)
	}
	if candles[0].Volume != 110 {
		t.Errorf("candle volume = %v, want 110", candles[0].Volume)
	}
}

func TestCandlesRejectNonPositiveBucket(t *testing.T) {
	s := newTestIndexService(memory.New())

	if _, err := s.Candles(context.Background(), "one", 0); err == nil {
		t.Error("expected error for zero bucket width")
	}
	if _, err := s.Candles(context.Background(), "one", -4); err == nil {
		t.Error("expected error for negative bucket width")
	}
}
