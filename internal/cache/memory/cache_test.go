package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/basketwatch/indexd/internal/domain"
)

func TestMarketRoundTrip(t *testing.T) {
	c := New()
	ctx := context.Background()

	if _, err := c.GetMarket(ctx, "polymarket", "m1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("miss error = %v, want ErrNotFound", err)
	}

	m := domain.Market{ID: "m1", Price: 0.6}
	if err := c.SetMarket(ctx, "polymarket", "m1", m); err != nil {
		t.Fatal(err)
	}

	got, err := c.GetMarket(ctx, "polymarket", "m1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Price != 0.6 {
		t.Errorf("price = %v, want 0.6", got.Price)
	}

	// Same id under another provider is a distinct entry.
	if _, err := c.GetMarket(ctx, "other", "m1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-provider read = %v, want ErrNotFound", err)
	}
}

func TestAppendTrade(t *testing.T) {
	c := New()
	ctx := context.Background()

	fill := domain.TradeRecord{Price: 0.55, VolumeBase: 10, Timestamp: 100}

	// No cached history: silently dropped.
	if err := c.AppendTrade(ctx, "polymarket", "m1", 0, fill); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetHistory(ctx, "polymarket", "m1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("append without history must not create an entry")
	}

	h := [][]domain.TradeRecord{
		{{Price: 0.5, Timestamp: 50}},
		{},
	}
	if err := c.SetHistory(ctx, "polymarket", "m1", h); err != nil {
		t.Fatal(err)
	}

	// A reader holding the pre-append result must not see the fill.
	aliased, err := c.GetHistory(ctx, "polymarket", "m1")
	if err != nil {
		t.Fatal(err)
	}

	if err := c.AppendTrade(ctx, "polymarket", "m1", 0, fill); err != nil {
		t.Fatal(err)
	}
	// Out-of-range side: dropped.
	if err := c.AppendTrade(ctx, "polymarket", "m1", 5, fill); err != nil {
		t.Fatal(err)
	}

	if len(aliased[0]) != 1 {
		t.Errorf("earlier read mutated by append: length = %d, want 1", len(aliased[0]))
	}

	got, err := c.GetHistory(ctx, "polymarket", "m1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got[0]) != 2 {
		t.Fatalf("primary series length = %d, want 2", len(got[0]))
	}
	if got[0][1].Price != 0.55 {
		t.Errorf("appended price = %v, want 0.55", got[0][1].Price)
	}
	if len(got[1]) != 0 {
		t.Errorf("secondary series length = %d, want 0", len(got[1]))
	}
}

func TestIndexKeySpace(t *testing.T) {
	c := New()
	ctx := context.Background()

	full := domain.Index{IndexDefinition: domain.IndexDefinition{ID: "idx"}, AvgPrice: 0.8}
	basic := domain.Index{IndexDefinition: domain.IndexDefinition{ID: "idx"}, AvgPrice: 0.9}

	if err := c.SetIndex(ctx, "idx", full); err != nil {
		t.Fatal(err)
	}
	if err := c.SetIndex(ctx, "idx:basic", basic); err != nil {
		t.Fatal(err)
	}

	gotFull, err := c.GetIndex(ctx, "idx")
	if err != nil {
		t.Fatal(err)
	}
	gotBasic, err := c.GetIndex(ctx, "idx:basic")
	if err != nil {
		t.Fatal(err)
	}
	if gotFull.AvgPrice != 0.8 || gotBasic.AvgPrice != 0.9 {
		t.Errorf("views collided: full=%v basic=%v", gotFull.AvgPrice, gotBasic.AvgPrice)
	}
}

func TestClear(t *testing.T) {
	c := New()
	ctx := context.Background()

	c.SetMarket(ctx, "p", "m", domain.Market{ID: "m"})
	c.SetHistory(ctx, "p", "m", [][]domain.TradeRecord{{}})
	c.SetOrderBook(ctx, "p", "m", map[string]domain.OrderBookSummary{"a": {}})
	c.SetIndex(ctx, "idx", domain.Index{})

	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := c.GetMarket(ctx, "p", "m"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("market survived Clear")
	}
	if _, err := c.GetHistory(ctx, "p", "m"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("history survived Clear")
	}
	if _, err := c.GetOrderBook(ctx, "p", "m"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("order book survived Clear")
	}
	if _, err := c.GetIndex(ctx, "idx"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("index survived Clear")
	}
}
