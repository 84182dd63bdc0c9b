package index

import (
	"testing"

	"github.com/basketwatch/indexd/internal/domain"
)

func TestAggregateOrderBook(t *testing.T) {
	idx := domain.Index{
		IndexDefinition: domain.IndexDefinition{Name: "Test Index"},
		Markets: []domain.Market{
			{
				ID: "m1",
				OrderBook: map[string]domain.OrderBookSummary{
					"asset-a": {
						AssetID: "asset-a",
						Hash:    "stale-hash",
						Bids: []domain.PriceLevel{
							{Price: 0.40, Size: 5},
							{Price: 0.45, Size: 3},
						},
						Asks: []domain.PriceLevel{
							{Price: 0.55, Size: 2},
							{Price: 0.50, Size: 4},
						},
					},
				},
			},
			{
				ID: "m2",
				OrderBook: map[string]domain.OrderBookSummary{
					// Duplicate asset id: must not override the first-seen entry.
					"asset-a": {
						AssetID: "asset-a",
						Bids:    []domain.PriceLevel{{Price: 0.99, Size: 1}},
					},
					"asset-b": {
						AssetID: "asset-b",
						Asks:    []domain.PriceLevel{{Price: 0.60, Size: 1}},
					},
				},
			},
		},
	}

	out := AggregateOrderBook(idx, testNow)
	if len(out) != 2 {
		t.Fatalf("got %d entries, want 2", len(out))
	}

	a, ok := out["asset-a"]
	if !ok {
		t.Fatal("asset-a missing")
	}
	if a.Market != "Test Index" {
		t.Errorf("market label = %q, want the index name", a.Market)
	}
	if a.Timestamp != testNow.UnixMilli() {
		t.Errorf("timestamp = %d, want aggregation time %d", a.Timestamp, testNow.UnixMilli())
	}
	if a.Hash != "" {
		t.Errorf("hash = %q, want empty on aggregated entries", a.Hash)
	}

	// First-seen wins: m2's 0.99 bid must not appear.
	if len(a.Bids) != 2 {
		t.Fatalf("asset-a bids = %d, want 2", len(a.Bids))
	}
	if a.Bids[0].Price != 0.45 || a.Bids[1].Price != 0.40 {
		t.Errorf("bids not descending: %v", a.Bids)
	}
	if a.Asks[0].Price != 0.50 || a.Asks[1].Price != 0.55 {
		t.Errorf("asks not ascending: %v", a.Asks)
	}

	b, ok := out["asset-b"]
	if !ok {
		t.Fatal("asset-b missing")
	}
	if len(b.Bids) != 0 || len(b.Asks) != 1 {
		t.Errorf("asset-b sides = %d bids / %d asks", len(b.Bids), len(b.Asks))
	}
}

func TestAggregateOrderBookCopiesLevels(t *testing.T) {
	src := map[string]domain.OrderBookSummary{
		"asset-a": {
			AssetID: "asset-a",
			Bids:    []domain.PriceLevel{{Price: 0.4, Size: 1}, {Price: 0.5, Size: 1}},
		},
	}
	idx := domain.Index{
		IndexDefinition: domain.IndexDefinition{Name: "X"},
		Markets:         []domain.Market{{OrderBook: src}},
	}

	out := AggregateOrderBook(idx, testNow)

	// Sorting the aggregate must not reorder the constituent's book.
	if src["asset-a"].Bids[0].Price != 0.4 {
		t.Error("constituent book mutated by aggregation")
	}
	if out["asset-a"].Bids[0].Price != 0.5 {
		t.Error("aggregate bids not sorted descending")
	}
}

func TestAggregateOrderBookEmpty(t *testing.T) {
	idx := domain.Index{Markets: []domain.Market{{}, {}}}
	out := AggregateOrderBook(idx, testNow)
	if len(out) != 0 {
		t.Errorf("got %d entries for bookless markets, want 0", len(out))
	}
}
