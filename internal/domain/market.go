package domain

import "time"

// Position side of a binary prediction market within an index.
const (
	PositionYes = "YES"
	PositionNo  = "NO"
)

// PositionFromCode maps a per-slot position code to a side. Code 1 is the
// YES side; every other value is NO.
func PositionFromCode(code int) string {
	if code == 1 {
		return PositionYes
	}
	return PositionNo
}

// Market is one prediction-market position belonging to an index. Volume,
// PriceHistory, and OrderBook are filled in lazily as the upstream feeds are
// fetched; they stay zero/nil until then.
type Market struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	// Price is the average price across the market's position tokens at
	// fetch time. Nominally in [0,1] but never clamped.
	Price float64 `json:"price"`

	// Proportion is this market's weight within its parent index. All
	// constituents of an index are equal-weighted (1/count).
	Proportion float64 `json:"proportion"`

	// Position is "YES" or "NO" once assigned from the index definition,
	// or the provider's first token name before that.
	Position string `json:"position"`

	RemainingHours float64   `json:"remainingHours"`
	EndDate        time.Time `json:"endDate"`

	// Volume is the sum of trade sizes in the primary price-history series.
	Volume float64 `json:"volume"`

	// PriceHistory holds one trade series per position side, in the order
	// the provider delivers them. Nil until fetched.
	PriceHistory [][]TradeRecord `json:"priceHistory,omitempty"`

	// OrderBook maps asset id to the market's book summary. Nil until fetched.
	OrderBook map[string]OrderBookSummary `json:"orderbook,omitempty"`

	// Synthetic marks a market that was substituted for a failed fetch.
	Synthetic bool `json:"synthetic,omitempty"`
}

// TradeRecord is a single fill in a market's trade history. Timestamp is in
// epoch seconds and must be non-decreasing within a sorted series. Price is
// not constrained numerically.
type TradeRecord struct {
	Price      float64 `json:"price"`
	VolumeBase float64 `json:"volumeBase"`
	Timestamp  int64   `json:"timestamp"`
	Trader     string  `json:"trader"`
}
