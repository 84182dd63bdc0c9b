package domain

import "context"

// PositionToken is one outcome token of a raw exchange record.
type PositionToken struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ExchangeRecord is the raw market shape delivered by a data provider before
// normalization into a Market.
type ExchangeRecord struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	GroupTitle  string          `json:"groupTitle"`
	EndDate     string          `json:"endDate"` // RFC 3339; may be absent or malformed
	Tokens      []PositionToken `json:"tokens"`
}

// MarketDataProvider is the upstream prediction-market data source. The
// provider argument selects the namespace a market id belongs to.
type MarketDataProvider interface {
	// FetchExchange returns the raw market record. Fails with ErrNotFound
	// for unknown ids or a transport error otherwise.
	FetchExchange(ctx context.Context, provider, marketID string) (ExchangeRecord, error)

	// FetchPriceHistory returns one trade series per position side.
	FetchPriceHistory(ctx context.Context, provider, marketID string) ([][]TradeRecord, error)

	// FetchOrderBook returns the market's books keyed by asset id.
	FetchOrderBook(ctx context.Context, provider, marketID string) (map[string]OrderBookSummary, error)
}
