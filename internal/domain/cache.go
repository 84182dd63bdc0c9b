package domain

import "context"

// Cache memoizes resolved data across the four key spaces the compositor
// uses: markets, price histories, and order books keyed by provider+marketID,
// and resolved indexes keyed by index id. Implementations return ErrNotFound
// on a miss. Entries live until Clear; there is no eviction policy.
type Cache interface {
	GetMarket(ctx context.Context, provider, marketID string) (Market, error)
	SetMarket(ctx context.Context, provider, marketID string, m Market) error

	GetHistory(ctx context.Context, provider, marketID string) ([][]TradeRecord, error)
	SetHistory(ctx context.Context, provider, marketID string, h [][]TradeRecord) error

	// AppendTrade adds a live fill to the cached history for a market on
	// the given side index. It is a no-op when no history is cached yet.
	AppendTrade(ctx context.Context, provider, marketID string, side int, t TradeRecord) error

	GetOrderBook(ctx context.Context, provider, marketID string) (map[string]OrderBookSummary, error)
	SetOrderBook(ctx context.Context, provider, marketID string, book map[string]OrderBookSummary) error

	GetIndex(ctx context.Context, key string) (Index, error)
	SetIndex(ctx context.Context, key string, idx Index) error

	// Clear drops every memoized entry. It is the only way stale data is
	// ever refreshed.
	Clear(ctx context.Context) error
}
