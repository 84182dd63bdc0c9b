// Package memory implements domain.Cache with plain in-process maps. Entries
// live for the process lifetime; Clear is the only refresh mechanism.
package memory

import (
	"context"
	"sync"

	"github.com/basketwatch/indexd/internal/domain"
)

// Cache memoizes markets, price histories, order books, and resolved indexes
// in four independent key spaces. The zero value is not usable; construct
// with New and inject the one instance where it is needed.
type Cache struct {
	mu        sync.RWMutex
	markets   map[string]domain.Market
	histories map[string][][]domain.TradeRecord
	books     map[string]map[string]domain.OrderBookSummary
	indexes   map[string]domain.Index
}

// New creates an empty Cache.
func New() *Cache {
	c := &Cache{}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.markets = make(map[string]domain.Market)
	c.histories = make(map[string][][]domain.TradeRecord)
	c.books = make(map[string]map[string]domain.OrderBookSummary)
	c.indexes = make(map[string]domain.Index)
}

func marketKey(provider, marketID string) string {
	return provider + ":" + marketID
}

// GetMarket returns the memoized market, or ErrNotFound.
func (c *Cache) GetMarket(ctx context.Context, provider, marketID string) (domain.Market, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.markets[marketKey(provider, marketID)]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

// SetMarket memoizes a market.
func (c *Cache) SetMarket(ctx context.Context, provider, marketID string, m domain.Market) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markets[marketKey(provider, marketID)] = m
	return nil
}

// GetHistory returns the memoized price history, or ErrNotFound.
func (c *Cache) GetHistory(ctx context.Context, provider, marketID string) ([][]domain.TradeRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.histories[marketKey(provider, marketID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return h, nil
}

// SetHistory memoizes a price history.
func (c *Cache) SetHistory(ctx context.Context, provider, marketID string, h [][]domain.TradeRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.histories[marketKey(provider, marketID)] = h
	return nil
}

// AppendTrade appends a live fill to the cached history on the given side.
// Nothing happens when no history is cached for the market or the side is
// out of range; the next full fetch will include the fill anyway. The stored
// slices may be aliased by readers, so the append replaces them instead of
// growing them in place.
func (c *Cache) AppendTrade(ctx context.Context, provider, marketID string, side int, t domain.TradeRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := marketKey(provider, marketID)
	h, ok := c.histories[key]
	if !ok || side < 0 || side >= len(h) {
		return nil
	}
	updated := make([][]domain.TradeRecord, len(h))
	copy(updated, h)
	updated[side] = append(append([]domain.TradeRecord(nil), h[side]...), t)
	c.histories[key] = updated
	return nil
}

// GetOrderBook returns the memoized order book, or ErrNotFound.
func (c *Cache) GetOrderBook(ctx context.Context, provider, marketID string) (map[string]domain.OrderBookSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.books[marketKey(provider, marketID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// SetOrderBook memoizes an order book.
func (c *Cache) SetOrderBook(ctx context.Context, provider, marketID string, book map[string]domain.OrderBookSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.books[marketKey(provider, marketID)] = book
	return nil
}

// GetIndex returns the memoized resolved index, or ErrNotFound.
func (c *Cache) GetIndex(ctx context.Context, key string) (domain.Index, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.indexes[key]
	if !ok {
		return domain.Index{}, domain.ErrNotFound
	}
	return idx, nil
}

// SetIndex memoizes a resolved index.
func (c *Cache) SetIndex(ctx context.Context, key string, idx domain.Index) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexes[key] = idx
	return nil
}

// Clear drops every memoized entry in all four key spaces.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	return nil
}

// Compile-time interface check.
var _ domain.Cache = (*Cache)(nil)
