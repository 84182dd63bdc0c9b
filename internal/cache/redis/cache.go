package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/basketwatch/indexd/internal/domain"
)

// Cache implements domain.Cache with JSON-serialized values.
//
// Key schema:
//
//	idx:market:{provider}:{id}  - Market JSON
//	idx:history:{provider}:{id} - [][]TradeRecord JSON
//	idx:book:{provider}:{id}    - map[assetID]OrderBookSummary JSON
//	idx:index:{key}             - Index JSON
//
// A TTL of zero keeps entries for the connection's lifetime, matching the
// in-memory backend's no-eviction semantics.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a Cache backed by the given Client.
func NewCache(c *Client, ttl time.Duration) *Cache {
	return &Cache{rdb: c.Underlying(), ttl: ttl}
}

func marketKey(provider, id string) string  { return "idx:market:" + provider + ":" + id }
func historyKey(provider, id string) string { return "idx:history:" + provider + ":" + id }
func bookKey(provider, id string) string    { return "idx:book:" + provider + ":" + id }
func indexKey(key string) string            { return "idx:index:" + key }

func (c *Cache) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis: marshal %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) getJSON(ctx context.Context, key string, v any) error {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("redis: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("redis: unmarshal %s: %w", key, err)
	}
	return nil
}

// GetMarket returns the cached market, or ErrNotFound.
func (c *Cache) GetMarket(ctx context.Context, provider, marketID string) (domain.Market, error) {
	var m domain.Market
	if err := c.getJSON(ctx, marketKey(provider, marketID), &m); err != nil {
		return domain.Market{}, err
	}
	return m, nil
}

// SetMarket stores a market.
func (c *Cache) SetMarket(ctx context.Context, provider, marketID string, m domain.Market) error {
	return c.setJSON(ctx, marketKey(provider, marketID), m)
}

// GetHistory returns the cached price history, or ErrNotFound.
func (c *Cache) GetHistory(ctx context.Context, provider, marketID string) ([][]domain.TradeRecord, error) {
	var h [][]domain.TradeRecord
	if err := c.getJSON(ctx, historyKey(provider, marketID), &h); err != nil {
		return nil, err
	}
	return h, nil
}

// SetHistory stores a price history.
func (c *Cache) SetHistory(ctx context.Context, provider, marketID string, h [][]domain.TradeRecord) error {
	return c.setJSON(ctx, historyKey(provider, marketID), h)
}

// AppendTrade appends a live fill to the cached history. The read-modify-
// write is not transactional across replicas; concurrent appends may drop a
// fill, which the next full history fetch repairs.
func (c *Cache) AppendTrade(ctx context.Context, provider, marketID string, side int, t domain.TradeRecord) error {
	h, err := c.GetHistory(ctx, provider, marketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if side < 0 || side >= len(h) {
		return nil
	}
	h[side] = append(h[side], t)
	return c.SetHistory(ctx, provider, marketID, h)
}

// GetOrderBook returns the cached order book, or ErrNotFound.
func (c *Cache) GetOrderBook(ctx context.Context, provider, marketID string) (map[string]domain.OrderBookSummary, error) {
	var b map[string]domain.OrderBookSummary
	if err := c.getJSON(ctx, bookKey(provider, marketID), &b); err != nil {
		return nil, err
	}
	return b, nil
}

// SetOrderBook stores an order book.
func (c *Cache) SetOrderBook(ctx context.Context, provider, marketID string, book map[string]domain.OrderBookSummary) error {
	return c.setJSON(ctx, bookKey(provider, marketID), book)
}

// GetIndex returns the cached resolved index, or ErrNotFound.
func (c *Cache) GetIndex(ctx context.Context, key string) (domain.Index, error) {
	var idx domain.Index
	if err := c.getJSON(ctx, indexKey(key), &idx); err != nil {
		return domain.Index{}, err
	}
	return idx, nil
}

// SetIndex stores a resolved index.
func (c *Cache) SetIndex(ctx context.Context, key string, idx domain.Index) error {
	return c.setJSON(ctx, indexKey(key), idx)
}

// Clear drops every idx:* key using SCAN + DEL batches.
func (c *Cache) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, "idx:*", 500).Result()
		if err != nil {
			return fmt.Errorf("redis: scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis: del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Compile-time interface check.
var _ domain.Cache = (*Cache)(nil)
