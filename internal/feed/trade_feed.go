// Package feed keeps cached price history fresh by streaming live trades
// from the provider's WebSocket feed into the cache.
package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/basketwatch/indexd/internal/domain"
	"github.com/basketwatch/indexd/internal/platform/polymarket"
)

// TradeFeed connects to the provider WebSocket, subscribes to last-trade
// events for the configured asset ids, and appends each trade to the cached
// price history of its market. It reconnects with backoff on disconnect.
type TradeFeed struct {
	wsURL    string
	provider string
	assetIDs []string
	cache    domain.Cache
	logger   *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewTradeFeed creates a feed for the given asset ids. provider is the
// namespace used for cache keys, e.g. "polymarket".
func NewTradeFeed(wsURL, provider string, assetIDs []string, cache domain.Cache, logger *slog.Logger) *TradeFeed {
	return &TradeFeed{
		wsURL:    wsURL,
		provider: provider,
		assetIDs: assetIDs,
		cache:    cache,
		logger:   logger.With(slog.String("component", "trade_feed")),
		done:     make(chan struct{}),
	}
}

// Run connects and streams until ctx is cancelled or Close is called.
// Each disconnect is retried after a short pause.
func (f *TradeFeed) Run(ctx context.Context) error {
	if len(f.assetIDs) == 0 {
		f.logger.Info("no asset ids to subscribe, exiting")
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}

		err := f.runConnection(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		f.logger.Warn("feed disconnected, reconnecting",
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		case <-time.After(2 * time.Second):
		}
	}
}

// runConnection runs one connection until it drops or the feed stops.
func (f *TradeFeed) runConnection(ctx context.Context) error {
	client := polymarket.NewWSClient(f.wsURL)
	defer client.Close()

	client.OnTrade(func(assetID, marketID string, trade domain.TradeRecord) {
		f.handleTrade(ctx, assetID, marketID, trade)
	})

	connCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	err := client.Connect(connCtx)
	cancel()
	if err != nil {
		return err
	}

	if err := client.Subscribe(ctx, f.assetIDs); err != nil {
		return err
	}
	f.logger.Info("feed subscribed", slog.Int("assets", len(f.assetIDs)))

	select {
	case <-ctx.Done():
		return nil
	case <-f.done:
		return nil
	case err := <-client.Done():
		return err
	}
}

// handleTrade appends a trade to the market's cached YES series. Last-trade
// events are quoted on the YES token.
func (f *TradeFeed) handleTrade(ctx context.Context, assetID, marketID string, trade domain.TradeRecord) {
	if marketID == "" {
		return
	}
	if err := f.cache.AppendTrade(ctx, f.provider, marketID, 0, trade); err != nil {
		f.logger.Debug("append trade failed",
			slog.String("market_id", marketID),
			slog.String("asset_id", assetID),
			slog.String("error", err.Error()),
		)
	}
}

// Close stops the feed.
func (f *TradeFeed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}
