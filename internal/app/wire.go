package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/basketwatch/indexd/internal/cache/memory"
	"github.com/basketwatch/indexd/internal/cache/redis"
	"github.com/basketwatch/indexd/internal/config"
	"github.com/basketwatch/indexd/internal/domain"
	"github.com/basketwatch/indexd/internal/feed"
	"github.com/basketwatch/indexd/internal/index"
	"github.com/basketwatch/indexd/internal/ledger"
	"github.com/basketwatch/indexd/internal/notify"
	"github.com/basketwatch/indexd/internal/platform/polymarket"
	"github.com/basketwatch/indexd/internal/service"
	"github.com/basketwatch/indexd/internal/wallet"
)

// Dependencies bundles everything the application needs to serve requests.
// It is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Cache    domain.Cache
	Catalog  *index.Catalog
	Notifier *notify.Notifier

	Indexes *service.IndexService
	Trades  *service.TradeService // nil when chain is disabled

	Feed *feed.TradeFeed // nil when the feed is disabled
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Cache backend ---
	switch cfg.Cache.Backend {
	case "redis":
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Cache = redis.NewCache(redisClient, cfg.Cache.TTL.Duration)
	default:
		deps.Cache = memory.New()
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Index resolution ---
	deps.Catalog = index.NewCatalog(nil)
	provider := polymarket.NewClient(cfg.Provider.MetaHost, cfg.Provider.DataHost)
	syn := index.NewSynthesizer(nil)

	var alerter index.Alerter
	if len(senders) > 0 {
		alerter = deps.Notifier
	}
	compositor := index.NewCompositor(deps.Catalog, provider, deps.Cache, syn, alerter, logger)
	deps.Indexes = service.NewIndexService(compositor, deps.Cache, syn, logger)

	// --- Wallet and ledger (only when trading is on) ---
	if cfg.Chain.Enabled {
		session, err := wallet.NewSession(wallet.KeyConfig{
			RawPrivateKey:    cfg.Wallet.PrivateKey,
			EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      cfg.Wallet.KeyPassword,
		}, cfg.Chain.ChainID)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: wallet: %w", err)
		}

		evmLedger, err := ledger.New(ctx, cfg.Chain.RPCURL, cfg.Chain.CollateralToken, session, logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: ledger: %w", err)
		}
		closers = append(closers, evmLedger.Close)

		deps.Trades = service.NewTradeService(deps.Catalog, session, evmLedger, logger)
	}

	// --- Live trade feed ---
	if cfg.Feed.Enabled {
		deps.Feed = feed.NewTradeFeed(cfg.Provider.WsHost, cfg.Provider.Namespace, cfg.Feed.AssetIDs, deps.Cache, logger)
		closers = append(closers, deps.Feed.Close)
	}

	return deps, cleanup, nil
}
