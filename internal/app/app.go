// Package app provides the top-level application lifecycle: it wires the
// cache, provider, index engine, wallet, and server together and supervises
// the long-running goroutines.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/basketwatch/indexd/internal/config"
	"github.com/basketwatch/indexd/internal/server"
	"github.com/basketwatch/indexd/internal/server/handler"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the HTTP server and the trade feed, and
// blocks until the context is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("cache_backend", a.cfg.Cache.Backend),
		slog.Bool("chain_enabled", a.cfg.Chain.Enabled),
		slog.Bool("feed_enabled", a.cfg.Feed.Enabled),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(a.logger),
		Indexes: handler.NewIndexHandler(deps.Indexes, a.logger),
		Cache:   handler.NewCacheHandler(deps.Indexes, a.logger),
	}
	if deps.Trades != nil {
		handlers.Trades = handler.NewTradeHandler(deps.Trades, a.logger)
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
	}, handlers, a.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if deps.Feed != nil {
		g.Go(func() error {
			err := deps.Feed.Run(gctx)
			if err != nil && gctx.Err() == nil {
				a.logger.Error("trade feed stopped", slog.String("error", err.Error()))
			}
			// A dead feed degrades freshness but should not take the
			// server down with it.
			return nil
		})
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
