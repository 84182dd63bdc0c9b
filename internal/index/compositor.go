package index

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/basketwatch/indexd/internal/domain"
)

// Placeholder yield strings reported for an active index with no
// constituents.
const (
	emptyYieldRange = "+7.5%"
	emptyYieldLoss  = "-3.2%"
)

// defaultConfirmedYield is reported for an expired index whose definition
// does not carry a confirmed yield.
const defaultConfirmedYield = 8.5

// Alerter receives degraded-data events. *notify.Notifier satisfies it.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Degraded-data event names passed to the Alerter.
const (
	EventFallbackMarket = "fallback_market"
	EventFallbackIndex  = "fallback_index"
)

var daysPattern = regexp.MustCompile(`(\d+)\s*day`)

// Compositor resolves index definitions into full Index views. It fans out
// per-constituent fetches, substitutes synthetic data for any constituent
// whose pipeline fails, computes the composite fields, and memoizes the
// result. Resolve and ResolveBasic are total: they always return a usable
// Index, never an error.
type Compositor struct {
	catalog   *Catalog
	provider  domain.MarketDataProvider
	cache     domain.Cache
	snapshots *SnapshotBuilder
	syn       *Synthesizer
	alerter   Alerter
	logger    *slog.Logger

	now func() time.Time
}

// NewCompositor creates a Compositor. alerter may be nil when degraded-data
// notifications are not configured.
func NewCompositor(
	catalog *Catalog,
	provider domain.MarketDataProvider,
	cache domain.Cache,
	syn *Synthesizer,
	alerter Alerter,
	logger *slog.Logger,
) *Compositor {
	return &Compositor{
		catalog:   catalog,
		provider:  provider,
		cache:     cache,
		snapshots: NewSnapshotBuilder(logger),
		syn:       syn,
		alerter:   alerter,
		logger:    logger.With(slog.String("component", "compositor")),
		now:       time.Now,
	}
}

// Resolve returns the full Index view for id: constituent snapshots enriched
// with price history and order books, plus all composite fields.
func (c *Compositor) Resolve(ctx context.Context, id string) domain.Index {
	return c.resolveTotal(ctx, id, true)
}

// ResolveBasic returns the reduced Index view used by list pages. It skips
// the per-constituent price-history and order-book fetches and fills the
// history-derived fields from the synthetic policy.
func (c *Compositor) ResolveBasic(ctx context.Context, id string) domain.Index {
	return c.resolveTotal(ctx, id, false)
}

// ResolveAll returns the basic view of every defined index, in catalog order.
func (c *Compositor) ResolveAll(ctx context.Context) []domain.Index {
	defs := c.catalog.All()
	out := make([]domain.Index, 0, len(defs))
	for _, d := range defs {
		out = append(out, c.ResolveBasic(ctx, d.ID))
	}
	return out
}

// resolveTotal guards the resolution pipeline so no failure of any kind
// escapes to the caller; the wholly-synthetic fallback index is the
// last-resort return value.
func (c *Compositor) resolveTotal(ctx context.Context, id string, full bool) (idx domain.Index) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "index resolution panicked",
				slog.String("index_id", id),
				slog.Any("panic", r),
			)
			idx = c.fallbackIndex(ctx, id)
		}
	}()
	return c.resolve(ctx, id, full)
}

func (c *Compositor) resolve(ctx context.Context, id string, full bool) domain.Index {
	key := id
	if !full {
		key = id + ":basic"
	}
	if cached, err := c.cache.GetIndex(ctx, key); err == nil {
		return cached
	}

	def, err := c.catalog.Lookup(id)
	if err != nil {
		c.logger.WarnContext(ctx, "unknown index id, serving fallback",
			slog.String("index_id", id),
		)
		c.alert(ctx, EventFallbackIndex, "Degraded index data",
			fmt.Sprintf("index %s is unknown; serving synthetic data", id))
		return c.fallbackIndex(ctx, id)
	}

	now := c.now()
	n := len(def.MarketIDs)
	markets := make([]domain.Market, n)

	// Fan out one pipeline per constituent. Each slot absorbs its own
	// failures by substituting a fallback market, so the group never sees
	// an error and siblings are never cancelled. Results land at the slot
	// index, keeping markets aligned with MarketIDs regardless of
	// completion order.
	g, gctx := errgroup.WithContext(ctx)
	for slot := range def.MarketIDs {
		g.Go(func() error {
			markets[slot] = c.resolveConstituent(gctx, def, slot, full, now)
			return nil
		})
	}
	_ = g.Wait()

	idx := domain.Index{
		IndexDefinition: def,
		Markets:         markets,
	}
	c.computeDerived(&idx, full, now)

	if err := c.cache.SetIndex(ctx, key, idx); err != nil {
		c.logger.WarnContext(ctx, "index cache set failed",
			slog.String("index_id", id),
			slog.String("error", err.Error()),
		)
	}
	return idx
}

// resolveConstituent runs the sequential fetch pipeline for one slot:
// snapshot, then (in full mode) price history and order book. A failure at
// any step replaces the whole slot with a fallback market; the error never
// propagates.
func (c *Compositor) resolveConstituent(ctx context.Context, def domain.IndexDefinition, slot int, full bool, now time.Time) domain.Market {
	marketID := def.MarketIDs[slot]
	code := positionCodeAt(def, slot)
	total := len(def.MarketIDs)

	fallback := func(step string, err error) domain.Market {
		c.logger.WarnContext(ctx, "constituent fetch failed, substituting synthetic market",
			slog.String("index_id", def.ID),
			slog.String("market_id", marketID),
			slog.Int("slot", slot),
			slog.String("step", step),
			slog.String("error", err.Error()),
		)
		c.alert(ctx, EventFallbackMarket, "Degraded market data",
			fmt.Sprintf("index %s: market %s (%s) failed, showing synthetic data", def.ID, marketID, step))
		return c.syn.FallbackMarket(marketID, slot, total, code, now)
	}

	m, err := c.fetchMarket(ctx, def.Provider, marketID, now)
	if err != nil {
		return fallback("snapshot", err)
	}
	m.Position = domain.PositionFromCode(code)
	m.Proportion = 1 / float64(total)

	if !full {
		return m
	}

	history, err := c.fetchHistory(ctx, def.Provider, marketID)
	if err != nil {
		return fallback("price_history", err)
	}
	m.PriceHistory = history
	m.Volume = SeriesVolume(history)

	book, err := c.fetchOrderBook(ctx, def.Provider, marketID)
	if err != nil {
		return fallback("order_book", err)
	}
	m.OrderBook = book

	return m
}

// fetchMarket checks the memo first and falls back to the provider on a
// miss, back-filling the memo on success.
func (c *Compositor) fetchMarket(ctx context.Context, provider, marketID string, now time.Time) (domain.Market, error) {
	if m, err := c.cache.GetMarket(ctx, provider, marketID); err == nil {
		return m, nil
	}

	rec, err := c.provider.FetchExchange(ctx, provider, marketID)
	if err != nil {
		return domain.Market{}, fmt.Errorf("fetch exchange %s/%s: %w", provider, marketID, err)
	}
	m := c.snapshots.Build(provider, rec, now)

	if err := c.cache.SetMarket(ctx, provider, marketID, m); err != nil {
		c.logger.WarnContext(ctx, "market cache set failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}
	return m, nil
}

func (c *Compositor) fetchHistory(ctx context.Context, provider, marketID string) ([][]domain.TradeRecord, error) {
	if h, err := c.cache.GetHistory(ctx, provider, marketID); err == nil {
		return h, nil
	}

	h, err := c.provider.FetchPriceHistory(ctx, provider, marketID)
	if err != nil {
		return nil, fmt.Errorf("fetch price history %s/%s: %w", provider, marketID, err)
	}

	if err := c.cache.SetHistory(ctx, provider, marketID, h); err != nil {
		c.logger.WarnContext(ctx, "history cache set failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}
	return h, nil
}

func (c *Compositor) fetchOrderBook(ctx context.Context, provider, marketID string) (map[string]domain.OrderBookSummary, error) {
	if b, err := c.cache.GetOrderBook(ctx, provider, marketID); err == nil {
		return b, nil
	}

	b, err := c.provider.FetchOrderBook(ctx, provider, marketID)
	if err != nil {
		return nil, fmt.Errorf("fetch order book %s/%s: %w", provider, marketID, err)
	}

	if err := c.cache.SetOrderBook(ctx, provider, marketID, b); err != nil {
		c.logger.WarnContext(ctx, "order book cache set failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}
	return b, nil
}

// computeDerived fills the composite fields on idx from its resolved
// constituents. full selects between the live computation (history-derived
// price change, real yield formula) and the list-view placeholder policy.
// Both modes share the expired branch, which reports the fixed
// confirmed-yield narrative instead of any live value.
func (c *Compositor) computeDerived(idx *domain.Index, full bool, now time.Time) {
	idx.DaysRemaining = parseDays(idx.ResolutionTime)
	idx.IsExpired = idx.Expired()
	idx.SettlementDate = now.AddDate(0, 0, idx.DaysRemaining).Format("20060102")

	n := len(idx.Markets)
	if n > 0 {
		var priceSum, volSum float64
		for _, m := range idx.Markets {
			priceSum += m.Price
			volSum += m.Volume
		}
		idx.AvgPrice = round2(priceSum / float64(n))
		idx.Volume = round2(volSum / 1e6)
	} else if !full {
		idx.AvgPrice = round2(c.syn.AvgPrice())
	}

	if full {
		idx.PriceChange24h = signedPct2(c.historyPriceChange(idx.Markets))
	} else {
		idx.PriceChange24h = signedPct2(c.syn.PriceChange())
	}

	if idx.IsExpired {
		confirmed := idx.ConfirmedYield
		if confirmed == 0 {
			confirmed = defaultConfirmedYield
		}
		idx.YieldRange = signedPct1(confirmed)
		idx.YieldLoss = "0.0%"
		idx.PriceChange24h = signedPct2(0)
		idx.Volume = 0.05
		idx.MarketCap = 0.1
		return
	}

	if full {
		if n == 0 {
			idx.YieldRange = emptyYieldRange
			idx.YieldLoss = emptyYieldLoss
		} else {
			yield := yieldValue(idx.Markets)
			idx.YieldRange = signedPct1(yield)
			idx.YieldLoss = signedPct1(-yield * 0.5)
		}
		if idx.Volume != 0 {
			idx.MarketCap = round2(idx.Volume * 2)
		}
		return
	}

	// Basic mode: history was never fetched, so everything history-derived
	// is a placeholder.
	yield := c.syn.YieldValue()
	idx.YieldRange = signedPct1(yield)
	idx.YieldLoss = signedPct1(-yield * 0.5)
	idx.Volume = round2(c.syn.VolumeMillions())
	idx.MarketCap = round2(idx.Volume * 2)
}

// historyPriceChange averages per-constituent 24h changes over constituents
// with a usable primary series (at least two points and a non-zero oldest
// price). With no usable history it returns a synthetic placeholder.
func (c *Compositor) historyPriceChange(markets []domain.Market) float64 {
	var sum float64
	var usable int
	for _, m := range markets {
		if len(m.PriceHistory) == 0 || len(m.PriceHistory[0]) < 2 {
			continue
		}
		primary := m.PriceHistory[0]
		oldest := primary[0].Price
		latest := primary[len(primary)-1].Price
		if oldest == 0 {
			continue
		}
		sum += (latest - oldest) / oldest * 100
		usable++
	}
	if usable == 0 {
		return c.syn.PriceChange()
	}
	return sum / float64(usable)
}

// yieldValue is the live yield formula: a YES position pays 1/price-1, a NO
// position 1/(1-price)-1, both as percentages. The average divides by the
// full constituent count, not by the count of valid contributions.
func yieldValue(markets []domain.Market) float64 {
	var total float64
	for _, m := range markets {
		switch {
		case m.Position == domain.PositionYes && m.Price > 0:
			total += (1/m.Price - 1) * 100
		case m.Position == domain.PositionNo && m.Price < 1:
			total += (1/(1-m.Price) - 1) * 100
		}
	}
	return total / float64(len(markets))
}

// fallbackIndex synthesizes a whole index when resolution cannot proceed at
// all: definition fields are copied when the id is known, every declared slot
// gets a fallback market, and the derived fields follow the basic-mode
// placeholder policy.
func (c *Compositor) fallbackIndex(ctx context.Context, id string) domain.Index {
	def, err := c.catalog.Lookup(id)
	if err != nil {
		def = domain.IndexDefinition{
			ID:     id,
			Name:   id,
			Status: domain.IndexStatusActive,
		}
	}

	now := c.now()
	n := len(def.MarketIDs)
	markets := make([]domain.Market, n)
	for slot, marketID := range def.MarketIDs {
		markets[slot] = c.syn.FallbackMarket(marketID, slot, n, positionCodeAt(def, slot), now)
	}

	idx := domain.Index{
		IndexDefinition: def,
		Markets:         markets,
		Degraded:        true,
	}
	c.computeDerived(&idx, false, now)

	c.logger.WarnContext(ctx, "serving wholly synthetic index",
		slog.String("index_id", id),
		slog.Int("constituents", n),
	)
	return idx
}

func (c *Compositor) alert(ctx context.Context, event, title, message string) {
	if c.alerter == nil {
		return
	}
	if err := c.alerter.Notify(ctx, event, title, message); err != nil {
		c.logger.WarnContext(ctx, "degraded-data alert failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

func positionCodeAt(def domain.IndexDefinition, slot int) int {
	if slot < len(def.PositionCodes) {
		return def.PositionCodes[slot]
	}
	return 0
}

// parseDays extracts the remaining days from free-text resolution time such
// as "Resolves in 45 days". Absent or unparseable text yields 0.
func parseDays(resolutionTime string) int {
	m := daysPattern.FindStringSubmatch(resolutionTime)
	if len(m) < 2 {
		return 0
	}
	days, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return days
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func signedPct2(v float64) string { return fmt.Sprintf("%+.2f%%", v) }

func signedPct1(v float64) string { return fmt.Sprintf("%+.1f%%", v) }
