package index

import (
	"sort"
	"time"

	"github.com/basketwatch/indexd/internal/domain"
)

// AggregateOrderBook merges the constituents' per-asset books into a single
// per-asset view for the index. Each asset id gets exactly one entry, created
// when first seen in constituent slot order: it carries the index name, the
// aggregation timestamp, an empty hash, and the first-seen constituent's bid
// and ask levels. Later constituents sharing an asset id contribute nothing;
// sides are not unioned across markets. After assembly each entry's bids are
// sorted descending by price and asks ascending.
func AggregateOrderBook(idx domain.Index, now time.Time) map[string]domain.OrderBookSummary {
	out := make(map[string]domain.OrderBookSummary)
	ts := now.UnixMilli()

	for _, m := range idx.Markets {
		for assetID, book := range m.OrderBook {
			if _, seen := out[assetID]; seen {
				continue
			}
			out[assetID] = domain.OrderBookSummary{
				Market:    idx.Name,
				AssetID:   assetID,
				Timestamp: ts,
				Bids:      append([]domain.PriceLevel(nil), book.Bids...),
				Asks:      append([]domain.PriceLevel(nil), book.Asks...),
			}
		}
	}

	for id, entry := range out {
		sort.SliceStable(entry.Bids, func(a, b int) bool {
			return entry.Bids[a].Price > entry.Bids[b].Price
		})
		sort.SliceStable(entry.Asks, func(a, b int) bool {
			return entry.Asks[a].Price < entry.Asks[b].Price
		})
		out[id] = entry
	}

	return out
}
