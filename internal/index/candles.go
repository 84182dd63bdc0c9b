package index

import (
	"sort"

	"github.com/basketwatch/indexd/internal/domain"
)

// GenerateCandles buckets a flat trade series into OHLCV candles of the given
// width in hours. Buckets span [first timestamp, last timestamp]; the first
// bucket starts at the earliest trade, not on a wall-clock boundary. Buckets
// with no trades are omitted, never zero-filled. Open and close follow time
// order, with input order breaking timestamp ties.
func GenerateCandles(trades []domain.TradeRecord, bucketHours int) []domain.Candle {
	if len(trades) == 0 || bucketHours <= 0 {
		return nil
	}

	sorted := make([]domain.TradeRecord, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Timestamp < sorted[b].Timestamp
	})

	width := int64(bucketHours) * 3600
	first := sorted[0].Timestamp

	var out []domain.Candle
	var cur domain.Candle
	curBucket := int64(-1)

	for _, t := range sorted {
		b := (t.Timestamp - first) / width
		if b != curBucket {
			if curBucket >= 0 {
				out = append(out, cur)
			}
			curBucket = b
			cur = domain.Candle{
				Time:   first + b*width,
				Open:   t.Price,
				High:   t.Price,
				Low:    t.Price,
				Close:  t.Price,
				Volume: t.VolumeBase,
			}
			continue
		}
		if t.Price > cur.High {
			cur.High = t.Price
		}
		if t.Price < cur.Low {
			cur.Low = t.Price
		}
		cur.Close = t.Price
		cur.Volume += t.VolumeBase
	}
	out = append(out, cur)

	return out
}
