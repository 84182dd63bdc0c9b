package index

import (
	"sort"
	"time"

	"github.com/basketwatch/indexd/internal/domain"
	"github.com/google/uuid"
)

// SeriesVolume returns the traded volume of a price-history result: the sum
// of volumeBase over the primary (first) series. Absent or empty history is
// zero volume.
func SeriesVolume(history [][]domain.TradeRecord) float64 {
	if len(history) == 0 {
		return 0
	}
	var total float64
	for _, t := range history[0] {
		total += t.VolumeBase
	}
	return total
}

// IndexHistory merges the constituents' trade series into one combined series
// for the index chart. For each constituent the series matching its position
// side is selected (code 1 selects the first series, anything else the
// second, falling back to the first when the selected side is absent). The
// combined series carries a per-aggregation trader tag and is sorted
// ascending by timestamp.
//
// When the index has no constituents, or the merge comes up empty, a
// synthetic 30-point daily series is returned instead; callers never receive
// an empty series.
func IndexHistory(idx domain.Index, syn *Synthesizer, now time.Time) []domain.TradeRecord {
	tag := "agg-" + uuid.NewString()

	var combined []domain.TradeRecord
	for i, m := range idx.Markets {
		if len(m.PriceHistory) == 0 {
			continue
		}
		side := 1
		if i < len(idx.PositionCodes) && idx.PositionCodes[i] == 1 {
			side = 0
		}
		if side >= len(m.PriceHistory) {
			side = 0
		}
		for _, t := range m.PriceHistory[side] {
			t.Trader = tag
			combined = append(combined, t)
		}
	}

	if len(combined) == 0 {
		return syn.DailySeries(30, now)
	}

	sort.SliceStable(combined, func(a, b int) bool {
		return combined[a].Timestamp < combined[b].Timestamp
	})
	return combined
}
