package index

import (
	"math/rand"
	"sync"
	"time"

	"github.com/basketwatch/indexd/internal/domain"
)

// Synthesizer is the synthetic-data policy: every placeholder value the
// system substitutes for missing live data comes from here. It is injected
// into the compositor so tests can supply a deterministic source. It is not
// a financial computation path.
type Synthesizer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSynthesizer creates a Synthesizer from the given source. A nil source
// seeds from the wall clock.
func NewSynthesizer(src rand.Source) *Synthesizer {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Synthesizer{rnd: rand.New(src)}
}

func (s *Synthesizer) between(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rnd.Float64()*(hi-lo)
}

// PriceChange returns a placeholder 24h change percentage in [-5, 5).
func (s *Synthesizer) PriceChange() float64 { return s.between(-5, 5) }

// AvgPrice returns a placeholder average price in [0.75, 0.95).
func (s *Synthesizer) AvgPrice() float64 { return s.between(0.75, 0.95) }

// YieldValue returns a placeholder yield percentage in [5, 45).
func (s *Synthesizer) YieldValue() float64 { return s.between(5, 45) }

// VolumeMillions returns a placeholder volume in millions in [0.5, 5).
func (s *Synthesizer) VolumeMillions() float64 { return s.between(0.5, 5) }

// FallbackMarket builds the synthetic Market substituted when a constituent's
// live fetch fails. slot and total describe the market's position within its
// index so the weight invariant still holds.
func (s *Synthesizer) FallbackMarket(marketID string, slot, total, positionCode int, now time.Time) domain.Market {
	proportion := 1.0
	if total > 0 {
		proportion = 1 / float64(total)
	}
	return domain.Market{
		ID:             marketID,
		Name:           marketID,
		Category:       "General",
		Price:          s.between(0.70, 0.95),
		Proportion:     proportion,
		Position:       domain.PositionFromCode(positionCode),
		RemainingHours: s.between(0, 72),
		EndDate:        now.Add(time.Duration(s.between(0, 7*24)) * time.Hour),
		Volume:         s.between(0, 1e6),
		Synthetic:      true,
	}
}

// DailySeries builds a plausible daily trade series ending now, one point per
// day, for views that must never receive an empty history. The price follows
// a small bounded random walk.
func (s *Synthesizer) DailySeries(points int, now time.Time) []domain.TradeRecord {
	if points <= 0 {
		return nil
	}
	price := s.between(0.4, 0.8)
	out := make([]domain.TradeRecord, 0, points)
	start := now.Add(-time.Duration(points-1) * 24 * time.Hour)
	for i := 0; i < points; i++ {
		price += s.between(-0.04, 0.04)
		if price < 0.02 {
			price = 0.02
		}
		if price > 0.98 {
			price = 0.98
		}
		out = append(out, domain.TradeRecord{
			Price:      price,
			VolumeBase: s.between(100, 25_000),
			Timestamp:  start.Add(time.Duration(i) * 24 * time.Hour).Unix(),
			Trader:     "synthetic",
		})
	}
	return out
}
