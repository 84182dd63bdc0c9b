package index

import (
	"math/rand"
	"testing"

	"github.com/basketwatch/indexd/internal/domain"
)

func TestSynthesizerRanges(t *testing.T) {
	syn := NewSynthesizer(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		if v := syn.PriceChange(); v < -5 || v >= 5 {
			t.Fatalf("price change %v outside [-5, 5)", v)
		}
		if v := syn.AvgPrice(); v < 0.75 || v >= 0.95 {
			t.Fatalf("avg price %v outside [0.75, 0.95)", v)
		}
		if v := syn.YieldValue(); v < 5 || v >= 45 {
			t.Fatalf("yield %v outside [5, 45)", v)
		}
		if v := syn.VolumeMillions(); v < 0.5 || v >= 5 {
			t.Fatalf("volume %v outside [0.5, 5)", v)
		}
	}
}

func TestFallbackMarket(t *testing.T) {
	syn := NewSynthesizer(rand.NewSource(42))

	m := syn.FallbackMarket("m-7", 2, 4, 2, testNow)

	if !m.Synthetic {
		t.Error("fallback market not marked synthetic")
	}
	if m.ID != "m-7" || m.Name != "m-7" {
		t.Errorf("identity = %q/%q, want the market id", m.ID, m.Name)
	}
	if m.Proportion != 0.25 {
		t.Errorf("proportion = %v, want 1/4", m.Proportion)
	}
	if m.Position != domain.PositionNo {
		t.Errorf("position = %q, want NO for code 2", m.Position)
	}
	if m.Price < 0.70 || m.Price >= 0.95 {
		t.Errorf("price %v outside [0.70, 0.95)", m.Price)
	}
	if m.RemainingHours < 0 || m.RemainingHours >= 72 {
		t.Errorf("remaining hours %v outside [0, 72)", m.RemainingHours)
	}
	if m.EndDate.Before(testNow) || !m.EndDate.Before(testNow.AddDate(0, 0, 7)) {
		t.Errorf("end date %v outside [now, now+7d)", m.EndDate)
	}
	if m.Category != "General" {
		t.Errorf("category = %q, want General", m.Category)
	}
}

func TestFallbackMarketZeroTotal(t *testing.T) {
	syn := NewSynthesizer(rand.NewSource(42))
	m := syn.FallbackMarket("m", 0, 0, 1, testNow)
	if m.Proportion != 1 {
		t.Errorf("proportion = %v, want 1 when total is 0", m.Proportion)
	}
}

func TestDailySeries(t *testing.T) {
	syn := NewSynthesizer(rand.NewSource(42))

	out := syn.DailySeries(30, testNow)
	if len(out) != 30 {
		t.Fatalf("got %d points, want 30", len(out))
	}
	day := int64(24 * 3600)
	for i, r := range out {
		if r.Price < 0.02 || r.Price > 0.98 {
			t.Fatalf("point %d price %v outside [0.02, 0.98]", i, r.Price)
		}
		if i > 0 && r.Timestamp-out[i-1].Timestamp != day {
			t.Fatalf("points %d..%d are %ds apart, want daily", i-1, i, r.Timestamp-out[i-1].Timestamp)
		}
	}
	if out[29].Timestamp != testNow.Unix() {
		t.Errorf("series ends at %d, want now (%d)", out[29].Timestamp, testNow.Unix())
	}

	if got := syn.DailySeries(0, testNow); got != nil {
		t.Errorf("zero points: got %v, want nil", got)
	}
}
