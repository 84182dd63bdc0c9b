package index

import (
	"testing"

	"github.com/basketwatch/indexd/internal/domain"
)

func TestGenerateCandles(t *testing.T) {
	const hour = int64(3600)
	base := int64(1_700_000_000)

	trades := []domain.TradeRecord{
		// Bucket 0: open 0.5, high 0.7, low 0.4, close 0.6, volume 300.
		{Price: 0.5, VolumeBase: 100, Timestamp: base},
		{Price: 0.7, VolumeBase: 50, Timestamp: base + 600},
		{Price: 0.4, VolumeBase: 50, Timestamp: base + 1200},
		{Price: 0.6, VolumeBase: 100, Timestamp: base + 1800},
		// Bucket 2 (bucket 1 is empty and must be omitted).
		{Price: 0.8, VolumeBase: 10, Timestamp: base + 2*hour},
	}

	candles := GenerateCandles(trades, 1)
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2 (empty bucket omitted)", len(candles))
	}

	c0 := candles[0]
	if c0.Time != base {
		t.Errorf("candle 0 time = %d, want %d (anchored at first trade)", c0.Time, base)
	}
	if c0.Open != 0.5 || c0.High != 0.7 || c0.Low != 0.4 || c0.Close != 0.6 {
		t.Errorf("candle 0 OHLC = %v/%v/%v/%v", c0.Open, c0.High, c0.Low, c0.Close)
	}
	if c0.Volume != 300 {
		t.Errorf("candle 0 volume = %v, want 300", c0.Volume)
	}

	c1 := candles[1]
	if c1.Time != base+2*hour {
		t.Errorf("candle 1 time = %d, want %d", c1.Time, base+2*hour)
	}
	if c1.Open != 0.8 || c1.Close != 0.8 || c1.Volume != 10 {
		t.Errorf("candle 1 = %+v", c1)
	}
}

func TestGenerateCandlesSortsInput(t *testing.T) {
	base := int64(1_700_000_000)
	trades := []domain.TradeRecord{
		{Price: 0.9, VolumeBase: 1, Timestamp: base + 1800},
		{Price: 0.1, VolumeBase: 1, Timestamp: base},
	}

	candles := GenerateCandles(trades, 1)
	if len(candles) != 1 {
		t.Fatalf("got %d candles, want 1", len(candles))
	}
	if candles[0].Open != 0.1 || candles[0].Close != 0.9 {
		t.Errorf("open/close = %v/%v, want 0.1/0.9 after sorting", candles[0].Open, candles[0].Close)
	}
	// The input slice must not be reordered.
	if trades[0].Price != 0.9 {
		t.Error("input slice was mutated")
	}
}

func TestGenerateCandlesTimestampTies(t *testing.T) {
	base := int64(1_700_000_000)
	trades := []domain.TradeRecord{
		{Price: 0.3, VolumeBase: 1, Timestamp: base},
		{Price: 0.4, VolumeBase: 1, Timestamp: base},
	}

	candles := GenerateCandles(trades, 4)
	if len(candles) != 1 {
		t.Fatalf("got %d candles, want 1", len(candles))
	}
	// Input order breaks the tie.
	if candles[0].Open != 0.3 || candles[0].Close != 0.4 {
		t.Errorf("open/close = %v/%v, want 0.3/0.4", candles[0].Open, candles[0].Close)
	}
}

func TestGenerateCandlesDegenerate(t *testing.T) {
	if got := GenerateCandles(nil, 1); got != nil {
		t.Errorf("nil trades: got %v, want nil", got)
	}
	trades := []domain.TradeRecord{{Price: 0.5, VolumeBase: 1, Timestamp: 1}}
	if got := GenerateCandles(trades, 0); got != nil {
		t.Errorf("zero width: got %v, want nil", got)
	}
	if got := GenerateCandles(trades, -3); got != nil {
		t.Errorf("negative width: got %v, want nil", got)
	}

	candles := GenerateCandles(trades, 1)
	if len(candles) != 1 {
		t.Fatalf("single trade: got %d candles, want 1", len(candles))
	}
	c := candles[0]
	if c.Open != 0.5 || c.High != 0.5 || c.Low != 0.5 || c.Close != 0.5 {
		t.Errorf("single-trade candle = %+v", c)
	}
}
