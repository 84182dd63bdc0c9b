package domain

// Candle is one OHLCV bucket of a trade series. Time is the bucket start in
// epoch seconds. Buckets with no trades are never emitted.
type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}
