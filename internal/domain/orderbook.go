package domain

// PriceLevel is a single price+size entry in an order book.
type PriceLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderBookSummary is the per-asset book shape used both for raw provider
// books and for aggregated index books. Timestamp is in epoch milliseconds.
//
// After aggregation, Bids are sorted descending by price and Asks ascending.
type OrderBookSummary struct {
	Market    string       `json:"market"`
	AssetID   string       `json:"asset_id"`
	Timestamp int64        `json:"timestamp"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Hash      string       `json:"hash"`
}
