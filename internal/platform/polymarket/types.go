package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/basketwatch/indexd/internal/domain"
)

// flexFloat unmarshals from a JSON number or a numeric string, since the API
// sends prices and sizes both ways depending on endpoint.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(n)
	return nil
}

// flexInt64 unmarshals from a JSON number or a numeric string.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexInt64(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt64(n)
	return nil
}

// --------------------------------------------------------------------------
// Metadata API DTOs
// --------------------------------------------------------------------------

// APIToken is one outcome token of a market.
type APIToken struct {
	Outcome string    `json:"outcome"`
	Price   flexFloat `json:"price"`
}

// APIMarket represents a market as returned by the metadata API.
type APIMarket struct {
	ID             string     `json:"id"`
	Question       string     `json:"question"`
	Description    string     `json:"description"`
	Icon           string     `json:"icon"`
	GroupItemTitle string     `json:"groupItemTitle"`
	EndDate        string     `json:"endDate"`
	Tokens         []APIToken `json:"tokens"`
}

// ToExchangeRecord converts an APIMarket to the domain's raw exchange shape.
func (m *APIMarket) ToExchangeRecord() domain.ExchangeRecord {
	rec := domain.ExchangeRecord{
		ID:          m.ID,
		Title:       m.Question,
		Description: m.Description,
		Icon:        m.Icon,
		GroupTitle:  m.GroupItemTitle,
		EndDate:     m.EndDate,
	}
	for _, t := range m.Tokens {
		rec.Tokens = append(rec.Tokens, domain.PositionToken{
			Name:  t.Outcome,
			Price: float64(t.Price),
		})
	}
	return rec
}

// --------------------------------------------------------------------------
// Trade history and book DTOs
// --------------------------------------------------------------------------

// APITrade is one fill as returned by the trade-history endpoint.
type APITrade struct {
	Price     flexFloat `json:"price"`
	Size      flexFloat `json:"size"`
	Timestamp flexInt64 `json:"timestamp"`
	Maker     string    `json:"maker_address"`
}

// ToTradeRecord converts an APITrade to a domain TradeRecord.
func (t *APITrade) ToTradeRecord() domain.TradeRecord {
	return domain.TradeRecord{
		Price:      float64(t.Price),
		VolumeBase: float64(t.Size),
		Timestamp:  int64(t.Timestamp),
		Trader:     t.Maker,
	}
}

// APIBookLevel is a single price level of a book side.
type APIBookLevel struct {
	Price flexFloat `json:"price"`
	Size  flexFloat `json:"size"`
}

// APIBook is a full book snapshot for one asset.
type APIBook struct {
	Market    string         `json:"market"`
	AssetID   string         `json:"asset_id"`
	Timestamp flexInt64      `json:"timestamp"`
	Hash      string         `json:"hash"`
	Bids      []APIBookLevel `json:"bids"`
	Asks      []APIBookLevel `json:"asks"`
}

// ToSummary converts an APIBook to a domain OrderBookSummary.
func (b *APIBook) ToSummary() domain.OrderBookSummary {
	out := domain.OrderBookSummary{
		Market:    b.Market,
		AssetID:   b.AssetID,
		Timestamp: int64(b.Timestamp),
		Hash:      b.Hash,
	}
	for _, l := range b.Bids {
		out.Bids = append(out.Bids, domain.PriceLevel{Price: float64(l.Price), Size: float64(l.Size)})
	}
	for _, l := range b.Asks {
		out.Asks = append(out.Asks, domain.PriceLevel{Price: float64(l.Price), Size: float64(l.Size)})
	}
	return out
}

// --------------------------------------------------------------------------
// WebSocket DTOs
// --------------------------------------------------------------------------

// WSCommand is a subscribe/unsubscribe message sent to the market feed.
type WSCommand struct {
	Type    string   `json:"type"`
	Channel string   `json:"channel"`
	Assets  []string `json:"assets_ids"`
}

// TradeMessage is a last_trade_price event from the market feed.
type TradeMessage struct {
	EventType string    `json:"event_type"`
	AssetID   string    `json:"asset_id"`
	Market    string    `json:"market"`
	Price     flexFloat `json:"price"`
	Size      flexFloat `json:"size"`
	Timestamp flexInt64 `json:"timestamp"` // epoch milliseconds
}

// ToTradeRecord converts a TradeMessage to a domain TradeRecord.
func (m *TradeMessage) ToTradeRecord() domain.TradeRecord {
	return domain.TradeRecord{
		Price:      float64(m.Price),
		VolumeBase: float64(m.Size),
		Timestamp:  int64(m.Timestamp) / 1000,
		Trader:     "feed",
	}
}
