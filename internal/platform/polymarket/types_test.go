package polymarket

import (
	"encoding/json"
	"testing"
)

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`0.55`, 0.55},
		{`"0.55"`, 0.55},
		{`" 12.5 "`, 12.5},
		{`""`, 0},
		{`0`, 0},
	}
	for _, tt := range tests {
		var f flexFloat
		if err := json.Unmarshal([]byte(tt.in), &f); err != nil {
			t.Errorf("unmarshal %s: %v", tt.in, err)
			continue
		}
		if float64(f) != tt.want {
			t.Errorf("unmarshal %s = %v, want %v", tt.in, float64(f), tt.want)
		}
	}

	var f flexFloat
	if err := json.Unmarshal([]byte(`"not a number"`), &f); err == nil {
		t.Error("expected error for non-numeric string")
	}
}

func TestAPIMarketToExchangeRecord(t *testing.T) {
	raw := `{
		"id": "0xabc",
		"question": "Will X happen?",
		"groupItemTitle": "Politics",
		"endDate": "2025-09-01T00:00:00Z",
		"tokens": [
			{"outcome": "Yes", "price": "0.62"},
			{"outcome": "No", "price": 0.38}
		]
	}`

	var m APIMarket
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatal(err)
	}

	rec := m.ToExchangeRecord()
	if rec.ID != "0xabc" || rec.Title != "Will X happen?" {
		t.Errorf("identity = %q/%q", rec.ID, rec.Title)
	}
	if rec.GroupTitle != "Politics" {
		t.Errorf("group title = %q", rec.GroupTitle)
	}
	if len(rec.Tokens) != 2 {
		t.Fatalf("tokens = %d, want 2", len(rec.Tokens))
	}
	if rec.Tokens[0].Name != "Yes" || rec.Tokens[0].Price != 0.62 {
		t.Errorf("token 0 = %+v", rec.Tokens[0])
	}
	if rec.Tokens[1].Price != 0.38 {
		t.Errorf("token 1 price = %v", rec.Tokens[1].Price)
	}
}

func TestAPITradeToTradeRecord(t *testing.T) {
	raw := `{"price": "0.45", "size": 120.5, "timestamp": "1717200000", "maker_address": "0xdead"}`

	var tr APITrade
	if err := json.Unmarshal([]byte(raw), &tr); err != nil {
		t.Fatal(err)
	}

	rec := tr.ToTradeRecord()
	if rec.Price != 0.45 || rec.VolumeBase != 120.5 {
		t.Errorf("price/volume = %v/%v", rec.Price, rec.VolumeBase)
	}
	if rec.Timestamp != 1717200000 {
		t.Errorf("timestamp = %d", rec.Timestamp)
	}
	if rec.Trader != "0xdead" {
		t.Errorf("trader = %q", rec.Trader)
	}
}

func TestTradeMessageToTradeRecord(t *testing.T) {
	raw := `{"event_type": "last_trade_price", "asset_id": "a1", "market": "0xabc", "price": "0.61", "size": "40", "timestamp": "1717200000123"}`

	var msg TradeMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatal(err)
	}

	rec := msg.ToTradeRecord()
	// Feed timestamps are epoch milliseconds; records use seconds.
	if rec.Timestamp != 1717200000 {
		t.Errorf("timestamp = %d, want seconds", rec.Timestamp)
	}
	if rec.Price != 0.61 || rec.VolumeBase != 40 {
		t.Errorf("price/volume = %v/%v", rec.Price, rec.VolumeBase)
	}
	if rec.Trader != "feed" {
		t.Errorf("trader = %q, want feed", rec.Trader)
	}
}

func TestAPIBookToSummary(t *testing.T) {
	raw := `{
		"market": "0xabc",
		"asset_id": "a1",
		"timestamp": "1717200000123",
		"hash": "h1",
		"bids": [{"price": "0.5", "size": "10"}],
		"asks": [{"price": 0.52, "size": 8}]
	}`

	var b APIBook
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatal(err)
	}

	s := b.ToSummary()
	if s.AssetID != "a1" || s.Hash != "h1" {
		t.Errorf("identity = %q/%q", s.AssetID, s.Hash)
	}
	if len(s.Bids) != 1 || s.Bids[0].Price != 0.5 || s.Bids[0].Size != 10 {
		t.Errorf("bids = %+v", s.Bids)
	}
	if len(s.Asks) != 1 || s.Asks[0].Price != 0.52 {
		t.Errorf("asks = %+v", s.Asks)
	}
}
