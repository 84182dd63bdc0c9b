// Package polymarket implements the market data provider collaborators
// against Polymarket-style REST and WebSocket APIs.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/basketwatch/indexd/internal/domain"
)

// namespace is the provider namespace this client serves.
const namespace = "polymarket"

// Client fetches market metadata, trade history, and order books. It
// implements domain.MarketDataProvider for the "polymarket" namespace.
type Client struct {
	metaURL    string
	dataURL    string
	httpClient *http.Client
}

// NewClient creates a provider client.
//
// metaURL is the metadata API root, e.g. "https://gamma-api.polymarket.com".
// dataURL is the trade/book API root, e.g. "https://clob.polymarket.com".
func NewClient(metaURL, dataURL string) *Client {
	return &Client{
		metaURL: metaURL,
		dataURL: dataURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchExchange returns the raw market record for a market id.
func (c *Client) FetchExchange(ctx context.Context, provider, marketID string) (domain.ExchangeRecord, error) {
	if err := c.checkNamespace(provider); err != nil {
		return domain.ExchangeRecord{}, err
	}

	path := fmt.Sprintf("/markets/%s", url.PathEscape(marketID))
	body, err := c.doGet(ctx, c.metaURL+path)
	if err != nil {
		return domain.ExchangeRecord{}, fmt.Errorf("polymarket: get market %s: %w", marketID, err)
	}

	var apiMarket APIMarket
	if err := json.Unmarshal(body, &apiMarket); err != nil {
		return domain.ExchangeRecord{}, fmt.Errorf("polymarket: decode market: %w", err)
	}

	return apiMarket.ToExchangeRecord(), nil
}

// FetchPriceHistory returns one trade series per position side, YES first.
func (c *Client) FetchPriceHistory(ctx context.Context, provider, marketID string) ([][]domain.TradeRecord, error) {
	if err := c.checkNamespace(provider); err != nil {
		return nil, err
	}

	history := make([][]domain.TradeRecord, 0, 2)
	for _, side := range []string{"yes", "no"} {
		params := url.Values{}
		params.Set("market", marketID)
		params.Set("side", side)

		body, err := c.doGet(ctx, c.dataURL+"/trades?"+params.Encode())
		if err != nil {
			return nil, fmt.Errorf("polymarket: get trades %s/%s: %w", marketID, side, err)
		}

		var apiTrades []APITrade
		if err := json.Unmarshal(body, &apiTrades); err != nil {
			return nil, fmt.Errorf("polymarket: decode trades: %w", err)
		}

		series := make([]domain.TradeRecord, 0, len(apiTrades))
		for i := range apiTrades {
			series = append(series, apiTrades[i].ToTradeRecord())
		}
		history = append(history, series)
	}

	return history, nil
}

// FetchOrderBook returns the market's books keyed by asset id.
func (c *Client) FetchOrderBook(ctx context.Context, provider, marketID string) (map[string]domain.OrderBookSummary, error) {
	if err := c.checkNamespace(provider); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("market", marketID)

	body, err := c.doGet(ctx, c.dataURL+"/book?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket: get book %s: %w", marketID, err)
	}

	var apiBooks []APIBook
	if err := json.Unmarshal(body, &apiBooks); err != nil {
		// Some deployments return a single book object instead of a list.
		var single APIBook
		if err2 := json.Unmarshal(body, &single); err2 != nil {
			return nil, fmt.Errorf("polymarket: decode book: %w", err)
		}
		apiBooks = []APIBook{single}
	}

	books := make(map[string]domain.OrderBookSummary, len(apiBooks))
	for i := range apiBooks {
		b := apiBooks[i].ToSummary()
		if b.AssetID == "" {
			continue
		}
		books[b.AssetID] = b
	}

	return books, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (c *Client) checkNamespace(provider string) error {
	if provider != namespace {
		return fmt.Errorf("polymarket: provider %q: %w", provider, domain.ErrNotFound)
	}
	return nil
}

// doGet sends an unauthenticated GET request and returns the raw body.
func (c *Client) doGet(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}

// Compile-time interface check.
var _ domain.MarketDataProvider = (*Client)(nil)
