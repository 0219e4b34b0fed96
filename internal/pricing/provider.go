package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoPrice is returned when the provider responded but exposed no usable
// price field and no recent close.
var ErrNoPrice = errors.New("no usable price in provider response")

// quote is the provider's quote payload. Fields are pointers because the
// provider populates different subsets depending on market state.
type quote struct {
	RegularMarketPrice         *decimal.Decimal `json:"regularMarketPrice"`
	CurrentPrice               *decimal.Decimal `json:"currentPrice"`
	Price                      *decimal.Decimal `json:"price"`
	RegularMarketPreviousClose *decimal.Decimal `json:"regularMarketPreviousClose"`
}

// priceFieldOrder is the preference order for quote fields. Earlier entries
// win; the daily-history close is the last resort after all of these.
var priceFieldOrder = []struct {
	name string
	get  func(*quote) *decimal.Decimal
}{
	{"regularMarketPrice", func(q *quote) *decimal.Decimal { return q.RegularMarketPrice }},
	{"currentPrice", func(q *quote) *decimal.Decimal { return q.CurrentPrice }},
	{"price", func(q *quote) *decimal.Decimal { return q.Price }},
	{"regularMarketPreviousClose", func(q *quote) *decimal.Decimal { return q.RegularMarketPreviousClose }},
}

type history struct {
	Closes []decimal.Decimal `json:"closes"`
}

// ProviderClient fetches quotes from the market-data provider over HTTP.
type ProviderClient struct {
	baseURL string
	client  *http.Client
}

// NewProviderClient creates a provider client with a bounded request timeout.
func NewProviderClient(baseURL string, timeout time.Duration) *ProviderClient {
	return &ProviderClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Quote returns the current price for a normalized symbol. Quote fields are
// tried in priceFieldOrder; if none is populated the latest daily close is
// used. Returns ErrNoPrice when the provider has nothing usable.
func (c *ProviderClient) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var q quote
	if err := c.getJSON(ctx, "/quote", symbol, &q); err != nil {
		return decimal.Decimal{}, err
	}

	for _, field := range priceFieldOrder {
		if price := field.get(&q); price != nil {
			return *price, nil
		}
	}

	// Last resort: latest close from the daily history.
	var h history
	if err := c.getJSON(ctx, "/history", symbol, &h); err != nil {
		return decimal.Decimal{}, err
	}
	if len(h.Closes) == 0 {
		return decimal.Decimal{}, ErrNoPrice
	}
	return h.Closes[len(h.Closes)-1], nil
}

func (c *ProviderClient) getJSON(ctx context.Context, path, symbol string, out interface{}) error {
	reqURL := c.baseURL + path + "?symbol=" + url.QueryEscape(symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build provider request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: unknown symbol %s", ErrNoPrice, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d for %s", resp.StatusCode, symbol)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}
