// Package coingecko fetches native-currency market quotes from the
// CoinGecko /coins/markets endpoint.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gabapcia/cexwatch/internal/batchproc"
	httptransport "github.com/gabapcia/cexwatch/internal/pkg/transport/http"

	"github.com/hashicorp/go-retryablehttp"
)

// defaultBaseURL is the public CoinGecko API root.
const defaultBaseURL = "https://api.coingecko.com/api/v3"

type client struct {
	httpClient *retryablehttp.Client

	baseURL string
	coinID  string
}

// Option configures optional client behavior.
type Option func(*client)

// WithBaseURL overrides the API root, primarily for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// NewClient creates a CoinGecko price client for the given coin ID
// (e.g. "ethereum").
func NewClient(coinID string, opts ...Option) *client {
	c := &client{
		httpClient: httptransport.NewClient(),
		baseURL:    defaultBaseURL,
		coinID:     coinID,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// marketEntry is the slice of the /coins/markets response the service
// consumes.
type marketEntry struct {
	CurrentPrice             float64 `json:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
}

// CurrentPrice implements the batchproc.PriceService interface.
//
// It queries /coins/markets for the configured coin and maps the first
// entry into a quote. Any transport failure, non-2xx status, or empty
// result is an error; callers treat it as "price unavailable".
func (c *client) CurrentPrice(ctx context.Context) (batchproc.Price, error) {
	query := url.Values{
		"vs_currency": []string{"usd"},
		"ids":         []string{c.coinID},
	}
	endpoint := fmt.Sprintf("%s/coins/markets?%s", c.baseURL, query.Encode())

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return batchproc.Price{}, fmt.Errorf("build market quote request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return batchproc.Price{}, fmt.Errorf("fetch market quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return batchproc.Price{}, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return batchproc.Price{}, fmt.Errorf("read market quote response: %w", err)
	}

	var entries []marketEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return batchproc.Price{}, fmt.Errorf("decode market quote response: %w", err)
	}

	if len(entries) == 0 {
		return batchproc.Price{}, fmt.Errorf("no market data for coin %q", c.coinID)
	}

	return batchproc.Price{
		USD:       entries[0].CurrentPrice,
		Change24h: entries[0].PriceChangePercentage24h,
	}, nil
}

// Compile-time assertion to ensure *client satisfies the batchproc.PriceService interface
var _ batchproc.PriceService = new(client)
