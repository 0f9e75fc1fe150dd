package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestClient fetches quotes over the provider's HTTP API. It is the
// fallback path when the stream has no fresh price for a symbol.
type RestClient struct {
	client *resty.Client
}

var _ QuoteFetcher = (*RestClient)(nil)

// NewRestClient creates a new quote REST client
func NewRestClient(baseURL string, timeout time.Duration) *RestClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)

	return &RestClient{client: client}
}

// FetchQuote returns the latest quote for a symbol
func (c *RestClient) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	var quote Quote

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&quote).
		Get("/quote")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("quote request for %s returned status %d", symbol, resp.StatusCode())
	}
	if quote.Price <= 0 {
		return nil, fmt.Errorf("no price available for %s", symbol)
	}

	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	if quote.Timestamp == 0 {
		quote.Timestamp = time.Now().UnixMilli()
	}

	return &quote, nil
}
