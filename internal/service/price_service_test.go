package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trading-ledger/internal/marketdata"
	"github.com/trading-ledger/internal/service"
)

type stubFetcher struct {
	quote marketdata.Quote
}

func (f stubFetcher) FetchQuote(_ context.Context, symbol string) (*marketdata.Quote, error) {
	q := f.quote
	q.Symbol = symbol
	return &q, nil
}

// unreachableRedis returns a client whose commands fail fast; the cache
// treats redis errors as a miss, so tests only care that the calls return.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestQuoteBeforeStartCachesPrice(t *testing.T) {
	svc := service.NewPriceService(unreachableRedis(), nil, nil, time.Minute)

	// Start was never called; the quote must still land in the cache
	svc.OnQuote(marketdata.Quote{
		Symbol:    "AAPL",
		Price:     187.5,
		Timestamp: time.Now().UnixMilli(),
	})

	price, err := svc.GetLatestPrice("AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 187.5, price, 1e-9)
}

func TestRestFallbackBeforeStart(t *testing.T) {
	fetcher := stubFetcher{quote: marketdata.Quote{
		Price:     42.25,
		Timestamp: time.Now().UnixMilli(),
	}}
	svc := service.NewPriceService(unreachableRedis(), nil, fetcher, time.Minute)

	// Cache miss drops to the fetcher, which feeds OnQuote in turn
	price, err := svc.GetLatestPrice("MSFT")
	require.NoError(t, err)
	assert.InDelta(t, 42.25, price, 1e-9)

	// Second lookup is served from memory
	price, err = svc.GetLatestPrice("MSFT")
	require.NoError(t, err)
	assert.InDelta(t, 42.25, price, 1e-9)
}

func TestMissingPriceReturnsError(t *testing.T) {
	svc := service.NewPriceService(nil, nil, nil, time.Minute)

	_, err := svc.GetLatestPrice("NOPE")
	assert.ErrorIs(t, err, service.ErrPriceUnavailable)
}
