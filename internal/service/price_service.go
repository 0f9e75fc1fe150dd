package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trading-ledger/internal/marketdata"
)

var (
	ErrPriceUnavailable = errors.New("price unavailable")
)

// PriceService owns the per-symbol last-price cache: an in-memory map fed
// by the quote stream, mirrored to redis with a TTL, with a REST fetch as
// the final fallback. A symbol enters the cache on its first successful
// quote and is refreshed on every update after that.
type PriceService struct {
	redis   *redis.Client
	stream  marketdata.StreamProvider
	fetcher marketdata.QuoteFetcher
	ttl     time.Duration

	prices    map[string]marketdata.Quote
	pricesMux sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPriceService creates a new PriceService
func NewPriceService(redisClient *redis.Client, stream marketdata.StreamProvider, fetcher marketdata.QuoteFetcher, ttl time.Duration) *PriceService {
	return &PriceService{
		redis:   redisClient,
		stream:  stream,
		fetcher: fetcher,
		ttl:     ttl,
		prices:  make(map[string]marketdata.Quote),
	}
}

// Start connects the quote stream and subscribes to the given symbols
func (s *PriceService) Start(ctx context.Context, symbols []string) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.stream == nil {
		log.Printf("[PriceService] no stream configured, REST fallback only")
		return nil
	}

	s.stream.SetSubscriber(s)
	if err := s.stream.Connect(s.ctx); err != nil {
		return err
	}
	if len(symbols) > 0 {
		if err := s.stream.Subscribe(symbols); err != nil {
			log.Printf("[PriceService] failed to subscribe: %v", err)
		}
	}

	log.Printf("[PriceService] started, %d symbols subscribed", len(symbols))
	return nil
}

// OnQuote implements marketdata.Subscriber
func (s *PriceService) OnQuote(quote marketdata.Quote) {
	s.pricesMux.Lock()
	s.prices[quote.Symbol] = quote
	s.pricesMux.Unlock()

	if s.redis == nil {
		return
	}

	// Quotes can arrive before Start, via the REST fallback
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	key := fmt.Sprintf("price:last:%s", quote.Symbol)
	s.redis.HSet(ctx, key, map[string]interface{}{
		"price":     quote.Price,
		"timestamp": quote.Timestamp,
	})
	s.redis.Expire(ctx, key, s.ttl)
}

// GetLatestPrice returns the latest known price for a symbol, trying the
// in-memory cache, then redis, then the REST fetcher. Callers treat
// ErrPriceUnavailable as skip-and-retry-later, not as fatal.
func (s *PriceService) GetLatestPrice(symbol string) (float64, error) {
	s.pricesMux.RLock()
	quote, ok := s.prices[symbol]
	s.pricesMux.RUnlock()
	if ok && time.Now().UnixMilli()-quote.Timestamp < s.ttl.Milliseconds() {
		return quote.Price, nil
	}

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	if s.redis != nil {
		key := fmt.Sprintf("price:last:%s", symbol)
		if price, err := s.redis.HGet(ctx, key, "price").Float64(); err == nil && price > 0 {
			return price, nil
		}
	}

	if s.fetcher != nil {
		fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		fetched, err := s.fetcher.FetchQuote(fetchCtx, symbol)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, symbol, err)
		}
		s.OnQuote(*fetched)
		return fetched.Price, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, symbol)
}

// IsStreamConnected reports whether the quote stream is up
func (s *PriceService) IsStreamConnected() bool {
	return s.stream != nil && s.stream.IsConnected()
}

// Stop stops the price service
func (s *PriceService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.stream != nil {
		if err := s.stream.Close(); err != nil {
			log.Printf("[PriceService] error closing stream: %v", err)
		}
	}
	log.Printf("[PriceService] stopped")
}
