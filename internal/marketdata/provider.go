package marketdata

import (
	"context"
)

// Quote is a single last-trade price observation for a symbol
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// Subscriber receives streamed quote updates
type Subscriber interface {
	OnQuote(quote Quote)
}

// StreamProvider is a push feed of quote updates
type StreamProvider interface {
	// Connect establishes the feed connection
	Connect(ctx context.Context) error

	// Subscribe subscribes to quote updates for given symbols
	Subscribe(symbols []string) error

	// SetSubscriber sets the quote subscriber
	SetSubscriber(subscriber Subscriber)

	// Close closes the feed connection
	Close() error

	// IsConnected returns whether the feed is connected
	IsConnected() bool
}

// QuoteFetcher is a pull source for the latest quote of a symbol
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*Quote, error)
}
