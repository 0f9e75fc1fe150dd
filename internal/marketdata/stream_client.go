package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pingInterval         = 30 * time.Second
	reconnectDelay       = 5 * time.Second
	maxReconnectAttempts = 10
)

// StreamClient is a WebSocket quote feed client
type StreamClient struct {
	wsURL       string
	conn        *websocket.Conn
	connMux     sync.RWMutex
	isConnected bool

	subscriber Subscriber
	subMux     sync.RWMutex

	subscribed    map[string]bool
	subscribedMux sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	reconnectAttempts int
}

var _ StreamProvider = (*StreamClient)(nil)

// NewStreamClient creates a new WebSocket quote feed client
func NewStreamClient(wsURL string) *StreamClient {
	return &StreamClient{
		wsURL:      wsURL,
		subscribed: make(map[string]bool),
	}
}

// IsConnected returns whether the WebSocket is connected
func (c *StreamClient) IsConnected() bool {
	c.connMux.RLock()
	defer c.connMux.RUnlock()
	return c.isConnected
}

// SetSubscriber sets the quote subscriber
func (c *StreamClient) SetSubscriber(subscriber Subscriber) {
	c.subMux.Lock()
	defer c.subMux.Unlock()
	c.subscriber = subscriber
}

// Connect establishes the WebSocket connection and starts the message and
// ping loops
func (c *StreamClient) Connect(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	if err := c.connect(); err != nil {
		return err
	}

	c.wg.Add(1)
	go c.messageLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return nil
}

func (c *StreamClient) connect() error {
	c.connMux.Lock()
	defer c.connMux.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to quote stream: %w", err)
	}

	c.conn = conn
	c.isConnected = true
	c.reconnectAttempts = 0

	log.Printf("[MarketData] quote stream connected: %s", c.wsURL)

	// Resubscribe to previous symbols
	c.subscribedMux.RLock()
	symbols := make([]string, 0, len(c.subscribed))
	for symbol := range c.subscribed {
		symbols = append(symbols, symbol)
	}
	c.subscribedMux.RUnlock()

	if len(symbols) > 0 {
		if err := c.sendSubscribe(symbols); err != nil {
			log.Printf("[MarketData] resubscribe failed: %v", err)
		}
	}

	return nil
}

// Subscribe subscribes to quote updates for given symbols
func (c *StreamClient) Subscribe(symbols []string) error {
	c.subscribedMux.Lock()
	for _, symbol := range symbols {
		c.subscribed[symbol] = true
	}
	c.subscribedMux.Unlock()

	if !c.IsConnected() {
		return nil // sent on reconnect
	}
	return c.sendSubscribe(symbols)
}

type subscribeMessage struct {
	Method  string   `json:"method"`
	Symbols []string `json:"symbols"`
}

func (c *StreamClient) sendSubscribe(symbols []string) error {
	c.connMux.Lock()
	defer c.connMux.Unlock()
	if c.conn == nil {
		return fmt.Errorf("quote stream not connected")
	}
	return c.conn.WriteJSON(subscribeMessage{
		Method:  "SUBSCRIBE",
		Symbols: symbols,
	})
}

func (c *StreamClient) messageLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		c.connMux.RLock()
		conn := c.conn
		c.connMux.RUnlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
				return
			default:
			}
			log.Printf("[MarketData] read error: %v", err)
			if !c.reconnect() {
				return
			}
			continue
		}

		var quote Quote
		if err := json.Unmarshal(data, &quote); err != nil {
			continue
		}
		if quote.Symbol == "" || quote.Price <= 0 {
			continue
		}
		if quote.Timestamp == 0 {
			quote.Timestamp = time.Now().UnixMilli()
		}

		c.subMux.RLock()
		subscriber := c.subscriber
		c.subMux.RUnlock()
		if subscriber != nil {
			subscriber.OnQuote(quote)
		}
	}
}

func (c *StreamClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.connMux.Lock()
			if c.conn != nil {
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					log.Printf("[MarketData] ping failed: %v", err)
				}
			}
			c.connMux.Unlock()
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *StreamClient) reconnect() bool {
	c.connMux.Lock()
	c.isConnected = false
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMux.Unlock()

	for c.reconnectAttempts < maxReconnectAttempts {
		select {
		case <-c.ctx.Done():
			return false
		case <-time.After(reconnectDelay):
		}

		c.reconnectAttempts++
		log.Printf("[MarketData] reconnect attempt %d/%d", c.reconnectAttempts, maxReconnectAttempts)

		if err := c.connect(); err == nil {
			return true
		}
	}

	log.Printf("[MarketData] giving up after %d reconnect attempts", maxReconnectAttempts)
	return false
}

// Close closes the WebSocket connection
func (c *StreamClient) Close() error {
	if c.cancel != nil {
		c.cancel()
	}

	c.connMux.Lock()
	c.isConnected = false
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMux.Unlock()

	c.wg.Wait()
	return nil
}
