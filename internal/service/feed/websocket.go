package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ApexCore/internal/domain/models"
	drepo "ApexCore/internal/domain/repository"
	"ApexCore/internal/service/ratelimit"

	"github.com/gorilla/websocket"
)

// reconnect budget: at most 6 attempts burst, refilling one every 10s.
const (
	reconnectBurst  = 6.0
	reconnectRefill = 0.1
)

// Client implements a BarStream backed by a WebSocket bar feed. The feed
// pushes closed bars only; partial bars never reach the engine.
type Client struct {
	apiKey         string
	websocketURL   string
	symbol         string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
	limiter   *ratelimit.Limiter
}

// New creates a new WebSocket BarStream.
func New(apiKey, websocketURL, symbol string, reconnectDelay, pingInterval time.Duration) drepo.BarStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbol:         symbol,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		limiter:        ratelimit.New(),
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := c.websocketURL
	if c.apiKey != "" {
		u = fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("feed: connected")
	return nil
}

// Subscribe subscribes to all bar series of the configured symbol.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("feed not connected")
	}
	for _, series := range []models.Series{models.SeriesPrimary, models.SeriesTrend, models.SeriesDaily} {
		msg := map[string]string{"type": "subscribe", "symbol": c.symbol, "series": string(series)}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s/%s: %w", c.symbol, series, err)
		}
		log.Printf("feed: subscribed %s %s", c.symbol, series)
	}
	return nil
}

type wsBar struct {
	S      string  `json:"s"`
	Series string  `json:"series"`
	T      int64   `json:"t"` // ms
	O      float64 `json:"o"`
	H      float64 `json:"h"`
	L      float64 `json:"l"`
	C      float64 `json:"c"`
	V      float64 `json:"v"`
}

type wsMessage struct {
	Type string  `json:"type"`
	Data []wsBar `json:"data"`
}

// Read streams BarEvents and errors. The channel is buffered; a slow
// consumer stalls the read loop rather than dropping bars, because the
// engine depends on seeing every closed bar exactly once, in order.
func (c *Client) Read(ctx context.Context) (<-chan *models.BarEvent, <-chan error) {
	bars := make(chan *models.BarEvent, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(bars)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("feed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("feed read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-bar frames
					continue
				}
				if m.Type != "bar" {
					continue
				}
				for _, d := range m.Data {
					ev := &models.BarEvent{
						Series: models.NormalizeSeries(d.Series),
						Symbol: d.S,
						Bar: models.Bar{
							Time:   time.UnixMilli(d.T),
							Open:   d.O,
							High:   d.H,
							Low:    d.L,
							Close:  d.C,
							Volume: d.V,
						},
					}
					select {
					case bars <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return bars, errs
}

// Reconnect closes and reconnects, bounded by the reconnect budget.
func (c *Client) Reconnect(ctx context.Context) error {
	if !c.limiter.Allow("reconnect", reconnectBurst, reconnectRefill) {
		return fmt.Errorf("feed reconnect budget exhausted")
	}
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
