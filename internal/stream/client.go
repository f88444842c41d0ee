package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
	"tradebot/types"

	"github.com/gorilla/websocket"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

// Client is a websocket market-data adapter delivering one-minute bars. The
// wire format is the Alpaca-style crypto stream: an auth frame, a subscribe
// frame, then JSON arrays of typed messages where "T":"b" carries a bar.
type Client struct {
	url    string
	key    string
	secret string

	conn *websocket.Conn
	bars chan types.Bar
	done chan struct{}
	once sync.Once
}

func NewClient(url, key, secret string) *Client {
	return &Client{
		url:    url,
		key:    key,
		secret: secret,
		bars:   make(chan types.Bar, 256),
		done:   make(chan struct{}),
	}
}

// Subscribe dials the stream, authenticates, subscribes to bars for the
// given symbols, and starts the read pump. The returned channel is closed
// when the connection drops or Close is called.
func (c *Client) Subscribe(ctx context.Context, symbols []string) (<-chan types.Bar, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.url, err)
	}
	c.conn = conn

	if c.key != "" {
		if err := c.send(map[string]string{
			"action": "auth",
			"key":    c.key,
			"secret": c.secret,
		}); err != nil {
			conn.Close()
			return nil, fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.send(map[string]any{
		"action": "subscribe",
		"bars":   symbols,
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe bars: %w", err)
	}

	go c.readPump()
	return c.bars, nil
}

// Close stops the read pump and closes the connection. Safe to call more
// than once.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}

func (c *Client) send(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// readPump pumps bar messages from the websocket into the bars channel
// until the connection drops or Close is called.
func (c *Client) readPump() {
	defer close(c.bars)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				log.Printf("[stream] read failed: %v", err)
			}
			return
		}

		bars, err := parseBars(data)
		if err != nil {
			log.Printf("[stream] dropped malformed frame: %v", err)
			continue
		}
		for _, bar := range bars {
			select {
			case c.bars <- bar:
			case <-c.done:
				return
			}
		}
	}
}

type message struct {
	Type string `json:"T"`
	types.Bar
}

// parseBars extracts bar messages from one frame, ignoring control messages
// (auth acks, subscription confirmations, errors are logged upstream).
func parseBars(data []byte) ([]types.Bar, error) {
	var msgs []message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, err
	}

	var bars []types.Bar
	for _, msg := range msgs {
		if msg.Type != "b" {
			continue
		}
		bars = append(bars, msg.Bar)
	}
	return bars, nil
}
