// Package wsfeed is the websocket transport of the push feed.
package wsfeed

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Skotchmaster/storefront/internal/feed"
)

const writeTimeout = 10 * time.Second

type Transport struct {
	URL    string
	Header http.Header
	Dialer *websocket.Dialer
}

func New(url string) *Transport {
	return &Transport{URL: url, Dialer: websocket.DefaultDialer}
}

func (t *Transport) Dial(ctx context.Context) (feed.Conn, error) {
	dialer := t.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	ws, resp, err := dialer.DialContext(ctx, t.URL, t.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("wsfeed: dial %s: %w", t.URL, err)
	}
	return &Conn{ws: ws}, nil
}

type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex
	once    sync.Once
	err     error
}

// Read returns the next text or binary frame. Close unblocks it.
func (c *Conn) Read(_ context.Context) ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Conn) Send(ctx context.Context, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.ws.SetWriteDeadline(deadline)
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) Close() error {
	c.once.Do(func() {
		c.writeMu.Lock()
		_ = c.ws.SetWriteDeadline(time.Now().Add(time.Second))
		_ = c.ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		c.err = c.ws.Close()
	})
	return c.err
}
