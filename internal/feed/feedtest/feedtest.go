// Package feedtest provides an in-memory feed transport for tests.
package feedtest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/Skotchmaster/storefront/internal/feed"
)

var ErrDialRefused = errors.New("feedtest: dial refused")

// Transport hands out Conns on Dial. Dials can be made to fail.
type Transport struct {
	mu         sync.Mutex
	dials      int
	failNext   int
	failAlways bool
	conns      chan *Conn
}

// NewTransport buffers up to 16 undelivered conns. Further dials block until
// NextConn drains one or the dial context ends.
func NewTransport() *Transport {
	return &Transport{conns: make(chan *Conn, 16)}
}

// FailNext makes the next n dials fail.
func (t *Transport) FailNext(n int) {
	t.mu.Lock()
	t.failNext = n
	t.mu.Unlock()
}

func (t *Transport) FailAlways(v bool) {
	t.mu.Lock()
	t.failAlways = v
	t.mu.Unlock()
}

func (t *Transport) Dials() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dials
}

func (t *Transport) Dial(ctx context.Context) (feed.Conn, error) {
	t.mu.Lock()
	t.dials++
	fail := t.failAlways || t.failNext > 0
	if t.failNext > 0 {
		t.failNext--
	}
	t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fail {
		return nil, ErrDialRefused
	}
	c := newConn()
	select {
	case t.conns <- c:
		return c, nil
	case <-ctx.Done():
		_ = c.Close()
		return nil, ctx.Err()
	}
}

// NextConn waits for the next successful dial.
func (t *Transport) NextConn(ctx context.Context) (*Conn, error) {
	select {
	case c := <-t.conns:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type Conn struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	sent    [][]byte
	dropErr error
}

func newConn() *Conn {
	return &Conn{
		frames: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

// Push queues a raw frame for the reader.
func (c *Conn) Push(data []byte) {
	c.frames <- data
}

func (c *Conn) PushJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.Push(data)
	return nil
}

// Drop simulates the server closing the connection.
func (c *Conn) Drop(err error) {
	c.mu.Lock()
	c.dropErr = err
	c.mu.Unlock()
	c.once.Do(func() { close(c.closed) })
}

func (c *Conn) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *Conn) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	select {
	case data := <-c.frames:
		return data, nil
	default:
	}
	select {
	case data := <-c.frames:
		return data, nil
	case <-c.closed:
		c.mu.Lock()
		err := c.dropErr
		c.mu.Unlock()
		if err == nil {
			err = io.EOF
		}
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Conn) Send(_ context.Context, data []byte) error {
	if c.Closed() {
		return io.ErrClosedPipe
	}
	c.mu.Lock()
	c.sent = append(c.sent, data)
	c.mu.Unlock()
	return nil
}

func (c *Conn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}
