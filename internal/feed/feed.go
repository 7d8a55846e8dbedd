// Package feed consumes the push channel of product events. Price updates
// are applied to the catalog, and every event that reaches a shopper ends up
// in a bounded most-recent-first notification log.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/observer"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	DefaultReconnectDelay       = 3 * time.Second
	DefaultMaxReconnectAttempts = 5
	MaxNotifications            = 10
	DefaultHistoryLimit         = 100
)

var ErrNotConnected = errors.New("feed: not connected")

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Conn is one open push channel. Read blocks until a frame arrives or the
// connection fails. Close must be safe to call more than once.
type Conn interface {
	Read(ctx context.Context) ([]byte, error)
	Send(ctx context.Context, data []byte) error
	Close() error
}

type Transport interface {
	Dial(ctx context.Context) (Conn, error)
}

// PriceUpdater is the catalog side of a price_update event.
type PriceUpdater interface {
	UpdateProductPrice(id int, newPrice float64) (models.Product, float64, bool)
}

type Handlers struct {
	OnOpen          func()
	OnClose         func(err error)
	OnError         func(err error)
	OnPriceUpdate   func(models.PriceUpdateMessage)
	OnProductUpdate func(models.NewProductMessage)
	OnNotification  func(models.NotificationMessage)
	OnCustom        func(models.Message)
}

type Option func(*Feed)

func WithReconnectDelay(d time.Duration) Option {
	return func(f *Feed) { f.reconnectDelay = d }
}

func WithMaxReconnectAttempts(n int) Option {
	return func(f *Feed) { f.maxAttempts = n }
}

func WithHandlers(h Handlers) Option {
	return func(f *Feed) { f.handlers = h }
}

func WithHistoryLimit(n int) Option {
	return func(f *Feed) { f.historyLimit = n }
}

func WithClock(now func() time.Time) Option {
	return func(f *Feed) { f.now = now }
}

type Feed struct {
	transport      Transport
	prices         PriceUpdater
	handlers       Handlers
	reconnectDelay time.Duration
	maxAttempts    int
	historyLimit   int
	now            func() time.Time

	mu       sync.Mutex
	state    State
	conn     Conn
	attempts int
	cancel   context.CancelFunc
	done     chan struct{}
	// handling is the done channel of the loop currently inside a handler.
	handling chan struct{}
	messages []models.Message

	// logMu guards the notification log.
	logMu         sync.Mutex
	notifications []models.Notification
	lastID        int64

	listeners observer.Listeners[[]models.Notification]
}

func New(t Transport, prices PriceUpdater, opts ...Option) *Feed {
	f := &Feed{
		transport:      t,
		prices:         prices,
		reconnectDelay: DefaultReconnectDelay,
		maxAttempts:    DefaultMaxReconnectAttempts,
		historyLimit:   DefaultHistoryLimit,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Connect starts the connection loop in its own goroutine. It is a no-op
// while a loop is already running.
func (f *Feed) Connect(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	f.cancel = cancel
	f.done = done
	f.attempts = 0
	f.state = Connecting
	go f.run(runCtx, done)
}

// Disconnect closes the channel, stops any pending retry and waits for the
// loop to exit. Called from a handler it returns without waiting, and the
// loop exits once that handler returns.
func (f *Feed) Disconnect() {
	f.mu.Lock()
	cancel, done, conn := f.cancel, f.done, f.conn
	inHandler := done != nil && f.handling == done
	f.cancel = nil
	f.done = nil
	f.conn = nil
	f.state = Disconnected
	f.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if conn != nil {
		_ = conn.Close()
	}
	if !inHandler {
		<-done
	}
}

func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Feed) Connected() bool {
	return f.State() == Connected
}

// Send marshals v and writes it to the open channel.
func (f *Feed) Send(ctx context.Context, v any) error {
	f.mu.Lock()
	conn := f.conn
	connected := f.state == Connected
	f.mu.Unlock()

	if !connected || conn == nil {
		logging.FromContext(ctx).Warn("feed_send_skipped", "reason", "not connected")
		return ErrNotConnected
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("feed: marshal: %w", err)
	}
	if err := conn.Send(ctx, data); err != nil {
		return fmt.Errorf("feed: send: %w", err)
	}
	return nil
}

func (f *Feed) run(ctx context.Context, done chan struct{}) {
	log := logging.FromContext(ctx).With("component", "feed")
	defer func() {
		f.mu.Lock()
		if f.done == done {
			f.cancel()
			f.cancel = nil
			f.done = nil
			f.conn = nil
			f.state = Disconnected
		}
		f.mu.Unlock()
		close(done)
	}()

	for {
		f.setState(done, Connecting)
		conn, err := f.transport.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("feed_dial_error", "error", err)
			f.emitError(done, err)
		} else {
			if !f.opened(done, conn) {
				_ = conn.Close()
				return
			}
			log.Info("feed_connected")
			err = f.readLoop(ctx, done, conn)
			f.closed(done)
			_ = conn.Close()
			if f.handlers.OnClose != nil {
				f.inHandler(done, func() { f.handlers.OnClose(err) })
			}
			if ctx.Err() != nil {
				return
			}
			log.Warn("feed_closed", "error", err)
			f.emitError(done, err)
		}

		f.mu.Lock()
		if f.attempts >= f.maxAttempts {
			f.mu.Unlock()
			log.Error("feed_reconnect_exhausted", "attempts", f.maxAttempts)
			return
		}
		f.attempts++
		attempt := f.attempts
		f.mu.Unlock()

		log.Info("feed_reconnect_scheduled", "attempt", attempt, "delay", f.reconnectDelay.String())
		timer := time.NewTimer(f.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (f *Feed) readLoop(ctx context.Context, done chan struct{}, conn Conn) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		f.inHandler(done, func() { f.handleMessage(ctx, data) })
	}
}

// inHandler runs fn with the loop identified by done marked as busy, so a
// Disconnect issued from fn does not wait on its own loop.
func (f *Feed) inHandler(done chan struct{}, fn func()) {
	f.mu.Lock()
	f.handling = done
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		if f.handling == done {
			f.handling = nil
		}
		f.mu.Unlock()
	}()
	fn()
}

func (f *Feed) setState(done chan struct{}, s State) {
	f.mu.Lock()
	if f.done == done {
		f.state = s
	}
	f.mu.Unlock()
}

// opened records a live connection and resets the retry counter. It reports
// false when the loop was stopped while dialing.
func (f *Feed) opened(done chan struct{}, conn Conn) bool {
	f.mu.Lock()
	if f.done != done {
		f.mu.Unlock()
		return false
	}
	f.conn = conn
	f.state = Connected
	f.attempts = 0
	f.mu.Unlock()

	if f.handlers.OnOpen != nil {
		f.inHandler(done, f.handlers.OnOpen)
	}
	return true
}

func (f *Feed) closed(done chan struct{}) {
	f.mu.Lock()
	if f.done == done {
		f.conn = nil
		f.state = Disconnected
	}
	f.mu.Unlock()
}

func (f *Feed) emitError(done chan struct{}, err error) {
	if f.handlers.OnError != nil {
		f.inHandler(done, func() { f.handlers.OnError(err) })
	}
}
