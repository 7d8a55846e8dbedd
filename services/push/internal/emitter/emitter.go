// Package emitter produces the random storefront events the push service
// sends while it runs.
package emitter

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	DefaultFirstDelay  = 5 * time.Second
	DefaultMinInterval = 10 * time.Second
	DefaultMaxInterval = 30 * time.Second

	MaxProductID = 20

	NotificationTitle   = "New notification"
	NotificationText    = "New products have arrived in the catalog!"
	NewProductText      = "A new product has been added to the catalog"
	timestampLayout     = "2006-01-02T15:04:05.000Z07:00"
	notificationShare   = 0.4
	priceUpdateCeiling  = 0.7
	minPrice, priceSpan = 10.0, 100.0
)

type Sink func(ctx context.Context, msg models.Message) error

type Emitter struct {
	Rand        *rand.Rand
	Now         func() time.Time
	FirstDelay  time.Duration
	MinInterval time.Duration
	MaxInterval time.Duration
	Sink        Sink
}

func New(sink Sink) *Emitter {
	return &Emitter{
		Rand:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		Now:         time.Now,
		FirstDelay:  DefaultFirstDelay,
		MinInterval: DefaultMinInterval,
		MaxInterval: DefaultMaxInterval,
		Sink:        sink,
	}
}

// Next draws one event: 40% notification, 30% price update, 30% new product.
func (e *Emitter) Next() models.Message {
	ts := e.Now().UTC().Format(timestampLayout)
	roll := e.Rand.Float64()

	switch {
	case roll < notificationShare:
		return models.NotificationMessage{
			Type:      models.MessageNotification,
			Title:     NotificationTitle,
			Message:   NotificationText,
			Timestamp: ts,
		}
	case roll < priceUpdateCeiling:
		price := e.Rand.Float64()*priceSpan + minPrice
		return models.PriceUpdateMessage{
			Type:      models.MessagePriceUpdate,
			ProductID: e.Rand.IntN(MaxProductID) + 1,
			NewPrice:  math.Round(price*100) / 100,
			Timestamp: ts,
		}
	default:
		return models.NewProductMessage{
			Type:      models.MessageNewProduct,
			Message:   NewProductText,
			Timestamp: ts,
		}
	}
}

// Interval returns a random wait in [MinInterval, MaxInterval).
func (e *Emitter) Interval() time.Duration {
	span := e.MaxInterval - e.MinInterval
	if span <= 0 {
		return e.MinInterval
	}
	return e.MinInterval + time.Duration(e.Rand.Int64N(int64(span)))
}

// Run emits events until ctx is done.
func (e *Emitter) Run(ctx context.Context) {
	l := logging.FromContext(ctx)
	timer := time.NewTimer(e.FirstDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		msg := e.Next()
		if err := e.Sink(ctx, msg); err != nil {
			l.Warn("emit_error", "type", msg.MessageType(), "error", err)
		} else {
			l.Debug("emit_success", "type", msg.MessageType())
		}
		timer.Reset(e.Interval())
	}
}
