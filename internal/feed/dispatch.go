package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func (f *Feed) handleMessage(ctx context.Context, data []byte) {
	log := logging.FromContext(ctx).With("component", "feed")

	msg, err := decode(data)
	if err != nil {
		log.Warn("feed_message_parse_error", "error", err)
		msg = models.RawMessage{Type: models.MessageRaw, Data: string(data)}
	}
	f.record(msg)

	switch m := msg.(type) {
	case models.PriceUpdateMessage:
		f.applyPriceUpdate(ctx, m)
		if f.handlers.OnPriceUpdate != nil {
			f.handlers.OnPriceUpdate(m)
		}
	case models.NewProductMessage:
		f.AddNotification(models.Notification{
			Type:      models.MessageNewProduct,
			Message:   m.Message,
			Timestamp: m.Timestamp,
		})
		if f.handlers.OnProductUpdate != nil {
			f.handlers.OnProductUpdate(m)
		}
	case models.NotificationMessage:
		f.AddNotification(models.Notification{
			Type:      models.MessageNotification,
			Title:     m.Title,
			Message:   m.Message,
			Timestamp: m.Timestamp,
		})
		if f.handlers.OnNotification != nil {
			f.handlers.OnNotification(m)
		}
	default:
		log.Debug("feed_message_unhandled", "type", msg.MessageType())
		if f.handlers.OnCustom != nil {
			f.handlers.OnCustom(msg)
		}
	}
}

func decode(data []byte) (models.Message, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	var (
		msg models.Message
		err error
	)
	switch envelope.Type {
	case models.MessagePriceUpdate:
		var m models.PriceUpdateMessage
		err = json.Unmarshal(data, &m)
		msg = m
	case models.MessageNewProduct:
		var m models.NewProductMessage
		err = json.Unmarshal(data, &m)
		msg = m
	case models.MessageNotification:
		var m models.NotificationMessage
		err = json.Unmarshal(data, &m)
		msg = m
	default:
		msg = models.RawMessage{Type: envelope.Type, Data: string(data)}
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *Feed) applyPriceUpdate(ctx context.Context, m models.PriceUpdateMessage) {
	if f.prices == nil {
		return
	}
	product, oldPrice, ok := f.prices.UpdateProductPrice(m.ProductID, m.NewPrice)
	if !ok {
		logging.FromContext(ctx).Debug("feed_price_update_dropped", "product_id", m.ProductID, "reason", "unknown product")
		return
	}
	id := product.ID
	f.AddNotification(models.Notification{
		Type:      models.MessagePriceUpdate,
		Message:   PriceChangeMessage(product.Title, oldPrice, m.NewPrice),
		ProductID: &id,
		Timestamp: f.now().UTC().Format(timestampLayout),
	})
}

// PriceChangeMessage renders the notification text for a price transition.
func PriceChangeMessage(title string, oldPrice, newPrice float64) string {
	return fmt.Sprintf("Price of \"%s\" changed: $%s → $%s", title, formatPrice(oldPrice), formatPrice(newPrice))
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func (f *Feed) record(msg models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	if f.historyLimit > 0 && len(f.messages) > f.historyLimit {
		f.messages = append([]models.Message(nil), f.messages[len(f.messages)-f.historyLimit:]...)
	}
}

// Messages returns every received message still in history, oldest first.
func (f *Feed) Messages() []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Message, len(f.messages))
	copy(out, f.messages)
	return out
}

func (f *Feed) LastMessage() (models.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return nil, false
	}
	return f.messages[len(f.messages)-1], true
}
