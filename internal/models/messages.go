package models

const (
	MessagePriceUpdate  = "price_update"
	MessageNewProduct   = "new_product"
	MessageNotification = "notification"
	MessageRaw          = "raw"
)

// Message is anything delivered over the push channel.
type Message interface {
	MessageType() string
}

type PriceUpdateMessage struct {
	Type      string  `json:"type"`
	ProductID int     `json:"productId"`
	NewPrice  float64 `json:"newPrice"`
	Timestamp string  `json:"timestamp"`
}

func (m PriceUpdateMessage) MessageType() string { return MessagePriceUpdate }

type NewProductMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (m NewProductMessage) MessageType() string { return MessageNewProduct }

type NotificationMessage struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (m NotificationMessage) MessageType() string { return MessageNotification }

// RawMessage carries payloads of unknown type, or ones that failed to parse.
type RawMessage struct {
	Type string `json:"type,omitempty"`
	Data string `json:"data"`
}

func (m RawMessage) MessageType() string { return m.Type }
