package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var ErrValidation = errors.New("validation error")

type Broadcaster interface {
	Broadcast(payload []byte) int
}

// EventProducer mirrors events to a broker. Optional.
type EventProducer interface {
	PublishEvent(ctx context.Context, key string, event any) error
}

type PushService struct {
	Hub      Broadcaster
	Producer EventProducer
}

type envelope struct {
	Type      string `json:"type"`
	ProductID *int   `json:"productId,omitempty"`
}

// PublishRaw fans a JSON message out as-is. It must carry a non-empty type.
func (s *PushService) PublishRaw(ctx context.Context, payload []byte) (int, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return 0, fmt.Errorf("%w: body is not a json object", ErrValidation)
	}
	if env.Type == "" {
		return 0, fmt.Errorf("%w: type is required", ErrValidation)
	}
	return s.fanOut(ctx, env, payload), nil
}

func (s *PushService) Publish(ctx context.Context, msg models.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.MessageType(), err)
	}
	env := envelope{Type: msg.MessageType()}
	if pu, ok := msg.(models.PriceUpdateMessage); ok {
		env.ProductID = &pu.ProductID
	}
	s.fanOut(ctx, env, payload)
	return nil
}

func (s *PushService) fanOut(ctx context.Context, env envelope, payload []byte) int {
	l := logging.FromContext(ctx).With("svc", "push.publish", "type", env.Type)

	n := s.Hub.Broadcast(payload)
	l.Debug("push_broadcast", "clients", n)

	if s.Producer != nil {
		key := env.Type
		if env.ProductID != nil {
			key = strconv.Itoa(*env.ProductID)
		}
		if err := s.Producer.PublishEvent(ctx, key, json.RawMessage(payload)); err != nil {
			l.Error("push_kafka_error", "error", err)
		}
	}
	return n
}
