// Package kafkafeed reads push events from a kafka topic. The channel is
// receive-only.
package kafkafeed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/storefront/internal/feed"
)

var (
	ErrSendUnsupported = errors.New("kafkafeed: send is not supported")
	ErrNoBrokers       = errors.New("kafkafeed: no brokers configured")
)

type Transport struct {
	Brokers []string
	Topic   string
	GroupID string
	MaxWait time.Duration
}

func New(brokers []string, topic, groupID string) *Transport {
	return &Transport{Brokers: brokers, Topic: topic, GroupID: groupID, MaxWait: time.Second}
}

func (t *Transport) readerConfig() (kafka.ReaderConfig, error) {
	if len(t.Brokers) == 0 {
		return kafka.ReaderConfig{}, ErrNoBrokers
	}
	if t.Topic == "" {
		return kafka.ReaderConfig{}, errors.New("kafkafeed: empty topic")
	}
	cfg := kafka.ReaderConfig{
		Brokers:     t.Brokers,
		Topic:       t.Topic,
		GroupID:     t.GroupID,
		MaxWait:     t.MaxWait,
		StartOffset: kafka.LastOffset,
	}
	if err := cfg.Validate(); err != nil {
		return kafka.ReaderConfig{}, fmt.Errorf("kafkafeed: %w", err)
	}
	return cfg, nil
}

// Dial checks that a broker is reachable and opens a reader on the topic.
func (t *Transport) Dial(ctx context.Context) (feed.Conn, error) {
	cfg, err := t.readerConfig()
	if err != nil {
		return nil, err
	}
	dialer := &kafka.Dialer{Timeout: 10 * time.Second}
	probe, err := dialer.DialContext(ctx, "tcp", t.Brokers[0])
	if err != nil {
		return nil, fmt.Errorf("kafkafeed: dial %s: %w", t.Brokers[0], err)
	}
	_ = probe.Close()

	return &Conn{reader: kafka.NewReader(cfg)}, nil
}

type Conn struct {
	reader *kafka.Reader
	once   sync.Once
	err    error
}

func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return nil, err
	}
	return msg.Value, nil
}

func (c *Conn) Send(context.Context, []byte) error {
	return ErrSendUnsupported
}

func (c *Conn) Close() error {
	c.once.Do(func() { c.err = c.reader.Close() })
	return c.err
}
