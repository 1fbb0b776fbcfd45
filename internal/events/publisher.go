package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/orderdesk/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	TopicOrderSubmitted     = "order-submitted"
	EventTypeOrderSubmitted = "order.submitted"
)

// OrderSubmitted tells warehouse picking about an accepted order, with units and whole cases per line.
type OrderSubmitted struct {
	OrderNumber string                  `json:"order_number"`
	Status      string                  `json:"status"`
	ActorID     string                  `json:"actor_id"`
	CustomerID  string                  `json:"customer_id"`
	Channel     domain.ChannelType      `json:"channel_type"`
	Lines       []domain.SubmissionLine `json:"lines"`
	TotalAmount decimal.Decimal         `json:"total_amount"`
	SubmittedAt time.Time               `json:"submitted_at"`
}

type Publisher interface {
	PublishOrderSubmitted(ctx context.Context, event OrderSubmitted) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicOrderSubmitted,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderSubmitted(ctx context.Context, event OrderSubmitted) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order submitted event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderNumber), // keeps events of one order on one partition
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderSubmitted)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %s: %w", event.OrderNumber, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderSubmitted(context.Context, OrderSubmitted) error { return nil }

func (NopPublisher) Close() error { return nil }
