// Package events publishes user and product domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/storefront/internal/logging"
)

const (
	TopicUsers    = "user_events"
	TopicProducts = "product_events"

	UserSignedUp   = "user_signed_up"
	UserLoggedIn   = "user_logged_in"
	UserDeleted    = "user_deleted"
	ProductCreated = "product_created"
	ProductUpdated = "product_updated"
	ProductDeleted = "product_deleted"

	publishTimeout = 5 * time.Second
)

type Event struct {
	Type       string    `json:"type"`
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

func NewEvent(typ, entityID string, payload any) Event {
	return Event{Type: typ, EntityID: entityID, OccurredAt: time.Now().UTC(), Payload: payload}
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
	Close() error
}

// New returns a Kafka producer, or a no-op publisher when brokers is empty.
func New(brokers []string) Publisher {
	if len(brokers) == 0 {
		return Noop{}
	}
	return NewProducer(brokers)
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            3,
	}}
}

func (p *Producer) PublishEvent(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := kafka.Message{Topic: topic, Key: []byte(key), Value: data}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write to %s failed: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

type Noop struct{}

func (Noop) PublishEvent(context.Context, string, string, any) error { return nil }
func (Noop) Close() error { return nil }

// Emit publishes e keyed by its entity id. Failures are logged and swallowed:
// the write that produced the event has already happened.
func Emit(ctx context.Context, p Publisher, topic string, e Event) {
	if err := p.PublishEvent(ctx, topic, e.EntityID, e); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed",
			"topic", topic, "type", e.Type, "entity_id", e.EntityID, "error", err)
	}
}
