// Package events publishes user lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "user_events"

const (
	UserCreated         = "user_created"
	UserUpdated         = "user_updated"
	UserDeleted         = "user_deleted"
	UserLoggedIn        = "user_logged_in"
	UserPasswordChanged = "user_password_changed"
)

type Event struct {
	Type     string    `json:"type"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username,omitempty"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// New returns a Kafka publisher, or a no-op one when no brokers are set.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return Nop{}
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return NewKafka(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	})
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Kafka struct {
	w   messageWriter
	now func() time.Time
}

func NewKafka(w messageWriter) *Kafka {
	return &Kafka{w: w, now: time.Now}
}

// Publish keys messages by user id so events of one user stay ordered.
func (k *Kafka) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = k.now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.UserID.String()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write %s failed: %w", ev.Type, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.w.Close()
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }
