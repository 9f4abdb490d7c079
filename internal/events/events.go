package events

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Type names a domain event
type Type string

const (
	OrderCreated        Type = "order_created"
	OrderFinished       Type = "order_finished"
	ReviewSubmitted     Type = "review_submitted"
	DishReviewSubmitted Type = "dish_review_submitted"
)

// Event is published after a write has been committed
type Event struct {
	Type       Type      `json:"type"`
	OrderID    uint      `json:"order_id,omitempty"`
	UserID     uint      `json:"user_id,omitempty"`
	DishIDs    []uint    `json:"dish_ids,omitempty"`
	Rating     *int      `json:"rating,omitempty"`
	TotalPrice string    `json:"total_price,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events to a broker
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Config selects and configures the broker
type Config struct {
	Driver       string
	KafkaBrokers []string
	KafkaTopic   string
	AMQPURL      string
	AMQPExchange string
}

// NewPublisher builds the publisher named by cfg.Driver
func NewPublisher(cfg Config) (Publisher, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "none":
		return Nop{}, nil
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka events driver requires at least one broker")
		}
		return NewKafkaPublisher(NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)), nil
	case "amqp", "rabbitmq":
		return DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
	default:
		return nil, fmt.Errorf("unsupported events driver: %s (supported: none, kafka, amqp)", cfg.Driver)
	}
}
