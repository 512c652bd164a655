package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventCheckoutOrderCreated = "checkout_order_created"
	EventCheckoutCaptured     = "checkout_captured"
	EventCheckoutFailed       = "checkout_failed"
	EventCheckoutAbandoned    = "checkout_abandoned"
	EventBookingSubmitted     = "booking_submitted"
)

// Event is a client-side domain event. Checkout events fill the order fields,
// booking events the booking fields.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Email      string    `json:"email"`
	IntentID   string    `json:"intent_id,omitempty"`
	PackageID  string    `json:"package_id,omitempty"`
	OrderID    string    `json:"order_id,omitempty"`
	Amount     int64     `json:"amount_minor,omitempty"`
	Currency   string    `json:"currency,omitempty"`
	BookingID  string    `json:"booking_id,omitempty"`
	Date       string    `json:"preferred_date,omitempty"`
	Time       string    `json:"preferred_time,omitempty"`
	Status     string    `json:"status,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewProducer(brokers []string, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.logger.Debug("published event", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
