package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	retryInitialBackoff = time.Second
	retryMaxBackoff     = 30 * time.Second
)

type Consumer struct {
	reader  messageReader
	logger  *zap.Logger
	backoff time.Duration
}

func NewConsumer(brokers []string, groupID string, topics []string, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			GroupTopics:       topics,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		logger:  logger,
		backoff: retryInitialBackoff,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume decodes each message into an Event and passes it to handler. The
// offset is committed only once the handler succeeds; a failing message is
// retried with backoff until it succeeds or ctx ends. Undecodable messages
// are logged and committed.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, Event) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		if event, ok := DecodeEvent(msg.Value); ok {
			if err := c.handleWithRetry(ctx, msg, event, handler); err != nil {
				return err
			}
		} else {
			c.logger.Warn("skipping undecodable event",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d on %s: %w", msg.Offset, msg.Topic, err)
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, msg kafka.Message, event Event, handler func(context.Context, Event) error) error {
	wait := c.backoff
	if wait <= 0 {
		wait = retryInitialBackoff
	}
	for {
		err := handler(ctx, event)
		if err == nil {
			return nil
		}
		c.logger.Error("handle event failed, retrying",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
		if wait > retryMaxBackoff {
			wait = retryMaxBackoff
		}
	}
}

func DecodeEvent(data []byte) (Event, bool) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil || event.Type == "" {
		return Event{}, false
	}
	return event, true
}
