package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// MessageHandlerFunc adapts a function to MessageHandler.
type MessageHandlerFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

func (f MessageHandlerFunc) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return f(ctx, msg)
}

// PayloadHandler hands only the message value to fn.
func PayloadHandler(fn func(ctx context.Context, payload []byte) error) MessageHandler {
	return MessageHandlerFunc(func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		return fn(ctx, msg.Value)
	})
}

type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	backoff []time.Duration
	logger  *slog.Logger
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler, backoff []time.Duration, logger *slog.Logger) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{group: g, handler: handler, backoff: backoff, logger: logger}, nil
}

func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		if err := c.group.Consume(ctx, topics, consumerGroupHandler{c: c}); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

// handleWithRetry walks the backoff schedule. The message is committed after
// the last attempt either way so one bad event cannot stall the partition.
func (c *Consumer) handleWithRetry(ctx context.Context, msg *sarama.ConsumerMessage) {
	for attempt := 0; ; attempt++ {
		err := c.handler.Handle(ctx, msg)
		if err == nil {
			return
		}
		if attempt >= len(c.backoff) {
			c.logger.Error("giving up on message",
				"topic", msg.Topic,
				"offset", msg.Offset,
				"attempts", attempt+1,
				"error", err,
			)
			return
		}
		c.logger.Warn("message handling failed, retrying", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.backoff[attempt]):
		}
	}
}

type consumerGroupHandler struct {
	c *Consumer
}

func (h consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		h.c.handleWithRetry(sess.Context(), message)
		if sess.Context().Err() != nil {
			return nil
		}
		sess.MarkMessage(message, "")
	}
	return nil
}
