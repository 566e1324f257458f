package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/Shopify/sarama"
	"go.uber.org/zap"
)

// MessageHandler is the interface for handling messages from Kafka
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// ConsumerConfig is the configuration for the Kafka consumer
type ConsumerConfig struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
}

// Consumer is a wrapper around sarama.ConsumerGroup that feeds every message
// of one topic to a handler, one message at a time.
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	topic         string
	handler       MessageHandler
	logger        *zap.Logger
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(cfg ConsumerConfig, handler MessageHandler, logger *zap.Logger) (*Consumer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Return.Errors = true
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return newConsumer(consumerGroup, cfg.Topic, handler, logger), nil
}

func newConsumer(group sarama.ConsumerGroup, topic string, handler MessageHandler, logger *zap.Logger) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		consumerGroup: group,
		topic:         topic,
		handler:       handler,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start joins the consumer group in the background
func (c *Consumer) Start() error {
	if c.topic == "" {
		return fmt.Errorf("no topic to consume")
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		// Consume returns on every rebalance and must be called again
		for {
			if err := c.consumerGroup.Consume(c.ctx, []string{c.topic}, c); err != nil {
				c.logger.Error("Kafka consumer error", zap.Error(err))
			}
			if c.ctx.Err() != nil {
				return
			}
		}
	}()

	c.logger.Info("Kafka consumer started", zap.String("topic", c.topic))
	return nil
}

// Stop stops the Kafka consumer
func (c *Consumer) Stop() error {
	c.cancel()
	c.wg.Wait()
	return c.consumerGroup.Close()
}

// Setup is run when the consumer group is first created, (required by ConsumerGroupHandler interface)
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run when the consumer group is closed, (required by ConsumerGroupHandler interface)
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim handles each message once. Messages are marked even when the
// handler fails; a failed order is not redelivered.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			if err := c.handler.HandleMessage(session.Context(), msg); err != nil {
				c.logger.Error("Error handling message",
					zap.Error(err),
					zap.String("topic", msg.Topic),
					zap.Int32("partition", msg.Partition),
					zap.Int64("offset", msg.Offset))
			}
			session.MarkMessage(msg, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
