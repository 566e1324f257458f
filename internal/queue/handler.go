// Package queue feeds customer messages from Kafka through the order pipeline
// and publishes the results.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"orderintake/internal/models"
	"orderintake/internal/pipeline"

	"github.com/Shopify/sarama"
	"go.uber.org/zap"
)

// OrderProcessor runs one customer message through the pipeline
type OrderProcessor interface {
	Process(ctx context.Context, req pipeline.Request) *models.Order
}

// event accepts both {"detail": {...}} envelopes and bare requests.
type event struct {
	Detail *pipeline.Request `json:"detail"`
	pipeline.Request
}

// OrderHandler processes queued customer messages and publishes the order
// response to the result topic, keyed by order id.
type OrderHandler struct {
	processor   OrderProcessor
	publisher   Publisher
	resultTopic string
	logger      *zap.Logger
}

// NewOrderHandler creates the handler for the customer message topic
func NewOrderHandler(processor OrderProcessor, publisher Publisher, resultTopic string, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		processor:   processor,
		publisher:   publisher,
		resultTopic: resultTopic,
		logger:      logger,
	}
}

// HandleMessage implements MessageHandler
func (h *OrderHandler) HandleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	req, err := decodeRequest(msg.Value)
	if err != nil {
		h.logger.Warn("dropping undecodable message", zap.Error(err), zap.Int64("offset", msg.Offset))
		return h.publish(ctx, string(msg.Key), map[string]string{"error": err.Error()})
	}

	body, key := h.process(ctx, req)
	return h.publish(ctx, key, body)
}

// process runs the pipeline, turning a panic into the generic error body
func (h *OrderHandler) process(ctx context.Context, req pipeline.Request) (body interface{}, key string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("order processing panicked", zap.Any("panic", r))
			body = map[string]string{
				"error":   "Internal server error",
				"message": fmt.Sprint(r),
			}
			key = ""
		}
	}()

	order := h.processor.Process(ctx, req)
	return pipeline.NewResponse(order), order.ID
}

func (h *OrderHandler) publish(ctx context.Context, key string, body interface{}) error {
	if h.publisher == nil || h.resultTopic == "" {
		return nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return h.publisher.Publish(ctx, h.resultTopic, key, data)
}

func decodeRequest(value []byte) (pipeline.Request, error) {
	text := strings.TrimSpace(string(value))
	if text == "" {
		return pipeline.Request{}, fmt.Errorf("empty message")
	}
	if !strings.HasPrefix(text, "{") {
		return pipeline.Request{Message: text}, nil
	}

	var ev event
	if err := json.Unmarshal(value, &ev); err != nil {
		return pipeline.Request{}, fmt.Errorf("invalid message: %w", err)
	}
	req := ev.Request
	if ev.Detail != nil {
		req = *ev.Detail
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return pipeline.Request{}, fmt.Errorf("message is required")
	}
	return req, nil
}
