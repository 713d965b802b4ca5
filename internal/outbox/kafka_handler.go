package outbox

import (
	"context"
	"fmt"

	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/pkg/kafka"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
	"github.com/kudzaim/kiosk-commerce/pkg/retry"
)

// KafkaHandler publishes outbox messages to the orders topic
type KafkaHandler struct {
	producer *kafka.Producer
	topic    string
	logger   logger.Logger
	retryCfg *retry.Config
}

// NewKafkaHandler creates a new KafkaHandler
func NewKafkaHandler(producer *kafka.Producer, topic string, logger logger.Logger) *KafkaHandler {
	return &KafkaHandler{
		producer: producer,
		topic:    topic,
		logger:   logger,
		retryCfg: &retry.Config{
			MaxAttempts:     3,
			BackoffStrategy: retry.NewDefaultExponentialBackoff(),
			Logger:          logger,
		},
	}
}

var _ MessageHandler = (*KafkaHandler)(nil)

// HandleMessage publishes the message payload to Kafka, keyed by the order
// reference so one order's events stay on one partition.
func (h *KafkaHandler) HandleMessage(ctx context.Context, message *models.OutboxMessage) error {
	err := retry.Do(ctx, func() error {
		return h.producer.SendMessage(ctx, h.topic, message.AggregateID, message.Payload)
	}, h.retryCfg)

	if err != nil {
		return fmt.Errorf("failed to publish message to Kafka: %w", err)
	}

	h.logger.Debug("Published order event",
		"topic", h.topic,
		"messageID", message.ID,
		"aggregateID", message.AggregateID,
		"eventType", message.EventType)

	return nil
}
