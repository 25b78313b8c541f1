package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/udiptgupta/Risk-lab/pkg/models"
	"github.com/udiptgupta/Risk-lab/pkg/utils/logger"
)

// ConsumerConfig holds settings for the metrics consumer.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// MetricsHandler receives each consumed metrics record.
type MetricsHandler func(record models.MetricsRecord)

// Consumer reads computed risk metrics from the topic the batch job publishes
// to, typically to fan them out to connected dashboard clients.
type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

// NewConsumer creates a Kafka consumer for the configured topic.
func NewConsumer(cfg ConsumerConfig) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})

	return &Consumer{
		reader: reader,
		log:    logger.GetLogger("kafka.consumer"),
	}
}

// Run consumes records until the context is canceled, passing each decoded
// record to the handler. Malformed messages are logged and skipped.
func (c *Consumer) Run(ctx context.Context, handler MetricsHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Errorf("Failed to read message: %v", err)
			continue
		}

		var record models.MetricsRecord
		if err := json.Unmarshal(msg.Value, &record); err != nil {
			c.log.Errorf("Failed to unmarshal metrics record at offset %d: %v", msg.Offset, err)
			continue
		}

		handler(record)
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
