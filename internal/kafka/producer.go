package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/udiptgupta/Risk-lab/pkg/models"
	"github.com/udiptgupta/Risk-lab/pkg/utils/errors"
	"github.com/udiptgupta/Risk-lab/pkg/utils/logger"
)

// ProducerConfig holds settings for the metrics producer.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	MaxAttempts  int
	BatchTimeout time.Duration
}

// Producer publishes computed risk metrics to a Kafka topic, keyed by bond ID
// so records for one bond stay in order on a single partition.
type Producer struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewProducer creates a Kafka producer for the configured topic.
func NewProducer(cfg ProducerConfig) *Producer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            cfg.MaxAttempts,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		log:    logger.GetLogger("kafka.producer"),
	}
}

// PublishMetrics publishes a single metrics record as JSON.
func (p *Producer) PublishMetrics(ctx context.Context, record models.MetricsRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "failed to marshal metrics record")
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(record.BondID, 10)),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "failed to publish metrics for bond %d", record.BondID)
	}

	p.log.Debugf("Published metrics for bond %d as of %s",
		record.BondID, record.AsOf.Format("2006-01-02"))

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
