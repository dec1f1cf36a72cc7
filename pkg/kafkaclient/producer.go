package kafkaclient

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"coffeeshop/pkg/logger"
)

// KafkaWriter is the subset of kafka.Writer used by KafkaProducer.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes keyed messages to a single topic.
type KafkaProducer struct {
	writer KafkaWriter
	logger *zap.Logger
}

// NewKafkaProducer creates an asynchronous producer for topic. Delivery
// failures are reported through the logger.
func NewKafkaProducer(topic, broker string, log *zap.Logger) *KafkaProducer {
	log = logger.OrNop(log)
	w := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Warn("failed to deliver messages", zap.Int("count", len(msgs)), zap.Error(err))
			}
		},
	}
	return NewProducer(w, log)
}

// NewProducer wraps an existing writer.
func NewProducer(w KafkaWriter, log *zap.Logger) *KafkaProducer {
	log = logger.OrNop(log)
	return &KafkaProducer{writer: w, logger: log}
}

func (p *KafkaProducer) Publish(ctx context.Context, key string, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value})
}

// Close flushes pending messages and closes the writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
