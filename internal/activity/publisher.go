package activity

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"coffeeshop/pkg/logger"
)

// Producer publishes a keyed payload, e.g. *kafkaclient.KafkaProducer.
type Producer interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Publisher is a Sink that encodes events as JSON and hands them to a
// Producer. Publishing errors are logged and otherwise ignored.
type Publisher struct {
	producer Producer
	logger   *zap.Logger
}

func NewPublisher(p Producer, log *zap.Logger) *Publisher {
	log = logger.OrNop(log)
	return &Publisher{producer: p, logger: log}
}

func (p *Publisher) Record(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		p.logger.Error("failed to encode activity event", zap.String("type", string(e.Type)), zap.Error(err))
		return
	}
	if err := p.producer.Publish(ctx, e.Key(), payload); err != nil {
		p.logger.Warn("failed to publish activity event",
			zap.String("type", string(e.Type)), zap.String("event_id", e.ID), zap.Error(err))
	}
}
