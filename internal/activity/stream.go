package activity

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"coffeeshop/pkg/logger"
)

// MessageIterator defines the contract for consuming messages from a Kafka topic.
//
// Implementations are responsible for the lifecycle of the consumer connection.
type MessageIterator interface {
	// Messages returns a receive-only channel of Kafka messages. The channel
	// is closed by the implementation when the consumer is stopped or the
	// underlying source is exhausted.
	Messages() <-chan kafka.Message

	// CommitOffset acknowledges that a message has been successfully processed.
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// Stream decodes activity events from a MessageIterator.
//
// The Stream does not manage the lifecycle of the underlying message source;
// callers start and stop their consumer outside.
type Stream struct {
	msgIterator MessageIterator
	logger      *zap.Logger
}

func NewStream(iterator MessageIterator, log *zap.Logger) *Stream {
	log = logger.OrNop(log)
	return &Stream{msgIterator: iterator, logger: log}
}

// Events starts a goroutine that:
//  1. Receives messages from the underlying MessageIterator
//  2. Decodes each message as an Event
//  3. Emits the Event on the returned channel
//  4. Commits the message offset once the event was handed over
//
// Messages that fail to decode are logged, committed and skipped. The output
// channel is closed when the underlying Messages() channel is closed or ctx
// is done.
func (s *Stream) Events(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)

		for msg := range s.msgIterator.Messages() {
			var e Event
			if err := json.Unmarshal(msg.Value, &e); err != nil {
				s.logger.Warn("skipping undecodable activity message", zap.Int64("offset", msg.Offset), zap.Error(err))
				s.commit(ctx, msg)
				continue
			}

			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
			s.commit(ctx, msg)
		}
	}()
	return out
}

func (s *Stream) commit(ctx context.Context, msg kafka.Message) {
	if err := s.msgIterator.CommitOffset(ctx, msg); err != nil {
		s.logger.Warn("failed to commit offset", zap.Int64("offset", msg.Offset), zap.Error(err))
	}
}
