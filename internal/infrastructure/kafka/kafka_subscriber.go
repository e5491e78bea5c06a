package kafka

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type DefaultKafkaSubscriber struct {
	brokers   []string
	logger    *zap.Logger
	newReader func(topic, groupID string) messageReader
}

func NewDefaultKafkaSubscriber(brokers []string, logger *zap.Logger) *DefaultKafkaSubscriber {
	s := &DefaultKafkaSubscriber{brokers: brokers, logger: logger}
	s.newReader = func(topic, groupID string) messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers: s.brokers,
			Topic:   topic,
			GroupID: groupID,
		})
	}
	return s
}

// Subscribe streams messages of topic until ctx is cancelled or the reader fails,
// then closes the channel. Offsets are committed only through Message.Ack.
func (k *DefaultKafkaSubscriber) Subscribe(ctx context.Context, topic, groupID string) (<-chan domain.Message, error) {
	reader := k.newReader(topic, groupID)
	out := make(chan domain.Message)
	go k.stream(ctx, reader, topic, out)
	return out, nil
}

func (k *DefaultKafkaSubscriber) stream(ctx context.Context, reader messageReader, topic string, out chan<- domain.Message) {
	defer close(out)
	defer reader.Close()
	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				k.logger.Error("kafka reader stopped", zap.String("topic", topic), zap.Error(err))
			}
			return
		}
		msg := domain.Message{
			Topic: m.Topic,
			Key:   m.Key,
			Value: m.Value,
			Commit: func(ctx context.Context) error {
				return reader.CommitMessages(ctx, m)
			},
		}
		select {
		case out <- msg:
		case <-ctx.Done():
			return
		}
	}
}
