package domain

import "context"

type Message struct {
	Topic string
	Key   []byte
	Value []byte

	// Commit acknowledges the message to its source. Nil when the source does
	// not track consumer offsets.
	Commit func(ctx context.Context) error
}

// Ack commits the message if its source supports it.
func (m Message) Ack(ctx context.Context) error {
	if m.Commit == nil {
		return nil
	}
	return m.Commit(ctx)
}

type PublisherPort interface {
	Publish(ctx context.Context, topic string, msgs ...Message) error
}

// SubscriberPort streams messages of a topic. Consumers call Ack once a
// message is fully handled; unacknowledged messages are delivered again
// after a restart or rebalance.
type SubscriberPort interface {
	Subscribe(ctx context.Context, topic, groupID string) (<-chan Message, error)
}
