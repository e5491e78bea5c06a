package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishEvent_EncodesJSON(t *testing.T) {
	w := &recordingWriter{}
	p := &DefaultKafkaPublisher{writer: w, timeout: time.Second}

	event := domain.ReferralCompletedEvent{EventID: "ev-1", ReferralID: "r1", ReferrerID: "alice", ReferredID: "bob"}
	require.NoError(t, p.PublishEvent(context.Background(), domain.TopicReferralCompleted, "r1", event))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, domain.TopicReferralCompleted, w.msgs[0].Topic)
	assert.Equal(t, []byte("r1"), w.msgs[0].Key)

	var decoded domain.ReferralCompletedEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, event.ReferrerID, decoded.ReferrerID)
}

func TestPublish_WrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := &DefaultKafkaPublisher{writer: &recordingWriter{err: boom}, timeout: time.Second}

	err := p.Publish(context.Background(), "t", domain.Message{Value: []byte("x")})
	assert.ErrorIs(t, err, boom)
}

func TestPublish_NoMessages(t *testing.T) {
	w := &recordingWriter{}
	p := &DefaultKafkaPublisher{writer: w, timeout: time.Second}

	require.NoError(t, p.Publish(context.Background(), "t"))
	assert.Empty(t, w.msgs)
}
