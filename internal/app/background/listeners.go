package background

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
	"go.uber.org/zap"
)

const rewardsScope = "rewards"

type handlerFunc func(ctx context.Context, msg domain.Message) error

type backoff struct {
	initial time.Duration
	max     time.Duration
}

var defaultBackoff = backoff{initial: 500 * time.Millisecond, max: 30 * time.Second}

// consume drains topic until the subscription channel closes.
func consume(ctx context.Context, sub domain.SubscriberPort, topic, groupID string, handle handlerFunc, retry backoff, log *zap.Logger) error {
	ch, err := sub.Subscribe(ctx, topic, groupID)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	go func() {
		for msg := range ch {
			deliver(ctx, msg, handle, retry, log)
		}
		log.Info("subscription closed", zap.String("topic", topic))
	}()
	return nil
}

// deliver retries handle until it succeeds and only then acknowledges msg.
// Malformed payloads are acknowledged and dropped. When ctx ends first the
// message stays unacknowledged and is redelivered to the next consumer.
func deliver(ctx context.Context, msg domain.Message, handle handlerFunc, retry backoff, log *zap.Logger) {
	delay := retry.initial
	for attempt := 1; ; attempt++ {
		err := handle(ctx, msg)
		if err == nil || errors.Is(err, domain.ErrMalformedEvent) {
			if err != nil {
				log.Error("dropping malformed event", zap.String("topic", msg.Topic), zap.Error(err))
			}
			if err := msg.Ack(ctx); err != nil {
				log.Error("failed to commit event", zap.String("topic", msg.Topic), zap.Error(err))
			}
			return
		}

		log.Warn("event handling failed, retrying",
			zap.String("topic", msg.Topic),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, retry.max)
	}
}

// RewardEventListener issues and reverses rewards from ledger and fraud
// review events. Delivery is at least once: a message is committed only after
// Handle succeeds. Processed ids are remembered in the deduplicator and
// forgotten again when handling fails so the retry is not dropped.
type RewardEventListener struct {
	subscriber domain.SubscriberPort
	rewards    usecase.RewardUsecase
	dedup      domain.EventDeduplicator
	groupID    string
	retry      backoff
	metrics    *metrics.ReferralMetrics
	logger     *zap.Logger
}

func NewRewardEventListener(
	subscriber domain.SubscriberPort,
	rewards usecase.RewardUsecase,
	dedup domain.EventDeduplicator,
	groupID string,
	metrics *metrics.ReferralMetrics,
	logger *zap.Logger,
) *RewardEventListener {
	return &RewardEventListener{
		subscriber: subscriber,
		rewards:    rewards,
		dedup:      dedup,
		groupID:    groupID + "-rewards",
		retry:      defaultBackoff,
		metrics:    metrics,
		logger:     logger.Named("reward_listener"),
	}
}

func (l *RewardEventListener) Start(ctx context.Context) error {
	for _, topic := range []string{domain.TopicReferralCompleted, domain.TopicFraudSuspectReviewed} {
		if err := consume(ctx, l.subscriber, topic, l.groupID, l.Handle, l.retry, l.logger); err != nil {
			return err
		}
	}
	return nil
}

func (l *RewardEventListener) Handle(ctx context.Context, msg domain.Message) error {
	var (
		eventID string
		apply   func(ctx context.Context) error
	)

	switch msg.Topic {
	case domain.TopicReferralCompleted:
		var event domain.ReferralCompletedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			l.metrics.RecordEvent(msg.Topic, "malformed")
			return fmt.Errorf("%w: %s: %v", domain.ErrMalformedEvent, msg.Topic, err)
		}
		eventID = event.EventID
		apply = func(ctx context.Context) error { return l.rewards.HandleReferralCompleted(ctx, &event) }
	case domain.TopicFraudSuspectReviewed:
		var event domain.FraudSuspectEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			l.metrics.RecordEvent(msg.Topic, "malformed")
			return fmt.Errorf("%w: %s: %v", domain.ErrMalformedEvent, msg.Topic, err)
		}
		eventID = event.EventID
		apply = func(ctx context.Context) error { return l.rewards.HandleSuspectReviewed(ctx, &event) }
	default:
		l.metrics.RecordEvent(msg.Topic, "ignored")
		return nil
	}

	if eventID == "" {
		eventID = msg.Topic + ":" + string(msg.Key)
	}

	if l.dedup != nil {
		first, err := l.dedup.MarkProcessed(ctx, rewardsScope, eventID)
		if err != nil {
			// handlers are idempotent on their own, so carry on
			l.logger.Warn("deduplicator unavailable", zap.String("event_id", eventID), zap.Error(err))
		} else if !first {
			l.metrics.RecordEvent(msg.Topic, "duplicate")
			return nil
		}
	}

	if err := apply(ctx); err != nil {
		l.metrics.RecordEvent(msg.Topic, "error")
		if l.dedup != nil {
			if ferr := l.dedup.Forget(ctx, rewardsScope, eventID); ferr != nil {
				l.logger.Error("failed to release event id", zap.String("event_id", eventID), zap.Error(ferr))
			}
		}
		return err
	}

	l.metrics.RecordEvent(msg.Topic, "processed")
	return nil
}

// FraudEventListener logs advisory fraud events.
type FraudEventListener struct {
	subscriber  domain.SubscriberPort
	eventLogger logger.FraudEventLogger
	groupID     string
	retry       backoff
	metrics     *metrics.ReferralMetrics
	logger      *zap.Logger
}

func NewFraudEventListener(
	subscriber domain.SubscriberPort,
	eventLogger logger.FraudEventLogger,
	groupID string,
	metrics *metrics.ReferralMetrics,
	log *zap.Logger,
) *FraudEventListener {
	return &FraudEventListener{
		subscriber:  subscriber,
		eventLogger: eventLogger,
		groupID:     groupID + "-fraud-log",
		retry:       defaultBackoff,
		metrics:     metrics,
		logger:      log.Named("fraud_listener"),
	}
}

func (l *FraudEventListener) Start(ctx context.Context) error {
	for _, topic := range []string{domain.TopicFraudSuspectDetected, domain.TopicFraudActivityDetected} {
		if err := consume(ctx, l.subscriber, topic, l.groupID, l.Handle, l.retry, l.logger); err != nil {
			return err
		}
	}
	return nil
}

func (l *FraudEventListener) Handle(_ context.Context, msg domain.Message) error {
	switch msg.Topic {
	case domain.TopicFraudSuspectDetected:
		var event domain.FraudSuspectEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			l.metrics.RecordEvent(msg.Topic, "malformed")
			return fmt.Errorf("%w: %s: %v", domain.ErrMalformedEvent, msg.Topic, err)
		}
		l.eventLogger.LogSuspectDetected(&event)
	case domain.TopicFraudActivityDetected:
		var event domain.FraudActivityEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			l.metrics.RecordEvent(msg.Topic, "malformed")
			return fmt.Errorf("%w: %s: %v", domain.ErrMalformedEvent, msg.Topic, err)
		}
		l.eventLogger.LogActivityDetected(&event)
	default:
		l.metrics.RecordEvent(msg.Topic, "ignored")
		return nil
	}
	l.metrics.RecordEvent(msg.Topic, "processed")
	return nil
}
