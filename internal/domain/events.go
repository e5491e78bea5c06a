package domain

import (
	"context"
	"time"
)

const (
	TopicReferralCompleted     = "referral.completed"
	TopicFraudSuspectDetected  = "fraud.suspect.detected"
	TopicFraudActivityDetected = "fraud.activity.detected"
	TopicFraudSuspectReviewed  = "fraud.suspect.reviewed"
)

type ReferralCompletedEvent struct {
	EventID     string         `json:"event_id"`
	ReferralID  string         `json:"referral_id"`
	ReferrerID  string         `json:"referrer_id"`
	ReferredID  string         `json:"referred_id"`
	Code        string         `json:"code"`
	Tier        int            `json:"tier"`
	Status      ReferralStatus `json:"status"`
	CompletedAt time.Time      `json:"completed_at"`
}

type FraudSuspectEvent struct {
	EventID   string        `json:"event_id"`
	SuspectID string        `json:"suspect_id"`
	UserID    string        `json:"user_id"`
	RiskScore int           `json:"risk_score"`
	Status    SuspectStatus `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	At        time.Time     `json:"at"`
}

type FraudActivityEvent struct {
	EventID    string    `json:"event_id"`
	ActivityID string    `json:"activity_id"`
	SuspectID  string    `json:"suspect_id"`
	UserID     string    `json:"user_id"`
	Type       string    `json:"type"`
	Severity   int       `json:"severity"`
	At         time.Time `json:"at"`
}

// EventPublisher publishes JSON-encoded domain events keyed by key.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event interface{}) error
}

// EventDeduplicator remembers processed event ids for at-least-once consumers.
type EventDeduplicator interface {
	// MarkProcessed returns false when the id was already marked.
	MarkProcessed(ctx context.Context, scope, eventID string) (bool, error)
	Forget(ctx context.Context, scope, eventID string) error
}
