package logger

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"go.uber.org/zap"
)

// FraudEventLogger records advisory fraud events. They carry no side effects
// beyond the log line.
type FraudEventLogger interface {
	LogSuspectDetected(event *domain.FraudSuspectEvent)
	LogActivityDetected(event *domain.FraudActivityEvent)
}

type ZapFraudEventLogger struct {
	logger *zap.Logger
}

func NewZapFraudEventLogger(logger *zap.Logger) *ZapFraudEventLogger {
	return &ZapFraudEventLogger{logger: logger.Named("fraud_events")}
}

func (l *ZapFraudEventLogger) LogSuspectDetected(event *domain.FraudSuspectEvent) {
	l.logger.Warn("fraud suspect detected",
		zap.String("event_id", event.EventID),
		zap.String("suspect_id", event.SuspectID),
		zap.String("user_id", event.UserID),
		zap.Int("risk_score", event.RiskScore),
		zap.String("reason", event.Reason),
		zap.Time("at", event.At),
	)
}

func (l *ZapFraudEventLogger) LogActivityDetected(event *domain.FraudActivityEvent) {
	l.logger.Info("fraud activity recorded",
		zap.String("event_id", event.EventID),
		zap.String("activity_id", event.ActivityID),
		zap.String("suspect_id", event.SuspectID),
		zap.String("user_id", event.UserID),
		zap.String("type", event.Type),
		zap.Int("severity", event.Severity),
		zap.Time("at", event.At),
	)
}
