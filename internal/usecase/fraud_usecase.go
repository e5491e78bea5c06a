package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/antifraud"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/antifraud/strategies"
	frauddto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/fraud"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultStatsWindowDays = 30
	maxRiskScore           = 100
)

type FraudUsecase interface {
	// CheckForFraud returns true when the signup was flagged. Any error means
	// the verdict is unknown and the guarded action must be blocked.
	CheckForFraud(ctx context.Context, input *domain.FraudCheckInput) (bool, error)
	ReviewSuspect(ctx context.Context, input *frauddto.ReviewSuspectInput) (*domain.FraudSuspect, error)
	GetActivityStats(ctx context.Context, windowDays int) (map[string]int64, error)
	ListSuspects(ctx context.Context, status *domain.SuspectStatus) ([]*domain.FraudSuspect, error)
	IsUnderReview(ctx context.Context, userID string) (bool, error)
}

type DefaultFraudUsecase struct {
	fraudRepo  domain.FraudRepository
	engine     *antifraud.AntiFraudEngine
	transactor domain.Transactor
	publisher  domain.EventPublisher
	metrics    *metrics.ReferralMetrics
	logger     *zap.Logger
}

func NewDefaultFraudUsecase(
	fraudRepo domain.FraudRepository,
	engine *antifraud.AntiFraudEngine,
	transactor domain.Transactor,
	publisher domain.EventPublisher,
	metrics *metrics.ReferralMetrics,
	logger *zap.Logger,
) *DefaultFraudUsecase {
	return &DefaultFraudUsecase{
		fraudRepo:  fraudRepo,
		engine:     engine,
		transactor: transactor,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
	}
}

func (uc *DefaultFraudUsecase) CheckForFraud(ctx context.Context, input *domain.FraudCheckInput) (bool, error) {
	if err := input.Validate(); err != nil {
		return false, err
	}

	start := time.Now()
	report, err := uc.engine.Evaluate(ctx, input)
	if err != nil {
		uc.metrics.RecordFraudCheck("error", time.Since(start).Seconds())
		return false, fmt.Errorf("fraud check failed: %w", err)
	}
	if report.AllPassed {
		uc.metrics.RecordFraudCheck("clean", time.Since(start).Seconds())
		return false, nil
	}

	signal := report.Signal
	var (
		suspect  *domain.FraudSuspect
		activity *domain.FraudActivity
	)
	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		suspect, err = uc.recordSuspect(ctx, input, signal)
		if err != nil {
			return err
		}

		activity = &domain.FraudActivity{
			ID:            uuid.New().String(),
			SuspectID:     suspect.ID,
			UserID:        input.UserID,
			RelatedUserID: signal.RelatedUserID,
			Type:          signal.ActivityType,
			Severity:      signal.Severity,
			Details:       signal.Details,
			CreatedAt:     time.Now(),
		}
		if err := uc.fraudRepo.CreateActivity(ctx, activity); err != nil {
			return fmt.Errorf("failed to record fraud activity: %w", err)
		}
		return nil
	})
	if err != nil {
		uc.metrics.RecordFraudCheck("error", time.Since(start).Seconds())
		return false, fmt.Errorf("fraud check failed: %w", err)
	}

	uc.metrics.RecordFraudCheck("flagged", time.Since(start).Seconds())
	uc.metrics.RecordFraudActivity(activity.Type)
	uc.logger.Warn("signup flagged",
		zap.String("user_id", input.UserID),
		zap.String("strategy", signal.Strategy),
		zap.String("suspect_id", suspect.ID),
		zap.Int("risk_score", suspect.RiskScore),
		zap.String("reason", signal.Message))

	uc.publish(ctx, domain.TopicFraudSuspectDetected, suspect.UserID, &domain.FraudSuspectEvent{
		EventID:   uuid.New().String(),
		SuspectID: suspect.ID,
		UserID:    suspect.UserID,
		RiskScore: suspect.RiskScore,
		Status:    suspect.Status,
		Reason:    suspect.Reason,
		At:        suspect.UpdatedAt,
	})
	uc.publish(ctx, domain.TopicFraudActivityDetected, activity.UserID, &domain.FraudActivityEvent{
		EventID:    uuid.New().String(),
		ActivityID: activity.ID,
		SuspectID:  activity.SuspectID,
		UserID:     activity.UserID,
		Type:       activity.Type,
		Severity:   activity.Severity,
		At:         activity.CreatedAt,
	})

	return true, nil
}

// recordSuspect seeds a suspect for the user or bumps the existing one.
// Review outcomes are left untouched on repeat detection.
func (uc *DefaultFraudUsecase) recordSuspect(ctx context.Context, input *domain.FraudCheckInput, signal *strategies.CheckResult) (*domain.FraudSuspect, error) {
	now := time.Now()

	existing, err := uc.fraudRepo.GetSuspectByUserID(ctx, input.UserID)
	switch {
	case err == nil:
		suspect, err := uc.fraudRepo.GetSuspectByIDForUpdate(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock suspect: %w", err)
		}
		suspect.RiskScore += domain.RepeatRiskIncrease
		if suspect.RiskScore > maxRiskScore {
			suspect.RiskScore = maxRiskScore
		}
		suspect.DetectionCount++
		suspect.Reason = signal.ActivityType
		if suspect.IPAddress == "" {
			suspect.IPAddress = input.IPAddress
		}
		if suspect.DeviceFingerprint == "" {
			suspect.DeviceFingerprint = input.DeviceFingerprint
		}
		suspect.UpdatedAt = now
		if err := uc.fraudRepo.UpdateSuspect(ctx, suspect); err != nil {
			return nil, fmt.Errorf("failed to update suspect: %w", err)
		}
		return suspect, nil

	case errors.Is(err, domain.ErrNotFound):
		suspect := &domain.FraudSuspect{
			ID:                uuid.New().String(),
			UserID:            input.UserID,
			IPAddress:         input.IPAddress,
			DeviceFingerprint: input.DeviceFingerprint,
			RiskScore:         domain.InitialRiskScore,
			DetectionCount:    1,
			Reason:            signal.ActivityType,
			Status:            domain.SuspectPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := uc.fraudRepo.CreateSuspect(ctx, suspect); err != nil {
			return nil, fmt.Errorf("failed to create suspect: %w", err)
		}
		return suspect, nil

	default:
		return nil, fmt.Errorf("failed to load suspect: %w", err)
	}
}

func (uc *DefaultFraudUsecase) ReviewSuspect(ctx context.Context, input *frauddto.ReviewSuspectInput) (*domain.FraudSuspect, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var suspect *domain.FraudSuspect
	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		suspect, err = uc.fraudRepo.GetSuspectByIDForUpdate(ctx, input.SuspectID)
		if err != nil {
			return err
		}
		if suspect.ReviewedAt != nil {
			return domain.ErrAlreadyReviewed
		}

		now := time.Now()
		suspect.Status = input.Status
		suspect.ReviewedBy = input.ReviewedBy
		suspect.ReviewNotes = input.ReviewNotes
		suspect.ReviewedAt = &now
		suspect.UpdatedAt = now
		return uc.fraudRepo.UpdateSuspect(ctx, suspect)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("suspect reviewed",
		zap.String("suspect_id", suspect.ID),
		zap.String("user_id", suspect.UserID),
		zap.String("status", string(suspect.Status)),
		zap.String("reviewed_by", suspect.ReviewedBy))

	// Account-level action is owned by the identity service.
	if suspect.Status == domain.SuspectConfirmed {
		uc.logger.Warn("account action required for confirmed fraud", zap.String("user_id", suspect.UserID))
	}

	uc.publish(ctx, domain.TopicFraudSuspectReviewed, suspect.UserID, &domain.FraudSuspectEvent{
		EventID:   uuid.New().String(),
		SuspectID: suspect.ID,
		UserID:    suspect.UserID,
		RiskScore: suspect.RiskScore,
		Status:    suspect.Status,
		Reason:    suspect.ReviewNotes,
		At:        *suspect.ReviewedAt,
	})

	return suspect, nil
}

func (uc *DefaultFraudUsecase) GetActivityStats(ctx context.Context, windowDays int) (map[string]int64, error) {
	if windowDays <= 0 {
		windowDays = defaultStatsWindowDays
	}
	since := time.Now().AddDate(0, 0, -windowDays)

	counts, err := uc.fraudRepo.CountActivitiesByType(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count activities: %w", err)
	}

	stats := map[string]int64{
		domain.ActivityDuplicateAccount:   0,
		domain.ActivitySuspiciousReferral: 0,
	}
	for activityType, n := range counts {
		stats[activityType] = n
	}
	return stats, nil
}

func (uc *DefaultFraudUsecase) ListSuspects(ctx context.Context, status *domain.SuspectStatus) ([]*domain.FraudSuspect, error) {
	if status != nil && !status.Valid() {
		return nil, domain.ValidationError("unknown suspect status %q", *status)
	}
	return uc.fraudRepo.ListSuspects(ctx, status)
}

func (uc *DefaultFraudUsecase) IsUnderReview(ctx context.Context, userID string) (bool, error) {
	return uc.fraudRepo.HasOpenSuspicion(ctx, userID)
}

// publish is best effort: fraud events are advisory.
func (uc *DefaultFraudUsecase) publish(ctx context.Context, topic, key string, event interface{}) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishEvent(ctx, topic, key, event); err != nil {
		uc.logger.Error("failed to publish event", zap.String("topic", topic), zap.Error(err))
	}
}
