package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	rewarddto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/reward"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type RewardUsecase interface {
	CreateReward(ctx context.Context, input *rewarddto.CreateRewardInput) (*domain.Reward, error)
	UpdateRewardStatus(ctx context.Context, input *rewarddto.UpdateRewardStatusInput) (*domain.Reward, error)
	ListRewards(ctx context.Context, userID string) ([]*domain.Reward, error)
	ExpireStaleRewards(ctx context.Context) (int64, error)

	// Event reactions. Both are safe to call more than once per event.
	HandleReferralCompleted(ctx context.Context, event *domain.ReferralCompletedEvent) error
	HandleSuspectReviewed(ctx context.Context, event *domain.FraudSuspectEvent) error
}

type DefaultRewardUsecase struct {
	rewardRepo domain.RewardRepository
	transactor domain.Transactor
	cfg        config.RewardConfig
	metrics    *metrics.ReferralMetrics
	logger     *zap.Logger
}

func NewDefaultRewardUsecase(
	rewardRepo domain.RewardRepository,
	transactor domain.Transactor,
	cfg config.RewardConfig,
	metrics *metrics.ReferralMetrics,
	logger *zap.Logger,
) *DefaultRewardUsecase {
	return &DefaultRewardUsecase{
		rewardRepo: rewardRepo,
		transactor: transactor,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

func (uc *DefaultRewardUsecase) CreateReward(ctx context.Context, input *rewarddto.CreateRewardInput) (*domain.Reward, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	reward := &domain.Reward{
		ID:         uuid.New().String(),
		UserID:     input.UserID,
		ReferralID: input.ReferralID,
		Type:       input.Type,
		Value:      input.Value,
		Status:     domain.RewardPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.rewardRepo.CreateReward(ctx, reward); err != nil {
		return nil, err
	}

	uc.metrics.RecordReward(reward.Type, string(reward.Status))
	return reward, nil
}

func (uc *DefaultRewardUsecase) UpdateRewardStatus(ctx context.Context, input *rewarddto.UpdateRewardStatusInput) (*domain.Reward, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		reward  *domain.Reward
		changed bool
	)
	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		reward, err = uc.rewardRepo.GetRewardByIDForUpdate(ctx, input.RewardID)
		if err != nil {
			return err
		}
		if reward.Status == input.Status {
			return nil
		}
		if reward.Status != domain.RewardPending {
			return domain.ErrAlreadyProcessed
		}

		now := time.Now()
		reward.Status = input.Status
		if input.Status == domain.RewardGranted {
			reward.GrantedAt = &now
		} else {
			reward.ExpiredAt = &now
		}
		reward.UpdatedAt = now
		changed = true
		return uc.rewardRepo.UpdateReward(ctx, reward)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		uc.metrics.RecordReward(reward.Type, string(reward.Status))
	}
	return reward, nil
}

func (uc *DefaultRewardUsecase) ListRewards(ctx context.Context, userID string) ([]*domain.Reward, error) {
	if userID == "" {
		return nil, domain.ValidationError("userId is required")
	}
	return uc.rewardRepo.ListRewardsByUser(ctx, userID)
}

func (uc *DefaultRewardUsecase) ExpireStaleRewards(ctx context.Context) (int64, error) {
	if uc.cfg.PendingTTL <= 0 {
		return 0, nil
	}
	now := time.Now()
	n, err := uc.rewardRepo.ExpireStaleRewards(ctx, now.Add(-uc.cfg.PendingTTL), now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale rewards: %w", err)
	}
	return n, nil
}

// HandleReferralCompleted issues the flat bonus to both sides of the referral.
// The (referral, user) unique key turns redelivery into a no-op.
func (uc *DefaultRewardUsecase) HandleReferralCompleted(ctx context.Context, event *domain.ReferralCompletedEvent) error {
	if event.ReferralID == "" {
		return domain.ValidationError("referral id is missing from event")
	}

	grants := []struct {
		userID string
		value  decimal.Decimal
	}{
		{event.ReferrerID, decimal.NewFromFloat(uc.cfg.ReferrerValue)},
		{event.ReferredID, decimal.NewFromFloat(uc.cfg.ReferredValue)},
	}

	referralID := event.ReferralID
	for _, g := range grants {
		if g.userID == "" || !g.value.IsPositive() {
			continue
		}
		_, err := uc.CreateReward(ctx, &rewarddto.CreateRewardInput{
			UserID:     g.userID,
			ReferralID: &referralID,
			Type:       uc.cfg.Type,
			Value:      g.value,
		})
		if errors.Is(err, domain.ErrConflict) {
			uc.logger.Debug("reward already issued", zap.String("referral_id", referralID), zap.String("user_id", g.userID))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to issue reward to %s: %w", g.userID, err)
		}
	}
	return nil
}

func (uc *DefaultRewardUsecase) HandleSuspectReviewed(ctx context.Context, event *domain.FraudSuspectEvent) error {
	switch event.Status {
	case domain.SuspectConfirmed:
		n, err := uc.rewardRepo.ExpirePendingRewardsByUser(ctx, event.UserID, time.Now())
		if err != nil {
			return fmt.Errorf("failed to reverse rewards of %s: %w", event.UserID, err)
		}
		uc.logger.Warn("pending rewards reversed after confirmed fraud",
			zap.String("user_id", event.UserID), zap.Int64("rewards", n))
	case domain.SuspectDismissed:
		uc.logger.Info("suspect dismissed, rewards untouched", zap.String("user_id", event.UserID))
	}
	return nil
}
