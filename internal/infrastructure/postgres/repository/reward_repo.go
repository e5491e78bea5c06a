package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultRewardRepository struct {
	DB *gorm.DB
}

func NewDefaultRewardRepository(db *gorm.DB) *DefaultRewardRepository {
	return &DefaultRewardRepository{DB: db}
}

func (r *DefaultRewardRepository) CreateReward(ctx context.Context, reward *domain.Reward) error {
	if err := postgres.Conn(ctx, r.DB).Create(mappers.ToGORMReward(reward)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: reward for user %s already issued", domain.ErrConflict, reward.UserID)
		}
		return err
	}
	return nil
}

func (r *DefaultRewardRepository) GetRewardByIDForUpdate(ctx context.Context, rewardID string) (*domain.Reward, error) {
	var model models.RewardModel
	err := postgres.Conn(ctx, r.DB).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", rewardID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRewardNotFound
		}
		return nil, err
	}
	return mappers.ToDomainReward(&model), nil
}

func (r *DefaultRewardRepository) UpdateReward(ctx context.Context, reward *domain.Reward) error {
	return postgres.Conn(ctx, r.DB).
		Model(&models.RewardModel{}).
		Where("id = ?", reward.ID).
		Updates(map[string]interface{}{
			"status":     reward.Status,
			"granted_at": reward.GrantedAt,
			"expired_at": reward.ExpiredAt,
			"updated_at": reward.UpdatedAt,
		}).Error
}

func (r *DefaultRewardRepository) ListRewardsByUser(ctx context.Context, userID string) ([]*domain.Reward, error) {
	var rewardModels []models.RewardModel
	if err := postgres.Conn(ctx, r.DB).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rewardModels).Error; err != nil {
		return nil, err
	}

	rewards := make([]*domain.Reward, len(rewardModels))
	for i := range rewardModels {
		rewards[i] = mappers.ToDomainReward(&rewardModels[i])
	}
	return rewards, nil
}

func (r *DefaultRewardRepository) ExpirePendingRewardsByUser(ctx context.Context, userID string, now time.Time) (int64, error) {
	res := postgres.Conn(ctx, r.DB).
		Model(&models.RewardModel{}).
		Where("user_id = ? AND status = ?", userID, domain.RewardPending).
		Updates(map[string]interface{}{
			"status":     domain.RewardExpired,
			"expired_at": now,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

func (r *DefaultRewardRepository) ExpireStaleRewards(ctx context.Context, createdBefore, now time.Time) (int64, error) {
	res := postgres.Conn(ctx, r.DB).
		Model(&models.RewardModel{}).
		Where("status = ? AND created_at < ?", domain.RewardPending, createdBefore).
		Updates(map[string]interface{}{
			"status":     domain.RewardExpired,
			"expired_at": now,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}
