package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type RewardStatus string

const (
	RewardPending RewardStatus = "pending"
	RewardGranted RewardStatus = "granted"
	RewardExpired RewardStatus = "expired"
)

func (s RewardStatus) Valid() bool {
	return s == RewardPending || s == RewardGranted || s == RewardExpired
}

type Reward struct {
	ID         string
	UserID     string
	ReferralID *string
	Type       string
	Value      decimal.Decimal
	Status     RewardStatus
	GrantedAt  *time.Time
	ExpiredAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type RewardRepository interface {
	// CreateReward fails with ErrConflict when a reward for the same
	// (ReferralID, UserID) already exists.
	CreateReward(ctx context.Context, reward *Reward) error
	GetRewardByIDForUpdate(ctx context.Context, rewardID string) (*Reward, error)
	UpdateReward(ctx context.Context, reward *Reward) error
	ListRewardsByUser(ctx context.Context, userID string) ([]*Reward, error)
	ExpirePendingRewardsByUser(ctx context.Context, userID string, now time.Time) (int64, error)
	ExpireStaleRewards(ctx context.Context, createdBefore, now time.Time) (int64, error)
}
