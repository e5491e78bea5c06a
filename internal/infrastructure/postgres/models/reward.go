package models

import (
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

type RewardModel struct {
	ID         string              `gorm:"primaryKey;type:uuid"`
	UserID     string              `gorm:"not null;index;uniqueIndex:idx_reward_referral_user,priority:2"`
	ReferralID *string             `gorm:"type:uuid;uniqueIndex:idx_reward_referral_user,priority:1"`
	Type       string              `gorm:"size:32;not null"`
	Value      decimal.Decimal     `gorm:"type:numeric(20,8);not null"`
	Status     domain.RewardStatus `gorm:"size:16;not null;index"`
	GrantedAt  *time.Time
	ExpiredAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (RewardModel) TableName() string {
	return "rewards"
}
