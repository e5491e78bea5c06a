package models

import (
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type ReferralCodeModel struct {
	ID        string     `gorm:"primaryKey;type:uuid"`
	Code      string     `gorm:"size:32;not null;uniqueIndex"`
	UserID    string     `gorm:"not null;index"`
	IsActive  bool       `gorm:"not null;default:true"`
	ExpiresAt *time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ReferralCodeModel) TableName() string {
	return "referral_codes"
}

type ReferralModel struct {
	ID               string                `gorm:"primaryKey;type:uuid"`
	ReferrerID       string                `gorm:"not null;index"`
	ReferredID       string                `gorm:"not null;uniqueIndex"`
	Code             string                `gorm:"size:32;not null"`
	Tier             int                   `gorm:"not null"`
	Status           domain.ReferralStatus `gorm:"size:16;not null;index"`
	ParentReferralID *string               `gorm:"type:uuid;index"`
	CompletedAt      *time.Time
	RewardedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (ReferralModel) TableName() string {
	return "referrals"
}
