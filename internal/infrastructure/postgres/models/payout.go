package models

import (
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

type PayoutModel struct {
	ID            string              `gorm:"primaryKey;type:uuid"`
	AffiliateID   string              `gorm:"not null;index"`
	Amount        decimal.Decimal     `gorm:"type:numeric(20,8);not null"`
	PaymentMethod string              `gorm:"size:64"`
	Status        domain.PayoutStatus `gorm:"size:16;not null;index"`
	Reference     string
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (PayoutModel) TableName() string {
	return "payouts"
}

type AffiliateBalanceModel struct {
	AffiliateID      string          `gorm:"primaryKey"`
	AvailableBalance decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"`
	TotalEarned      decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"`
	TotalWithdrawn   decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (AffiliateBalanceModel) TableName() string {
	return "affiliate_balances"
}
