package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReferralEarningModel struct {
	ID            string          `gorm:"primaryKey;type:uuid"`
	ReferralID    string          `gorm:"type:uuid;not null;uniqueIndex:idx_earning_key,priority:1"`
	Tier          int             `gorm:"not null;uniqueIndex:idx_earning_key,priority:2"`
	TransactionID string          `gorm:"not null;uniqueIndex:idx_earning_key,priority:3"`
	EarnerID      string          `gorm:"not null;index"`
	SourceUserID  string          `gorm:"not null"`
	BaseAmount    decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Percentage    decimal.Decimal `gorm:"type:numeric(6,3);not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Description   string
	CreatedAt     time.Time `gorm:"index"`
}

func (ReferralEarningModel) TableName() string {
	return "referral_earnings"
}

// TierEarningsRow is the scan target of the per-tier aggregate.
type TierEarningsRow struct {
	Tier      int
	Total     decimal.Decimal
	Referrals int64
}
