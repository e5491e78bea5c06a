package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReferralEarning is append-only; (ReferralID, Tier, TransactionID) is unique.
type ReferralEarning struct {
	ID            string
	ReferralID    string
	EarnerID      string
	SourceUserID  string
	Tier          int
	BaseAmount    decimal.Decimal
	Percentage    decimal.Decimal
	Amount        decimal.Decimal
	TransactionID string
	Description   string
	CreatedAt     time.Time
}

type TierEarnings struct {
	Tier      int             `json:"tier"`
	Total     decimal.Decimal `json:"total"`
	Referrals int64           `json:"referrals"`
}

type EarningsSummary struct {
	UserID string          `json:"userId"`
	Total  decimal.Decimal `json:"total"`
	ByTier []*TierEarnings `json:"byTier"`
	From   *time.Time      `json:"from,omitempty"`
	To     *time.Time      `json:"to,omitempty"`
}

type EarningRepository interface {
	// AppendEarnings inserts the rows that do not exist yet and returns only
	// those actually inserted.
	AppendEarnings(ctx context.Context, earnings []*ReferralEarning) ([]*ReferralEarning, error)
	SummarizeEarnings(ctx context.Context, earnerID string, from, to *time.Time) ([]*TierEarnings, error)
}
