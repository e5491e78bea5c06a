package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "PENDING"
	PayoutPaid      PayoutStatus = "PAID"
	PayoutFailed    PayoutStatus = "FAILED"
	PayoutCancelled PayoutStatus = "CANCELLED"
)

func (s PayoutStatus) Terminal() bool {
	return s == PayoutPaid || s == PayoutFailed || s == PayoutCancelled
}

type Payout struct {
	ID            string
	AffiliateID   string
	Amount        decimal.Decimal
	PaymentMethod string
	Status        PayoutStatus
	Reference     string
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type AffiliateBalance struct {
	AffiliateID      string          `json:"affiliateId"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	TotalEarned      decimal.Decimal `json:"totalEarned"`
	TotalWithdrawn   decimal.Decimal `json:"totalWithdrawn"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type BalanceRepository interface {
	GetBalance(ctx context.Context, affiliateID string) (*AffiliateBalance, error)
	// AddEarnings credits available balance and lifetime earnings, creating the row if needed.
	AddEarnings(ctx context.Context, affiliateID string, amount decimal.Decimal) error
	// Debit is a conditional decrement; it fails with ErrInsufficientBalance
	// and changes nothing when available balance is below amount.
	Debit(ctx context.Context, affiliateID string, amount decimal.Decimal) error
	// Refund returns a previously debited amount.
	Refund(ctx context.Context, affiliateID string, amount decimal.Decimal) error
}

type PayoutRepository interface {
	CreatePayout(ctx context.Context, payout *Payout) error
	GetPayoutByIDForUpdate(ctx context.Context, payoutID string) (*Payout, error)
	UpdatePayout(ctx context.Context, payout *Payout) error
	ListPayoutsByAffiliate(ctx context.Context, affiliateID string) ([]*Payout, error)
}
