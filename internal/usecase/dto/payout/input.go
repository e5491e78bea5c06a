package payoutdto

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

type RequestPayoutInput struct {
	AffiliateID   string
	Amount        decimal.Decimal
	PaymentMethod string
}

func (in *RequestPayoutInput) Validate() error {
	if in.AffiliateID == "" {
		return domain.ValidationError("affiliate id is required")
	}
	if !in.Amount.IsPositive() {
		return domain.ValidationError("amount must be positive")
	}
	if len(in.PaymentMethod) > 64 {
		return domain.ValidationError("paymentMethod is too long")
	}
	return nil
}

type ProcessPayoutInput struct {
	PayoutID  string
	Status    domain.PayoutStatus
	Reference string
}

func (in *ProcessPayoutInput) Validate() error {
	if in.PayoutID == "" {
		return domain.ValidationError("payout id is required")
	}
	// CANCELLED is reserved for the requester via CancelPayout.
	if in.Status != domain.PayoutPaid && in.Status != domain.PayoutFailed {
		return domain.ValidationError("status must be PAID or FAILED")
	}
	return nil
}

type CancelPayoutInput struct {
	PayoutID    string
	RequesterID string
}

func (in *CancelPayoutInput) Validate() error {
	if in.PayoutID == "" {
		return domain.ValidationError("payout id is required")
	}
	if in.RequesterID == "" {
		return domain.ValidationError("requester id is required")
	}
	return nil
}
