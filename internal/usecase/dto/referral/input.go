package referraldto

import (
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

type ApplyReferralCodeInput struct {
	Code       string
	ReferredID string
	// Optional signup context; when present the fraud checks run first.
	IPAddress         string
	DeviceFingerprint string
}

func (in *ApplyReferralCodeInput) Validate() error {
	if in.Code == "" {
		return domain.ValidationError("code is required")
	}
	if len(in.Code) > 32 {
		return domain.ValidationError("code is too long")
	}
	if in.ReferredID == "" {
		return domain.ValidationError("referredId is required")
	}
	return nil
}

func (in *ApplyReferralCodeInput) HasSignupContext() bool {
	return in.IPAddress != "" || in.DeviceFingerprint != ""
}

type UpdateReferralStatusInput struct {
	ReferralID string
	Status     domain.ReferralStatus
	// Amount and TransactionID feed commission processing when Status is rewarded.
	Amount        *decimal.Decimal
	TransactionID string
}

func (in *UpdateReferralStatusInput) Validate() error {
	if in.ReferralID == "" {
		return domain.ValidationError("referralId is required")
	}
	if !in.Status.Valid() {
		return domain.ValidationError("unknown status %q", in.Status)
	}
	if in.Status == domain.ReferralRewarded {
		if in.Amount == nil {
			return domain.ValidationError("amount is required to reward a referral")
		}
		if !in.Amount.IsPositive() {
			return domain.ValidationError("amount must be positive")
		}
	}
	return nil
}

type RecordConversionInput struct {
	ReferredID    string
	Amount        decimal.Decimal
	TransactionID string
}

func (in *RecordConversionInput) Validate() error {
	if in.ReferredID == "" {
		return domain.ValidationError("referredId is required")
	}
	if !in.Amount.IsPositive() {
		return domain.ValidationError("amount must be positive")
	}
	if in.TransactionID == "" {
		return domain.ValidationError("transactionId is required")
	}
	return nil
}

type GetReferralTreeInput struct {
	UserID   string
	MaxDepth int
}

func (in *GetReferralTreeInput) Validate() error {
	if in.UserID == "" {
		return domain.ValidationError("userId is required")
	}
	if in.MaxDepth < 0 {
		return domain.ValidationError("maxDepth must not be negative")
	}
	return nil
}

type GetEarningsInput struct {
	UserID string
	From   *time.Time
	To     *time.Time
}

func (in *GetEarningsInput) Validate() error {
	if in.UserID == "" {
		return domain.ValidationError("userId is required")
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return domain.ValidationError("from must not be after to")
	}
	return nil
}
