package rewarddto

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateRewardInput struct {
	UserID     string
	ReferralID *string
	Type       string
	Value      decimal.Decimal
}

func (in *CreateRewardInput) Validate() error {
	if in.UserID == "" {
		return domain.ValidationError("userId is required")
	}
	if in.Type == "" {
		return domain.ValidationError("type is required")
	}
	if in.Value.IsNegative() {
		return domain.ValidationError("value must not be negative")
	}
	return nil
}

type UpdateRewardStatusInput struct {
	RewardID string
	Status   domain.RewardStatus
}

func (in *UpdateRewardStatusInput) Validate() error {
	if in.RewardID == "" {
		return domain.ValidationError("reward id is required")
	}
	if in.Status != domain.RewardGranted && in.Status != domain.RewardExpired {
		return domain.ValidationError("status must be granted or expired")
	}
	return nil
}
