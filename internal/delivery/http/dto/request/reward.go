package request

import "github.com/shopspring/decimal"

type CreateRewardRequest struct {
	UserID     string          `json:"userId"`
	ReferralID *string         `json:"referralId,omitempty"`
	Type       string          `json:"type"`
	Value      decimal.Decimal `json:"value"`
}

type UpdateRewardStatusRequest struct {
	Status string `json:"status"`
}
