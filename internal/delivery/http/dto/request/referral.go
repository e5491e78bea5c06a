package request

import "github.com/shopspring/decimal"

type CreateReferralCodeRequest struct {
	UserID string `json:"userId"`
}

type ApplyReferralCodeRequest struct {
	Code              string `json:"code"`
	ReferredID        string `json:"referredId"`
	IPAddress         string `json:"ipAddress,omitempty"`
	DeviceFingerprint string `json:"deviceFingerprint,omitempty"`
}

type UpdateReferralStatusRequest struct {
	ReferralID    string           `json:"referralId"`
	Status        string           `json:"status"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	TransactionID string           `json:"transactionId,omitempty"`
}

type RecordConversionRequest struct {
	ReferredID    string          `json:"referredId"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transactionId"`
}
