package request

import "github.com/shopspring/decimal"

type RequestPayoutRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
}

type ProcessPayoutRequest struct {
	Status    string `json:"status"`
	Reference string `json:"reference,omitempty"`
}
