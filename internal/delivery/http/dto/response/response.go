package response

import (
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type ReferralCodeResponse struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	UserID    string     `json:"userId"`
	IsActive  bool       `json:"isActive"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func FromReferralCode(c *domain.ReferralCode) *ReferralCodeResponse {
	return &ReferralCodeResponse{
		ID:        c.ID,
		Code:      c.Code,
		UserID:    c.UserID,
		IsActive:  c.IsActive,
		ExpiresAt: c.ExpiresAt,
		CreatedAt: c.CreatedAt,
	}
}

type ReferralResponse struct {
	ID               string     `json:"id"`
	ReferrerID       string     `json:"referrerId"`
	ReferredID       string     `json:"referredId"`
	Code             string     `json:"code"`
	Tier             int        `json:"tier"`
	Status           string     `json:"status"`
	ParentReferralID *string    `json:"parentReferralId,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	RewardedAt       *time.Time `json:"rewardedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func FromReferral(r *domain.Referral) *ReferralResponse {
	return &ReferralResponse{
		ID:               r.ID,
		ReferrerID:       r.ReferrerID,
		ReferredID:       r.ReferredID,
		Code:             r.Code,
		Tier:             r.Tier,
		Status:           string(r.Status),
		ParentReferralID: r.ParentReferralID,
		CompletedAt:      r.CompletedAt,
		RewardedAt:       r.RewardedAt,
		CreatedAt:        r.CreatedAt,
	}
}

type FraudCheckResponse struct {
	IsFraudulent bool `json:"isFraudulent"`
}

type FraudSuspectResponse struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	IPAddress         string     `json:"ipAddress,omitempty"`
	DeviceFingerprint string     `json:"deviceFingerprint,omitempty"`
	RiskScore         int        `json:"riskScore"`
	DetectionCount    int        `json:"detectionCount"`
	Reason            string     `json:"reason"`
	Status            string     `json:"status"`
	ReviewedBy        string     `json:"reviewedBy,omitempty"`
	ReviewNotes       string     `json:"reviewNotes,omitempty"`
	ReviewedAt        *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func FromFraudSuspect(s *domain.FraudSuspect) *FraudSuspectResponse {
	return &FraudSuspectResponse{
		ID:                s.ID,
		UserID:            s.UserID,
		IPAddress:         s.IPAddress,
		DeviceFingerprint: s.DeviceFingerprint,
		RiskScore:         s.RiskScore,
		DetectionCount:    s.DetectionCount,
		Reason:            s.Reason,
		Status:            string(s.Status),
		ReviewedBy:        s.ReviewedBy,
		ReviewNotes:       s.ReviewNotes,
		ReviewedAt:        s.ReviewedAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func FromFraudSuspects(suspects []*domain.FraudSuspect) []*FraudSuspectResponse {
	out := make([]*FraudSuspectResponse, 0, len(suspects))
	for _, s := range suspects {
		out = append(out, FromFraudSuspect(s))
	}
	return out
}

type RewardResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	ReferralID *string         `json:"referralId,omitempty"`
	Type       string          `json:"type"`
	Value      decimal.Decimal `json:"value"`
	Status     string          `json:"status"`
	GrantedAt  *time.Time      `json:"grantedAt,omitempty"`
	ExpiredAt  *time.Time      `json:"expiredAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func FromReward(r *domain.Reward) *RewardResponse {
	return &RewardResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		ReferralID: r.ReferralID,
		Type:       r.Type,
		Value:      r.Value,
		Status:     string(r.Status),
		GrantedAt:  r.GrantedAt,
		ExpiredAt:  r.ExpiredAt,
		CreatedAt:  r.CreatedAt,
	}
}

func FromRewards(rewards []*domain.Reward) []*RewardResponse {
	out := make([]*RewardResponse, 0, len(rewards))
	for _, r := range rewards {
		out = append(out, FromReward(r))
	}
	return out
}

type PayoutResponse struct {
	ID            string          `json:"id"`
	AffiliateID   string          `json:"affiliateId"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Status        string          `json:"status"`
	Reference     string          `json:"reference,omitempty"`
	ProcessedAt   *time.Time      `json:"processedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func FromPayout(p *domain.Payout) *PayoutResponse {
	return &PayoutResponse{
		ID:            p.ID,
		AffiliateID:   p.AffiliateID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		Status:        string(p.Status),
		Reference:     p.Reference,
		ProcessedAt:   p.ProcessedAt,
		CreatedAt:     p.CreatedAt,
	}
}

func FromPayouts(payouts []*domain.Payout) []*PayoutResponse {
	out := make([]*PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		out = append(out, FromPayout(p))
	}
	return out
}
