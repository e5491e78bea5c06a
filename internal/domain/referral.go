package domain

import (
	"context"
	"time"
)

type ReferralStatus string

const (
	ReferralPending   ReferralStatus = "pending"
	ReferralCompleted ReferralStatus = "completed"
	ReferralRewarded  ReferralStatus = "rewarded"
	ReferralCancelled ReferralStatus = "cancelled"
	ReferralFailed    ReferralStatus = "failed"
)

// referralTransitions lists the forward-only moves a referral may make.
var referralTransitions = map[ReferralStatus][]ReferralStatus{
	ReferralPending:   {ReferralCompleted, ReferralCancelled, ReferralFailed},
	ReferralCompleted: {ReferralRewarded, ReferralCancelled},
}

func (s ReferralStatus) Valid() bool {
	switch s {
	case ReferralPending, ReferralCompleted, ReferralRewarded, ReferralCancelled, ReferralFailed:
		return true
	}
	return false
}

func (s ReferralStatus) CanTransitionTo(next ReferralStatus) bool {
	for _, allowed := range referralTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type ReferralCode struct {
	ID        string
	Code      string
	UserID    string
	IsActive  bool
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *ReferralCode) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// Referral is a directed referrer -> referred edge. ParentReferralID points at
// the referral through which the referrer itself joined.
type Referral struct {
	ID               string
	ReferrerID       string
	ReferredID       string
	Code             string
	Tier             int
	Status           ReferralStatus
	ParentReferralID *string
	CompletedAt      *time.Time
	RewardedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ApplyStatus moves the referral to next and stamps lifecycle timestamps once.
func (r *Referral) ApplyStatus(next ReferralStatus, at time.Time) error {
	if r.Status == next {
		return nil
	}
	if !r.Status.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}
	r.Status = next
	switch next {
	case ReferralCompleted:
		if r.CompletedAt == nil {
			r.CompletedAt = &at
		}
	case ReferralRewarded:
		if r.CompletedAt == nil {
			r.CompletedAt = &at
		}
		if r.RewardedAt == nil {
			r.RewardedAt = &at
		}
	}
	r.UpdatedAt = at
	return nil
}

type ReferralTreeNode struct {
	UserID     string              `json:"userId"`
	ReferralID string              `json:"referralId,omitempty"`
	Tier       int                 `json:"tier,omitempty"`
	Status     ReferralStatus      `json:"status,omitempty"`
	Depth      int                 `json:"depth"`
	Children   []*ReferralTreeNode `json:"children"`
}

type ReferralTree struct {
	UserID         string            `json:"userId"`
	TotalReferrals int               `json:"totalReferrals"`
	Tree           *ReferralTreeNode `json:"tree"`
}

type ReferralRepository interface {
	CreateReferralCode(ctx context.Context, code *ReferralCode) error
	GetReferralCodeByCode(ctx context.Context, code string) (*ReferralCode, error)
	GetActiveReferralCodeByUser(ctx context.Context, userID string) (*ReferralCode, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	DeactivateReferralCode(ctx context.Context, codeID string) error
	DeactivateExpiredCodes(ctx context.Context, now time.Time) (int64, error)

	CreateReferral(ctx context.Context, referral *Referral) error
	GetReferralByID(ctx context.Context, referralID string) (*Referral, error)
	GetReferralByIDForUpdate(ctx context.Context, referralID string) (*Referral, error)
	GetReferralByReferredID(ctx context.Context, referredID string) (*Referral, error)
	GetReferralByReferredIDForUpdate(ctx context.Context, referredID string) (*Referral, error)
	ListReferralsByReferrer(ctx context.Context, referrerID string) ([]*Referral, error)
	SaveReferralStatus(ctx context.Context, referral *Referral) error
}

// Transactor runs fn in one database transaction; repositories called with the
// ctx passed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CodeGenerator produces candidate referral codes; uniqueness is checked by the caller.
type CodeGenerator interface {
	NewCode() (string, error)
}
