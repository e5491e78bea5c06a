package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete errors wrap one of them so callers can branch with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrExpired             = errors.New("expired")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrValidation          = errors.New("validation failed")
)

var (
	ErrReferralCodeNotFound = fmt.Errorf("referral code %w", ErrNotFound)
	ErrReferralNotFound     = fmt.Errorf("referral %w", ErrNotFound)
	ErrSuspectNotFound      = fmt.Errorf("fraud suspect %w", ErrNotFound)
	ErrPayoutNotFound       = fmt.Errorf("payout %w", ErrNotFound)
	ErrRewardNotFound       = fmt.Errorf("reward %w", ErrNotFound)
	ErrBalanceNotFound      = fmt.Errorf("affiliate balance %w", ErrNotFound)

	ErrReferralCodeExpired = fmt.Errorf("referral code %w", ErrExpired)

	ErrSelfReferral            = fmt.Errorf("%w: cannot apply own referral code", ErrConflict)
	ErrAlreadyReferred         = fmt.Errorf("%w: user already referred", ErrConflict)
	ErrAlreadyProcessed        = fmt.Errorf("%w: already processed", ErrConflict)
	ErrAlreadyReviewed         = fmt.Errorf("%w: suspect already reviewed", ErrConflict)
	ErrInvalidStatusTransition = fmt.Errorf("%w: invalid status transition", ErrConflict)
	ErrFraudSuspected          = fmt.Errorf("%w: signup flagged by fraud checks", ErrConflict)
	ErrUnderReview             = fmt.Errorf("%w: affiliate is under fraud review", ErrConflict)

	ErrMalformedEvent = fmt.Errorf("%w: malformed event payload", ErrValidation)

	ErrNotPayoutOwner = fmt.Errorf("%w: payout belongs to another user", ErrUnauthorized)
	ErrAdminOnly      = fmt.Errorf("%w: admin role required", ErrUnauthorized)
)

// ValidationError reports malformed input rejected before persistence.
func ValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
