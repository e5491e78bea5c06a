package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	payoutdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/payout"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PayoutUsecase interface {
	RequestPayout(ctx context.Context, input *payoutdto.RequestPayoutInput) (*domain.Payout, error)
	ProcessPayout(ctx context.Context, input *payoutdto.ProcessPayoutInput) (*domain.Payout, error)
	CancelPayout(ctx context.Context, input *payoutdto.CancelPayoutInput) (*domain.Payout, error)
	GetBalance(ctx context.Context, affiliateID string) (*domain.AffiliateBalance, error)
	ListPayouts(ctx context.Context, affiliateID string) ([]*domain.Payout, error)
}

// ReviewChecker reports whether an affiliate has an open fraud case.
type ReviewChecker interface {
	IsUnderReview(ctx context.Context, userID string) (bool, error)
}

type DefaultPayoutUsecase struct {
	payoutRepo  domain.PayoutRepository
	balanceRepo domain.BalanceRepository
	transactor  domain.Transactor
	review      ReviewChecker
	metrics     *metrics.ReferralMetrics
	logger      *zap.Logger
}

func NewDefaultPayoutUsecase(
	payoutRepo domain.PayoutRepository,
	balanceRepo domain.BalanceRepository,
	transactor domain.Transactor,
	review ReviewChecker,
	metrics *metrics.ReferralMetrics,
	logger *zap.Logger,
) *DefaultPayoutUsecase {
	return &DefaultPayoutUsecase{
		payoutRepo:  payoutRepo,
		balanceRepo: balanceRepo,
		transactor:  transactor,
		review:      review,
		metrics:     metrics,
		logger:      logger,
	}
}

func (uc *DefaultPayoutUsecase) RequestPayout(ctx context.Context, input *payoutdto.RequestPayoutInput) (*domain.Payout, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if uc.review != nil {
		underReview, err := uc.review.IsUnderReview(ctx, input.AffiliateID)
		if err != nil {
			uc.logger.Error("fraud review lookup failed, refusing payout",
				zap.String("affiliate_id", input.AffiliateID), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", domain.ErrUnderReview, err)
		}
		if underReview {
			return nil, domain.ErrUnderReview
		}
	}

	now := time.Now()
	payout := &domain.Payout{
		ID:            uuid.New().String(),
		AffiliateID:   input.AffiliateID,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		Status:        domain.PayoutPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.balanceRepo.Debit(ctx, input.AffiliateID, input.Amount); err != nil {
			return err
		}
		return uc.payoutRepo.CreatePayout(ctx, payout)
	})
	if err != nil {
		return nil, err
	}

	uc.record(payout)
	uc.logger.Info("payout requested",
		zap.String("payout_id", payout.ID),
		zap.String("affiliate_id", payout.AffiliateID),
		zap.String("amount", payout.Amount.String()))
	return payout, nil
}

// ProcessPayout settles a pending payout as PAID or FAILED. FAILED returns the
// debited amount to the available balance in the same transaction.
func (uc *DefaultPayoutUsecase) ProcessPayout(ctx context.Context, input *payoutdto.ProcessPayoutInput) (*domain.Payout, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var payout *domain.Payout
	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		payout, err = uc.payoutRepo.GetPayoutByIDForUpdate(ctx, input.PayoutID)
		if err != nil {
			return err
		}
		return uc.settle(ctx, payout, input.Status, input.Reference)
	})
	if err != nil {
		return nil, err
	}

	uc.record(payout)
	uc.logger.Info("payout processed",
		zap.String("payout_id", payout.ID),
		zap.String("status", string(payout.Status)))
	return payout, nil
}

func (uc *DefaultPayoutUsecase) CancelPayout(ctx context.Context, input *payoutdto.CancelPayoutInput) (*domain.Payout, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var payout *domain.Payout
	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		payout, err = uc.payoutRepo.GetPayoutByIDForUpdate(ctx, input.PayoutID)
		if err != nil {
			return err
		}
		if payout.AffiliateID != input.RequesterID {
			return domain.ErrNotPayoutOwner
		}
		return uc.settle(ctx, payout, domain.PayoutCancelled, "")
	})
	if err != nil {
		return nil, err
	}

	uc.record(payout)
	return payout, nil
}

func (uc *DefaultPayoutUsecase) settle(ctx context.Context, payout *domain.Payout, status domain.PayoutStatus, reference string) error {
	if payout.Status != domain.PayoutPending {
		return domain.ErrAlreadyProcessed
	}

	if status == domain.PayoutFailed || status == domain.PayoutCancelled {
		if err := uc.balanceRepo.Refund(ctx, payout.AffiliateID, payout.Amount); err != nil {
			return fmt.Errorf("failed to refund payout: %w", err)
		}
	}

	now := time.Now()
	payout.Status = status
	if reference != "" {
		payout.Reference = reference
	}
	payout.ProcessedAt = &now
	payout.UpdatedAt = now
	return uc.payoutRepo.UpdatePayout(ctx, payout)
}

func (uc *DefaultPayoutUsecase) GetBalance(ctx context.Context, affiliateID string) (*domain.AffiliateBalance, error) {
	if affiliateID == "" {
		return nil, domain.ValidationError("affiliate id is required")
	}

	balance, err := uc.balanceRepo.GetBalance(ctx, affiliateID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.AffiliateBalance{
			AffiliateID:      affiliateID,
			AvailableBalance: decimal.Zero,
			TotalEarned:      decimal.Zero,
			TotalWithdrawn:   decimal.Zero,
		}, nil
	}
	return balance, err
}

func (uc *DefaultPayoutUsecase) ListPayouts(ctx context.Context, affiliateID string) ([]*domain.Payout, error) {
	if affiliateID == "" {
		return nil, domain.ValidationError("affiliate id is required")
	}
	return uc.payoutRepo.ListPayoutsByAffiliate(ctx, affiliateID)
}

func (uc *DefaultPayoutUsecase) record(payout *domain.Payout) {
	amount, _ := payout.Amount.Float64()
	uc.metrics.RecordPayout(string(payout.Status), amount)
}
