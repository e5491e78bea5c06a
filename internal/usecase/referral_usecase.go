package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxCodeAttempts = 5

type ReferralUsecase interface {
	CreateReferralCode(ctx context.Context, userID string) (*domain.ReferralCode, error)
	GetReferralCodeByUser(ctx context.Context, userID string) (*domain.ReferralCode, error)
	ApplyReferralCode(ctx context.Context, input *referraldto.ApplyReferralCodeInput) (*domain.Referral, error)
	UpdateReferralStatus(ctx context.Context, input *referraldto.UpdateReferralStatusInput) (*domain.Referral, error)
	RecordConversion(ctx context.Context, input *referraldto.RecordConversionInput) (*domain.Referral, error)
	GetReferralTree(ctx context.Context, input *referraldto.GetReferralTreeInput) (*domain.ReferralTree, error)
	GetReferralByReferredID(ctx context.Context, referredID string) (*domain.Referral, error)
	ListReferralsByReferrer(ctx context.Context, referrerID string) ([]*domain.Referral, error)
	DeactivateExpiredCodes(ctx context.Context) (int64, error)
}

// FraudChecker is the slice of the fraud engine the ledger needs at signup.
type FraudChecker interface {
	CheckForFraud(ctx context.Context, input *domain.FraudCheckInput) (bool, error)
}

type DefaultReferralUsecase struct {
	referralRepo  domain.ReferralRepository
	transactor    domain.Transactor
	commission    CommissionUsecase
	fraud         FraudChecker
	publisher     domain.EventPublisher
	codes         domain.CodeGenerator
	commissionCfg config.CommissionConfig
	codeCfg       config.CodeConfig
	metrics       *metrics.ReferralMetrics
	logger        *zap.Logger
}

func NewDefaultReferralUsecase(
	referralRepo domain.ReferralRepository,
	transactor domain.Transactor,
	commission CommissionUsecase,
	fraud FraudChecker,
	publisher domain.EventPublisher,
	codes domain.CodeGenerator,
	commissionCfg config.CommissionConfig,
	codeCfg config.CodeConfig,
	metrics *metrics.ReferralMetrics,
	logger *zap.Logger,
) *DefaultReferralUsecase {
	return &DefaultReferralUsecase{
		referralRepo:  referralRepo,
		transactor:    transactor,
		commission:    commission,
		fraud:         fraud,
		publisher:     publisher,
		codes:         codes,
		commissionCfg: commissionCfg,
		codeCfg:       codeCfg,
		metrics:       metrics,
		logger:        logger,
	}
}

// ============= Referral codes =============

func (uc *DefaultReferralUsecase) CreateReferralCode(ctx context.Context, userID string) (*domain.ReferralCode, error) {
	if userID == "" {
		return nil, domain.ValidationError("userId is required")
	}

	existing, err := uc.activeCode(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		candidate, err := uc.codes.NewCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate referral code: %w", err)
		}

		taken, err := uc.referralRepo.ReferralCodeExists(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("failed to check referral code: %w", err)
		}
		if taken {
			continue
		}

		now := time.Now()
		code := &domain.ReferralCode{
			ID:        uuid.New().String(),
			Code:      candidate,
			UserID:    userID,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if uc.codeCfg.TTL > 0 {
			expiresAt := now.Add(uc.codeCfg.TTL)
			code.ExpiresAt = &expiresAt
		}

		err = uc.referralRepo.CreateReferralCode(ctx, code)
		if errors.Is(err, domain.ErrConflict) {
			// either the code was taken meanwhile or a concurrent request
			// issued this user's code first
			if existing, lookupErr := uc.activeCode(ctx, userID); lookupErr == nil && existing != nil {
				return existing, nil
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save referral code: %w", err)
		}

		uc.metrics.RecordCodeIssued()
		uc.logger.Info("referral code issued", zap.String("user_id", userID), zap.String("code", code.Code))
		return code, nil
	}

	return nil, fmt.Errorf("failed to generate a unique referral code after %d attempts", maxCodeAttempts)
}

// activeCode returns the user's usable code, deactivating it first if it has
// expired. A nil code with a nil error means there is none.
func (uc *DefaultReferralUsecase) activeCode(ctx context.Context, userID string) (*domain.ReferralCode, error) {
	code, err := uc.referralRepo.GetActiveReferralCodeByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load referral code: %w", err)
	}
	if code.IsExpired(time.Now()) {
		if err := uc.referralRepo.DeactivateReferralCode(ctx, code.ID); err != nil {
			return nil, fmt.Errorf("failed to deactivate expired code: %w", err)
		}
		return nil, nil
	}
	return code, nil
}

func (uc *DefaultReferralUsecase) GetReferralCodeByUser(ctx context.Context, userID string) (*domain.ReferralCode, error) {
	if userID == "" {
		return nil, domain.ValidationError("userId is required")
	}
	code, err := uc.activeCode(ctx, userID)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, domain.ErrReferralCodeNotFound
	}
	return code, nil
}

func (uc *DefaultReferralUsecase) DeactivateExpiredCodes(ctx context.Context) (int64, error) {
	n, err := uc.referralRepo.DeactivateExpiredCodes(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired codes: %w", err)
	}
	return n, nil
}

// ============= Attribution =============

func (uc *DefaultReferralUsecase) ApplyReferralCode(ctx context.Context, input *referraldto.ApplyReferralCodeInput) (*domain.Referral, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	referral, err := uc.applyReferralCode(ctx, input)
	if err != nil {
		uc.metrics.RecordReferralRejected(rejectReason(err))
		return nil, err
	}

	uc.metrics.RecordReferralApplied(strconv.Itoa(referral.Tier))
	uc.logger.Info("referral created",
		zap.String("referral_id", referral.ID),
		zap.String("referrer_id", referral.ReferrerID),
		zap.String("referred_id", referral.ReferredID),
		zap.Int("tier", referral.Tier))
	return referral, nil
}

func (uc *DefaultReferralUsecase) applyReferralCode(ctx context.Context, input *referraldto.ApplyReferralCodeInput) (*domain.Referral, error) {
	code, err := uc.referralRepo.GetReferralCodeByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if !code.IsActive {
		return nil, domain.ErrReferralCodeNotFound
	}
	if code.IsExpired(time.Now()) {
		if err := uc.referralRepo.DeactivateReferralCode(ctx, code.ID); err != nil {
			uc.logger.Error("failed to deactivate expired code", zap.String("code", code.Code), zap.Error(err))
		}
		return nil, domain.ErrReferralCodeExpired
	}
	if code.UserID == input.ReferredID {
		return nil, domain.ErrSelfReferral
	}

	if _, err := uc.referralRepo.GetReferralByReferredID(ctx, input.ReferredID); err == nil {
		return nil, domain.ErrAlreadyReferred
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing referral: %w", err)
	}

	if uc.fraud != nil && input.HasSignupContext() {
		flagged, err := uc.fraud.CheckForFraud(ctx, &domain.FraudCheckInput{
			UserID:            input.ReferredID,
			IPAddress:         input.IPAddress,
			DeviceFingerprint: input.DeviceFingerprint,
			ReferralData: &domain.ReferralData{
				ReferrerID:   code.UserID,
				ReferralCode: code.Code,
			},
		})
		if err != nil {
			uc.logger.Error("fraud check unavailable, rejecting signup",
				zap.String("referred_id", input.ReferredID), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", domain.ErrFraudSuspected, err)
		}
		if flagged {
			return nil, domain.ErrFraudSuspected
		}
	}

	var referral *domain.Referral
	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		parent, depth, err := uc.parentChain(ctx, code.UserID)
		if err != nil {
			return err
		}

		now := time.Now()
		referral = &domain.Referral{
			ID:         uuid.New().String(),
			ReferrerID: code.UserID,
			ReferredID: input.ReferredID,
			Code:       code.Code,
			Tier:       min(depth+1, uc.commissionCfg.MaxTiers),
			Status:     domain.ReferralPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if parent != nil {
			referral.ParentReferralID = &parent.ID
		}
		return uc.referralRepo.CreateReferral(ctx, referral)
	})
	if err != nil {
		return nil, err
	}
	return referral, nil
}

// parentChain returns the referral through which userID joined and how many
// referral hops sit above userID, counting no further than the tier cap needs.
func (uc *DefaultReferralUsecase) parentChain(ctx context.Context, userID string) (*domain.Referral, int, error) {
	parent, err := uc.referralRepo.GetReferralByReferredID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to load parent referral: %w", err)
	}

	depth := 1
	visited := map[string]bool{userID: true, parent.ReferrerID: true}
	current := parent.ReferrerID
	for depth < uc.commissionCfg.MaxTiers-1 {
		r, err := uc.referralRepo.GetReferralByReferredID(ctx, current)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				break
			}
			return nil, 0, fmt.Errorf("failed to walk referral chain: %w", err)
		}
		depth++
		if visited[r.ReferrerID] {
			break
		}
		visited[r.ReferrerID] = true
		current = r.ReferrerID
	}
	return parent, depth, nil
}

// ============= Status lifecycle =============

func (uc *DefaultReferralUsecase) UpdateReferralStatus(ctx context.Context, input *referraldto.UpdateReferralStatusInput) (*domain.Referral, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if input.Status == domain.ReferralRewarded {
		txID := input.TransactionID
		if txID == "" {
			txID = "status:" + input.ReferralID
		}
		return uc.reward(ctx, func(ctx context.Context) (*domain.Referral, error) {
			return uc.referralRepo.GetReferralByIDForUpdate(ctx, input.ReferralID)
		}, *input.Amount, txID, false)
	}

	var (
		referral *domain.Referral
		changed  bool
	)
	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		referral, err = uc.referralRepo.GetReferralByIDForUpdate(ctx, input.ReferralID)
		if err != nil {
			return err
		}
		if referral.Status == input.Status {
			return nil
		}
		if err := referral.ApplyStatus(input.Status, time.Now()); err != nil {
			return err
		}
		changed = true
		return uc.referralRepo.SaveReferralStatus(ctx, referral)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		uc.afterTransition(ctx, referral, input.Status == domain.ReferralCompleted)
	}
	return referral, nil
}

func (uc *DefaultReferralUsecase) RecordConversion(ctx context.Context, input *referraldto.RecordConversionInput) (*domain.Referral, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return uc.reward(ctx, func(ctx context.Context) (*domain.Referral, error) {
		return uc.referralRepo.GetReferralByReferredIDForUpdate(ctx, input.ReferredID)
	}, input.Amount, input.TransactionID, true)
}

// reward moves a referral into rewarded and runs commission processing in the
// same transaction as the status flip. Only the writer holding the row lock
// that observes a non-rewarded status pays out. With fromConversion set a
// pending referral is completed on the way, and an already rewarded one
// accrues further earnings for the new transaction id.
func (uc *DefaultReferralUsecase) reward(
	ctx context.Context,
	lock func(ctx context.Context) (*domain.Referral, error),
	amount decimal.Decimal,
	transactionID string,
	fromConversion bool,
) (*domain.Referral, error) {
	var (
		referral     *domain.Referral
		completedNow bool
		rewardedNow  bool
	)
	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		referral, err = lock(ctx)
		if err != nil {
			return err
		}

		now := time.Now()
		switch referral.Status {
		case domain.ReferralRewarded:
			if !fromConversion {
				return nil
			}
		case domain.ReferralPending:
			if fromConversion {
				if err := referral.ApplyStatus(domain.ReferralCompleted, now); err != nil {
					return err
				}
				completedNow = true
			}
			if err := referral.ApplyStatus(domain.ReferralRewarded, now); err != nil {
				return err
			}
			rewardedNow = true
		default:
			if err := referral.ApplyStatus(domain.ReferralRewarded, now); err != nil {
				return err
			}
			rewardedNow = true
		}

		if _, err := uc.commission.ProcessReferralReward(ctx, referral, amount, transactionID); err != nil {
			return fmt.Errorf("commission processing failed: %w", err)
		}
		if rewardedNow {
			return uc.referralRepo.SaveReferralStatus(ctx, referral)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completedNow {
		uc.afterTransition(ctx, referral, true)
	}
	if rewardedNow {
		uc.afterTransition(ctx, referral, false)
	}
	return referral, nil
}

func (uc *DefaultReferralUsecase) afterTransition(ctx context.Context, referral *domain.Referral, completed bool) {
	status := referral.Status
	if completed {
		status = domain.ReferralCompleted
	}
	uc.metrics.RecordReferralStatus(string(status))
	uc.logger.Info("referral status changed",
		zap.String("referral_id", referral.ID),
		zap.String("status", string(status)))

	if !completed || uc.publisher == nil {
		return
	}

	completedAt := time.Now()
	if referral.CompletedAt != nil {
		completedAt = *referral.CompletedAt
	}
	event := &domain.ReferralCompletedEvent{
		EventID:     "referral-completed:" + referral.ID,
		ReferralID:  referral.ID,
		ReferrerID:  referral.ReferrerID,
		ReferredID:  referral.ReferredID,
		Code:        referral.Code,
		Tier:        referral.Tier,
		Status:      domain.ReferralCompleted,
		CompletedAt: completedAt,
	}
	// TODO: write this event to an outbox table inside the status transaction
	// and relay it from there; a failed publish here drops the bonus rewards.
	if err := uc.publisher.PublishEvent(ctx, domain.TopicReferralCompleted, referral.ID, event); err != nil {
		uc.logger.Error("failed to publish referral.completed",
			zap.String("referral_id", referral.ID), zap.Error(err))
	}
}

// ============= Queries =============

func (uc *DefaultReferralUsecase) GetReferralTree(ctx context.Context, input *referraldto.GetReferralTreeInput) (*domain.ReferralTree, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	maxDepth := input.MaxDepth
	if maxDepth == 0 || maxDepth > uc.commissionCfg.MaxTiers {
		maxDepth = uc.commissionCfg.MaxTiers
	}

	root := &domain.ReferralTreeNode{UserID: input.UserID, Children: []*domain.ReferralTreeNode{}}
	visited := map[string]bool{input.UserID: true}
	queue := []*domain.ReferralTreeNode{root}
	total := 0

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node.Depth >= maxDepth {
			continue
		}

		children, err := uc.referralRepo.ListReferralsByReferrer(ctx, node.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load referrals of %s: %w", node.UserID, err)
		}
		for _, r := range children {
			if visited[r.ReferredID] {
				continue
			}
			visited[r.ReferredID] = true

			child := &domain.ReferralTreeNode{
				UserID:     r.ReferredID,
				ReferralID: r.ID,
				Tier:       r.Tier,
				Status:     r.Status,
				Depth:      node.Depth + 1,
				Children:   []*domain.ReferralTreeNode{},
			}
			node.Children = append(node.Children, child)
			queue = append(queue, child)
			total++
		}
	}

	return &domain.ReferralTree{UserID: input.UserID, TotalReferrals: total, Tree: root}, nil
}

func (uc *DefaultReferralUsecase) GetReferralByReferredID(ctx context.Context, referredID string) (*domain.Referral, error) {
	if referredID == "" {
		return nil, domain.ValidationError("referredId is required")
	}
	return uc.referralRepo.GetReferralByReferredID(ctx, referredID)
}

func (uc *DefaultReferralUsecase) ListReferralsByReferrer(ctx context.Context, referrerID string) ([]*domain.Referral, error) {
	if referrerID == "" {
		return nil, domain.ValidationError("referrerId is required")
	}
	return uc.referralRepo.ListReferralsByReferrer(ctx, referrerID)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSelfReferral):
		return "self_referral"
	case errors.Is(err, domain.ErrAlreadyReferred):
		return "already_referred"
	case errors.Is(err, domain.ErrFraudSuspected):
		return "fraud"
	case errors.Is(err, domain.ErrExpired):
		return "expired"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
