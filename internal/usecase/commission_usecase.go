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

type CommissionUsecase interface {
	// ProcessReferralReward appends one earning per ancestor tier for a
	// monetized event on referral. Retrying with the same transactionID
	// appends nothing new and credits nothing twice.
	ProcessReferralReward(ctx context.Context, referral *domain.Referral, baseAmount decimal.Decimal, transactionID string) ([]*domain.ReferralEarning, error)
	GetReferralEarnings(ctx context.Context, input *referraldto.GetEarningsInput) (*domain.EarningsSummary, error)
}

var hundred = decimal.NewFromInt(100)

type DefaultCommissionUsecase struct {
	referralRepo domain.ReferralRepository
	earningRepo  domain.EarningRepository
	balanceRepo  domain.BalanceRepository
	transactor   domain.Transactor
	cfg          config.CommissionConfig
	metrics      *metrics.ReferralMetrics
	logger       *zap.Logger
}

func NewDefaultCommissionUsecase(
	referralRepo domain.ReferralRepository,
	earningRepo domain.EarningRepository,
	balanceRepo domain.BalanceRepository,
	transactor domain.Transactor,
	cfg config.CommissionConfig,
	metrics *metrics.ReferralMetrics,
	logger *zap.Logger,
) *DefaultCommissionUsecase {
	return &DefaultCommissionUsecase{
		referralRepo: referralRepo,
		earningRepo:  earningRepo,
		balanceRepo:  balanceRepo,
		transactor:   transactor,
		cfg:          cfg,
		metrics:      metrics,
		logger:       logger,
	}
}

type tierEarner struct {
	tier     int
	earnerID string
}

func (uc *DefaultCommissionUsecase) ProcessReferralReward(ctx context.Context, referral *domain.Referral, baseAmount decimal.Decimal, transactionID string) ([]*domain.ReferralEarning, error) {
	if referral == nil || referral.ID == "" {
		return nil, domain.ValidationError("referral is required")
	}
	if !baseAmount.IsPositive() {
		return nil, domain.ValidationError("base amount must be positive")
	}
	if transactionID == "" {
		return nil, domain.ValidationError("transaction id is required")
	}

	var inserted []*domain.ReferralEarning
	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		earners, err := uc.ancestors(ctx, referral)
		if err != nil {
			return err
		}

		now := time.Now()
		rows := make([]*domain.ReferralEarning, 0, len(earners))
		for _, e := range earners {
			pct := uc.cfg.TierPercentage(e.tier)
			if pct.IsZero() {
				continue
			}
			rows = append(rows, &domain.ReferralEarning{
				ID:            uuid.New().String(),
				ReferralID:    referral.ID,
				EarnerID:      e.earnerID,
				SourceUserID:  referral.ReferredID,
				Tier:          e.tier,
				BaseAmount:    baseAmount,
				Percentage:    pct,
				Amount:        baseAmount.Mul(pct).Div(hundred),
				TransactionID: transactionID,
				Description:   fmt.Sprintf("tier %d commission on %s from %s", e.tier, transactionID, referral.ReferredID),
				CreatedAt:     now,
			})
		}
		if len(rows) == 0 {
			return nil
		}

		inserted, err = uc.earningRepo.AppendEarnings(ctx, rows)
		if err != nil {
			return fmt.Errorf("failed to append earnings: %w", err)
		}

		for _, earning := range inserted {
			if err := uc.balanceRepo.AddEarnings(ctx, earning.EarnerID, earning.Amount); err != nil {
				return fmt.Errorf("failed to credit %s: %w", earning.EarnerID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, earning := range inserted {
		amount, _ := earning.Amount.Float64()
		uc.metrics.RecordEarning(strconv.Itoa(earning.Tier), amount)
	}
	uc.logger.Info("commission processed",
		zap.String("referral_id", referral.ID),
		zap.String("transaction_id", transactionID),
		zap.Int("earnings_created", len(inserted)))

	return inserted, nil
}

// ancestors walks the parent back-references up to MaxTiers levels. A missing
// parent ends the walk; a repeated user ends it as well so corrupted chains
// cannot pay anyone twice.
func (uc *DefaultCommissionUsecase) ancestors(ctx context.Context, referral *domain.Referral) ([]tierEarner, error) {
	earners := make([]tierEarner, 0, uc.cfg.MaxTiers)
	visited := map[string]bool{referral.ReferredID: true}

	current := referral
	for tier := 1; tier <= uc.cfg.MaxTiers; tier++ {
		if visited[current.ReferrerID] {
			break
		}
		visited[current.ReferrerID] = true
		earners = append(earners, tierEarner{tier: tier, earnerID: current.ReferrerID})

		if tier == uc.cfg.MaxTiers || current.ParentReferralID == nil {
			break
		}
		parent, err := uc.referralRepo.GetReferralByID(ctx, *current.ParentReferralID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				break
			}
			return nil, fmt.Errorf("failed to load parent referral: %w", err)
		}
		current = parent
	}
	return earners, nil
}

func (uc *DefaultCommissionUsecase) GetReferralEarnings(ctx context.Context, input *referraldto.GetEarningsInput) (*domain.EarningsSummary, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	byTier, err := uc.earningRepo.SummarizeEarnings(ctx, input.UserID, input.From, input.To)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize earnings: %w", err)
	}

	summary := &domain.EarningsSummary{
		UserID: input.UserID,
		Total:  decimal.Zero,
		ByTier: make([]*domain.TierEarnings, 0, len(byTier)),
		From:   input.From,
		To:     input.To,
	}
	for _, t := range byTier {
		summary.Total = summary.Total.Add(t.Total)
		summary.ByTier = append(summary.ByTier, t)
	}
	return summary, nil
}
