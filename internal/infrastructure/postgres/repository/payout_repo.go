package repository

import (
	"context"
	"errors"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultPayoutRepository struct {
	DB *gorm.DB
}

func NewDefaultPayoutRepository(db *gorm.DB) *DefaultPayoutRepository {
	return &DefaultPayoutRepository{DB: db}
}

// ============= Payouts =============

func (r *DefaultPayoutRepository) CreatePayout(ctx context.Context, payout *domain.Payout) error {
	model := mappers.ToGORMPayout(payout)
	if err := postgres.Conn(ctx, r.DB).Create(model).Error; err != nil {
		return err
	}
	payout.CreatedAt = model.CreatedAt
	payout.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DefaultPayoutRepository) GetPayoutByIDForUpdate(ctx context.Context, payoutID string) (*domain.Payout, error) {
	var model models.PayoutModel
	err := postgres.Conn(ctx, r.DB).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", payoutID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPayoutNotFound
		}
		return nil, err
	}
	return mappers.ToDomainPayout(&model), nil
}

func (r *DefaultPayoutRepository) UpdatePayout(ctx context.Context, payout *domain.Payout) error {
	return postgres.Conn(ctx, r.DB).
		Model(&models.PayoutModel{}).
		Where("id = ?", payout.ID).
		Updates(map[string]interface{}{
			"status":       payout.Status,
			"reference":    payout.Reference,
			"processed_at": payout.ProcessedAt,
			"updated_at":   payout.UpdatedAt,
		}).Error
}

func (r *DefaultPayoutRepository) ListPayoutsByAffiliate(ctx context.Context, affiliateID string) ([]*domain.Payout, error) {
	var payoutModels []models.PayoutModel
	if err := postgres.Conn(ctx, r.DB).
		Where("affiliate_id = ?", affiliateID).
		Order("created_at DESC").
		Find(&payoutModels).Error; err != nil {
		return nil, err
	}

	payouts := make([]*domain.Payout, len(payoutModels))
	for i := range payoutModels {
		payouts[i] = mappers.ToDomainPayout(&payoutModels[i])
	}
	return payouts, nil
}

// ============= Balances =============

func (r *DefaultPayoutRepository) GetBalance(ctx context.Context, affiliateID string) (*domain.AffiliateBalance, error) {
	var model models.AffiliateBalanceModel
	if err := postgres.Conn(ctx, r.DB).First(&model, "affiliate_id = ?", affiliateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBalanceNotFound
		}
		return nil, err
	}
	return mappers.ToDomainBalance(&model), nil
}

func (r *DefaultPayoutRepository) AddEarnings(ctx context.Context, affiliateID string, amount decimal.Decimal) error {
	now := time.Now()
	model := &models.AffiliateBalanceModel{
		AffiliateID:      affiliateID,
		AvailableBalance: amount,
		TotalEarned:      amount,
		TotalWithdrawn:   decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return postgres.Conn(ctx, r.DB).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "affiliate_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"available_balance": gorm.Expr("affiliate_balances.available_balance + ?", amount),
			"total_earned":      gorm.Expr("affiliate_balances.total_earned + ?", amount),
			"updated_at":        now,
		}),
	}).Create(model).Error
}

func (r *DefaultPayoutRepository) Debit(ctx context.Context, affiliateID string, amount decimal.Decimal) error {
	res := postgres.Conn(ctx, r.DB).
		Model(&models.AffiliateBalanceModel{}).
		Where("affiliate_id = ? AND available_balance >= ?", affiliateID, amount).
		Updates(map[string]interface{}{
			"available_balance": gorm.Expr("available_balance - ?", amount),
			"total_withdrawn":   gorm.Expr("total_withdrawn + ?", amount),
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (r *DefaultPayoutRepository) Refund(ctx context.Context, affiliateID string, amount decimal.Decimal) error {
	res := postgres.Conn(ctx, r.DB).
		Model(&models.AffiliateBalanceModel{}).
		Where("affiliate_id = ?", affiliateID).
		Updates(map[string]interface{}{
			"available_balance": gorm.Expr("available_balance + ?", amount),
			"total_withdrawn":   gorm.Expr("total_withdrawn - ?", amount),
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrBalanceNotFound
	}
	return nil
}
