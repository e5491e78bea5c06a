package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultReferralRepository struct {
	DB *gorm.DB
}

func NewDefaultReferralRepository(db *gorm.DB) *DefaultReferralRepository {
	return &DefaultReferralRepository{DB: db}
}

// ============= Referral codes =============

func (r *DefaultReferralRepository) CreateReferralCode(ctx context.Context, code *domain.ReferralCode) error {
	model := mappers.ToGORMReferralCode(code)
	if err := postgres.Conn(ctx, r.DB).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: referral code %s already taken", domain.ErrConflict, code.Code)
		}
		return err
	}
	code.CreatedAt = model.CreatedAt
	code.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DefaultReferralRepository) GetReferralCodeByCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	var model models.ReferralCodeModel
	if err := postgres.Conn(ctx, r.DB).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReferralCodeNotFound
		}
		return nil, err
	}
	return mappers.ToDomainReferralCode(&model), nil
}

func (r *DefaultReferralRepository) GetActiveReferralCodeByUser(ctx context.Context, userID string) (*domain.ReferralCode, error) {
	var model models.ReferralCodeModel
	err := postgres.Conn(ctx, r.DB).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReferralCodeNotFound
		}
		return nil, err
	}
	return mappers.ToDomainReferralCode(&model), nil
}

func (r *DefaultReferralRepository) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := postgres.Conn(ctx, r.DB).
		Model(&models.ReferralCodeModel{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *DefaultReferralRepository) DeactivateReferralCode(ctx context.Context, codeID string) error {
	return postgres.Conn(ctx, r.DB).
		Model(&models.ReferralCodeModel{}).
		Where("id = ?", codeID).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		}).Error
}

func (r *DefaultReferralRepository) DeactivateExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	res := postgres.Conn(ctx, r.DB).
		Model(&models.ReferralCodeModel{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

// ============= Referrals =============

func (r *DefaultReferralRepository) CreateReferral(ctx context.Context, referral *domain.Referral) error {
	model := mappers.ToGORMReferral(referral)
	if err := postgres.Conn(ctx, r.DB).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyReferred
		}
		return err
	}
	referral.CreatedAt = model.CreatedAt
	referral.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DefaultReferralRepository) GetReferralByID(ctx context.Context, referralID string) (*domain.Referral, error) {
	return r.findReferral(postgres.Conn(ctx, r.DB), "id = ?", referralID)
}

func (r *DefaultReferralRepository) GetReferralByIDForUpdate(ctx context.Context, referralID string) (*domain.Referral, error) {
	return r.findReferral(postgres.Conn(ctx, r.DB).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", referralID)
}

func (r *DefaultReferralRepository) GetReferralByReferredID(ctx context.Context, referredID string) (*domain.Referral, error) {
	return r.findReferral(postgres.Conn(ctx, r.DB), "referred_id = ?", referredID)
}

func (r *DefaultReferralRepository) GetReferralByReferredIDForUpdate(ctx context.Context, referredID string) (*domain.Referral, error) {
	return r.findReferral(postgres.Conn(ctx, r.DB).Clauses(clause.Locking{Strength: "UPDATE"}), "referred_id = ?", referredID)
}

func (r *DefaultReferralRepository) ListReferralsByReferrer(ctx context.Context, referrerID string) ([]*domain.Referral, error) {
	var referralModels []models.ReferralModel
	if err := postgres.Conn(ctx, r.DB).
		Where("referrer_id = ?", referrerID).
		Order("created_at ASC").
		Find(&referralModels).Error; err != nil {
		return nil, err
	}

	referrals := make([]*domain.Referral, len(referralModels))
	for i := range referralModels {
		referrals[i] = mappers.ToDomainReferral(&referralModels[i])
	}
	return referrals, nil
}

func (r *DefaultReferralRepository) SaveReferralStatus(ctx context.Context, referral *domain.Referral) error {
	res := postgres.Conn(ctx, r.DB).
		Model(&models.ReferralModel{}).
		Where("id = ?", referral.ID).
		Updates(map[string]interface{}{
			"status":       referral.Status,
			"completed_at": referral.CompletedAt,
			"rewarded_at":  referral.RewardedAt,
			"updated_at":   referral.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrReferralNotFound
	}
	return nil
}

func (r *DefaultReferralRepository) findReferral(db *gorm.DB, query string, arg string) (*domain.Referral, error) {
	var model models.ReferralModel
	if err := db.Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReferralNotFound
		}
		return nil, err
	}
	return mappers.ToDomainReferral(&model), nil
}
