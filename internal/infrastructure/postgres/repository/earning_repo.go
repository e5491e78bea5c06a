package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultEarningRepository struct {
	DB *gorm.DB
}

func NewDefaultEarningRepository(db *gorm.DB) *DefaultEarningRepository {
	return &DefaultEarningRepository{DB: db}
}

var earningKey = []clause.Column{{Name: "referral_id"}, {Name: "tier"}, {Name: "transaction_id"}}

func (r *DefaultEarningRepository) AppendEarnings(ctx context.Context, earnings []*domain.ReferralEarning) ([]*domain.ReferralEarning, error) {
	db := postgres.Conn(ctx, r.DB)
	inserted := make([]*domain.ReferralEarning, 0, len(earnings))
	for _, earning := range earnings {
		model := mappers.ToGORMEarning(earning)
		res := db.Clauses(clause.OnConflict{Columns: earningKey, DoNothing: true}).Create(model)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			inserted = append(inserted, mappers.ToDomainEarning(model))
		}
	}
	return inserted, nil
}

func (r *DefaultEarningRepository) SummarizeEarnings(ctx context.Context, earnerID string, from, to *time.Time) ([]*domain.TierEarnings, error) {
	query := postgres.Conn(ctx, r.DB).
		Model(&models.ReferralEarningModel{}).
		Select("tier, COALESCE(SUM(amount), 0) AS total, COUNT(DISTINCT referral_id) AS referrals").
		Where("earner_id = ?", earnerID)

	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var rows []models.TierEarningsRow
	if err := query.Group("tier").Order("tier").Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.TierEarnings, 0, len(rows))
	for _, row := range rows {
		result = append(result, &domain.TierEarnings{
			Tier:      row.Tier,
			Total:     row.Total,
			Referrals: row.Referrals,
		})
	}
	return result, nil
}
