package repository

import (
	"context"
	"errors"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultFraudRepository struct {
	DB *gorm.DB
}

func NewDefaultFraudRepository(db *gorm.DB) *DefaultFraudRepository {
	return &DefaultFraudRepository{DB: db}
}

// ============= Suspects =============

func (r *DefaultFraudRepository) FindSuspectsByIPOrDevice(ctx context.Context, ipAddress, deviceFingerprint string) ([]*domain.FraudSuspect, error) {
	query := postgres.Conn(ctx, r.DB)
	switch {
	case ipAddress != "" && deviceFingerprint != "":
		query = query.Where("ip_address = ? OR device_fingerprint = ?", ipAddress, deviceFingerprint)
	case ipAddress != "":
		query = query.Where("ip_address = ?", ipAddress)
	case deviceFingerprint != "":
		query = query.Where("device_fingerprint = ?", deviceFingerprint)
	default:
		return nil, nil
	}

	var suspectModels []models.FraudSuspectModel
	if err := query.Order("created_at ASC").Find(&suspectModels).Error; err != nil {
		return nil, err
	}
	return toDomainSuspects(suspectModels), nil
}

func (r *DefaultFraudRepository) GetSuspectByUserID(ctx context.Context, userID string) (*domain.FraudSuspect, error) {
	var model models.FraudSuspectModel
	err := postgres.Conn(ctx, r.DB).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSuspectNotFound
		}
		return nil, err
	}
	return mappers.ToDomainSuspect(&model), nil
}

func (r *DefaultFraudRepository) GetSuspectByIDForUpdate(ctx context.Context, suspectID string) (*domain.FraudSuspect, error) {
	var model models.FraudSuspectModel
	err := postgres.Conn(ctx, r.DB).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", suspectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSuspectNotFound
		}
		return nil, err
	}
	return mappers.ToDomainSuspect(&model), nil
}

func (r *DefaultFraudRepository) CreateSuspect(ctx context.Context, suspect *domain.FraudSuspect) error {
	return postgres.Conn(ctx, r.DB).Create(mappers.ToGORMSuspect(suspect)).Error
}

func (r *DefaultFraudRepository) UpdateSuspect(ctx context.Context, suspect *domain.FraudSuspect) error {
	return postgres.Conn(ctx, r.DB).
		Model(&models.FraudSuspectModel{}).
		Where("id = ?", suspect.ID).
		Updates(map[string]interface{}{
			"ip_address":         suspect.IPAddress,
			"device_fingerprint": suspect.DeviceFingerprint,
			"risk_score":         suspect.RiskScore,
			"detection_count":    suspect.DetectionCount,
			"reason":             suspect.Reason,
			"status":             suspect.Status,
			"reviewed_by":        suspect.ReviewedBy,
			"review_notes":       suspect.ReviewNotes,
			"reviewed_at":        suspect.ReviewedAt,
			"updated_at":         suspect.UpdatedAt,
		}).Error
}

func (r *DefaultFraudRepository) ListSuspects(ctx context.Context, status *domain.SuspectStatus) ([]*domain.FraudSuspect, error) {
	query := postgres.Conn(ctx, r.DB)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var suspectModels []models.FraudSuspectModel
	if err := query.Order("risk_score DESC, created_at DESC").Find(&suspectModels).Error; err != nil {
		return nil, err
	}
	return toDomainSuspects(suspectModels), nil
}

func (r *DefaultFraudRepository) HasOpenSuspicion(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := postgres.Conn(ctx, r.DB).
		Model(&models.FraudSuspectModel{}).
		Where("user_id = ? AND status IN ?", userID, []domain.SuspectStatus{domain.SuspectPending, domain.SuspectConfirmed}).
		Count(&count).Error
	return count > 0, err
}

// ============= Activities =============

func (r *DefaultFraudRepository) CreateActivity(ctx context.Context, activity *domain.FraudActivity) error {
	return postgres.Conn(ctx, r.DB).Create(mappers.ToGORMActivity(activity)).Error
}

func (r *DefaultFraudRepository) HasActivityNamingUser(ctx context.Context, activityType, relatedUserID string) (bool, error) {
	var count int64
	err := postgres.Conn(ctx, r.DB).
		Model(&models.FraudActivityModel{}).
		Where("type = ? AND related_user_id = ?", activityType, relatedUserID).
		Count(&count).Error
	return count > 0, err
}

func (r *DefaultFraudRepository) CountActivitiesByType(ctx context.Context, since time.Time) (map[string]int64, error) {
	var rows []models.ActivityCountRow
	err := postgres.Conn(ctx, r.DB).
		Model(&models.FraudActivityModel{}).
		Select("type, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64, len(rows))
	for _, row := range rows {
		stats[row.Type] = row.Count
	}
	return stats, nil
}

func toDomainSuspects(suspectModels []models.FraudSuspectModel) []*domain.FraudSuspect {
	suspects := make([]*domain.FraudSuspect, len(suspectModels))
	for i := range suspectModels {
		suspects[i] = mappers.ToDomainSuspect(&suspectModels[i])
	}
	return suspects
}
