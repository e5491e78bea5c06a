package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainSuspect(model *models.FraudSuspectModel) *domain.FraudSuspect {
	return &domain.FraudSuspect{
		ID:                model.ID,
		UserID:            model.UserID,
		IPAddress:         model.IPAddress,
		DeviceFingerprint: model.DeviceFingerprint,
		RiskScore:         model.RiskScore,
		DetectionCount:    model.DetectionCount,
		Reason:            model.Reason,
		Status:            model.Status,
		ReviewedBy:        model.ReviewedBy,
		ReviewNotes:       model.ReviewNotes,
		ReviewedAt:        model.ReviewedAt,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

func ToGORMSuspect(suspect *domain.FraudSuspect) *models.FraudSuspectModel {
	return &models.FraudSuspectModel{
		ID:                suspect.ID,
		UserID:            suspect.UserID,
		IPAddress:         suspect.IPAddress,
		DeviceFingerprint: suspect.DeviceFingerprint,
		RiskScore:         suspect.RiskScore,
		DetectionCount:    suspect.DetectionCount,
		Reason:            suspect.Reason,
		Status:            suspect.Status,
		ReviewedBy:        suspect.ReviewedBy,
		ReviewNotes:       suspect.ReviewNotes,
		ReviewedAt:        suspect.ReviewedAt,
		CreatedAt:         suspect.CreatedAt,
		UpdatedAt:         suspect.UpdatedAt,
	}
}

func ToGORMActivity(activity *domain.FraudActivity) *models.FraudActivityModel {
	return &models.FraudActivityModel{
		ID:            activity.ID,
		SuspectID:     activity.SuspectID,
		UserID:        activity.UserID,
		RelatedUserID: activity.RelatedUserID,
		Type:          activity.Type,
		Severity:      activity.Severity,
		Details:       models.JSONB(activity.Details),
		CreatedAt:     activity.CreatedAt,
	}
}
