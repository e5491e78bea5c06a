package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainReferralCode(model *models.ReferralCodeModel) *domain.ReferralCode {
	return &domain.ReferralCode{
		ID:        model.ID,
		Code:      model.Code,
		UserID:    model.UserID,
		IsActive:  model.IsActive,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func ToGORMReferralCode(code *domain.ReferralCode) *models.ReferralCodeModel {
	return &models.ReferralCodeModel{
		ID:        code.ID,
		Code:      code.Code,
		UserID:    code.UserID,
		IsActive:  code.IsActive,
		ExpiresAt: code.ExpiresAt,
		CreatedAt: code.CreatedAt,
		UpdatedAt: code.UpdatedAt,
	}
}

func ToDomainReferral(model *models.ReferralModel) *domain.Referral {
	return &domain.Referral{
		ID:               model.ID,
		ReferrerID:       model.ReferrerID,
		ReferredID:       model.ReferredID,
		Code:             model.Code,
		Tier:             model.Tier,
		Status:           model.Status,
		ParentReferralID: model.ParentReferralID,
		CompletedAt:      model.CompletedAt,
		RewardedAt:       model.RewardedAt,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

func ToGORMReferral(referral *domain.Referral) *models.ReferralModel {
	return &models.ReferralModel{
		ID:               referral.ID,
		ReferrerID:       referral.ReferrerID,
		ReferredID:       referral.ReferredID,
		Code:             referral.Code,
		Tier:             referral.Tier,
		Status:           referral.Status,
		ParentReferralID: referral.ParentReferralID,
		CompletedAt:      referral.CompletedAt,
		RewardedAt:       referral.RewardedAt,
		CreatedAt:        referral.CreatedAt,
		UpdatedAt:        referral.UpdatedAt,
	}
}

func ToDomainEarning(model *models.ReferralEarningModel) *domain.ReferralEarning {
	return &domain.ReferralEarning{
		ID:            model.ID,
		ReferralID:    model.ReferralID,
		EarnerID:      model.EarnerID,
		SourceUserID:  model.SourceUserID,
		Tier:          model.Tier,
		BaseAmount:    model.BaseAmount,
		Percentage:    model.Percentage,
		Amount:        model.Amount,
		TransactionID: model.TransactionID,
		Description:   model.Description,
		CreatedAt:     model.CreatedAt,
	}
}

func ToGORMEarning(earning *domain.ReferralEarning) *models.ReferralEarningModel {
	return &models.ReferralEarningModel{
		ID:            earning.ID,
		ReferralID:    earning.ReferralID,
		EarnerID:      earning.EarnerID,
		SourceUserID:  earning.SourceUserID,
		Tier:          earning.Tier,
		BaseAmount:    earning.BaseAmount,
		Percentage:    earning.Percentage,
		Amount:        earning.Amount,
		TransactionID: earning.TransactionID,
		Description:   earning.Description,
		CreatedAt:     earning.CreatedAt,
	}
}
