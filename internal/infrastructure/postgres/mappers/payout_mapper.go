package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainPayout(model *models.PayoutModel) *domain.Payout {
	return &domain.Payout{
		ID:            model.ID,
		AffiliateID:   model.AffiliateID,
		Amount:        model.Amount,
		PaymentMethod: model.PaymentMethod,
		Status:        model.Status,
		Reference:     model.Reference,
		ProcessedAt:   model.ProcessedAt,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func ToGORMPayout(payout *domain.Payout) *models.PayoutModel {
	return &models.PayoutModel{
		ID:            payout.ID,
		AffiliateID:   payout.AffiliateID,
		Amount:        payout.Amount,
		PaymentMethod: payout.PaymentMethod,
		Status:        payout.Status,
		Reference:     payout.Reference,
		ProcessedAt:   payout.ProcessedAt,
		CreatedAt:     payout.CreatedAt,
		UpdatedAt:     payout.UpdatedAt,
	}
}

func ToDomainBalance(model *models.AffiliateBalanceModel) *domain.AffiliateBalance {
	return &domain.AffiliateBalance{
		AffiliateID:      model.AffiliateID,
		AvailableBalance: model.AvailableBalance,
		TotalEarned:      model.TotalEarned,
		TotalWithdrawn:   model.TotalWithdrawn,
		UpdatedAt:        model.UpdatedAt,
	}
}

func ToDomainReward(model *models.RewardModel) *domain.Reward {
	return &domain.Reward{
		ID:         model.ID,
		UserID:     model.UserID,
		ReferralID: model.ReferralID,
		Type:       model.Type,
		Value:      model.Value,
		Status:     model.Status,
		GrantedAt:  model.GrantedAt,
		ExpiredAt:  model.ExpiredAt,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func ToGORMReward(reward *domain.Reward) *models.RewardModel {
	return &models.RewardModel{
		ID:         reward.ID,
		UserID:     reward.UserID,
		ReferralID: reward.ReferralID,
		Type:       reward.Type,
		Value:      reward.Value,
		Status:     reward.Status,
		GrantedAt:  reward.GrantedAt,
		ExpiredAt:  reward.ExpiredAt,
		CreatedAt:  reward.CreatedAt,
		UpdatedAt:  reward.UpdatedAt,
	}
}
