package setup

import (
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/codegen"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
)

type UseCases struct {
	ReferralUsecase   usecase.ReferralUsecase
	CommissionUsecase usecase.CommissionUsecase
	FraudUsecase      usecase.FraudUsecase
	RewardUsecase     usecase.RewardUsecase
	PayoutUsecase     usecase.PayoutUsecase
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	cfg := deps.Config
	repos := deps.Repositories

	codes, err := codegen.NewNanoidCodeGenerator(cfg.Codes.Length)
	if err != nil {
		return nil, fmt.Errorf("code generator: %w", err)
	}

	commissionUsecase := usecase.NewDefaultCommissionUsecase(
		repos.ReferralRepo,
		repos.EarningRepo,
		repos.BalanceRepo,
		deps.Transactor,
		cfg.Commission,
		deps.Metrics,
		deps.Logger.Named("commission"),
	)

	fraudUsecase := usecase.NewDefaultFraudUsecase(
		repos.FraudRepo,
		InitializeAntiFraud(deps),
		deps.Transactor,
		deps.Publisher,
		deps.Metrics,
		deps.Logger.Named("fraud"),
	)

	referralUsecase := usecase.NewDefaultReferralUsecase(
		repos.ReferralRepo,
		deps.Transactor,
		commissionUsecase,
		fraudUsecase,
		deps.Publisher,
		codes,
		cfg.Commission,
		cfg.Codes,
		deps.Metrics,
		deps.Logger.Named("referral"),
	)

	rewardUsecase := usecase.NewDefaultRewardUsecase(
		repos.RewardRepo,
		deps.Transactor,
		cfg.Rewards,
		deps.Metrics,
		deps.Logger.Named("reward"),
	)

	payoutUsecase := usecase.NewDefaultPayoutUsecase(
		repos.PayoutRepo,
		repos.BalanceRepo,
		deps.Transactor,
		fraudUsecase,
		deps.Metrics,
		deps.Logger.Named("payout"),
	)

	return &UseCases{
		ReferralUsecase:   referralUsecase,
		CommissionUsecase: commissionUsecase,
		FraudUsecase:      fraudUsecase,
		RewardUsecase:     rewardUsecase,
		PayoutUsecase:     payoutUsecase,
	}, nil
}
