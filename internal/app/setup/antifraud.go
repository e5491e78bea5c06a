package setup

import (
	"github.com/LavaJover/shvark-referral-service/internal/usecase/antifraud"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/antifraud/strategies"
)

// InitializeAntiFraud registers the signup strategies in evaluation order.
func InitializeAntiFraud(deps *Dependencies) *antifraud.AntiFraudEngine {
	engine := antifraud.NewAntiFraudEngine(deps.Logger.Named("antifraud"))
	engine.RegisterStrategy(strategies.NewDuplicateAccountStrategy(deps.Repositories.FraudRepo))
	engine.RegisterStrategy(strategies.NewSuspiciousReferralStrategy(deps.Repositories.FraudRepo))
	return engine
}
