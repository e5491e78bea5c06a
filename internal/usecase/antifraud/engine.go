package antifraud

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/antifraud/strategies"
	"go.uber.org/zap"
)

// AntiFraudEngine runs the registered strategies in registration order and
// stops at the first one that flags the input.
type AntiFraudEngine struct {
	strategies []strategies.AntiFraudStrategy
	logger     *zap.Logger
}

func NewAntiFraudEngine(logger *zap.Logger) *AntiFraudEngine {
	return &AntiFraudEngine{logger: logger}
}

func (e *AntiFraudEngine) RegisterStrategy(strategy strategies.AntiFraudStrategy) {
	e.strategies = append(e.strategies, strategy)
	e.logger.Info("registered antifraud strategy",
		zap.String("name", strategy.Name()),
		zap.String("description", strategy.GetDescription()))
}

func (e *AntiFraudEngine) StrategyNames() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

type AntiFraudReport struct {
	UserID    string                    `json:"user_id"`
	CheckedAt time.Time                 `json:"checked_at"`
	AllPassed bool                      `json:"all_passed"`
	Results   []*strategies.CheckResult `json:"results"`
	// Signal is the result that flagged the input, nil when all passed.
	Signal *strategies.CheckResult `json:"signal,omitempty"`
}

// Evaluate returns an error as soon as any strategy fails; callers must treat
// that as a block, never as a pass.
func (e *AntiFraudEngine) Evaluate(ctx context.Context, input *domain.FraudCheckInput) (*AntiFraudReport, error) {
	report := &AntiFraudReport{
		UserID:    input.UserID,
		CheckedAt: time.Now(),
		AllPassed: true,
		Results:   make([]*strategies.CheckResult, 0, len(e.strategies)),
	}

	for _, strategy := range e.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := strategy.Check(ctx, input)
		if err != nil {
			e.logger.Error("antifraud strategy failed",
				zap.String("strategy", strategy.Name()),
				zap.String("user_id", report.UserID),
				zap.Error(err))
			return nil, fmt.Errorf("strategy %s: %w", strategy.Name(), err)
		}

		report.Results = append(report.Results, result)
		if result.Flagged {
			report.AllPassed = false
			report.Signal = result
			break
		}
	}

	return report, nil
}
