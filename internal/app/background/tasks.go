package background

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type CodeExpirer interface {
	DeactivateExpiredCodes(ctx context.Context) (int64, error)
}

type RewardExpirer interface {
	ExpireStaleRewards(ctx context.Context) (int64, error)
}

type BackgroundTasks struct {
	Codes   CodeExpirer
	Rewards RewardExpirer
	cfg     config.JobsConfig
	cron    *cron.Cron
	logger  *zap.Logger
}

func NewBackgroundTasks(codes CodeExpirer, rewards RewardExpirer, cfg config.JobsConfig, logger *zap.Logger) *BackgroundTasks {
	return &BackgroundTasks{
		Codes:   codes,
		Rewards: rewards,
		cfg:     cfg,
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		logger:  logger.Named("background"),
	}
}

// StartAll schedules the sweeps and stops the scheduler when ctx is done.
func (bt *BackgroundTasks) StartAll(ctx context.Context) error {
	if _, err := bt.cron.AddFunc(bt.cfg.ExpireCodesSpec, func() { bt.expireCodes(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q for code expiry: %w", bt.cfg.ExpireCodesSpec, err)
	}
	if _, err := bt.cron.AddFunc(bt.cfg.ExpireRewardsSpec, func() { bt.expireRewards(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q for reward expiry: %w", bt.cfg.ExpireRewardsSpec, err)
	}

	bt.cron.Start()
	bt.logger.Info("background jobs started",
		zap.String("expire_codes", bt.cfg.ExpireCodesSpec),
		zap.String("expire_rewards", bt.cfg.ExpireRewardsSpec))

	go func() {
		<-ctx.Done()
		<-bt.cron.Stop().Done()
		bt.logger.Info("background jobs stopped")
	}()
	return nil
}

func (bt *BackgroundTasks) expireCodes(ctx context.Context) {
	n, err := bt.Codes.DeactivateExpiredCodes(ctx)
	if err != nil {
		bt.logger.Error("code expiry failed", zap.Error(err))
		return
	}
	if n > 0 {
		bt.logger.Info("expired referral codes deactivated", zap.Int64("count", n))
	}
}

func (bt *BackgroundTasks) expireRewards(ctx context.Context) {
	n, err := bt.Rewards.ExpireStaleRewards(ctx)
	if err != nil {
		bt.logger.Error("reward expiry failed", zap.Error(err))
		return
	}
	if n > 0 {
		bt.logger.Info("stale pending rewards expired", zap.Int64("count", n))
	}
}
