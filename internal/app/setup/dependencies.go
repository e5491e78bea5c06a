package setup

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/redis"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.ReferralConfig
	Logger       *zap.Logger
	DB           *gorm.DB
	Transactor   domain.Transactor
	Publisher    *kafka.DefaultKafkaPublisher
	Subscriber   *kafka.DefaultKafkaSubscriber
	Redis        *goredis.Client
	Deduplicator domain.EventDeduplicator
	Metrics      *metrics.ReferralMetrics
	Repositories *Repositories
}

type Repositories struct {
	ReferralRepo domain.ReferralRepository
	EarningRepo  domain.EarningRepository
	FraudRepo    domain.FraudRepository
	RewardRepo   domain.RewardRepository
	PayoutRepo   domain.PayoutRepository
	BalanceRepo  domain.BalanceRepository
}

func InitializeDependencies(ctx context.Context, cfg *config.ReferralConfig, logger *zap.Logger) (*Dependencies, error) {
	db, err := postgres.InitDB(cfg)
	if err != nil {
		return nil, err
	}

	if err := migrate.RunMigrations(db, cfg.ReferralDB.MigrationsPath, logger); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	payouts := repository.NewDefaultPayoutRepository(db)
	repos := &Repositories{
		ReferralRepo: repository.NewDefaultReferralRepository(db),
		EarningRepo:  repository.NewDefaultEarningRepository(db),
		FraudRepo:    repository.NewDefaultFraudRepository(db),
		RewardRepo:   repository.NewDefaultRewardRepository(db),
		PayoutRepo:   payouts,
		BalanceRepo:  payouts,
	}

	deps := &Dependencies{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		Transactor:   postgres.NewTransactor(db),
		Publisher:    kafka.NewDefaultKafkaPublisher(cfg.KafkaService.Brokers),
		Subscriber:   kafka.NewDefaultKafkaSubscriber(cfg.KafkaService.Brokers, logger.Named("kafka")),
		Metrics:      metrics.NewReferralMetrics(prometheus.DefaultRegisterer),
		Repositories: repos,
	}

	client, err := redis.Connect(ctx, cfg.RedisService)
	if err != nil {
		// consumers stay correct through the unique keys; they only lose the fast path
		logger.Warn("redis unavailable, event deduplication disabled", zap.Error(err))
	} else {
		deps.Redis = client
		deps.Deduplicator = redis.NewDeduplicator(client, cfg.RedisService.DedupeTTL)
	}

	return deps, nil
}

func (d *Dependencies) Close() {
	if err := d.Publisher.Close(); err != nil {
		d.Logger.Error("failed to close kafka publisher", zap.Error(err))
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("failed to close redis", zap.Error(err))
		}
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
