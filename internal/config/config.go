package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shopspring/decimal"
)

type ReferralConfig struct {
	Env          string `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	GRPCServer   `yaml:"grpc_server"`
	ReferralDB   `yaml:"referral_db"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka-service"`
	RedisService `yaml:"redis-service"`
	Commission   CommissionConfig `yaml:"commission"`
	Rewards      RewardConfig     `yaml:"rewards"`
	Codes        CodeConfig       `yaml:"codes"`
	Jobs         JobsConfig       `yaml:"jobs"`
}

type HTTPServer struct {
	Host         string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50051"`
}

type ReferralDB struct {
	Dsn            string `yaml:"dsn" env:"REFERRAL_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"REFERRAL_MIGRATIONS_PATH" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
}

type KafkaService struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:"," env-default:"localhost:9092"`
	GroupID string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"referral-service"`
}

type RedisService struct {
	Addr      string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password  string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB        int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	DedupeTTL time.Duration `yaml:"dedupe_ttl" env:"REDIS_DEDUPE_TTL" env-default:"72h"`
}

// CommissionConfig is handed to the commission calculator at construction.
type CommissionConfig struct {
	Tier1Pct float64 `yaml:"tier_1_percentage" env:"REFERRAL_TIER_1_PERCENTAGE" env-default:"10"`
	Tier2Pct float64 `yaml:"tier_2_percentage" env:"REFERRAL_TIER_2_PERCENTAGE" env-default:"5"`
	Tier3Pct float64 `yaml:"tier_3_percentage" env:"REFERRAL_TIER_3_PERCENTAGE" env-default:"2"`
	MaxTiers int     `yaml:"max_tiers" env:"REFERRAL_MAX_TIERS" env-default:"3"`
}

func DefaultCommissionConfig() CommissionConfig {
	return CommissionConfig{Tier1Pct: 10, Tier2Pct: 5, Tier3Pct: 2, MaxTiers: 3}
}

// TierPercentage returns the configured percentage for tier, zero outside 1..MaxTiers.
func (c CommissionConfig) TierPercentage(tier int) decimal.Decimal {
	if tier < 1 || tier > c.MaxTiers {
		return decimal.Zero
	}
	switch tier {
	case 1:
		return decimal.NewFromFloat(c.Tier1Pct)
	case 2:
		return decimal.NewFromFloat(c.Tier2Pct)
	case 3:
		return decimal.NewFromFloat(c.Tier3Pct)
	}
	return decimal.Zero
}

func (c CommissionConfig) Validate() error {
	if c.MaxTiers < 1 || c.MaxTiers > 3 {
		return fmt.Errorf("max_tiers must be within 1..3, got %d", c.MaxTiers)
	}
	for i, pct := range []float64{c.Tier1Pct, c.Tier2Pct, c.Tier3Pct} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("tier_%d_percentage must be within 0..100, got %v", i+1, pct)
		}
	}
	return nil
}

type RewardConfig struct {
	Type          string        `yaml:"type" env:"REFERRAL_REWARD_TYPE" env-default:"bonus"`
	ReferrerValue float64       `yaml:"referrer_value" env:"REFERRAL_REWARD_VALUE" env-default:"100"`
	ReferredValue float64       `yaml:"referred_value" env:"REFERRED_REWARD_VALUE" env-default:"50"`
	PendingTTL    time.Duration `yaml:"pending_ttl" env:"REFERRAL_REWARD_PENDING_TTL" env-default:"720h"`
}

type CodeConfig struct {
	Length int           `yaml:"length" env:"REFERRAL_CODE_LENGTH" env-default:"8"`
	TTL    time.Duration `yaml:"ttl" env:"REFERRAL_CODE_TTL" env-default:"0s"`
}

type JobsConfig struct {
	ExpireCodesSpec   string `yaml:"expire_codes_spec" env:"JOB_EXPIRE_CODES_SPEC" env-default:"@every 10m"`
	ExpireRewardsSpec string `yaml:"expire_rewards_spec" env:"JOB_EXPIRE_REWARDS_SPEC" env-default:"@hourly"`
}

func (cfg *ReferralConfig) Validate() error {
	if cfg.ReferralDB.Dsn == "" {
		return fmt.Errorf("referral_db.dsn is required")
	}
	if err := cfg.Commission.Validate(); err != nil {
		return err
	}
	if cfg.Codes.Length < 4 {
		return fmt.Errorf("codes.length must be at least 4")
	}
	return nil
}

// Load reads the YAML file named by REFERRAL_CONFIG_PATH when set, otherwise
// the environment alone.
func Load() (*ReferralConfig, error) {
	var cfg ReferralConfig

	configPath := os.Getenv("REFERRAL_CONFIG_PATH")
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to find config file: %w", err)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func MustLoad() *ReferralConfig {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("%v\n", err)
	}
	return cfg
}
