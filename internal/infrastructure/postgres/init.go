package postgres

import (
	"fmt"
	"log"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.ReferralConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.ReferralDB.Dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}
	return db, nil
}

func MustInitDB(cfg *config.ReferralConfig) *gorm.DB {
	db, err := InitDB(cfg)
	if err != nil {
		log.Fatalf("%v\n", err)
	}
	return db
}
