package models

import (
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type FraudSuspectModel struct {
	ID                string               `gorm:"primaryKey;type:uuid"`
	UserID            string               `gorm:"not null;index"`
	IPAddress         string               `gorm:"size:64;index"`
	DeviceFingerprint string               `gorm:"size:255;index"`
	RiskScore         int                  `gorm:"not null"`
	DetectionCount    int                  `gorm:"not null;default:1"`
	Reason            string               `gorm:"size:64"`
	Status            domain.SuspectStatus `gorm:"size:16;not null;index"`
	ReviewedBy        string
	ReviewNotes       string
	ReviewedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (FraudSuspectModel) TableName() string {
	return "fraud_suspects"
}

type FraudActivityModel struct {
	ID            string    `gorm:"primaryKey;type:uuid"`
	SuspectID     string    `gorm:"type:uuid;not null;index"`
	UserID        string    `gorm:"not null;index"`
	RelatedUserID string    `gorm:"index"`
	Type          string    `gorm:"size:32;not null;index"`
	Severity      int       `gorm:"not null"`
	Details       JSONB     `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time `gorm:"index"`
}

func (FraudActivityModel) TableName() string {
	return "fraud_activities"
}

type ActivityCountRow struct {
	Type  string
	Count int64
}
