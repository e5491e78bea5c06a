package domain

import (
	"context"
	"time"
)

type SuspectStatus string

const (
	SuspectPending   SuspectStatus = "pending"
	SuspectConfirmed SuspectStatus = "confirmed"
	SuspectDismissed SuspectStatus = "dismissed"
)

func (s SuspectStatus) Valid() bool {
	return s == SuspectPending || s == SuspectConfirmed || s == SuspectDismissed
}

const (
	ActivityDuplicateAccount   = "DUPLICATE_ACCOUNT"
	ActivitySuspiciousReferral = "SUSPICIOUS_REFERRAL"
)

const (
	DuplicateAccountSeverity   = 70
	SuspiciousReferralSeverity = 60

	InitialRiskScore   = 50
	RepeatRiskIncrease = 10
)

type FraudSuspect struct {
	ID                string
	UserID            string
	IPAddress         string
	DeviceFingerprint string
	RiskScore         int
	DetectionCount    int
	Reason            string
	Status            SuspectStatus
	ReviewedBy        string
	ReviewNotes       string
	ReviewedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type FraudActivity struct {
	ID            string
	SuspectID     string
	UserID        string
	RelatedUserID string
	Type          string
	Severity      int
	Details       map[string]interface{}
	CreatedAt     time.Time
}

type ReferralData struct {
	ReferrerID   string `json:"referrerId"`
	ReferrerIP   string `json:"referrerIp,omitempty"`
	ReferralCode string `json:"referralCode,omitempty"`
}

type FraudCheckInput struct {
	UserID            string        `json:"userId"`
	IPAddress         string        `json:"ipAddress"`
	DeviceFingerprint string        `json:"deviceFingerprint"`
	ReferralData      *ReferralData `json:"referralData,omitempty"`
}

func (in *FraudCheckInput) Validate() error {
	if in.UserID == "" {
		return ValidationError("userId is required")
	}
	if in.IPAddress == "" && in.DeviceFingerprint == "" {
		return ValidationError("ipAddress or deviceFingerprint is required")
	}
	return nil
}

type FraudRepository interface {
	FindSuspectsByIPOrDevice(ctx context.Context, ipAddress, deviceFingerprint string) ([]*FraudSuspect, error)
	GetSuspectByUserID(ctx context.Context, userID string) (*FraudSuspect, error)
	GetSuspectByIDForUpdate(ctx context.Context, suspectID string) (*FraudSuspect, error)
	CreateSuspect(ctx context.Context, suspect *FraudSuspect) error
	UpdateSuspect(ctx context.Context, suspect *FraudSuspect) error
	ListSuspects(ctx context.Context, status *SuspectStatus) ([]*FraudSuspect, error)
	HasOpenSuspicion(ctx context.Context, userID string) (bool, error)

	CreateActivity(ctx context.Context, activity *FraudActivity) error
	HasActivityNamingUser(ctx context.Context, activityType, relatedUserID string) (bool, error)
	CountActivitiesByType(ctx context.Context, since time.Time) (map[string]int64, error)
}
