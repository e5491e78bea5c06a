package strategies

import (
	"context"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

// AntiFraudStrategy inspects one signup context for a single kind of signal.
// Strategies only read; record-keeping belongs to the caller.
type AntiFraudStrategy interface {
	Name() string
	Check(ctx context.Context, input *domain.FraudCheckInput) (*CheckResult, error)
	GetDescription() string
}

type CheckResult struct {
	Strategy      string                 `json:"strategy"`
	Flagged       bool                   `json:"flagged"`
	ActivityType  string                 `json:"activity_type,omitempty"`
	Severity      int                    `json:"severity,omitempty"`
	RelatedUserID string                 `json:"related_user_id,omitempty"`
	Message       string                 `json:"message"`
	Details       map[string]interface{} `json:"details,omitempty"`
}

type SuspectFinder interface {
	FindSuspectsByIPOrDevice(ctx context.Context, ipAddress, deviceFingerprint string) ([]*domain.FraudSuspect, error)
}

type ActivityFinder interface {
	HasActivityNamingUser(ctx context.Context, activityType, relatedUserID string) (bool, error)
}
