package strategies

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

// SuspiciousReferralStrategy flags a referred signup coming from the
// referrer's own IP, or naming a referrer already involved in a suspicious
// referral. The second signal is a cheap stand-in for cycle detection and
// does not walk the referral graph.
type SuspiciousReferralStrategy struct {
	activities ActivityFinder
}

func NewSuspiciousReferralStrategy(activities ActivityFinder) *SuspiciousReferralStrategy {
	return &SuspiciousReferralStrategy{activities: activities}
}

func (s *SuspiciousReferralStrategy) Name() string {
	return "suspicious_referral"
}

func (s *SuspiciousReferralStrategy) GetDescription() string {
	return "Referrer shares the signup IP or was already named in a suspicious referral"
}

func (s *SuspiciousReferralStrategy) Check(ctx context.Context, input *domain.FraudCheckInput) (*CheckResult, error) {
	rd := input.ReferralData
	if rd == nil || rd.ReferrerID == "" {
		return &CheckResult{Strategy: s.Name(), Message: "no referral context"}, nil
	}

	signal := ""
	if rd.ReferrerIP != "" && rd.ReferrerIP == input.IPAddress {
		signal = "shared_ip"
	} else {
		repeated, err := s.activities.HasActivityNamingUser(ctx, domain.ActivitySuspiciousReferral, rd.ReferrerID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up referrer activity: %w", err)
		}
		if repeated {
			signal = "repeat_referrer"
		}
	}

	if signal == "" {
		return &CheckResult{Strategy: s.Name(), Message: "referral looks clean"}, nil
	}

	return &CheckResult{
		Strategy:      s.Name(),
		Flagged:       true,
		ActivityType:  domain.ActivitySuspiciousReferral,
		Severity:      domain.SuspiciousReferralSeverity,
		RelatedUserID: rd.ReferrerID,
		Message:       fmt.Sprintf("suspicious referral from %s: %s", rd.ReferrerID, signal),
		Details: map[string]interface{}{
			"signal":        signal,
			"referrer_id":   rd.ReferrerID,
			"referrer_ip":   rd.ReferrerIP,
			"ip_address":    input.IPAddress,
			"referral_code": rd.ReferralCode,
		},
	}, nil
}
