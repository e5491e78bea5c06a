package strategies

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

// DuplicateAccountStrategy flags a signup whose IP or device fingerprint is
// already attached to a known suspect.
type DuplicateAccountStrategy struct {
	suspects SuspectFinder
}

func NewDuplicateAccountStrategy(suspects SuspectFinder) *DuplicateAccountStrategy {
	return &DuplicateAccountStrategy{suspects: suspects}
}

func (s *DuplicateAccountStrategy) Name() string {
	return "duplicate_account"
}

func (s *DuplicateAccountStrategy) GetDescription() string {
	return "IP address or device fingerprint reused by an existing suspect"
}

func (s *DuplicateAccountStrategy) Check(ctx context.Context, input *domain.FraudCheckInput) (*CheckResult, error) {
	matches, err := s.suspects.FindSuspectsByIPOrDevice(ctx, input.IPAddress, input.DeviceFingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to look up suspects: %w", err)
	}

	if len(matches) == 0 {
		return &CheckResult{Strategy: s.Name(), Message: "no suspect shares this ip or device"}, nil
	}

	suspectIDs := make([]string, 0, len(matches))
	matchedOn := make(map[string]bool, 2)
	for _, m := range matches {
		suspectIDs = append(suspectIDs, m.ID)
		if input.IPAddress != "" && m.IPAddress == input.IPAddress {
			matchedOn["ip_address"] = true
		}
		if input.DeviceFingerprint != "" && m.DeviceFingerprint == input.DeviceFingerprint {
			matchedOn["device_fingerprint"] = true
		}
	}

	fields := make([]string, 0, len(matchedOn))
	for _, f := range []string{"ip_address", "device_fingerprint"} {
		if matchedOn[f] {
			fields = append(fields, f)
		}
	}

	return &CheckResult{
		Strategy:      s.Name(),
		Flagged:       true,
		ActivityType:  domain.ActivityDuplicateAccount,
		Severity:      domain.DuplicateAccountSeverity,
		RelatedUserID: matches[0].UserID,
		Message:       fmt.Sprintf("signup matches %d existing suspect(s)", len(matches)),
		Details: map[string]interface{}{
			"ip_address":         input.IPAddress,
			"device_fingerprint": input.DeviceFingerprint,
			"matched_suspects":   suspectIDs,
			"matched_on":         fields,
		},
	}, nil
}
