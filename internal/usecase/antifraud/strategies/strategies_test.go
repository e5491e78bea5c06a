package strategies

import (
	"context"
	"testing"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type suspectsStub []*domain.FraudSuspect

func (s suspectsStub) FindSuspectsByIPOrDevice(_ context.Context, ip, device string) ([]*domain.FraudSuspect, error) {
	var out []*domain.FraudSuspect
	for _, suspect := range s {
		if (ip != "" && suspect.IPAddress == ip) || (device != "" && suspect.DeviceFingerprint == device) {
			out = append(out, suspect)
		}
	}
	return out, nil
}

type activitiesStub map[string]bool

func (a activitiesStub) HasActivityNamingUser(_ context.Context, activityType, relatedUserID string) (bool, error) {
	return a[activityType+"/"+relatedUserID], nil
}

func TestDuplicateAccountStrategy(t *testing.T) {
	s := NewDuplicateAccountStrategy(suspectsStub{
		{ID: "s1", UserID: "mallory", IPAddress: "10.0.0.1", DeviceFingerprint: "fp-1"},
	})

	result, err := s.Check(context.Background(), &domain.FraudCheckInput{UserID: "eve", IPAddress: "10.0.0.9", DeviceFingerprint: "fp-1"})
	require.NoError(t, err)
	assert.True(t, result.Flagged)
	assert.Equal(t, domain.ActivityDuplicateAccount, result.ActivityType)
	assert.Equal(t, 70, result.Severity)
	assert.Equal(t, "mallory", result.RelatedUserID)
	assert.Equal(t, []string{"device_fingerprint"}, result.Details["matched_on"])

	result, err = s.Check(context.Background(), &domain.FraudCheckInput{UserID: "eve", IPAddress: "10.0.0.9", DeviceFingerprint: "fp-9"})
	require.NoError(t, err)
	assert.False(t, result.Flagged)
}

func TestSuspiciousReferralStrategy_SharedIP(t *testing.T) {
	s := NewSuspiciousReferralStrategy(activitiesStub{})

	result, err := s.Check(context.Background(), &domain.FraudCheckInput{
		UserID:       "bob",
		IPAddress:    "192.168.1.5",
		ReferralData: &domain.ReferralData{ReferrerID: "alice", ReferrerIP: "192.168.1.5"},
	})
	require.NoError(t, err)
	assert.True(t, result.Flagged)
	assert.Equal(t, 60, result.Severity)
	assert.Equal(t, "alice", result.RelatedUserID)
	assert.Equal(t, "shared_ip", result.Details["signal"])
}

func TestSuspiciousReferralStrategy_RepeatReferrer(t *testing.T) {
	s := NewSuspiciousReferralStrategy(activitiesStub{domain.ActivitySuspiciousReferral + "/alice": true})

	result, err := s.Check(context.Background(), &domain.FraudCheckInput{
		UserID:       "carol",
		IPAddress:    "10.1.1.1",
		ReferralData: &domain.ReferralData{ReferrerID: "alice", ReferrerIP: "10.2.2.2"},
	})
	require.NoError(t, err)
	assert.True(t, result.Flagged)
	assert.Equal(t, "repeat_referrer", result.Details["signal"])
}

func TestSuspiciousReferralStrategy_NoReferralData(t *testing.T) {
	s := NewSuspiciousReferralStrategy(activitiesStub{})

	result, err := s.Check(context.Background(), &domain.FraudCheckInput{UserID: "dave", IPAddress: "10.1.1.1"})
	require.NoError(t, err)
	assert.False(t, result.Flagged)
}
