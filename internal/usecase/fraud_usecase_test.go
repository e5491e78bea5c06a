package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/antifraud"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/antifraud/strategies"
	frauddto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/fraud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFraudUsecase(store *memStore, pub *fakePublisher) *DefaultFraudUsecase {
	engine := antifraud.NewAntiFraudEngine(zap.NewNop())
	engine.RegisterStrategy(strategies.NewDuplicateAccountStrategy(store))
	engine.RegisterStrategy(strategies.NewSuspiciousReferralStrategy(store))
	return NewDefaultFraudUsecase(store, engine, &fakeTransactor{}, pub, nil, zap.NewNop())
}

func seedSuspect(t *testing.T, store *memStore, suspect *domain.FraudSuspect) {
	t.Helper()
	require.NoError(t, store.CreateSuspect(context.Background(), suspect))
}

func TestCheckForFraud_CleanSignup(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{}
	uc := newFraudUsecase(store, pub)

	flagged, err := uc.CheckForFraud(context.Background(), &domain.FraudCheckInput{
		UserID: "bob", IPAddress: "10.0.0.1", DeviceFingerprint: "fp-1",
	})
	require.NoError(t, err)
	assert.False(t, flagged)
	assert.Empty(t, store.suspects)
	assert.Empty(t, pub.topics())
}

func TestCheckForFraud_DuplicateAccountSeedsThenBumpsSuspect(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{}
	uc := newFraudUsecase(store, pub)
	seedSuspect(t, store, &domain.FraudSuspect{
		ID: "s0", UserID: "mallory", IPAddress: "10.0.0.9", RiskScore: 80, Status: domain.SuspectPending,
	})

	input := &domain.FraudCheckInput{UserID: "bob", IPAddress: "10.0.0.9", DeviceFingerprint: "fp-2"}
	flagged, err := uc.CheckForFraud(context.Background(), input)
	require.NoError(t, err)
	require.True(t, flagged)

	suspect, err := store.GetSuspectByUserID(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.InitialRiskScore, suspect.RiskScore)
	assert.Equal(t, 1, suspect.DetectionCount)
	assert.Equal(t, domain.SuspectPending, suspect.Status)
	assert.Equal(t, domain.ActivityDuplicateAccount, suspect.Reason)

	require.Len(t, store.activities, 1)
	assert.Equal(t, domain.ActivityDuplicateAccount, store.activities[0].Type)
	assert.Equal(t, domain.DuplicateAccountSeverity, store.activities[0].Severity)
	assert.Equal(t, "mallory", store.activities[0].RelatedUserID)
	assert.Equal(t, suspect.ID, store.activities[0].SuspectID)

	flagged, err = uc.CheckForFraud(context.Background(), input)
	require.NoError(t, err)
	require.True(t, flagged)

	suspect, err = store.GetSuspectByUserID(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.InitialRiskScore+domain.RepeatRiskIncrease, suspect.RiskScore)
	assert.Equal(t, 2, suspect.DetectionCount)
	assert.Len(t, store.activities, 2)

	assert.Equal(t, []string{
		domain.TopicFraudSuspectDetected, domain.TopicFraudActivityDetected,
		domain.TopicFraudSuspectDetected, domain.TopicFraudActivityDetected,
	}, pub.topics())
}

func TestCheckForFraud_RiskScoreCapped(t *testing.T) {
	store := newMemStore()
	uc := newFraudUsecase(store, &fakePublisher{})
	seedSuspect(t, store, &domain.FraudSuspect{ID: "s0", UserID: "mallory", DeviceFingerprint: "fp-x", Status: domain.SuspectPending})
	seedSuspect(t, store, &domain.FraudSuspect{ID: "s1", UserID: "bob", RiskScore: 95, DetectionCount: 4, Status: domain.SuspectConfirmed})

	flagged, err := uc.CheckForFraud(context.Background(), &domain.FraudCheckInput{UserID: "bob", DeviceFingerprint: "fp-x"})
	require.NoError(t, err)
	require.True(t, flagged)

	suspect, err := store.GetSuspectByUserID(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 100, suspect.RiskScore)
	assert.Equal(t, domain.SuspectConfirmed, suspect.Status, "review outcome survives re-detection")
}

func TestCheckForFraud_RepeatReferrer(t *testing.T) {
	store := newMemStore()
	uc := newFraudUsecase(store, &fakePublisher{})
	require.NoError(t, store.CreateActivity(context.Background(), &domain.FraudActivity{
		ID: "a0", Type: domain.ActivitySuspiciousReferral, RelatedUserID: "alice",
	}))

	flagged, err := uc.CheckForFraud(context.Background(), &domain.FraudCheckInput{
		UserID: "bob", IPAddress: "10.0.0.1",
		ReferralData: &domain.ReferralData{ReferrerID: "alice"},
	})
	require.NoError(t, err)
	assert.True(t, flagged)
	require.Len(t, store.activities, 2)
	assert.Equal(t, domain.SuspiciousReferralSeverity, store.activities[1].Severity)
}

type brokenFinder struct{}

func (brokenFinder) FindSuspectsByIPOrDevice(context.Context, string, string) ([]*domain.FraudSuspect, error) {
	return nil, errors.New("connection reset")
}

func TestCheckForFraud_EngineErrorIsNotAPass(t *testing.T) {
	store := newMemStore()
	engine := antifraud.NewAntiFraudEngine(zap.NewNop())
	engine.RegisterStrategy(strategies.NewDuplicateAccountStrategy(brokenFinder{}))
	uc := NewDefaultFraudUsecase(store, engine, &fakeTransactor{}, nil, nil, zap.NewNop())

	flagged, err := uc.CheckForFraud(context.Background(), &domain.FraudCheckInput{UserID: "bob", IPAddress: "10.0.0.1"})
	assert.Error(t, err)
	assert.False(t, flagged)
}

func TestCheckForFraud_ValidatesInput(t *testing.T) {
	uc := newFraudUsecase(newMemStore(), &fakePublisher{})
	_, err := uc.CheckForFraud(context.Background(), &domain.FraudCheckInput{UserID: "bob"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReviewSuspect_OnlyOnce(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{}
	uc := newFraudUsecase(store, pub)
	seedSuspect(t, store, &domain.FraudSuspect{ID: "s1", UserID: "bob", RiskScore: 50, Status: domain.SuspectPending})

	suspect, err := uc.ReviewSuspect(context.Background(), &frauddto.ReviewSuspectInput{
		SuspectID: "s1", Status: domain.SuspectConfirmed, ReviewedBy: "admin-1", ReviewNotes: "same card",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SuspectConfirmed, suspect.Status)
	assert.NotNil(t, suspect.ReviewedAt)
	assert.Equal(t, []string{domain.TopicFraudSuspectReviewed}, pub.topics())

	_, err = uc.ReviewSuspect(context.Background(), &frauddto.ReviewSuspectInput{
		SuspectID: "s1", Status: domain.SuspectDismissed, ReviewedBy: "admin-2",
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)

	_, err = uc.ReviewSuspect(context.Background(), &frauddto.ReviewSuspectInput{
		SuspectID: "missing", Status: domain.SuspectDismissed, ReviewedBy: "admin-2",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetActivityStats_ZeroFillsKnownTypes(t *testing.T) {
	store := newMemStore()
	uc := newFraudUsecase(store, &fakePublisher{})
	seedSuspect(t, store, &domain.FraudSuspect{ID: "s0", UserID: "mallory", IPAddress: "10.0.0.9", Status: domain.SuspectPending})

	_, err := uc.CheckForFraud(context.Background(), &domain.FraudCheckInput{UserID: "bob", IPAddress: "10.0.0.9"})
	require.NoError(t, err)

	stats, err := uc.GetActivityStats(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		domain.ActivityDuplicateAccount:   1,
		domain.ActivitySuspiciousReferral: 0,
	}, stats)
}

func TestListSuspects_FiltersByStatus(t *testing.T) {
	store := newMemStore()
	uc := newFraudUsecase(store, &fakePublisher{})
	seedSuspect(t, store, &domain.FraudSuspect{ID: "s1", UserID: "a", Status: domain.SuspectPending})
	seedSuspect(t, store, &domain.FraudSuspect{ID: "s2", UserID: "b", Status: domain.SuspectDismissed})

	pending := domain.SuspectPending
	suspects, err := uc.ListSuspects(context.Background(), &pending)
	require.NoError(t, err)
	require.Len(t, suspects, 1)
	assert.Equal(t, "s1", suspects[0].ID)

	bogus := domain.SuspectStatus("bogus")
	_, err = uc.ListSuspects(context.Background(), &bogus)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
