package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
	payoutdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/payout"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubReferrals struct {
	usecase.ReferralUsecase
	apply func(ctx context.Context, in *referraldto.ApplyReferralCodeInput) (*domain.Referral, error)
	tree  func(ctx context.Context, in *referraldto.GetReferralTreeInput) (*domain.ReferralTree, error)
}

func (s *stubReferrals) ApplyReferralCode(ctx context.Context, in *referraldto.ApplyReferralCodeInput) (*domain.Referral, error) {
	return s.apply(ctx, in)
}

func (s *stubReferrals) GetReferralTree(ctx context.Context, in *referraldto.GetReferralTreeInput) (*domain.ReferralTree, error) {
	return s.tree(ctx, in)
}

type stubFraud struct {
	usecase.FraudUsecase
	flagged bool
	listed  bool
}

func (s *stubFraud) CheckForFraud(context.Context, *domain.FraudCheckInput) (bool, error) {
	return s.flagged, nil
}

func (s *stubFraud) ListSuspects(context.Context, *domain.SuspectStatus) ([]*domain.FraudSuspect, error) {
	s.listed = true
	return []*domain.FraudSuspect{{ID: "s1", UserID: "bob", RiskScore: 50, Status: domain.SuspectPending}}, nil
}

type stubPayouts struct {
	usecase.PayoutUsecase
	request func(ctx context.Context, in *payoutdto.RequestPayoutInput) (*domain.Payout, error)
}

func (s *stubPayouts) RequestPayout(ctx context.Context, in *payoutdto.RequestPayoutInput) (*domain.Payout, error) {
	return s.request(ctx, in)
}

func newTestRouter(referrals usecase.ReferralUsecase, fraud usecase.FraudUsecase, payouts usecase.PayoutUsecase) http.Handler {
	h := NewHandler(referrals, nil, fraud, nil, payouts, zap.NewNop())
	return NewRouter(h, nil, zap.NewNop())
}

func do(t *testing.T, router http.Handler, method, target, body, userID, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
	if role != "" {
		req.Header.Set(HeaderUserRole, role)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestRouter(nil, nil, nil), http.MethodGet, "/healthz", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplyReferralCode_SelfReferralIsConflict(t *testing.T) {
	var got *referraldto.ApplyReferralCodeInput
	referrals := &stubReferrals{apply: func(_ context.Context, in *referraldto.ApplyReferralCodeInput) (*domain.Referral, error) {
		got = in
		return nil, domain.ErrSelfReferral
	}}
	router := newTestRouter(referrals, nil, nil)

	rec := do(t, router, http.MethodPost, "/referrals/apply", `{"code":"ABCD2345"}`, "alice", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "SELF_REFERRAL", decodeError(t, rec).Error)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.ReferredID)
}

func TestApplyReferralCode_ReturnsReferral(t *testing.T) {
	referrals := &stubReferrals{apply: func(_ context.Context, in *referraldto.ApplyReferralCodeInput) (*domain.Referral, error) {
		return &domain.Referral{ID: "r1", ReferrerID: "alice", ReferredID: in.ReferredID, Code: in.Code, Tier: 1, Status: domain.ReferralPending}, nil
	}}
	router := newTestRouter(referrals, nil, nil)

	rec := do(t, router, http.MethodPost, "/referrals/apply", `{"code":"ABCD2345","referredId":"bob"}`, "bob", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var body response.ReferralResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "r1", body.ID)
	assert.Equal(t, "pending", body.Status)
}

func TestApplyReferralCode_CannotActForOthers(t *testing.T) {
	router := newTestRouter(&stubReferrals{}, nil, nil)

	rec := do(t, router, http.MethodPost, "/referrals/apply", `{"code":"ABCD2345","referredId":"carol"}`, "bob", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoutes_RequireIdentity(t *testing.T) {
	router := newTestRouter(&stubReferrals{}, &stubFraud{}, nil)

	rec := do(t, router, http.MethodPost, "/referrals/apply", `{"code":"X"}`, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes_RejectRegularUsers(t *testing.T) {
	fraud := &stubFraud{}
	router := newTestRouter(nil, fraud, nil)

	rec := do(t, router, http.MethodGet, "/fraud-detection/suspects", "", "bob", "user")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, fraud.listed)

	rec = do(t, router, http.MethodGet, "/fraud-detection/suspects?status=pending", "", "root", domain.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fraud.listed)

	var suspects []response.FraudSuspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &suspects))
	require.Len(t, suspects, 1)
	assert.Equal(t, 50, suspects[0].RiskScore)
}

func TestCheckForFraud_ReportsVerdict(t *testing.T) {
	router := newTestRouter(nil, &stubFraud{flagged: true}, nil)

	rec := do(t, router, http.MethodPost, "/fraud-detection/check",
		`{"userId":"bob","ipAddress":"10.0.0.1","deviceFingerprint":"fp"}`, "signup-service", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isFraudulent":true}`, rec.Body.String())
}

func TestGetReferralTree_ParsesQuery(t *testing.T) {
	var got *referraldto.GetReferralTreeInput
	referrals := &stubReferrals{tree: func(_ context.Context, in *referraldto.GetReferralTreeInput) (*domain.ReferralTree, error) {
		got = in
		return &domain.ReferralTree{UserID: in.UserID, Tree: &domain.ReferralTreeNode{UserID: in.UserID}}, nil
	}}
	router := newTestRouter(referrals, nil, nil)

	rec := do(t, router, http.MethodGet, "/referrals/tree?maxDepth=2", "", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, 2, got.MaxDepth)

	rec = do(t, router, http.MethodGet, "/referrals/tree?maxDepth=deep", "", "alice", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/referrals/tree?userId=bob", "", "alice", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestPayout_InsufficientBalance(t *testing.T) {
	var got *payoutdto.RequestPayoutInput
	payouts := &stubPayouts{request: func(_ context.Context, in *payoutdto.RequestPayoutInput) (*domain.Payout, error) {
		got = in
		return nil, domain.ErrInsufficientBalance
	}}
	router := newTestRouter(nil, nil, payouts)

	rec := do(t, router, http.MethodPost, "/affiliate/request-payout", `{"amount":"150.50","paymentMethod":"bank"}`, "alice", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INSUFFICIENT_BALANCE", decodeError(t, rec).Error)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.AffiliateID)
	assert.True(t, decimal.RequireFromString("150.50").Equal(got.Amount))
}

func TestRequestPayout_MalformedBody(t *testing.T) {
	router := newTestRouter(nil, nil, &stubPayouts{})
	rec := do(t, router, http.MethodPost, "/affiliate/request-payout", `{"amount":`, "alice", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Error)
}

func TestMapDomainError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{domain.ErrReferralNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrAlreadyReferred, http.StatusConflict, "ALREADY_REFERRED"},
		{domain.ErrAlreadyProcessed, http.StatusConflict, "ALREADY_PROCESSED"},
		{domain.ErrReferralCodeExpired, http.StatusGone, "CODE_EXPIRED"},
		{domain.ErrNotPayoutOwner, http.StatusForbidden, "UNAUTHORIZED"},
		{domain.ErrUnderReview, http.StatusForbidden, "UNDER_REVIEW"},
		{domain.ErrFraudSuspected, http.StatusForbidden, "FRAUD_SUSPECTED"},
		{context.DeadlineExceeded, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		status, code := mapDomainError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}
