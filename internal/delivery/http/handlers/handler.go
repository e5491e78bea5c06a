package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
	"go.uber.org/zap"
)

type Handler struct {
	referrals  usecase.ReferralUsecase
	commission usecase.CommissionUsecase
	fraud      usecase.FraudUsecase
	rewards    usecase.RewardUsecase
	payouts    usecase.PayoutUsecase
	logger     *zap.Logger
}

func NewHandler(
	referrals usecase.ReferralUsecase,
	commission usecase.CommissionUsecase,
	fraud usecase.FraudUsecase,
	rewards usecase.RewardUsecase,
	payouts usecase.PayoutUsecase,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		referrals:  referrals,
		commission: commission,
		fraud:      fraud,
		rewards:    rewards,
		payouts:    payouts,
		logger:     logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, response.ErrorResponse{Error: code, Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json: "+err.Error())
		return false
	}
	return true
}

// fail maps err onto a status and stable error code.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapDomainError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		message = "internal error"
	}
	writeError(w, status, code, message)
}

func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusBadRequest, "INSUFFICIENT_BALANCE"
	case errors.Is(err, domain.ErrReferralCodeExpired):
		return http.StatusGone, "CODE_EXPIRED"
	case errors.Is(err, domain.ErrSelfReferral):
		return http.StatusConflict, "SELF_REFERRAL"
	case errors.Is(err, domain.ErrAlreadyReferred):
		return http.StatusConflict, "ALREADY_REFERRED"
	case errors.Is(err, domain.ErrAlreadyProcessed), errors.Is(err, domain.ErrAlreadyReviewed):
		return http.StatusConflict, "ALREADY_PROCESSED"
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return http.StatusConflict, "INVALID_STATUS_TRANSITION"
	case errors.Is(err, domain.ErrFraudSuspected):
		return http.StatusForbidden, "FRAUD_SUSPECTED"
	case errors.Is(err, domain.ErrUnderReview):
		return http.StatusForbidden, "UNDER_REVIEW"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// actingFor resolves the user a request acts on: the caller by default, any
// user for admins.
func actingFor(r *http.Request, requested string) (string, error) {
	id, ok := domain.IdentityFrom(r.Context())
	if !ok {
		return "", domain.ErrUnauthorized
	}
	if requested == "" || requested == id.UserID {
		return id.UserID, nil
	}
	if !id.IsAdmin() {
		return "", domain.ErrAdminOnly
	}
	return requested, nil
}
