package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateReferralCode(w http.ResponseWriter, r *http.Request) {
	var req request.CreateReferralCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json: "+err.Error())
		return
	}

	userID, err := actingFor(r, req.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	code, err := h.referrals.CreateReferralCode(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, response.FromReferralCode(code))
}

func (h *Handler) GetReferralCode(w http.ResponseWriter, r *http.Request) {
	userID, err := actingFor(r, chi.URLParam(r, "userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	code, err := h.referrals.GetReferralCodeByUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromReferralCode(code))
}

func (h *Handler) ApplyReferralCode(w http.ResponseWriter, r *http.Request) {
	var req request.ApplyReferralCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	referredID, err := actingFor(r, req.ReferredID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	referral, err := h.referrals.ApplyReferralCode(r.Context(), &referraldto.ApplyReferralCodeInput{
		Code:              req.Code,
		ReferredID:        referredID,
		IPAddress:         req.IPAddress,
		DeviceFingerprint: req.DeviceFingerprint,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, response.FromReferral(referral))
}

func (h *Handler) UpdateReferralStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateReferralStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	referral, err := h.referrals.UpdateReferralStatus(r.Context(), &referraldto.UpdateReferralStatusInput{
		ReferralID:    req.ReferralID,
		Status:        domain.ReferralStatus(req.Status),
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromReferral(referral))
}

func (h *Handler) RecordConversion(w http.ResponseWriter, r *http.Request) {
	var req request.RecordConversionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	referral, err := h.referrals.RecordConversion(r.Context(), &referraldto.RecordConversionInput{
		ReferredID:    req.ReferredID,
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromReferral(referral))
}

func (h *Handler) GetReferralTree(w http.ResponseWriter, r *http.Request) {
	userID, err := actingFor(r, r.URL.Query().Get("userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	maxDepth := 0
	if raw := r.URL.Query().Get("maxDepth"); raw != "" {
		maxDepth, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "maxDepth must be an integer")
			return
		}
	}

	tree, err := h.referrals.GetReferralTree(r.Context(), &referraldto.GetReferralTreeInput{
		UserID:   userID,
		MaxDepth: maxDepth,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (h *Handler) GetReferralEarnings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userID, err := actingFor(r, query.Get("userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	from, err := parseTime(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "from must be RFC3339")
		return
	}
	to, err := parseTime(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "to must be RFC3339")
		return
	}

	summary, err := h.commission.GetReferralEarnings(r.Context(), &referraldto.GetEarningsInput{
		UserID: userID,
		From:   from,
		To:     to,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
