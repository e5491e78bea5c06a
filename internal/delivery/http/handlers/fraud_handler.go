package handlers

import (
	"net/http"
	"strconv"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	frauddto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/fraud"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CheckForFraud(w http.ResponseWriter, r *http.Request) {
	var input domain.FraudCheckInput
	if !decodeJSON(w, r, &input) {
		return
	}

	flagged, err := h.fraud.CheckForFraud(r.Context(), &input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FraudCheckResponse{IsFraudulent: flagged})
}

func (h *Handler) ListSuspects(w http.ResponseWriter, r *http.Request) {
	var status *domain.SuspectStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.SuspectStatus(raw)
		status = &s
	}

	suspects, err := h.fraud.ListSuspects(r.Context(), status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromFraudSuspects(suspects))
}

func (h *Handler) ReviewSuspect(w http.ResponseWriter, r *http.Request) {
	var req request.ReviewSuspectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reviewedBy := req.ReviewedBy
	if reviewedBy == "" {
		if id, ok := domain.IdentityFrom(r.Context()); ok {
			reviewedBy = id.UserID
		}
	}

	suspect, err := h.fraud.ReviewSuspect(r.Context(), &frauddto.ReviewSuspectInput{
		SuspectID:   chi.URLParam(r, "id"),
		Status:      domain.SuspectStatus(req.Status),
		ReviewedBy:  reviewedBy,
		ReviewNotes: req.ReviewNotes,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromFraudSuspect(suspect))
}

func (h *Handler) GetActivityStats(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		var err error
		days, err = strconv.Atoi(raw)
		if err != nil || days < 0 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "days must be a positive integer")
			return
		}
	}

	stats, err := h.fraud.GetActivityStats(r.Context(), days)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
