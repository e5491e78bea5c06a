package handlers

import (
	"net/http"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	payoutdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/payout"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) RequestPayout(w http.ResponseWriter, r *http.Request) {
	var req request.RequestPayoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	affiliateID, err := actingFor(r, "")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	payout, err := h.payouts.RequestPayout(r.Context(), &payoutdto.RequestPayoutInput{
		AffiliateID:   affiliateID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, response.FromPayout(payout))
}

func (h *Handler) ProcessPayout(w http.ResponseWriter, r *http.Request) {
	var req request.ProcessPayoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	payout, err := h.payouts.ProcessPayout(r.Context(), &payoutdto.ProcessPayoutInput{
		PayoutID:  chi.URLParam(r, "id"),
		Status:    domain.PayoutStatus(req.Status),
		Reference: req.Reference,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromPayout(payout))
}

func (h *Handler) CancelPayout(w http.ResponseWriter, r *http.Request) {
	requesterID, err := actingFor(r, "")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	payout, err := h.payouts.CancelPayout(r.Context(), &payoutdto.CancelPayoutInput{
		PayoutID:    chi.URLParam(r, "id"),
		RequesterID: requesterID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromPayout(payout))
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	affiliateID, err := actingFor(r, r.URL.Query().Get("affiliateId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	balance, err := h.payouts.GetBalance(r.Context(), affiliateID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (h *Handler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	affiliateID, err := actingFor(r, r.URL.Query().Get("affiliateId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	payouts, err := h.payouts.ListPayouts(r.Context(), affiliateID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromPayouts(payouts))
}
